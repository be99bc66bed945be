package slotmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearcore/slotmap/pkg/slotmap"
)

func Test_Dense_Cursor_Yields_Exactly_SlotCount_Pairs(t *testing.T) {
	t.Parallel()

	m := newDense(t, 4, 0)

	for i := 0; i < 7; i++ {
		_, err := m.Add(i)
		require.NoError(t, err)
	}

	_, err := m.Remove(mustAdd(t, m, 99))
	require.NoError(t, err)

	cur := m.Cursor()

	count := 0
	for cur.Next() {
		count++
	}

	require.NoError(t, cur.Err())
	assert.Equal(t, m.SlotCount(), count)
}

func Test_Dense_Cursor_Fails_Fast_On_Concurrent_Mutation(t *testing.T) {
	t.Parallel()

	m := newDense(t, 4, 0)

	for i := 0; i < 3; i++ {
		_, err := m.Add(i)
		require.NoError(t, err)
	}

	cur := m.Cursor()
	require.True(t, cur.Next())

	_, err := m.Add(100)
	require.NoError(t, err)

	assert.False(t, cur.Next())
	assert.ErrorIs(t, cur.Err(), slotmap.ErrEnumerationInvalidated)

	_, _, currentErr := cur.Current()
	assert.ErrorIs(t, currentErr, slotmap.ErrEnumerationInvalidated)
}

func Test_Dense_Cursor_Current_Before_First_Next_Is_Misuse(t *testing.T) {
	t.Parallel()

	m := newDense(t, 4, 0)

	cur := m.Cursor()

	_, _, err := cur.Current()
	assert.ErrorIs(t, err, slotmap.ErrEnumerationMisuse)
}

func Test_Dense_Cursor_Reset_Restarts_Walk_When_Version_Unchanged(t *testing.T) {
	t.Parallel()

	m := newDense(t, 4, 0)

	for i := 0; i < 5; i++ {
		_, err := m.Add(i)
		require.NoError(t, err)
	}

	cur := m.Cursor()
	require.True(t, cur.Next())
	require.True(t, cur.Next())

	require.NoError(t, cur.Reset())

	count := 0
	for cur.Next() {
		count++
	}

	require.NoError(t, cur.Err())
	assert.Equal(t, m.SlotCount(), count)
}

func Test_Dense_Cursor_Reset_Fails_After_Concurrent_Mutation(t *testing.T) {
	t.Parallel()

	m := newDense(t, 4, 0)

	for i := 0; i < 3; i++ {
		_, err := m.Add(i)
		require.NoError(t, err)
	}

	cur := m.Cursor()
	require.True(t, cur.Next())

	_, err := m.Add(100)
	require.NoError(t, err)

	assert.ErrorIs(t, cur.Reset(), slotmap.ErrEnumerationInvalidated)
	assert.False(t, cur.Next())
	assert.ErrorIs(t, cur.Err(), slotmap.ErrEnumerationInvalidated)
}

func Test_Dense_All_Collects_Every_Live_Entry(t *testing.T) {
	t.Parallel()

	m := newDense(t, 4, 0)

	want := map[slotmap.Key]int{}
	for i := 0; i < 5; i++ {
		k, err := m.Add(i)
		require.NoError(t, err)
		want[k] = i
	}

	got := map[slotmap.Key]int{}
	for entry := range m.All() {
		got[entry.Key] = entry.Value
	}

	assert.Equal(t, want, got)
}

func mustAdd(t *testing.T, m *slotmap.DenseSlotMap[int], v int) slotmap.Key {
	t.Helper()

	k, err := m.Add(v)
	require.NoError(t, err)

	return k
}
