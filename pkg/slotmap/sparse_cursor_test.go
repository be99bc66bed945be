package slotmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearcore/slotmap/pkg/slotmap"
)

func Test_Sparse_Cursor_Yields_Exactly_SlotCount_Pairs(t *testing.T) {
	t.Parallel()

	m := newSparse(t, 4, 0)

	for _, v := range []string{"a", "b", "c", "d", "e"} {
		_, err := m.Add(v)
		require.NoError(t, err)
	}

	cur := m.Cursor()

	count := 0
	for cur.Next() {
		count++
	}

	require.NoError(t, cur.Err())
	assert.Equal(t, m.SlotCount(), count)
}

func Test_Sparse_Cursor_Current_Before_First_Next_Is_Misuse(t *testing.T) {
	t.Parallel()

	m := newSparse(t, 4, 0)

	cur := m.Cursor()

	_, _, err := cur.Current()
	assert.ErrorIs(t, err, slotmap.ErrEnumerationMisuse)
}

func Test_Sparse_Cursor_Reset_Restarts_Walk_When_Version_Unchanged(t *testing.T) {
	t.Parallel()

	m := newSparse(t, 4, 0)

	for _, v := range []string{"a", "b", "c", "d", "e"} {
		_, err := m.Add(v)
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

func Test_Sparse_Cursor_Reset_Fails_After_Concurrent_Mutation(t *testing.T) {
	t.Parallel()

	m := newSparse(t, 4, 0)

	for _, v := range []string{"a", "b", "c"} {
		_, err := m.Add(v)
		require.NoError(t, err)
	}

	cur := m.Cursor()
	require.True(t, cur.Next())

	_, err := m.Add("d")
	require.NoError(t, err)

	assert.ErrorIs(t, cur.Reset(), slotmap.ErrEnumerationInvalidated)
	assert.False(t, cur.Next())
	assert.ErrorIs(t, cur.Err(), slotmap.ErrEnumerationInvalidated)
}

func Test_Sparse_All_Walks_Dense_Side_In_Order(t *testing.T) {
	t.Parallel()

	m := newSparse(t, 4, 0)

	for _, v := range []string{"a", "b", "c"} {
		_, err := m.Add(v)
		require.NoError(t, err)
	}

	var got []string
	for entry := range m.All() {
		got = append(got, entry.Value)
	}

	assert.Equal(t, []string{"a", "b", "c"}, got)
}
