package slotmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FreeQueue_Ready_Only_Once_Length_Exceeds_Limit(t *testing.T) {
	t.Parallel()

	q := newFreeQueue(2)

	q.push(0)
	q.push(1)
	assert.False(t, q.ready(), "len==limit must not be ready")

	q.push(2)
	assert.True(t, q.ready(), "len>limit must be ready")
}

func Test_FreeQueue_Pop_Returns_Oldest_First(t *testing.T) {
	t.Parallel()

	q := newFreeQueue(0)

	q.push(10)
	q.push(20)
	q.push(30)

	assert.Equal(t, uint32(10), q.pop())
	assert.Equal(t, uint32(20), q.pop())
	assert.Equal(t, uint32(30), q.pop())
	assert.Equal(t, 0, q.len())
}

func Test_FreeQueue_Grows_Across_Wraparound(t *testing.T) {
	t.Parallel()

	q := newFreeQueue(0)

	for i := uint32(0); i < 20; i++ {
		q.push(i)
	}

	for i := uint32(0); i < 10; i++ {
		require.Equal(t, i, q.pop())
	}

	for i := uint32(20); i < 30; i++ {
		q.push(i)
	}

	for i := uint32(10); i < 30; i++ {
		require.Equal(t, i, q.pop())
	}

	assert.Equal(t, 0, q.len())
}

func Test_FreeQueue_Pop_On_Empty_Panics(t *testing.T) {
	t.Parallel()

	q := newFreeQueue(0)

	assert.Panics(t, func() {
		q.pop()
	})
}

func Test_FreeQueue_Reset_Empties_Queue(t *testing.T) {
	t.Parallel()

	q := newFreeQueue(0)
	q.push(1)
	q.push(2)

	q.reset()

	assert.Equal(t, 0, q.len())
	assert.False(t, q.ready())
}
