package pqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/pqueue"
)

type item struct {
	x, y, z  int
	priority float64
}

func (it item) Priority() float64          { return it.priority }
func (it item) TieKey() (int, int, int)    { return it.x, it.y, it.z }

func TestQueue_PopsInAscendingOrder(t *testing.T) {
	q := pqueue.New[item]()
	q.Insert(item{0, 0, 0, 5})
	q.Insert(item{1, 0, 0, 1})
	q.Insert(item{2, 0, 0, 3})

	require.Equal(t, 3, q.Size())

	v, ok := q.DeleteMin()
	require.True(t, ok)
	assert.Equal(t, 1.0, v.priority)

	v, ok = q.DeleteMin()
	require.True(t, ok)
	assert.Equal(t, 3.0, v.priority)

	v, ok = q.DeleteMin()
	require.True(t, ok)
	assert.Equal(t, 5.0, v.priority)

	_, ok = q.DeleteMin()
	assert.False(t, ok)
}

func TestQueue_TieBreakByPosition(t *testing.T) {
	q := pqueue.New[item]()
	q.Insert(item{5, 5, 5, 1})
	q.Insert(item{1, 9, 9, 1})
	q.Insert(item{1, 2, 9, 1})

	v, _ := q.DeleteMin()
	assert.Equal(t, item{1, 2, 9, 1}, v)

	v, _ = q.DeleteMin()
	assert.Equal(t, item{1, 9, 9, 1}, v)

	v, _ = q.DeleteMin()
	assert.Equal(t, item{5, 5, 5, 1}, v)
}

func TestQueue_DecreaseKey(t *testing.T) {
	q := pqueue.New[item]()
	h := q.Insert(item{0, 0, 0, 10})
	q.Insert(item{1, 0, 0, 2})

	q.DecreaseKey(h, item{0, 0, 0, 1})

	v, ok := q.DeleteMin()
	require.True(t, ok)
	assert.Equal(t, 1.0, v.priority)
	assert.Equal(t, 0, v.x)
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := pqueue.New[item]()
	q.Insert(item{0, 0, 0, 4})

	v, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 4.0, v.priority)
	assert.Equal(t, 1, q.Size())
}
