// Package pqueue implements an addressable min-heap (priority queue) over
// search nodes, ordered by a caller-supplied priority (the node's f-score)
// with a deterministic position-based tie-break. It supports O(log n)
// Insert, DeleteMin, and DecreaseKey, matching the open-set contract used
// by the unidirectional and bidirectional search engines (§4.3).
package pqueue

import "container/heap"

// Keyed is the value type stored in a Queue. Priority is the primary sort
// key (ascending); TieKey breaks ties deterministically so the open-heap
// pop order is total and reproducible across runs (§4.3, §9 Determinism).
type Keyed interface {
	Priority() float64
	TieKey() (x, y, z int)
}

// Handle identifies a previously-inserted element so its priority can later
// be decreased in place. A Handle is only valid for the Queue that produced
// it.
type Handle[T Keyed] struct {
	val T
	idx int // index into the backing heap slice; -1 once removed
}

// Val returns the value currently stored at h.
func (h *Handle[T]) Val() T { return h.val }

// Queue is an addressable min-heap of elements of type T.
type Queue[T Keyed] struct {
	h innerHeap[T]
}

// New returns an empty Queue.
func New[T Keyed]() *Queue[T] {
	q := &Queue[T]{}
	heap.Init(&q.h)

	return q
}

// Size returns the number of elements currently in the queue.
func (q *Queue[T]) Size() int { return q.h.Len() }

// Peek returns the minimum element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}

	return q.h[0].val, true
}

// Insert adds val to the queue and returns a Handle for future
// DecreaseKey calls.
func (q *Queue[T]) Insert(val T) *Handle[T] {
	h := &Handle[T]{val: val}
	heap.Push(&q.h, h)

	return h
}

// DeleteMin removes and returns the minimum-priority element.
func (q *Queue[T]) DeleteMin() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	h := heap.Pop(&q.h).(*Handle[T])

	return h.val, true
}

// DecreaseKey updates the value stored at h (normally to a strictly lower
// priority) and restores the heap invariant in O(log n). Calling it with a
// larger priority is also supported (container/heap.Fix handles both
// directions) but callers should prefer re-deriving f' < f before calling.
func (q *Queue[T]) DecreaseKey(h *Handle[T], val T) {
	h.val = val
	heap.Fix(&q.h, h.idx)
}

// innerHeap implements container/heap.Interface over *Handle[T].
type innerHeap[T Keyed] []*Handle[T]

func (h innerHeap[T]) Len() int { return len(h) }

func (h innerHeap[T]) Less(i, j int) bool {
	pi, pj := h[i].val.Priority(), h[j].val.Priority()
	if pi != pj {
		return pi < pj
	}
	xi, yi, zi := h[i].val.TieKey()
	xj, yj, zj := h[j].val.TieKey()
	if xi != xj {
		return xi < xj
	}
	if yi != yj {
		return yi < yj
	}

	return zi < zj
}

func (h innerHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].idx = i
	h[j].idx = j
}

func (h *innerHeap[T]) Push(x interface{}) {
	hd := x.(*Handle[T])
	hd.idx = len(*h)
	*h = append(*h, hd)
}

func (h *innerHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	hd := old[n-1]
	old[n-1] = nil
	hd.idx = -1
	*h = old[:n-1]

	return hd
}
