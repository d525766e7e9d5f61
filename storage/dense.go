package storage

import "math"

// DenseBackend holds the GWDT + fast-marching arrays as flat slices, one
// float64/int64/byte array per field, indexed by the packed linear index.
// It is the fastest backend and the natural default for volumes that fit
// comfortably in memory.
type DenseBackend struct {
	w, h, d  int
	gwdt     []float64
	dist     []float64
	parent   []int64
	state    []VoxelState
	alive    map[int64]struct{}
	disposed bool
}

// NewDenseBackend returns an uninitialized DenseBackend; call Init before use.
func NewDenseBackend() *DenseBackend {
	return &DenseBackend{alive: make(map[int64]struct{})}
}

func (b *DenseBackend) Init(w, h, d int) error {
	n := w * h * d
	b.w, b.h, b.d = w, h, d
	b.gwdt = make([]float64, n)
	b.dist = make([]float64, n)
	b.parent = make([]int64, n)
	b.state = make([]VoxelState, n)
	for i := range b.gwdt {
		b.gwdt[i] = math.Inf(1)
		b.dist[i] = math.Inf(1)
		b.parent[i] = -1
	}

	return nil
}

func (b *DenseBackend) GWDT(idx int64) float64     { return b.gwdt[idx] }
func (b *DenseBackend) SetGWDT(idx int64, v float64) { b.gwdt[idx] = v }

func (b *DenseBackend) Distance(idx int64) float64     { return b.dist[idx] }
func (b *DenseBackend) SetDistance(idx int64, v float64) { b.dist[idx] = v }

func (b *DenseBackend) Parent(idx int64) int64     { return b.parent[idx] }
func (b *DenseBackend) SetParent(idx int64, p int64) { b.parent[idx] = p }

func (b *DenseBackend) State(idx int64) VoxelState { return b.state[idx] }

func (b *DenseBackend) SetState(idx int64, s VoxelState) {
	old := b.state[idx]
	b.state[idx] = s
	if s == Alive && old != Alive {
		b.alive[idx] = struct{}{}
	} else if s != Alive && old == Alive {
		delete(b.alive, idx)
	}
}

func (b *DenseBackend) AliveIndices() ([]int64, bool) {
	out := make([]int64, 0, len(b.alive))
	for idx := range b.alive {
		out = append(out, idx)
	}

	return out, true
}

func (b *DenseBackend) MemoryEstimate() int64 {
	n := int64(len(b.gwdt))

	return n*8 + n*8 + n*8 + n*1
}

func (b *DenseBackend) Dispose() error {
	b.gwdt, b.dist, b.parent, b.state = nil, nil, nil, nil
	b.alive = nil
	b.disposed = true

	return nil
}
