package storage

import "math"

// SparseBackend holds the GWDT + fast-marching arrays in hash maps keyed
// by the packed linear index, touching memory only for voxels the
// algorithm actually visits. It trades per-access map overhead for a much
// smaller footprint on large, mostly-background volumes.
type SparseBackend struct {
	w, h, d int
	gwdt    map[int64]float64
	dist    map[int64]float64
	parent  map[int64]int64
	state   map[int64]VoxelState
	alive   map[int64]struct{}
}

func NewSparseBackend() *SparseBackend {
	return &SparseBackend{
		gwdt:   make(map[int64]float64),
		dist:   make(map[int64]float64),
		parent: make(map[int64]int64),
		state:  make(map[int64]VoxelState),
		alive:  make(map[int64]struct{}),
	}
}

func (b *SparseBackend) Init(w, h, d int) error {
	b.w, b.h, b.d = w, h, d

	return nil
}

func (b *SparseBackend) GWDT(idx int64) float64 {
	if v, ok := b.gwdt[idx]; ok {
		return v
	}

	return math.Inf(1)
}

func (b *SparseBackend) SetGWDT(idx int64, v float64) { b.gwdt[idx] = v }

func (b *SparseBackend) Distance(idx int64) float64 {
	if v, ok := b.dist[idx]; ok {
		return v
	}

	return math.Inf(1)
}

func (b *SparseBackend) SetDistance(idx int64, v float64) { b.dist[idx] = v }

func (b *SparseBackend) Parent(idx int64) int64 {
	if p, ok := b.parent[idx]; ok {
		return p
	}

	return -1
}

func (b *SparseBackend) SetParent(idx int64, p int64) { b.parent[idx] = p }

func (b *SparseBackend) State(idx int64) VoxelState {
	return b.state[idx] // zero value is Far
}

func (b *SparseBackend) SetState(idx int64, s VoxelState) {
	old := b.state[idx]
	b.state[idx] = s
	if s == Alive && old != Alive {
		b.alive[idx] = struct{}{}
	} else if s != Alive && old == Alive {
		delete(b.alive, idx)
	}
}

func (b *SparseBackend) AliveIndices() ([]int64, bool) {
	out := make([]int64, 0, len(b.alive))
	for idx := range b.alive {
		out = append(out, idx)
	}

	return out, true
}

func (b *SparseBackend) MemoryEstimate() int64 {
	perEntry := int64(8 + 8 + 8 + 1 + 8) // rough map bucket overhead included
	n := int64(len(b.state))

	return n * perEntry
}

func (b *SparseBackend) Dispose() error {
	b.gwdt, b.dist, b.parent, b.state, b.alive = nil, nil, nil, nil, nil

	return nil
}
