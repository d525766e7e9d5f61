// Package storage abstracts the four per-voxel arrays (gwdt, distance,
// parent, state) that the GWDT engine and fast-marching tree operate over
// (§3, §9). It is parameterized so the same algorithms run against a dense
// in-memory array, a sparse hash map, or a disk-cached backend, letting one
// implementation serve both small and very large volumes.
package storage

import "errors"

// ErrDisposed names use of a Backend after Dispose. The backends in this
// package do not return it: they do not check for use after Dispose.
var ErrDisposed = errors.New("storage: backend already disposed")

// VoxelState is the fast-marching tri-state for one voxel (§3).
type VoxelState uint8

const (
	Far   VoxelState = 0
	Trial VoxelState = 1
	Alive VoxelState = 2
)

// Backend owns the GWDT + fast-marching arrays for one automatic trace. It
// is exclusive to that trace and released (Dispose) on completion, even on
// failure (§5, §9).
type Backend interface {
	// Init allocates storage for a volume of the given voxel dimensions.
	Init(w, h, d int) error

	GWDT(idx int64) float64
	SetGWDT(idx int64, v float64)

	Distance(idx int64) float64
	SetDistance(idx int64, v float64)

	Parent(idx int64) int64
	SetParent(idx int64, p int64)

	State(idx int64) VoxelState
	SetState(idx int64, s VoxelState)

	// AliveIndices returns every index currently marked Alive and true, or
	// (nil, false) if the backend does not track this incrementally (in
	// which case callers must fall back to a full scan). Tracking this is
	// critical for disk-backed graph materialization to avoid a full
	// volume scan (§9).
	AliveIndices() ([]int64, bool)

	// MemoryEstimate returns an approximate resident byte count.
	MemoryEstimate() int64

	// Dispose releases any resources (file handles, caches). It is
	// guaranteed to run even when the trace fails (§7).
	Dispose() error
}

// Index packs 3-D voxel coordinates into the linear index used by every
// Backend, per §3: idx = x + y*w + z*w*h.
func Index(x, y, z, w, h int) int64 {
	return int64(x) + int64(y)*int64(w) + int64(z)*int64(w)*int64(h)
}
