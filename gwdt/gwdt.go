// Package gwdt computes the gray-weighted distance transform by fast
// marching from background voxels (§4.7): every voxel at or below a
// background threshold seeds the transform at 0 and is marked ALIVE; the
// transform then expands through foreground voxels, accumulating their
// intensity along the cheapest path back to background.
package gwdt

import (
	"math"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/pqueue"
	"github.com/arborist/neurotrace/storage"
	"github.com/arborist/neurotrace/tracelog"
	"github.com/arborist/neurotrace/volume"
)

// Epsilon floors a voxel's own contribution to the transform, per §4.7's
// relaxation rule `gwdt(current) + max(I(neighbor), eps)`.
const Epsilon = 1e-6

// Options configures one Compute call.
type Options struct {
	Threshold float64
	Conn      conn.Type
	Logger    *tracelog.Logger
}

// trialItem is one TRIAL-heap entry, ordered by tentative GWDT value with
// positional tie-break (§4.3, §9 Determinism).
type trialItem struct {
	idx int64
	pos [3]int
	g   float64
}

func (t trialItem) Priority() float64       { return t.g }
func (t trialItem) TieKey() (int, int, int) { return t.pos[0], t.pos[1], t.pos[2] }

// Compute runs fast marching from background over vol, writing GWDT
// values and ALIVE state into backend, and returns maxGWDT (or 1 if every
// finite value is zero, per §4.7).
func Compute(vol volume.Volume, backend storage.Backend, opts Options) (float64, error) {
	w, h, d := volume.Dims(vol)
	xMin, xMax, yMin, yMax, zMin, zMax := vol.Bounds()
	if err := backend.Init(w, h, d); err != nil {
		return 0, err
	}

	is2D := volume.Is2D(vol)
	offsets := conn.OffsetsForType(opts.Conn, is2D)

	open := pqueue.New[trialItem]()
	handles := make(map[int64]*pqueue.Handle[trialItem])

	idxOf := func(x, y, z int) int64 {
		return storage.Index(x-xMin, y-yMin, z-zMin, w, h)
	}

	// 1) Seed background voxels at 0, ALIVE; everything else starts FAR
	// with GWDT already +Inf (the backend's Init default).
	for z := zMin; z <= zMax; z++ {
		for y := yMin; y <= yMax; y++ {
			for x := xMin; x <= xMax; x++ {
				idx := idxOf(x, y, z)
				if vol.Get(x, y, z) <= opts.Threshold {
					backend.SetGWDT(idx, 0)
					backend.SetState(idx, storage.Alive)
				}
			}
		}
	}

	// 2) Push every foreground neighbor of a seed into TRIAL.
	pushOrUpdate := func(pos [3]int, idx int64, g float64) {
		if h, ok := handles[idx]; ok {
			if g < h.Val().g {
				open.DecreaseKey(h, trialItem{idx: idx, pos: pos, g: g})
			}

			return
		}
		item := trialItem{idx: idx, pos: pos, g: g}
		handles[idx] = open.Insert(item)
		backend.SetState(idx, storage.Trial)
	}

	for z := zMin; z <= zMax; z++ {
		for y := yMin; y <= yMax; y++ {
			for x := xMin; x <= xMax; x++ {
				idx := idxOf(x, y, z)
				if backend.State(idx) != storage.Alive {
					continue
				}
				relaxNeighbors(vol, backend, offsets, [3]int{x, y, z}, idx, idxOf, pushOrUpdate)
			}
		}
	}

	maxGWDT := 0.0
	anyFinite := false

	for open.Size() > 0 {
		item, _ := open.DeleteMin()
		delete(handles, item.idx)
		if backend.State(item.idx) == storage.Alive {
			continue // already finalized via another path
		}
		backend.SetGWDT(item.idx, item.g)
		backend.SetState(item.idx, storage.Alive)
		if item.g > maxGWDT {
			maxGWDT = item.g
		}
		anyFinite = true

		relaxNeighbors(vol, backend, offsets, item.pos, item.idx, idxOf, pushOrUpdate)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("gwdt complete", "maxGWDT", maxGWDT)
	}

	if !anyFinite {
		return 1, nil
	}

	return maxGWDT, nil
}

func relaxNeighbors(
	vol volume.Volume, backend storage.Backend, offsets [][3]int,
	pos [3]int, idx int64, idxOf func(x, y, z int) int64,
	pushOrUpdate func(pos [3]int, idx int64, g float64),
) {
	gCur := backend.GWDT(idx)
	for _, o := range offsets {
		np := [3]int{pos[0] + o[0], pos[1] + o[1], pos[2] + o[2]}
		if !volume.InBounds(vol, np[0], np[1], np[2]) {
			continue
		}
		nIdx := idxOf(np[0], np[1], np[2])
		if backend.State(nIdx) == storage.Alive {
			continue
		}
		intensity := vol.Get(np[0], np[1], np[2])
		contrib := intensity
		if contrib < Epsilon {
			contrib = Epsilon
		}
		newG := gCur + contrib
		if newG < backend.GWDT(nIdx) || math.IsInf(backend.GWDT(nIdx), 1) {
			backend.SetGWDT(nIdx, newG)
			pushOrUpdate(np, nIdx, newG)
		}
	}
}
