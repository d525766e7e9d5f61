// Package fmtree builds the seeded fast-marching geodesic tree of §4.8: a
// single-source fast marching rooted at a seed voxel, using a GWDT-weighted
// edge cost so corridors of high GWDT (well inside foreground) are cheap
// and thin/boundary voxels are expensive. The resulting parent pointers
// form an out-tree over every foreground voxel reachable from the seed.
package fmtree

import (
	"math"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/pqueue"
	"github.com/arborist/neurotrace/storage"
	"github.com/arborist/neurotrace/tracelog"
	"github.com/arborist/neurotrace/volume"
)

// Options configures one Build call.
type Options struct {
	Threshold float64
	Conn      conn.Type
	// AllowGap permits one bright→dark→bright step (a popped foreground
	// voxel may relax into a background neighbor); dark→dark is never
	// allowed (§4.8).
	AllowGap bool
	MaxGWDT  float64
	Logger   *tracelog.Logger
}

type trialItem struct {
	idx int64
	pos [3]int
	g   float64
}

func (t trialItem) Priority() float64       { return t.g }
func (t trialItem) TieKey() (int, int, int) { return t.pos[0], t.pos[1], t.pos[2] }

// Build runs fast marching from seed over vol using backend's GWDT values
// (already computed by package gwdt) and writes distance/parent/state into
// backend.
func Build(vol volume.Volume, backend storage.Backend, seed [3]int, opts Options) error {
	w, h, _ := volume.Dims(vol)
	xMin, _, yMin, _, zMin, _ := vol.Bounds()
	idxOf := func(x, y, z int) int64 {
		return storage.Index(x-xMin, y-yMin, z-zMin, w, h)
	}

	is2D := volume.Is2D(vol)
	offsets := conn.OffsetsForType(opts.Conn, is2D)
	maxGWDT := opts.MaxGWDT
	if maxGWDT <= 0 {
		maxGWDT = 1
	}

	seedIdx := idxOf(seed[0], seed[1], seed[2])
	backend.SetDistance(seedIdx, 0)
	backend.SetParent(seedIdx, seedIdx)
	backend.SetState(seedIdx, storage.Alive)

	open := pqueue.New[trialItem]()
	handles := make(map[int64]*pqueue.Handle[trialItem])

	pushOrUpdate := func(pos [3]int, idx int64, g float64, parent int64) {
		backend.SetDistance(idx, g)
		backend.SetParent(idx, parent)
		if hd, ok := handles[idx]; ok {
			if g < hd.Val().g {
				open.DecreaseKey(hd, trialItem{idx: idx, pos: pos, g: g})
			}

			return
		}
		handles[idx] = open.Insert(trialItem{idx: idx, pos: pos, g: g})
		if backend.State(idx) != storage.Alive {
			backend.SetState(idx, storage.Trial)
		}
	}

	expand := func(pos [3]int, idx int64) {
		curForeground := vol.Get(pos[0], pos[1], pos[2]) > opts.Threshold
		for _, o := range offsets {
			np := [3]int{pos[0] + o[0], pos[1] + o[1], pos[2] + o[2]}
			if !volume.InBounds(vol, np[0], np[1], np[2]) {
				continue
			}
			nIdx := idxOf(np[0], np[1], np[2])
			if backend.State(nIdx) == storage.Alive {
				continue
			}
			nForeground := vol.Get(np[0], np[1], np[2]) > opts.Threshold
			if !nForeground {
				// Background neighbor: only steppable if this voxel is
				// foreground and gap-bridging is enabled (bright→dark→
				// bright is allowed; dark→dark is not) (§4.8).
				if !(opts.AllowGap && curForeground) {
					continue
				}
			}

			edgeCost := euclid(pos, np, vol) + (maxGWDT-backend.GWDT(nIdx))/maxGWDT
			newDist := backend.Distance(idx) + edgeCost
			if newDist < backend.Distance(nIdx) {
				pushOrUpdate(np, nIdx, newDist, idx)
			}
		}
	}

	expand(seed, seedIdx)

	for open.Size() > 0 {
		item, _ := open.DeleteMin()
		delete(handles, item.idx)
		if backend.State(item.idx) == storage.Alive {
			continue
		}
		backend.SetState(item.idx, storage.Alive)
		expand(item.pos, item.idx)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("fast marching tree built", "seed", seed)
	}

	return nil
}

func euclid(a, b [3]int, vol volume.Volume) float64 {
	sx, sy, sz := vol.Spacing()
	dx := float64(a[0]-b[0]) * sx
	dy := float64(a[1]-b[1]) * sy
	dz := float64(a[2]-b[2]) * sz

	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
