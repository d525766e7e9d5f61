// Package filler implements the region filler of §4.6: single-source
// Dijkstra over foreground voxels bounded by a distance threshold T, with
// above-threshold voxels deferred (not closed) so a later increase of T
// can resume the fill from exactly the deferred boundary without
// recomputing already-settled voxels.
package filler

import (
	"math"
	"sync"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/costfn"
	"github.com/arborist/neurotrace/pqueue"
	"github.com/arborist/neurotrace/searchnode"
	"github.com/arborist/neurotrace/volume"
)

// Entry is one settled or deferred voxel in a Fill record (§4.6, §6). Open
// and Above are mutually exclusive: Open means the voxel sits on the active
// heap within the current threshold, Above means it's a deferred voxel
// whose tentative g exceeded the threshold at snapshot time. Neither set
// means the voxel was already closed.
type Entry struct {
	X, Y, Z       int
	G             float64
	PreviousIndex int // index of predecessor within the Fill's Entries, or -1
	Open          bool
	Above         bool
}

// Fill is the serializable snapshot of a filler run, sufficient to
// reconstitute a partial filler state (§6 "Persisted state").
type Fill struct {
	Entries   []Entry
	Threshold float64
	CostKind  string
}

// Filler runs one threshold-bounded region fill. It is single-threaded:
// resuming a Filler from a persisted Fill concurrently with further use is
// explicitly undefined by spec.md's §9 open question on the source's
// FillerThread synchronization issues, so Mu guards every public method
// rather than silently tolerating concurrent access.
type Filler struct {
	Mu sync.Mutex

	cost      costfn.Cost
	costKind  string
	threshold float64

	grid  *searchnode.Grid[searchnode.UniNode]
	open  *pqueue.Queue[*searchnode.UniNode]
	above map[[3]int]*searchnode.UniNode // deferred, tentative-g > threshold
}

// New creates a Filler with the given cost function, cost-kind tag (stored
// alongside the Fill record for later identification), and initial
// threshold T.
func New(cost costfn.Cost, costKind string, threshold float64) *Filler {
	return &Filler{
		cost:      cost,
		costKind:  costKind,
		threshold: threshold,
		grid:      searchnode.NewGrid[searchnode.UniNode](),
		open:      pqueue.New[*searchnode.UniNode](),
		above:     make(map[[3]int]*searchnode.UniNode),
	}
}

// Seed marks pos as a source voxel with g=0, ready for expansion.
func (f *Filler) Seed(pos [3]int) {
	f.Mu.Lock()
	defer f.Mu.Unlock()

	n := f.grid.GetOrCreate(pos[0], pos[1], pos[2], func() *searchnode.UniNode {
		return searchnode.NewUniNode(pos)
	})
	n.G, n.F = 0, 0
	n.Status = searchnode.OpenFromStart
	n.Handle = f.open.Insert(n)
}

// Run expands the fill until the open heap (within threshold) is
// exhausted. Deferred above-threshold voxels are left untouched so a
// later RaiseThreshold + Run can resume from exactly that boundary.
func (f *Filler) Run(vol volume.Volume) {
	f.Mu.Lock()
	defer f.Mu.Unlock()

	sx, sy, sz := vol.Spacing()
	offsets := conn.Offsets26()

	for f.open.Size() > 0 {
		cur, _ := f.open.DeleteMin()
		if cur.Status == searchnode.ClosedFromStart {
			continue
		}
		cur.Status = searchnode.ClosedFromStart

		for _, d := range offsets {
			np := [3]int{cur.Pos[0] + d[0], cur.Pos[1] + d[1], cur.Pos[2] + d[2]}
			if !volume.InBounds(vol, np[0], np[1], np[2]) {
				continue
			}
			intensity := vol.Get(np[0], np[1], np[2])
			stepCost := f.cost.CostMovingTo(intensity)
			if min := f.cost.MinStepCost(); stepCost < min {
				stepCost = min
			}
			gPrime := cur.G + dist(cur.Pos, np, sx, sy, sz)*stepCost

			neighbor := f.grid.GetOrCreate(np[0], np[1], np[2], func() *searchnode.UniNode {
				return searchnode.NewUniNode(np)
			})

			if gPrime >= neighbor.G {
				continue
			}

			if gPrime > f.threshold {
				// Defer: record the tentative improvement but do not close
				// or push it, so a later threshold raise can resume here.
				neighbor.G, neighbor.F = gPrime, gPrime
				neighbor.Pred = cur
				neighbor.Status = searchnode.Free
				f.above[np] = neighbor

				continue
			}

			delete(f.above, np)
			neighbor.G, neighbor.F = gPrime, gPrime
			neighbor.Pred = cur
			switch neighbor.Status {
			case searchnode.Free:
				neighbor.Status = searchnode.OpenFromStart
				neighbor.Handle = f.open.Insert(neighbor)
			case searchnode.OpenFromStart:
				f.open.DecreaseKey(neighbor.Handle, neighbor)
			case searchnode.ClosedFromStart:
				neighbor.Status = searchnode.OpenFromStart
				neighbor.Handle = f.open.Insert(neighbor)
			}
		}
	}
}

// RaiseThreshold increases T and moves any deferred voxel that now falls
// within it back onto the open heap, then returns so the caller can Run
// again to resume expansion from exactly that boundary.
func (f *Filler) RaiseThreshold(vol volume.Volume, newThreshold float64) {
	f.Mu.Lock()
	defer f.Mu.Unlock()

	if newThreshold <= f.threshold {
		return
	}
	f.threshold = newThreshold

	for pos, n := range f.above {
		if n.G > f.threshold {
			continue
		}
		delete(f.above, pos)
		n.Status = searchnode.OpenFromStart
		n.Handle = f.open.Insert(n)
	}
}

// Snapshot serializes the current state into a Fill record (§4.6, §6).
func (f *Filler) Snapshot() Fill {
	f.Mu.Lock()
	defer f.Mu.Unlock()

	return f.snapshotLocked()
}

func (f *Filler) snapshotLocked() Fill {
	// Assign each visited node a stable index for predecessor references.
	index := make(map[[3]int]int)
	var order [][3]int

	visit := func(pos [3]int) {
		if _, ok := index[pos]; !ok {
			index[pos] = len(order)
			order = append(order, pos)
		}
	}

	all := f.allNodes()
	for _, n := range all {
		visit(n.Pos)
	}

	entries := make([]Entry, len(order))
	for i, pos := range order {
		n := all[pos]
		prevIdx := -1
		if n.Pred != nil {
			if pi, ok := index[n.Pred.Pos]; ok {
				prevIdx = pi
			}
		}
		entries[i] = Entry{
			X: pos[0], Y: pos[1], Z: pos[2],
			G:             n.G,
			PreviousIndex: prevIdx,
			Open:          n.Status == searchnode.OpenFromStart,
			Above:         n.Status == searchnode.Free,
		}
	}

	return Fill{Entries: entries, Threshold: f.threshold, CostKind: f.costKind}
}

func (f *Filler) allNodes() map[[3]int]*searchnode.UniNode {
	out := make(map[[3]int]*searchnode.UniNode)
	for pos, n := range f.above {
		out[pos] = n
	}
	f.grid.Walk(func(n *searchnode.UniNode) {
		if n.G < math.Inf(1) {
			out[n.Pos] = n
		}
	})

	return out
}

// Resume reconstitutes a Filler from a persisted Fill record. Per §9's open
// question, concurrent use of a resumed Filler is undefined; Mu still
// guards subsequent calls but does not make resumption itself safe to race
// with a concurrent Snapshot of the same source Filler.
func Resume(cost costfn.Cost, fill Fill) *Filler {
	f := New(cost, fill.CostKind, fill.Threshold)

	nodes := make([]*searchnode.UniNode, len(fill.Entries))
	for i, e := range fill.Entries {
		pos := [3]int{e.X, e.Y, e.Z}
		n := f.grid.GetOrCreate(pos[0], pos[1], pos[2], func() *searchnode.UniNode {
			return searchnode.NewUniNode(pos)
		})
		n.G, n.F = e.G, e.G
		nodes[i] = n
	}
	for i, e := range fill.Entries {
		if e.PreviousIndex >= 0 {
			nodes[i].Pred = nodes[e.PreviousIndex]
		}
		switch {
		case e.Above:
			nodes[i].Status = searchnode.Free
			f.above[[3]int{e.X, e.Y, e.Z}] = nodes[i]
		case e.Open:
			nodes[i].Status = searchnode.OpenFromStart
			nodes[i].Handle = f.open.Insert(nodes[i])
		default:
			nodes[i].Status = searchnode.ClosedFromStart
		}
	}

	return f
}

func dist(a, b [3]int, sx, sy, sz float64) float64 {
	dx := float64(a[0]-b[0]) * sx
	dy := float64(a[1]-b[1]) * sy
	dz := float64(a[2]-b[2]) * sz

	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
