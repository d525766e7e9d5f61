package search

import (
	"math"
	"time"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/costfn"
	"github.com/arborist/neurotrace/pqueue"
	"github.com/arborist/neurotrace/searchnode"
	"github.com/arborist/neurotrace/volume"
)

// Point is a physical-coordinate path point with an optional radius
// (left at 0 when not computed by this search).
type Point struct {
	X, Y, Z float64
	Radius  float64
}

// Stats reports open/closed counts at search conclusion (§6).
type Stats struct {
	OpenCount   int
	ClosedCount int
}

// Result is the outcome of one Run call.
type Result struct {
	Path   []Point
	Stats  Stats
	Reason ExitReason
}

// GoalPredicate decides whether voxel pos satisfies the search's goal.
type GoalPredicate func(pos [3]int) bool

// Engine runs one Dijkstra/A* search to completion (§4.4). An Engine is
// exclusive to a single Run call; it owns its open heap and node grid.
type Engine struct {
	opts Options
}

// New returns an Engine configured by opts applied over DefaultOptions(cost).
func New(cost costfn.Cost, opts ...Option) *Engine {
	o := DefaultOptions(cost)
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{opts: o}
}

// Run executes the search from start until goal matches or the open heap
// is exhausted. vol is shared read-only (§5); the node grid and heap are
// exclusive to this call.
func (e *Engine) Run(vol volume.Volume, start [3]int, goal [3]int, isGoal GoalPredicate) Result {
	cost := e.opts.Cost
	heuristic := e.opts.Heuristic
	minStep := cost.MinStepCost()

	grid := searchnode.NewGrid[searchnode.UniNode]()
	open := pqueue.New[*searchnode.UniNode]()

	startNode := grid.GetOrCreate(start[0], start[1], start[2], func() *searchnode.UniNode {
		return searchnode.NewUniNode(start)
	})
	startNode.G = 0
	startNode.H = heuristic.EstimateCostToGoal(toF(start), toF(goal)) * minStep
	startNode.F = startNode.G + startNode.H
	startNode.Status = searchnode.OpenFromStart
	startNode.Handle = open.Insert(startNode)

	sx, sy, sz := vol.Spacing()
	offsets := conn.Offsets26()

	deadline := time.Time{}
	if e.opts.Timeout > 0 {
		deadline = time.Now().Add(e.opts.Timeout)
	}
	lastProgress := time.Now()

	closedCount := 0
	iter := 0

	for open.Size() > 0 {
		iter++
		if iter%pollEvery == 0 {
			if e.opts.Cancel != nil {
				select {
				case <-e.opts.Cancel:
					return e.finish(nil, Stats{open.Size(), closedCount}, Cancelled)
				default:
				}
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				return e.finish(nil, Stats{open.Size(), closedCount}, TimedOut)
			}
			if e.opts.ProgressInterval > 0 && time.Since(lastProgress) >= e.opts.ProgressInterval {
				e.opts.Progress.PointsInSearch(open.Size(), closedCount)
				lastProgress = time.Now()
			}
		}

		cur, _ := open.DeleteMin()
		if cur.Status == searchnode.ClosedFromStart {
			continue // stale lazily-deleted entry from a prior re-open
		}
		cur.Status = searchnode.ClosedFromStart
		closedCount++
		e.opts.Metrics.NodesExpanded(1)

		if isGoal(cur.Pos) {
			path := reconstruct(cur, sx, sy, sz)
			return e.finish(path, Stats{open.Size(), closedCount}, Success)
		}

		for _, d := range offsets {
			np := [3]int{cur.Pos[0] + d[0], cur.Pos[1] + d[1], cur.Pos[2] + d[2]}
			if !volume.InBounds(vol, np[0], np[1], np[2]) {
				continue
			}
			intensity := vol.Get(np[0], np[1], np[2])
			stepCost := cost.CostMovingTo(intensity)
			if stepCost < minStep {
				stepCost = minStep
			}

			neighbor := grid.GetOrCreate(np[0], np[1], np[2], func() *searchnode.UniNode {
				return searchnode.NewUniNode(np)
			})

			gPrime := cur.G + voxelDist(cur.Pos, np, sx, sy, sz)*stepCost
			hPrime := heuristic.EstimateCostToGoal(toF(np), toF(goal)) * minStep
			fPrime := gPrime + hPrime

			switch neighbor.Status {
			case searchnode.Free:
				neighbor.G, neighbor.H, neighbor.F = gPrime, hPrime, fPrime
				neighbor.Pred = cur
				neighbor.Status = searchnode.OpenFromStart
				neighbor.Handle = open.Insert(neighbor)
			case searchnode.OpenFromStart:
				if fPrime < neighbor.F {
					neighbor.G, neighbor.H, neighbor.F = gPrime, hPrime, fPrime
					neighbor.Pred = cur
					open.DecreaseKey(neighbor.Handle, neighbor)
				}
			case searchnode.ClosedFromStart:
				// Retained per §4.4/§9: a real (possibly inconsistent) cost
				// function can make a CLOSED node improvable; re-open it.
				if fPrime < neighbor.F {
					neighbor.G, neighbor.H, neighbor.F = gPrime, hPrime, fPrime
					neighbor.Pred = cur
					neighbor.Status = searchnode.OpenFromStart
					neighbor.Handle = open.Insert(neighbor)
				}
			}
		}
	}

	return e.finish(nil, Stats{0, closedCount}, PointsExhausted)
}

func (e *Engine) finish(path []Point, stats Stats, reason ExitReason) Result {
	e.opts.Progress.Finished(reason == Success)
	e.opts.Logger.Debug("search finished", "reason", reason.String(), "open", stats.OpenCount, "closed", stats.ClosedCount)
	e.opts.Metrics.SearchFinished(reason.String())

	return Result{Path: path, Stats: stats, Reason: reason}
}

func reconstruct(goal *searchnode.UniNode, sx, sy, sz float64) []Point {
	var rev []Point
	for n := goal; n != nil; n = n.Pred {
		rev = append(rev, Point{
			X: float64(n.Pos[0]) * sx,
			Y: float64(n.Pos[1]) * sy,
			Z: float64(n.Pos[2]) * sz,
		})
		if n.Pred == n {
			break // defensive: never expect a self-loop predecessor here
		}
	}
	path := make([]Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}

	return path
}

func voxelDist(a, b [3]int, sx, sy, sz float64) float64 {
	dx := float64(a[0]-b[0]) * sx
	dy := float64(a[1]-b[1]) * sy
	dz := float64(a[2]-b[2]) * sz

	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func toF(p [3]int) [3]float64 {
	return [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
}
