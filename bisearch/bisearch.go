// Package bisearch implements bidirectional A* with the Pijls–Post meeting
// criterion (§4.5): two independent frontiers, a rejection predicate that
// lets only nodes that could still improve the best meeting cost expand,
// and reconstruction through the touch node once either frontier empties.
package bisearch

import (
	"math"
	"time"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/costfn"
	"github.com/arborist/neurotrace/pqueue"
	"github.com/arborist/neurotrace/search"
	"github.com/arborist/neurotrace/searchnode"
	"github.com/arborist/neurotrace/tracelog"
	"github.com/arborist/neurotrace/volume"
)

const pollEvery = 10000

// Options mirrors search.Options; bidirectional search uses the same
// Cost/Heuristic contracts but always needs a concrete goal voxel.
type Options struct {
	Cost      costfn.Cost
	Heuristic costfn.Heuristic

	Timeout          time.Duration
	ProgressInterval time.Duration
	Progress         search.Progress

	Cancel <-chan struct{}
	Logger *tracelog.Logger
}

type Option func(*Options)

func DefaultOptions(cost costfn.Cost) Options {
	return Options{
		Cost:      cost,
		Heuristic: costfn.ZeroHeuristic{},
		Progress:  search.NoopProgress{},
		Logger:    tracelog.Discard(),
	}
}

func WithHeuristic(h costfn.Heuristic) Option { return func(o *Options) { o.Heuristic = h } }
func WithTimeout(d time.Duration) Option      { return func(o *Options) { o.Timeout = d } }
func WithProgress(interval time.Duration, p search.Progress) Option {
	return func(o *Options) {
		o.ProgressInterval = interval
		o.Progress = p
	}
}
func WithCancel(c <-chan struct{}) Option       { return func(o *Options) { o.Cancel = c } }
func WithLogger(l *tracelog.Logger) Option      { return func(o *Options) { o.Logger = l } }

// Engine runs one bidirectional A* search (§4.5). Exclusive to a single
// Run call; owns both frontiers' heaps and the shared node grid.
type Engine struct {
	opts Options
}

func New(cost costfn.Cost, opts ...Option) *Engine {
	o := DefaultOptions(cost)
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{opts: o}
}

type direction int

const (
	fromStart direction = iota
	fromGoal
)

// Run searches for the optimal-cost path between start and goal.
func (e *Engine) Run(vol volume.Volume, start, goal [3]int) search.Result {
	cost := e.opts.Cost
	h := e.opts.Heuristic
	minStep := cost.MinStepCost()
	sx, sy, sz := vol.Spacing()
	offsets := conn.Offsets26()

	grid := searchnode.NewGrid[searchnode.BiNode]()
	openStart := pqueue.New[searchnode.StartView]()
	openGoal := pqueue.New[searchnode.GoalView]()

	startNode := grid.GetOrCreate(start[0], start[1], start[2], func() *searchnode.BiNode {
		return searchnode.NewBiNode(start)
	})
	startNode.GFromStart = 0
	startNode.FFromStart = h.EstimateCostToGoal(toF(start), toF(goal)) * minStep
	startNode.StateFromStart = searchnode.StateOpen
	startNode.HandleFromStart = openStart.Insert(searchnode.StartView{Node: startNode})

	goalNode := grid.GetOrCreate(goal[0], goal[1], goal[2], func() *searchnode.BiNode {
		return searchnode.NewBiNode(goal)
	})
	goalNode.GFromGoal = 0
	goalNode.FFromGoal = h.EstimateCostToGoal(toF(goal), toF(start)) * minStep
	goalNode.StateFromGoal = searchnode.StateOpen
	goalNode.HandleFromGoal = openGoal.Insert(searchnode.GoalView{Node: goalNode})

	bestPathLength := math.Inf(1)
	var touch *searchnode.BiNode

	deadline := time.Time{}
	if e.opts.Timeout > 0 {
		deadline = time.Now().Add(e.opts.Timeout)
	}
	lastProgress := time.Now()
	closedCount := 0
	iter := 0

	for openStart.Size() > 0 && openGoal.Size() > 0 {
		iter++
		if iter%pollEvery == 0 {
			if e.opts.Cancel != nil {
				select {
				case <-e.opts.Cancel:
					return e.finish(nil, search.Stats{OpenCount: openStart.Size() + openGoal.Size(), ClosedCount: closedCount}, search.Cancelled)
				default:
				}
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				return e.finish(nil, search.Stats{OpenCount: openStart.Size() + openGoal.Size(), ClosedCount: closedCount}, search.TimedOut)
			}
		}
		if e.opts.ProgressInterval > 0 && time.Since(lastProgress) >= e.opts.ProgressInterval {
			e.opts.Progress.PointsInSearch(openStart.Size()+openGoal.Size(), closedCount)
			lastProgress = time.Now()
		}

		dir := fromStart
		if openGoal.Size() < openStart.Size() {
			dir = fromGoal
		}

		var p *searchnode.BiNode
		if dir == fromStart {
			v, _ := openStart.DeleteMin()
			p = v.Node
			p.StateFromStart = searchnode.StateClosed
		} else {
			v, _ := openGoal.DeleteMin()
			p = v.Node
			p.StateFromGoal = searchnode.StateClosed
		}
		closedCount++

		if rejected(p, dir, start, goal, h, minStep, bestPathLength, openStart, openGoal) {
			continue
		}

		e.expand(grid, p, dir, vol, cost, h, minStep, start, goal, offsets, sx, sy, sz, openStart, openGoal, &bestPathLength, &touch)
	}

	if touch == nil {
		return e.finish(nil, search.Stats{OpenCount: openStart.Size() + openGoal.Size(), ClosedCount: closedCount}, search.PointsExhausted)
	}

	path := reconstructThroughTouch(touch, sx, sy, sz)

	return e.finish(path, search.Stats{OpenCount: openStart.Size() + openGoal.Size(), ClosedCount: closedCount}, search.Success)
}

// rejected applies the Pijls–Post test: p is skipped (not expanded) if
// either bound shows it cannot improve bestPathLength.
func rejected(
	p *searchnode.BiNode, dir direction, start, goal [3]int,
	h costfn.Heuristic, minStep float64, bestPathLength float64,
	openStart *pqueue.Queue[searchnode.StartView], openGoal *pqueue.Queue[searchnode.GoalView],
) bool {
	var g, hOther, hSame, bestFOther float64
	if dir == fromStart {
		g = p.GFromStart
		hOther = h.EstimateCostToGoal(toF(p.Pos), toF(goal))
		hSame = h.EstimateCostToGoal(toF(p.Pos), toF(start))
		if v, ok := openGoal.Peek(); ok {
			bestFOther = v.Priority()
		} else {
			bestFOther = math.Inf(1)
		}
	} else {
		g = p.GFromGoal
		hOther = h.EstimateCostToGoal(toF(p.Pos), toF(start))
		hSame = h.EstimateCostToGoal(toF(p.Pos), toF(goal))
		if v, ok := openStart.Peek(); ok {
			bestFOther = v.Priority()
		} else {
			bestFOther = math.Inf(1)
		}
	}

	if g+hOther*minStep >= bestPathLength {
		return true
	}
	if g+bestFOther-hSame*minStep >= bestPathLength {
		return true
	}

	return false
}

func (e *Engine) expand(
	grid *searchnode.Grid[searchnode.BiNode], p *searchnode.BiNode, dir direction,
	vol volume.Volume, cost costfn.Cost, h costfn.Heuristic, minStep float64,
	start, goal [3]int, offsets [][3]int, sx, sy, sz float64,
	openStart *pqueue.Queue[searchnode.StartView], openGoal *pqueue.Queue[searchnode.GoalView],
	bestPathLength *float64, touch **searchnode.BiNode,
) {
	for _, d := range offsets {
		np := [3]int{p.Pos[0] + d[0], p.Pos[1] + d[1], p.Pos[2] + d[2]}
		if !volume.InBounds(vol, np[0], np[1], np[2]) {
			continue
		}
		intensity := vol.Get(np[0], np[1], np[2])
		stepCost := cost.CostMovingTo(intensity)
		if stepCost < minStep {
			stepCost = minStep
		}
		stepDist := voxelDist(p.Pos, np, sx, sy, sz) * stepCost

		n := grid.GetOrCreate(np[0], np[1], np[2], func() *searchnode.BiNode {
			return searchnode.NewBiNode(np)
		})

		if dir == fromStart {
			gPrime := p.GFromStart + stepDist
			if gPrime < n.GFromStart {
				n.GFromStart = gPrime
				n.FFromStart = gPrime + h.EstimateCostToGoal(toF(np), toF(goal))*minStep
				n.PredFromStart = p
				switch n.StateFromStart {
				case searchnode.StateFree:
					n.StateFromStart = searchnode.StateOpen
					n.HandleFromStart = openStart.Insert(searchnode.StartView{Node: n})
				case searchnode.StateOpen:
					openStart.DecreaseKey(n.HandleFromStart, searchnode.StartView{Node: n})
				case searchnode.StateClosed:
					n.StateFromStart = searchnode.StateOpen
					n.HandleFromStart = openStart.Insert(searchnode.StartView{Node: n})
				}
				considerMeeting(n, bestPathLength, touch)
			}
		} else {
			gPrime := p.GFromGoal + stepDist
			if gPrime < n.GFromGoal {
				n.GFromGoal = gPrime
				n.FFromGoal = gPrime + h.EstimateCostToGoal(toF(np), toF(start))*minStep
				n.PredFromGoal = p
				switch n.StateFromGoal {
				case searchnode.StateFree:
					n.StateFromGoal = searchnode.StateOpen
					n.HandleFromGoal = openGoal.Insert(searchnode.GoalView{Node: n})
				case searchnode.StateOpen:
					openGoal.DecreaseKey(n.HandleFromGoal, searchnode.GoalView{Node: n})
				case searchnode.StateClosed:
					n.StateFromGoal = searchnode.StateOpen
					n.HandleFromGoal = openGoal.Insert(searchnode.GoalView{Node: n})
				}
				considerMeeting(n, bestPathLength, touch)
			}
		}
	}
}

// considerMeeting uses the post-update g-scores to test whether n is a
// better meeting point, per §4.5 and the §9 open question on ordering.
func considerMeeting(n *searchnode.BiNode, bestPathLength *float64, touch **searchnode.BiNode) {
	if math.IsInf(n.GFromStart, 1) || math.IsInf(n.GFromGoal, 1) {
		return
	}
	meet := n.GFromStart + n.GFromGoal
	if meet < *bestPathLength {
		*bestPathLength = meet
		*touch = n
	}
}

func (e *Engine) finish(path []search.Point, stats search.Stats, reason search.ExitReason) search.Result {
	e.opts.Progress.Finished(reason == search.Success)
	e.opts.Logger.Debug("bisearch finished", "reason", reason.String())

	return search.Result{Path: path, Stats: stats, Reason: reason}
}

func reconstructThroughTouch(touch *searchnode.BiNode, sx, sy, sz float64) []search.Point {
	var forward []search.Point
	for n := touch; n != nil; n = n.PredFromStart {
		forward = append(forward, toPoint(n, sx, sy, sz))
	}
	// forward runs from touch back to start; reverse it.
	for i, j := 0, len(forward)-1; i < j; i, j = i+1, j-1 {
		forward[i], forward[j] = forward[j], forward[i]
	}

	var backward []search.Point
	for n := touch.PredFromGoal; n != nil; n = n.PredFromGoal {
		backward = append(backward, toPoint(n, sx, sy, sz))
	}

	return append(forward, backward...)
}

func toPoint(n *searchnode.BiNode, sx, sy, sz float64) search.Point {
	return search.Point{
		X: float64(n.Pos[0]) * sx,
		Y: float64(n.Pos[1]) * sy,
		Z: float64(n.Pos[2]) * sz,
	}
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
