package main

import (
	"fmt"

	"github.com/arborist/neurotrace/bisearch"
	"github.com/arborist/neurotrace/costfn"
	"github.com/arborist/neurotrace/metrics"
	"github.com/arborist/neurotrace/search"
)

// SearchCommand runs an interactive point-to-point path search, either
// unidirectional (default) or bidirectional.
type SearchCommand struct {
	Volume string `arg:"" help:"Path to a raw volume file."`
	StartX int    `help:"Start voxel X."`
	StartY int    `help:"Start voxel Y."`
	StartZ int    `help:"Start voxel Z."`
	GoalX  int    `help:"Goal voxel X."`
	GoalY  int    `help:"Goal voxel Y."`
	GoalZ  int    `help:"Goal voxel Z."`
	Bidirectional bool `help:"Use the bidirectional A* engine."`
	Metrics       bool `help:"Record Prometheus metrics for this run."`
}

func (c *SearchCommand) Run() error {
	vol, err := loadRawVolume(c.Volume)
	if err != nil {
		return err
	}

	var sink metrics.Sink = metrics.Noop{}
	if c.Metrics {
		sink = metrics.NewRegistry()
	}

	cost := costfn.Reciprocal{Min: 0, Max: 255}
	start := [3]int{c.StartX, c.StartY, c.StartZ}
	goal := [3]int{c.GoalX, c.GoalY, c.GoalZ}

	var res search.Result
	if c.Bidirectional {
		eng := bisearch.New(cost)
		res = eng.Run(vol, start, goal)
	} else {
		eng := search.New(cost, search.WithHeuristic(costfn.EuclideanHeuristic{Scale: 1}), search.WithMetrics(sink))
		res = eng.Run(vol, start, goal, func(pos [3]int) bool { return pos == goal })
	}

	fmt.Printf("reason=%s points=%d open=%d closed=%d\n", res.Reason, len(res.Path), res.Stats.OpenCount, res.Stats.ClosedCount)
	for _, p := range res.Path {
		fmt.Printf("  (%.1f, %.1f, %.1f) r=%.2f\n", p.X, p.Y, p.Z, p.Radius)
	}

	return nil
}
