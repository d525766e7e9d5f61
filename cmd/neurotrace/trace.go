package main

import (
	"fmt"
	"os"

	"github.com/arborist/neurotrace/config"
	"github.com/arborist/neurotrace/metrics"
	"github.com/arborist/neurotrace/reconstruct"
	"github.com/arborist/neurotrace/soma"
	"github.com/arborist/neurotrace/tracelog"
)

// TraceCommand runs the full GWDT → fast-marching-tree → pruning →
// smoothing pipeline from a single seed voxel.
type TraceCommand struct {
	Volume  string `arg:"" help:"Path to a raw volume file (see loadRawVolume)."`
	SeedX   int    `help:"Seed voxel X." default:"0"`
	SeedY   int    `help:"Seed voxel Y." default:"0"`
	SeedZ   int    `help:"Seed voxel Z." default:"0"`
	Backend string `help:"Storage backend: dense, sparse, or disk." default:"dense"`
	Config  string `help:"Path to a YAML config file; defaults applied if omitted."`
	Metrics bool   `help:"Record Prometheus metrics for this run."`
}

func (c *TraceCommand) Run() error {
	vol, err := loadRawVolume(c.Volume)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if c.Config != "" {
		cfg, err = config.Load(c.Config)
		if err != nil {
			return err
		}
	}
	cfg.StorageBackend = c.Backend

	var sink metrics.Sink = metrics.Noop{}
	if c.Metrics {
		sink = metrics.NewRegistry()
	}

	res, err := reconstruct.Trace(reconstruct.Request{
		Volume:   vol,
		Seed:     [3]int{c.SeedX, c.SeedY, c.SeedZ},
		Config:   cfg,
		Strategy: soma.Unset,
		Metrics:  sink,
		Logger:   tracelog.New(os.Stderr, "info"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("maxGWDT=%.4f trees=%d\n", res.MaxGWDT, len(res.Trees))
	for i, tree := range res.Trees {
		fmt.Printf("  tree %d: root=%d paths=%d\n", i, tree.Root, len(tree.Paths))
	}

	return nil
}
