// Package reconstruct wires the full automatic-reconstruction pipeline of
// §2's data-flow diagram: Volume → GWDT → Seeded Fast-Marching Tree →
// Directed Rooted Graph → Radius → Pruning → Connectivity sweep →
// Smoothing → Resampling → Segment-ordered Tree.
package reconstruct

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arborist/neurotrace/config"
	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/fmtree"
	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/gwdt"
	"github.com/arborist/neurotrace/metrics"
	"github.com/arborist/neurotrace/prune"
	"github.com/arborist/neurotrace/radius"
	"github.com/arborist/neurotrace/smooth"
	"github.com/arborist/neurotrace/soma"
	"github.com/arborist/neurotrace/storage"
	"github.com/arborist/neurotrace/tracelog"
	"github.com/arborist/neurotrace/volume"
)

// ErrInvalidSeed is returned when the requested seed voxel is out of the
// volume's bounds (§7's invalid-input taxonomy).
var ErrInvalidSeed = errors.New("reconstruct: seed voxel is out of bounds")

// Request bundles one automatic trace's inputs (§6).
type Request struct {
	Volume volume.Volume
	Seed   [3]int
	Config config.Config
	ROI    *soma.ROI
	Strategy soma.Strategy
	Metrics  metrics.Sink
	Logger   *tracelog.Logger
}

// Result is one automatic trace's output: a list of Trees (more than one
// only when Strategy is soma.Edge).
type Result struct {
	Trees   []*graphmodel.Tree
	MaxGWDT float64
}

// Trace runs the full pipeline for one seed and returns the resulting
// segment-ordered tree(s).
func Trace(req Request) (Result, error) {
	start := time.Now()
	sink := req.Metrics
	if sink == nil {
		sink = metrics.Noop{}
	}
	log := req.Logger
	if log == nil {
		log = tracelog.Discard()
	}

	if !volume.InBounds(req.Volume, req.Seed[0], req.Seed[1], req.Seed[2]) {
		return Result{}, ErrInvalidSeed
	}

	threshold := req.Config.Threshold
	if threshold == 0 {
		threshold = meanIntensity(req.Volume)
	}
	maxI := maxIntensity(req.Volume)

	backend, err := newBackend(req.Config.StorageBackend)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = backend.Dispose() }()

	connType := conn.Type(req.Config.Connectivity)
	if connType < conn.Face || connType > conn.FaceEdgeCorner {
		connType = conn.FaceEdgeCorner
	}

	maxGWDT, err := gwdt.Compute(req.Volume, backend, gwdt.Options{
		Threshold: threshold,
		Conn:      connType,
		Logger:    log,
	})
	if err != nil {
		return Result{}, fmt.Errorf("reconstruct: gwdt: %w", err)
	}

	if err := fmtree.Build(req.Volume, backend, req.Seed, fmtree.Options{
		Threshold: threshold,
		Conn:      connType,
		AllowGap:  req.Config.AllowGap,
		MaxGWDT:   maxGWDT,
		Logger:    log,
	}); err != nil {
		return Result{}, fmt.Errorf("reconstruct: fast-marching tree: %w", err)
	}

	g, err := graphmodel.BuildFromBackend(req.Volume, backend, req.Seed)
	if err != nil {
		return Result{}, fmt.Errorf("reconstruct: graph construction: %w", err)
	}

	radOpts := radius.Options{Threshold: threshold}
	for _, v := range g.Vertices {
		v.Radius = radius.EstimatePhysical(req.Volume, v.X, v.Y, v.Z, radOpts)
	}

	intensityOf := func(v *graphmodel.Vertex) float64 { return req.Volume.Get(v.X, v.Y, v.Z) }

	pruneCfg := prune.DefaultConfig(threshold)
	pruneCfg.LThresh = req.Config.Pruning.LThresh
	pruneCfg.SrRatio = req.Config.Pruning.SrRatio
	pruneCfg.SphereOverlapThreshold = req.Config.Pruning.SphereOverlapThreshold
	pruneCfg.LeafPruneOverlap = req.Config.Pruning.LeafPruneOverlap
	pruneCfg.EnableLeafJointPruning = req.Config.Pruning.EnableLeafJointPruning

	prune.Run(g, req.Volume, intensityOf, maxI, pruneCfg)

	sx, sy, sz := req.Volume.Spacing()
	smooth.Smooth(g, req.Config.SmoothingWindow)
	avgSpacing := (sx + sy + sz) / 3
	smooth.Resample(g, req.Config.ResampleStep, avgSpacing, sx, sy, sz)

	graphs := []*graphmodel.Graph{g}
	if req.ROI != nil && req.Strategy != soma.Unset {
		graphs = soma.Apply(g, *req.ROI, req.Strategy, sx, sy, sz)
	}

	var trees []*graphmodel.Tree
	for _, gr := range graphs {
		segments := graphmodel.OwnSegments(gr, intensityOf, maxI)
		trees = append(trees, graphmodel.SegmentOrderedTree(gr, segments))
	}

	sink.TraceDuration(time.Since(start))
	log.Info("automatic trace complete", "seed", req.Seed, "trees", len(trees))

	return Result{Trees: trees, MaxGWDT: maxGWDT}, nil
}

// TraceMany runs Trace for every request concurrently, short-circuiting on
// the first error (the same contract as errgroup.Group.Wait).
func TraceMany(reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := Trace(req)
			if err != nil {
				return err
			}
			results[i] = res

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func newBackend(kind string) (storage.Backend, error) {
	switch kind {
	case "", "dense":
		return storage.NewDenseBackend(), nil
	case "sparse":
		return storage.NewSparseBackend(), nil
	case "disk":
		return storage.NewDiskBackend("")
	default:
		return nil, fmt.Errorf("reconstruct: unknown storage backend %q", kind)
	}
}

func meanIntensity(vol volume.Volume) float64 {
	xMin, xMax, yMin, yMax, zMin, zMax := vol.Bounds()
	sum, n := 0.0, 0
	for z := zMin; z <= zMax; z++ {
		for y := yMin; y <= yMax; y++ {
			for x := xMin; x <= xMax; x++ {
				sum += vol.Get(x, y, z)
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

func maxIntensity(vol volume.Volume) float64 {
	xMin, xMax, yMin, yMax, zMin, zMax := vol.Bounds()
	max := 0.0
	for z := zMin; z <= zMax; z++ {
		for y := yMin; y <= yMax; y++ {
			for x := xMin; x <= xMax; x++ {
				if v := vol.Get(x, y, z); v > max {
					max = v
				}
			}
		}
	}

	return max
}
