// Package prune implements the five-phase hierarchical pruning pipeline of
// §4.11 plus the connectivity sweep of §4.12, operating in place on a
// graphmodel.Graph.
package prune

import (
	"sort"

	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/volume"
)

// Config holds the tunable thresholds of §4.11, with the spec's defaults.
type Config struct {
	Theta                  float64
	LThresh                float64
	SrRatio                float64
	SphereOverlapThreshold float64
	LeafPruneOverlap       float64
	MinRootSphereRadius    float64
	EnableLeafJointPruning bool
}

// DefaultConfig returns §4.11's literal default parameters.
func DefaultConfig(theta float64) Config {
	return Config{
		Theta:                  theta,
		LThresh:                5.0,
		SrRatio:                1.0 / 9.0,
		SphereOverlapThreshold: 0.10,
		LeafPruneOverlap:       0.9,
		MinRootSphereRadius:    5,
		EnableLeafJointPruning: true,
	}
}

// IntensityFunc returns the image intensity at a vertex's voxel.
type IntensityFunc func(v *graphmodel.Vertex) float64

// Run executes phases A through E in order, then Prune()s the graph and
// runs the connectivity sweep (§4.12).
func Run(g *graphmodel.Graph, vol volume.Volume, intensityOf IntensityFunc, maxI float64, cfg Config) {
	PhaseA(g, intensityOf, cfg.Theta)
	PhaseB(g, intensityOf, cfg.Theta)
	PhaseC(g, vol, intensityOf, maxI, cfg)
	if cfg.EnableLeafJointPruning {
		PhaseD(g, vol, intensityOf, cfg)
	}
	PhaseE(g, intensityOf, maxI, cfg)
	g.Prune()
	ConnectivitySweep(g)
	g.Prune()
}

// PhaseA iteratively removes any leaf whose voxel intensity is ≤ theta,
// until a full pass removes nothing.
func PhaseA(g *graphmodel.Graph, intensityOf IntensityFunc, theta float64) {
	for {
		removed := false
		leaves := g.Leaves()
		sortByDescending(leaves, intensityOf)
		for _, leaf := range leaves {
			if leaf.ID == g.Root {
				continue
			}
			if intensityOf(leaf) <= theta {
				leaf.Removed = true
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

// PhaseB repeatedly walks each leaf's terminal segment toward the root (or
// a branch point) and removes it entirely, except the branch point itself,
// if its average intensity is ≤ theta or 20% or more of its voxels are.
func PhaseB(g *graphmodel.Graph, intensityOf IntensityFunc, theta float64) {
	for {
		removed := false
		for _, leaf := range g.Leaves() {
			if leaf.ID == g.Root {
				continue
			}
			segment := g.WalkToRoot(leaf.ID)
			body := segment
			if len(segment) > 1 && (segment[len(segment)-1] == g.Root || g.IsBranch(segment[len(segment)-1])) {
				body = segment[:len(segment)-1]
			}
			if len(body) == 0 {
				continue
			}
			sum, dark := 0.0, 0
			for _, id := range body {
				v := g.Vertices[id]
				i := intensityOf(v)
				sum += i
				if i <= theta {
					dark++
				}
			}
			avg := sum / float64(len(body))
			darkFrac := float64(dark) / float64(len(body))
			if avg <= theta || darkFrac >= 0.20 {
				for _, id := range body {
					g.Vertices[id].Removed = true
				}
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

// PhaseE iteratively removes any terminal segment (leaf to nearest branch
// point) whose intensity-normalized length is below LThresh, or whose
// average intensity is ≤ theta, or whose dark-fraction exceeds 20%.
func PhaseE(g *graphmodel.Graph, intensityOf IntensityFunc, maxI float64, cfg Config) {
	if maxI <= 0 {
		maxI = 1
	}
	for {
		removed := false
		for _, leaf := range g.Leaves() {
			if leaf.ID == g.Root {
				continue
			}
			segment := g.WalkToRoot(leaf.ID)
			body := segment
			if len(segment) > 1 && (segment[len(segment)-1] == g.Root || g.IsBranch(segment[len(segment)-1])) {
				body = segment[:len(segment)-1]
			}
			if len(body) == 0 {
				continue
			}
			sum, dark, length := 0.0, 0, 0.0
			for _, id := range body {
				v := g.Vertices[id]
				i := intensityOf(v)
				sum += i
				if i <= cfg.Theta {
					dark++
				}
				length += i / maxI
			}
			avg := sum / float64(len(body))
			darkFrac := float64(dark) / float64(len(body))
			if length < cfg.LThresh || avg <= cfg.Theta || darkFrac > 0.20 {
				for _, id := range body {
					g.Vertices[id].Removed = true
				}
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

// ConnectivitySweep removes any vertex unreachable from the root over the
// undirected tree skeleton (§4.12).
func ConnectivitySweep(g *graphmodel.Graph) {
	reachable := g.BFSFromRoot()
	for id, v := range g.Vertices {
		if !reachable[id] {
			v.Removed = true
		}
	}
}

// sortByDescending is a small helper shared by the phase implementations
// that need leaves processed in a fixed deterministic order.
func sortByDescending(leaves []*graphmodel.Vertex, key func(*graphmodel.Vertex) float64) {
	sort.SliceStable(leaves, func(i, j int) bool { return key(leaves[i]) > key(leaves[j]) })
}
