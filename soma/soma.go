// Package soma implements the soma-ROI strategies of §4.16: once an
// automatic trace is complete, the region around the seed can be collapsed
// or split according to a 2-D ROI and a chosen Strategy.
package soma

import (
	"math"

	"github.com/arborist/neurotrace/graphmodel"
)

// Strategy selects how the soma region is handled post-trace.
type Strategy int

const (
	Unset Strategy = iota
	Edge
	Centroid
	CentroidWeighted
	Contained
)

func (s Strategy) String() string {
	switch s {
	case Unset:
		return "UNSET"
	case Edge:
		return "EDGE"
	case Centroid:
		return "CENTROID"
	case CentroidWeighted:
		return "CENTROID_WEIGHTED"
	case Contained:
		return "CONTAINED"
	default:
		return "UNKNOWN"
	}
}

// ROI is a 2-D axis-aligned area, optionally restricted to one z-plane.
type ROI struct {
	XMin, XMax, YMin, YMax int
	HasZ                    bool
	Z                       int
}

func (r ROI) contains(x, y, z int) bool {
	if r.HasZ && z != r.Z {
		return false
	}

	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Apply runs the selected strategy against g in place and returns the
// resulting set of trees (Edge may split one graph into several
// components; every other strategy returns a single graph).
func Apply(g *graphmodel.Graph, roi ROI, strat Strategy, sx, sy, sz float64) []*graphmodel.Graph {
	switch strat {
	case Unset:
		return []*graphmodel.Graph{g}
	case Edge:
		return applyEdge(g, roi)
	case Centroid:
		return []*graphmodel.Graph{applyCentroid(g, roi, false, sx, sy, sz)}
	case CentroidWeighted:
		return []*graphmodel.Graph{applyCentroid(g, roi, true, sx, sy, sz)}
	case Contained:
		return []*graphmodel.Graph{applyContained(g, roi)}
	default:
		return []*graphmodel.Graph{g}
	}
}

// applyEdge marks every vertex inside roi as soma, finds edges crossing the
// boundary, deletes all soma vertices, and materializes one graph per
// connected component rooted at its exit point.
func applyEdge(g *graphmodel.Graph, roi ROI) []*graphmodel.Graph {
	soma := make(map[int64]bool)
	for id, v := range g.Vertices {
		if roi.contains(v.X, v.Y, v.Z) {
			soma[id] = true
		}
	}

	var exitPoints []int64
	for id, v := range g.Vertices {
		if soma[id] {
			continue
		}
		if v.ID != g.Root && soma[v.Parent] {
			exitPoints = append(exitPoints, id)
		}
		for _, c := range v.Children {
			if soma[c] {
				exitPoints = append(exitPoints, id)
			}
		}
	}

	for id := range soma {
		delete(g.Vertices, id)
	}
	for _, v := range g.Vertices {
		kept := v.Children[:0]
		for _, c := range v.Children {
			if !soma[c] {
				kept = append(kept, c)
			}
		}
		v.Children = kept
	}

	var out []*graphmodel.Graph
	seen := make(map[int64]bool)
	for _, exit := range exitPoints {
		if seen[exit] {
			continue
		}
		component := graphmodel.New()
		component.Root = exit
		queue := []int64{exit}
		seen[exit] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			v, ok := g.Vertices[id]
			if !ok {
				continue
			}
			component.Vertices[id] = v
			for _, c := range v.Children {
				if !seen[c] {
					seen[c] = true
					queue = append(queue, c)
				}
			}
		}
		out = append(out, component)
	}

	return out
}

// applyCentroid replaces every soma vertex with a single new root, either
// at the ROI's geometric centroid (weighted=false) or the mean of the soma
// vertices' coordinates (weighted=true), reconnected to each neurite's
// entry point.
func applyCentroid(g *graphmodel.Graph, roi ROI, weighted bool, sx, sy, sz float64) *graphmodel.Graph {
	soma := make(map[int64]bool)
	var sumX, sumY, sumZ float64
	var count int
	for id, v := range g.Vertices {
		if roi.contains(v.X, v.Y, v.Z) {
			soma[id] = true
			sumX += float64(v.X)
			sumY += float64(v.Y)
			sumZ += float64(v.Z)
			count++
		}
	}

	var cx, cy, cz int
	if weighted && count > 0 {
		cx, cy, cz = int(math.Round(sumX/float64(count))), int(math.Round(sumY/float64(count))), int(math.Round(sumZ/float64(count)))
	} else {
		cx, cy, cz = (roi.XMin+roi.XMax)/2, (roi.YMin+roi.YMax)/2, roi.Z
	}

	var entries []int64
	for id, v := range g.Vertices {
		if soma[id] {
			continue
		}
		if v.ID != g.Root && soma[v.Parent] {
			entries = append(entries, id)
		}
	}

	newRootID := int64(-1)
	for id := range soma {
		newRootID = id // reuse any soma vertex's ID slot for the new merged root

		break
	}
	if newRootID == -1 {
		return g
	}

	for id := range soma {
		if id != newRootID {
			delete(g.Vertices, id)
		}
	}

	root := &graphmodel.Vertex{ID: newRootID, X: cx, Y: cy, Z: cz}
	root.Parent = newRootID
	g.Vertices[newRootID] = root
	g.Root = newRootID

	for _, entry := range entries {
		v := g.Vertices[entry]
		if v == nil {
			continue
		}
		v.Parent = newRootID
		root.Children = append(root.Children, entry)
	}

	for _, v := range g.Vertices {
		if v.ID == newRootID {
			continue
		}
		kept := v.Children[:0]
		for _, c := range v.Children {
			if _, ok := g.Vertices[c]; ok {
				kept = append(kept, c)
			}
		}
		v.Children = kept
	}

	return g
}

// applyContained drops every vertex inside roi along with its descendants,
// leaving the remainder of the tree (and its original root) untouched.
func applyContained(g *graphmodel.Graph, roi ROI) *graphmodel.Graph {
	for id, v := range g.Vertices {
		if id == g.Root {
			continue
		}
		if roi.contains(v.X, v.Y, v.Z) {
			g.RemoveSubtree(id)
		}
	}
	g.Prune()

	return g
}
