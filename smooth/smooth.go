// Package smooth implements per-segment triangular-weight smoothing
// (§4.13) and arclength resampling (§4.14) over a graphmodel.Graph.
package smooth

import (
	"math"

	"github.com/arborist/neurotrace/graphmodel"
)

// Smooth applies a triangular moving average of half-window h =
// windowSize/2 to (x,y,z,radius) along every leaf-to-branch-point segment.
// Endpoints are pinned and branch points never move; coordinates are read
// from a snapshot so later nodes in the same pass don't see earlier
// updates (§4.13).
func Smooth(g *graphmodel.Graph, windowSize int) {
	h := windowSize / 2
	if h <= 0 {
		return
	}

	type coord struct{ x, y, z, r float64 }
	snapshot := make(map[int64]coord, len(g.Vertices))
	for id, v := range g.Vertices {
		snapshot[id] = coord{float64(v.X), float64(v.Y), float64(v.Z), v.Radius}
	}

	for _, leaf := range g.Leaves() {
		segment := g.WalkToRoot(leaf.ID) // leaf .. branch/root, inclusive
		n := len(segment)
		if n < 3 {
			continue
		}
		// Pin the two endpoints (index 0 = leaf, index n-1 = branch/root).
		for i := 1; i < n-1; i++ {
			v := g.Vertices[segment[i]]
			centerWeight := 1.0 + float64(h)
			sx, sy, sz, sr, wsum := centerWeight*snapshot[segment[i]].x, centerWeight*snapshot[segment[i]].y,
				centerWeight*snapshot[segment[i]].z, centerWeight*snapshot[segment[i]].r, centerWeight

			for j := 1; j <= h; j++ {
				weight := 1.0 + float64(h) - float64(j)
				if weight <= 0 {
					continue
				}
				if i-j >= 0 {
					c := snapshot[segment[i-j]]
					sx += weight * c.x
					sy += weight * c.y
					sz += weight * c.z
					sr += weight * c.r
					wsum += weight
				}
				if i+j < n {
					c := snapshot[segment[i+j]]
					sx += weight * c.x
					sy += weight * c.y
					sz += weight * c.z
					sr += weight * c.r
					wsum += weight
				}
			}

			v.X = int(math.Round(sx / wsum))
			v.Y = int(math.Round(sy / wsum))
			v.Z = int(math.Round(sz / wsum))
			v.Radius = sr / wsum
		}
	}
}

// Resample walks each leaf-to-branch-point segment accumulating physical
// arc length, retaining a point once the accumulator reaches step *
// avgSpacing, and rewires dropped points' single parent edge directly to
// their children (§4.14).
func Resample(g *graphmodel.Graph, step, avgSpacing float64, sx, sy, sz float64) {
	threshold := step * avgSpacing
	if threshold <= 0 {
		return
	}

	for _, leaf := range g.Leaves() {
		segment := g.WalkToRoot(leaf.ID) // leaf .. branch/root
		n := len(segment)
		if n < 3 {
			continue
		}

		acc := 0.0
		for i := 1; i < n-1; i++ {
			cur := g.Vertices[segment[i]]
			prev := g.Vertices[segment[i-1]]
			dx := float64(cur.X-prev.X) * sx
			dy := float64(cur.Y-prev.Y) * sy
			dz := float64(cur.Z-prev.Z) * sz
			acc += math.Sqrt(dx*dx + dy*dy + dz*dz)

			if acc < threshold {
				dropVertex(g, cur.ID)
			} else {
				acc = 0
			}
		}
	}
}

// dropVertex removes v from the tree, reconnecting its (single, by
// construction) child directly to its parent. Written defensively: if v
// somehow has more than one child, every child is rewired.
func dropVertex(g *graphmodel.Graph, id int64) {
	v := g.Vertices[id]
	if v == nil || v.Removed || id == g.Root {
		return
	}
	parent := g.Vertices[v.Parent]
	if parent == nil {
		return
	}

	for _, c := range v.Children {
		child := g.Vertices[c]
		if child == nil {
			continue
		}
		child.Parent = parent.ID
		parent.Children = append(parent.Children, c)
	}

	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if c != id {
			kept = append(kept, c)
		}
	}
	parent.Children = kept

	v.Removed = true
}
