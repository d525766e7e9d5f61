package prune

import (
	"math"
	"sort"

	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/volume"
)

// sphereMask maps a voxel position to a coverage flag or count, stamped
// by stampSphere. It is a plain map rather than a dense array so pruning
// never needs the full volume's bounds up front.
type sphereMask map[[3]int]int

// sphereVoxels enumerates the integer lattice points within radius r
// (inclusive) of center, clipped to vol's bounds.
func sphereVoxels(vol volume.Volume, center [3]int, r float64) [][3]int {
	ri := int(math.Ceil(r))
	var out [][3]int
	for dz := -ri; dz <= ri; dz++ {
		for dy := -ri; dy <= ri; dy++ {
			for dx := -ri; dx <= ri; dx++ {
				if float64(dx*dx+dy*dy+dz*dz) > r*r {
					continue
				}
				p := [3]int{center[0] + dx, center[1] + dy, center[2] + dz}
				if volume.InBounds(vol, p[0], p[1], p[2]) {
					out = append(out, p)
				}
			}
		}
	}

	return out
}

func stampSphere(mask sphereMask, vol volume.Volume, v *graphmodel.Vertex, r float64) {
	for _, p := range sphereVoxels(vol, [3]int{v.X, v.Y, v.Z}, r) {
		mask[p]++
	}
}

func unstampSphereAboveOne(mask sphereMask, vol volume.Volume, v *graphmodel.Vertex, r float64) {
	for _, p := range sphereVoxels(vol, [3]int{v.X, v.Y, v.Z}, r) {
		if mask[p] > 1 {
			mask[p]--
		}
	}
}

// overlapFraction returns the fraction of v's sphere voxels already present
// (count ≥ 1) in mask.
func overlapFraction(mask sphereMask, vol volume.Volume, v *graphmodel.Vertex, r float64) float64 {
	voxels := sphereVoxels(vol, [3]int{v.X, v.Y, v.Z}, r)
	if len(voxels) == 0 {
		return 0
	}
	covered := 0
	for _, p := range voxels {
		if mask[p] > 0 {
			covered++
		}
	}

	return float64(covered) / float64(len(voxels))
}

// PhaseC implements the coverage-based hierarchical prune: leaves are
// processed by decreasing intensity-normalized distance from root, each
// accepted or rejected branch stamping (or not) a shared coverage mask
// (§4.11 Phase C).
func PhaseC(g *graphmodel.Graph, vol volume.Volume, intensityOf IntensityFunc, maxI float64, cfg Config) {
	if maxI <= 0 {
		maxI = 1
	}

	dist := bfsIntensityDistance(g, intensityOf, maxI)
	radiusOf := func(v *graphmodel.Vertex) float64 { return math.Max(v.Radius, 1) }

	mask := make(sphereMask)
	root := g.Vertices[g.Root]
	rootR := math.Max(cfg.MinRootSphereRadius, radiusOf(root))
	stampSphere(mask, vol, root, rootR)

	claimed := map[int64]bool{g.Root: true}
	removeMark := make(map[int64]bool)

	for {
		progress := false
		leaves := g.Leaves()
		sort.SliceStable(leaves, func(i, j int) bool { return dist[leaves[i].ID] > dist[leaves[j].ID] })

		var deferred []*graphmodel.Vertex
		for _, leaf := range leaves {
			if leaf.ID == g.Root || claimed[leaf.ID] || removeMark[leaf.ID] {
				continue
			}

			var pathNodes []int64
			cur := leaf.ID
			reachedClaimed := false
			for {
				if claimed[cur] {
					reachedClaimed = true

					break
				}
				pathNodes = append(pathNodes, cur)
				v := g.Vertices[cur]
				if cur == g.Root {
					reachedClaimed = true

					break
				}
				cur = v.Parent
			}
			if !reachedClaimed {
				deferred = append(deferred, leaf)

				continue
			}

			pathLength := 0.0
			for _, id := range pathNodes {
				pathLength += intensityOf(g.Vertices[id]) / maxI
			}
			if pathLength < cfg.LThresh {
				for _, id := range pathNodes {
					removeMark[id] = true
				}
				progress = true

				continue
			}

			sumSignal, sumRedundant := 0.0, 0.0
			for _, id := range pathNodes {
				v := g.Vertices[id]
				centerCovered := mask[[3]int{v.X, v.Y, v.Z}] > 0
				frac := overlapFraction(mask, vol, v, radiusOf(v))
				if centerCovered || frac > cfg.SphereOverlapThreshold {
					sumRedundant += intensityOf(v)
				} else {
					sumSignal += intensityOf(v)
				}
			}

			keep := sumRedundant == 0 || (sumSignal/sumRedundant >= cfg.SrRatio && sumSignal >= 256)
			if keep {
				for _, id := range pathNodes {
					claimed[id] = true
					stampSphere(mask, vol, g.Vertices[id], radiusOf(g.Vertices[id]))
				}
			} else {
				for _, id := range pathNodes {
					removeMark[id] = true
				}
			}
			progress = true
		}

		if !progress && len(deferred) == 0 {
			break
		}
		if !progress {
			break // every remaining leaf is permanently deferred (disconnected path)
		}
	}

	for id := range removeMark {
		g.RemoveSubtree(id)
	}
}

func bfsIntensityDistance(g *graphmodel.Graph, intensityOf IntensityFunc, maxI float64) map[int64]float64 {
	dist := map[int64]float64{g.Root: 0}
	queue := []int64{g.Root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		v := g.Vertices[id]
		for _, c := range v.Children {
			child := g.Vertices[c]
			if child == nil {
				continue
			}
			if _, ok := dist[c]; !ok {
				dist[c] = dist[id] + intensityOf(child)/maxI
				queue = append(queue, c)
			}
		}
	}

	return dist
}

// PhaseD performs leaf pruning followed by joint-leaf pruning (§4.11 Phase
// D), both iterated to a fixed point.
func PhaseD(g *graphmodel.Graph, vol volume.Volume, intensityOf IntensityFunc, cfg Config) {
	radiusOf := func(v *graphmodel.Vertex) float64 { return math.Max(v.Radius, 1) }

	for {
		removed := false
		for _, leaf := range g.Leaves() {
			if leaf.ID == g.Root {
				continue
			}
			parent := g.Vertices[leaf.Parent]
			if parent == nil {
				continue
			}
			overlap := intensityWeightedOverlap(vol, leaf, radiusOf(leaf), parent, radiusOf(parent))
			if overlap >= cfg.LeafPruneOverlap {
				leaf.Removed = true
				removed = true
			}
		}
		if !removed {
			break
		}
	}

	countMask := make(sphereMask)
	for _, v := range g.Vertices {
		if !v.Removed {
			stampSphere(countMask, vol, v, radiusOf(v))
		}
	}

	for {
		removed := false
		for _, leaf := range g.Leaves() {
			if leaf.ID == g.Root {
				continue
			}
			frac := multiCoverFraction(countMask, vol, leaf, radiusOf(leaf))
			if frac >= 0.9 {
				leaf.Removed = true
				unstampSphereAboveOne(countMask, vol, leaf, radiusOf(leaf))
				removed = true
			}
		}
		if !removed {
			break
		}
	}
}

func intensityWeightedOverlap(vol volume.Volume, a *graphmodel.Vertex, ra float64, b *graphmodel.Vertex, rb float64) float64 {
	voxels := sphereVoxels(vol, [3]int{a.X, a.Y, a.Z}, ra)
	if len(voxels) == 0 {
		return 0
	}
	bSet := make(map[[3]int]bool, len(voxels))
	for _, p := range sphereVoxels(vol, [3]int{b.X, b.Y, b.Z}, rb) {
		bSet[p] = true
	}
	var weight, total float64
	for _, p := range voxels {
		i := vol.Get(p[0], p[1], p[2])
		total += i
		if bSet[p] {
			weight += i
		}
	}
	if total == 0 {
		return 0
	}

	return weight / total
}

func multiCoverFraction(mask sphereMask, vol volume.Volume, v *graphmodel.Vertex, r float64) float64 {
	voxels := sphereVoxels(vol, [3]int{v.X, v.Y, v.Z}, r)
	if len(voxels) == 0 {
		return 0
	}
	var weight, total float64
	for _, p := range voxels {
		i := vol.Get(p[0], p[1], p[2])
		total += i
		if mask[p] > 1 {
			weight += i
		}
	}
	if total == 0 {
		return 0
	}

	return weight / total
}
