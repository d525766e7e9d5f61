package graphmodel

import "sort"

// Segment is a contiguous run of vertices owned by the same leaf, produced
// by OwnSegments (§4.15). SegmentRoot is the vertex nearest the tree root
// within the run; Nodes runs from the leaf down to SegmentRoot inclusive.
type Segment struct {
	Owner       int64 // the leaf vertex ID that owns this segment
	Nodes       []int64
	SegmentRoot int64
	ParentSeg   int // index into the slice returned by OwnSegments, -1 for the root segment
	Length      float64
}

// OwnSegments computes the owning-leaf assignment of §3's Segment
// ownership structure and cuts the tree into segments along ownership
// boundaries (§4.15). maxI is the maximum voxel intensity in the volume,
// used to intensity-normalize path length; intensityOf returns the image
// intensity at a vertex's voxel.
func OwnSegments(g *Graph, intensityOf func(v *Vertex) float64, maxI float64) []*Segment {
	if maxI <= 0 {
		maxI = 1
	}

	owner := make(map[int64]int64)
	distToLeaf := make(map[int64]float64)

	leaves := g.Leaves()
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].ID < leaves[j].ID })

	for _, leaf := range leaves {
		dist := 0.0
		cur := leaf.ID
		for {
			v := g.Vertices[cur]
			if v == nil {
				break
			}
			if cur != leaf.ID {
				dist += intensityOf(v) / maxI
			}
			if prevOwnerDist, ok := distToLeaf[cur]; !ok || dist >= prevOwnerDist {
				owner[cur] = leaf.ID
				distToLeaf[cur] = dist
			}
			if cur == g.Root {
				break
			}
			cur = v.Parent
		}
	}

	return cutSegments(g, owner, intensityOf, maxI)
}

func cutSegments(g *Graph, owner map[int64]int64, intensityOf func(v *Vertex) float64, maxI float64) []*Segment {
	var segments []*Segment
	segRootOf := make(map[int64]int) // vertex ID -> index of the segment it terminates (its SegmentRoot)

	leaves := g.Leaves()
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].ID < leaves[j].ID })

	for _, leaf := range leaves {
		var nodes []int64
		cur := leaf.ID
		leafOwner := owner[leaf.ID]
		length := 0.0
		for {
			nodes = append(nodes, cur)
			v := g.Vertices[cur]
			if cur != leaf.ID {
				length += intensityOf(v) / maxI
			}
			if cur == g.Root {
				break
			}
			parent := v.Parent
			if owner[parent] != leafOwner {
				break
			}
			cur = parent
		}
		seg := &Segment{Owner: leafOwner, Nodes: nodes, SegmentRoot: cur, ParentSeg: -1, Length: length}
		segments = append(segments, seg)
		segRootOf[cur] = len(segments) - 1
	}

	for i, seg := range segments {
		if seg.SegmentRoot == g.Root {
			continue
		}
		above := g.Vertices[seg.SegmentRoot].Parent
		aboveOwner := owner[above]
		for j, other := range segments {
			if j == i {
				continue
			}
			if other.Owner == aboveOwner {
				for _, n := range other.Nodes {
					if n == above {
						segments[i].ParentSeg = j

						break
					}
				}
			}
			if segments[i].ParentSeg != -1 {
				break
			}
		}
	}

	return segments
}

// Path is one emitted, ordered path of a segment-ordered tree: Points runs
// from the segment's attachment vertex (or the root) to its owning leaf.
type Path struct {
	Points    []int64
	ParentIdx int // index into Tree.Paths, -1 for the root path
}

// Tree is the final segment-ordered materialization of §4.15: paths sorted
// by descending intensity-normalized length, each emitted only after its
// parent.
type Tree struct {
	Root  int64
	Paths []*Path
}

// SegmentOrderedTree sorts segments by descending Length and emits them as
// Paths, guaranteeing a path's parent is emitted earlier in the slice.
func SegmentOrderedTree(g *Graph, segments []*Segment) *Tree {
	order := make([]int, len(segments))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return segments[order[a]].Length > segments[order[b]].Length
	})

	oldToNew := make(map[int]int, len(segments))
	paths := make([]*Path, 0, len(segments))

	emitted := make(map[int]bool)
	remaining := append([]int{}, order...)
	for len(remaining) > 0 {
		progressed := false
		var next []int
		for _, idx := range remaining {
			seg := segments[idx]
			if seg.ParentSeg != -1 && !emitted[seg.ParentSeg] {
				next = append(next, idx)

				continue
			}
			points := make([]int64, len(seg.Nodes))
			for i, n := range seg.Nodes {
				points[len(seg.Nodes)-1-i] = n
			}
			parentIdx := -1
			if seg.ParentSeg != -1 {
				parentIdx = oldToNew[seg.ParentSeg]
			}
			paths = append(paths, &Path{Points: points, ParentIdx: parentIdx})
			oldToNew[idx] = len(paths) - 1
			emitted[idx] = true
			progressed = true
		}
		if !progressed {
			break // cyclic parent reference should never occur; defensive exit
		}
		remaining = next
	}

	return &Tree{Root: g.Root, Paths: paths}
}
