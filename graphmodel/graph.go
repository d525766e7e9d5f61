// Package graphmodel holds the directed rooted weighted graph that every
// later stage (radius, pruning, smoothing, segment ordering) operates on
// (§4.9, §3). A Graph is built once from a storage.Backend's ALIVE voxels
// and their parent pointers, then mutated in place by later phases.
package graphmodel

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/arborist/neurotrace/storage"
	"github.com/arborist/neurotrace/volume"
)

// ErrNoRoot is returned when BuildFromBackend cannot locate the seed vertex.
var ErrNoRoot = errors.New("graphmodel: root voxel is not ALIVE in backend")

// Vertex is one node of the reconstruction tree.
type Vertex struct {
	ID       int64 // packed voxel index, doubles as a stable vertex handle
	X, Y, Z  int
	Radius   float64
	Parent   int64 // ID of the parent vertex; Root's Parent == Root.ID
	Children []int64
	Removed  bool
}

// Graph is a rooted out-tree: every non-root vertex has exactly one parent,
// reachable by walking Parent pointers back to Root.
type Graph struct {
	Vertices map[int64]*Vertex
	Root     int64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{Vertices: make(map[int64]*Vertex)}
}

// BuildFromBackend materializes one vertex per ALIVE voxel recorded in
// backend, wiring parent/child edges from the fast-marching parent field.
// Edge weight is not stored explicitly; it is recomputed on demand from
// vertex coordinates and vol's spacing (EdgeWeight).
func BuildFromBackend(vol volume.Volume, backend storage.Backend, seed [3]int) (*Graph, error) {
	w, h, _ := volume.Dims(vol)
	xMin, _, yMin, _, zMin, _ := vol.Bounds()
	idxOf := func(x, y, z int) int64 {
		return storage.Index(x-xMin, y-yMin, z-zMin, w, h)
	}
	posOf := func(idx int64) (int, int, int) {
		local := idx
		x := int(local % int64(w))
		local /= int64(w)
		y := int(local % int64(h))
		z := int(local / int64(h))

		return x + xMin, y + yMin, z + zMin
	}

	g := New()
	alive, _ := backend.AliveIndices()
	for _, idx := range alive {
		x, y, z := posOf(idx)
		g.Vertices[idx] = &Vertex{ID: idx, X: x, Y: y, Z: z}
	}

	seedIdx := idxOf(seed[0], seed[1], seed[2])
	if _, ok := g.Vertices[seedIdx]; !ok {
		return nil, ErrNoRoot
	}
	g.Root = seedIdx
	g.Vertices[seedIdx].Parent = seedIdx

	for _, idx := range alive {
		if idx == seedIdx {
			continue
		}
		p := backend.Parent(idx)
		if p < 0 {
			continue
		}
		v := g.Vertices[idx]
		v.Parent = p
		if parent, ok := g.Vertices[p]; ok {
			parent.Children = append(parent.Children, idx)
		}
	}

	return g, nil
}

// Physical returns v's voxel coordinates in physical units as a gonum
// spatial vector.
func (v *Vertex) Physical(sx, sy, sz float64) r3.Vec {
	return r3.Vec{X: float64(v.X) * sx, Y: float64(v.Y) * sy, Z: float64(v.Z) * sz}
}

// EdgeWeight returns the Euclidean length, in physical units, of the edge
// from v's parent to v.
func (g *Graph) EdgeWeight(v *Vertex, sx, sy, sz float64) float64 {
	if v.ID == g.Root {
		return 0
	}
	p := g.Vertices[v.Parent]
	if p == nil {
		return 0
	}

	return r3.Norm(r3.Sub(v.Physical(sx, sy, sz), p.Physical(sx, sy, sz)))
}

// Leaves returns every non-removed vertex with no non-removed children.
func (g *Graph) Leaves() []*Vertex {
	var out []*Vertex
	for _, v := range g.Vertices {
		if v.Removed {
			continue
		}
		if len(g.liveChildren(v.ID)) == 0 {
			out = append(out, v)
		}
	}

	return out
}

func (g *Graph) liveChildren(id int64) []int64 {
	v := g.Vertices[id]
	if v == nil {
		return nil
	}
	var out []int64
	for _, c := range v.Children {
		if child, ok := g.Vertices[c]; ok && !child.Removed {
			out = append(out, c)
		}
	}

	return out
}

// IsBranch reports whether v has two or more live children.
func (g *Graph) IsBranch(id int64) bool {
	return len(g.liveChildren(id)) >= 2
}

// WalkToRoot returns the path from id up to and including the nearest
// branch point or the root, whichever comes first. id itself is included.
func (g *Graph) WalkToRoot(id int64) []int64 {
	path := []int64{id}
	cur := id
	for cur != g.Root {
		v := g.Vertices[cur]
		if v == nil {
			break
		}
		parent := v.Parent
		path = append(path, parent)
		if parent == g.Root || g.IsBranch(parent) {
			break
		}
		cur = parent
	}

	return path
}

// RemoveSubtree marks id and every live descendant as Removed.
func (g *Graph) RemoveSubtree(id int64) {
	v := g.Vertices[id]
	if v == nil || v.Removed {
		return
	}
	v.Removed = true
	for _, c := range v.Children {
		g.RemoveSubtree(c)
	}
}

// Prune drops every Removed vertex from the Vertices map and from its
// former parent's Children slice. Call once a pruning phase has settled.
func (g *Graph) Prune() {
	for id, v := range g.Vertices {
		if v.Removed {
			delete(g.Vertices, id)
		}
	}
	for _, v := range g.Vertices {
		kept := v.Children[:0]
		for _, c := range v.Children {
			if _, ok := g.Vertices[c]; ok {
				kept = append(kept, c)
			}
		}
		v.Children = kept
	}
}

// BFSFromRoot returns the set of vertex IDs reachable from Root by walking
// edges in either direction (§4.12's undirected skeleton).
func (g *Graph) BFSFromRoot() map[int64]bool {
	visited := map[int64]bool{g.Root: true}
	queue := []int64{g.Root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		v := g.Vertices[id]
		if v == nil {
			continue
		}
		neighbors := append([]int64{}, v.Children...)
		if v.ID != g.Root {
			neighbors = append(neighbors, v.Parent)
		}
		for _, n := range neighbors {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	return visited
}
