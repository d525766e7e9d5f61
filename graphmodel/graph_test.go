package graphmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/graphmodel"
)

// buildY constructs the graph of the spec's Y-shaped scenario: a root at
// id 0 with two branches of length 2 each (leaves 2 and 4).
func buildY(t *testing.T) *graphmodel.Graph {
	t.Helper()
	g := graphmodel.New()
	g.Root = 0
	add := func(id, x int) *graphmodel.Vertex {
		v := &graphmodel.Vertex{ID: int64(id), X: x, Y: 0, Z: 0}
		g.Vertices[int64(id)] = v

		return v
	}
	root := add(0, 0)
	root.Parent = 0

	left1 := add(1, -1)
	left1.Parent = 0
	root.Children = append(root.Children, 1)
	left2 := add(2, -2)
	left2.Parent = 1
	left1.Children = append(left1.Children, 2)

	right1 := add(3, 1)
	right1.Parent = 0
	root.Children = append(root.Children, 3)
	right2 := add(4, 2)
	right2.Parent = 3
	right1.Children = append(right1.Children, 4)

	return g
}

func TestLeavesAndBranch(t *testing.T) {
	g := buildY(t)

	leaves := g.Leaves()
	ids := map[int64]bool{}
	for _, l := range leaves {
		ids[l.ID] = true
	}
	assert.Equal(t, map[int64]bool{2: true, 4: true}, ids)
	assert.True(t, g.IsBranch(0))
	assert.False(t, g.IsBranch(1))
}

func TestWalkToRoot_StopsAtBranch(t *testing.T) {
	g := buildY(t)

	path := g.WalkToRoot(2)
	assert.Equal(t, []int64{2, 1, 0}, path)
}

func TestRemoveSubtreeAndPrune(t *testing.T) {
	g := buildY(t)

	g.RemoveSubtree(3)
	g.Prune()

	_, ok := g.Vertices[3]
	assert.False(t, ok)
	_, ok = g.Vertices[4]
	assert.False(t, ok)
	require.Contains(t, g.Vertices, int64(0))
	assert.NotContains(t, g.Vertices[0].Children, int64(3))
}

func TestOwnSegmentsAndOrderedTree(t *testing.T) {
	g := buildY(t)
	intensityOf := func(v *graphmodel.Vertex) float64 { return 100 }

	segments := graphmodel.OwnSegments(g, intensityOf, 100)
	require.Len(t, segments, 2)

	tree := graphmodel.SegmentOrderedTree(g, segments)
	assert.Equal(t, int64(0), tree.Root)
	require.Len(t, tree.Paths, 2)
	assert.Equal(t, -1, tree.Paths[0].ParentIdx)
}

func TestBFSFromRoot_ReachesEverything(t *testing.T) {
	g := buildY(t)
	reachable := g.BFSFromRoot()
	assert.Len(t, reachable, 5)
}
