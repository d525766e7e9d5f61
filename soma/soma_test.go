package soma_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/soma"
)

func add(g *graphmodel.Graph, id int64, x, y, z int, parent int64) *graphmodel.Vertex {
	v := &graphmodel.Vertex{ID: id, X: x, Y: y, Z: z, Parent: parent}
	g.Vertices[id] = v
	if parent != id {
		g.Vertices[parent].Children = append(g.Vertices[parent].Children, id)
	}

	return v
}

func TestApplyContained_DropsSubtreeRootedInsideROI(t *testing.T) {
	g := graphmodel.New()
	g.Root = 0
	add(g, 0, 0, 0, 0, 0)
	add(g, 1, 5, 0, 0, 0)        // outside ROI, kept
	add(g, 2, 1, 0, 0, 0)        // inside ROI, subtree dropped
	add(g, 3, 10, 10, 0, 2)      // outside ROI but under a dropped ancestor

	roi := soma.ROI{XMin: -2, XMax: 2, YMin: -2, YMax: 2}
	out := soma.Apply(g, roi, soma.Contained, 1, 1, 1)
	require.Len(t, out, 1)
	result := out[0]

	assert.Contains(t, result.Vertices, int64(0))
	assert.Contains(t, result.Vertices, int64(1))
	assert.NotContains(t, result.Vertices, int64(2))
	assert.NotContains(t, result.Vertices, int64(3))
}

func TestApplyCentroid_MergesSomaIntoSingleRoot(t *testing.T) {
	g := graphmodel.New()
	g.Root = 0
	add(g, 0, 0, 0, 0, 0)
	add(g, 1, 1, 0, 0, 0)  // soma vertex, inside ROI
	add(g, 2, 5, 0, 0, 1)  // entry point, outside ROI

	roi := soma.ROI{XMin: -2, XMax: 2, YMin: -2, YMax: 2}
	out := soma.Apply(g, roi, soma.Centroid, 1, 1, 1)
	require.Len(t, out, 1)
	result := out[0]

	assert.Len(t, result.Vertices, 2)
	newRoot := result.Vertices[result.Root]
	require.NotNil(t, newRoot)
	assert.Equal(t, 0, newRoot.X)
	assert.Equal(t, 0, newRoot.Y)

	entry := result.Vertices[2]
	require.NotNil(t, entry)
	assert.Equal(t, result.Root, entry.Parent)
	assert.Contains(t, newRoot.Children, int64(2))
}

func TestApplyEdge_SplitsIntoOneGraphPerExitPoint(t *testing.T) {
	g := graphmodel.New()
	g.Root = 0
	add(g, 0, 0, 0, 0, 0)
	add(g, 1, 1, 0, 0, 0)  // soma
	add(g, 2, 5, 0, 0, 1)  // exit point, left branch
	add(g, 3, -1, 0, 0, 0) // soma
	add(g, 4, -5, 0, 0, 3) // exit point, right branch

	roi := soma.ROI{XMin: -2, XMax: 2, YMin: -2, YMax: 2}
	out := soma.Apply(g, roi, soma.Edge, 1, 1, 1)

	require.Len(t, out, 2)
	roots := map[int64]bool{out[0].Root: true, out[1].Root: true}
	assert.Equal(t, map[int64]bool{2: true, 4: true}, roots)
}

func TestApplyUnset_ReturnsGraphUnchanged(t *testing.T) {
	g := graphmodel.New()
	g.Root = 0
	add(g, 0, 0, 0, 0, 0)

	out := soma.Apply(g, soma.ROI{}, soma.Unset, 1, 1, 1)
	require.Len(t, out, 1)
	assert.Same(t, g, out[0])
}
