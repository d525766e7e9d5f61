package smooth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/smooth"
)

// buildLine builds a 5-vertex straight line along x (ids 0..4, root at 0).
func buildLine() *graphmodel.Graph {
	g := graphmodel.New()
	g.Root = 0
	for i := 0; i < 5; i++ {
		g.Vertices[int64(i)] = &graphmodel.Vertex{ID: int64(i), X: i, Y: 0, Z: 0}
	}
	for i := 1; i < 5; i++ {
		g.Vertices[int64(i)].Parent = int64(i - 1)
		g.Vertices[int64(i-1)].Children = append(g.Vertices[int64(i-1)].Children, int64(i))
	}

	return g
}

func TestSmooth_PullsJaggedMidpointTowardNeighbors(t *testing.T) {
	g := buildLine()
	g.Vertices[2].Y = 5 // a single jagged outlier in an otherwise straight line

	smooth.Smooth(g, 2)

	assert.Less(t, g.Vertices[2].Y, 5)
	assert.Equal(t, 0, g.Vertices[0].Y, "root is pinned")
	assert.Equal(t, 0, g.Vertices[4].Y, "leaf is pinned")
}

func TestSmooth_NoopOnWindowSizeZero(t *testing.T) {
	g := buildLine()
	g.Vertices[2].Y = 5

	smooth.Smooth(g, 0)

	assert.Equal(t, 5, g.Vertices[2].Y)
}

func TestResample_DropsEveryOtherPointAtThreshold(t *testing.T) {
	g := buildLine()

	smooth.Resample(g, 2, 1, 1, 1, 1)

	assert.True(t, g.Vertices[1].Removed)
	assert.True(t, g.Vertices[3].Removed)
	assert.False(t, g.Vertices[2].Removed)
	assert.False(t, g.Vertices[4].Removed)

	assert.Equal(t, int64(0), g.Vertices[2].Parent)
	assert.Equal(t, int64(2), g.Vertices[4].Parent)
}
