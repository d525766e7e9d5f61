package prune_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/prune"
	"github.com/arborist/neurotrace/volume"
)

// buildLine builds a 6-vertex straight line (ids 0..5, root at 0) over a
// volume whose intensities are given in voxel order.
func buildLine(t *testing.T, intensities []float64) (*graphmodel.Graph, *volume.Dense) {
	t.Helper()
	vol, err := volume.NewDense(intensities, 0, len(intensities)-1, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	g := graphmodel.New()
	g.Root = 0
	for i := range intensities {
		g.Vertices[int64(i)] = &graphmodel.Vertex{ID: int64(i), X: i, Y: 0, Z: 0}
	}
	for i := 1; i < len(intensities); i++ {
		g.Vertices[int64(i)].Parent = int64(i - 1)
		g.Vertices[int64(i-1)].Children = append(g.Vertices[int64(i-1)].Children, int64(i))
	}

	return g, vol
}

func intensityFn(vol volume.Volume) prune.IntensityFunc {
	return func(v *graphmodel.Vertex) float64 { return vol.Get(v.X, v.Y, v.Z) }
}

func TestPhaseA_TrimsDarkLeaf(t *testing.T) {
	g, vol := buildLine(t, []float64{200, 200, 200, 200, 200, 2})
	prune.PhaseA(g, intensityFn(vol), 10)

	assert.True(t, g.Vertices[5].Removed)
	assert.False(t, g.Vertices[4].Removed)
}

func TestPhaseE_RemovesDarkTerminalSegment(t *testing.T) {
	// A short run ending in a dim voxel pushes the segment's dark-fraction
	// over 20%, so the whole terminal segment (root excluded) is dropped.
	g, vol := buildLine(t, []float64{200, 200, 200, 2})
	cfg := prune.DefaultConfig(10)

	prune.PhaseE(g, intensityFn(vol), 200, cfg)

	assert.True(t, g.Vertices[3].Removed)
	assert.False(t, g.Vertices[0].Removed)
}

func TestConnectivitySweep_RemovesDisconnectedVertex(t *testing.T) {
	g, _ := buildLine(t, []float64{200, 200, 200})
	// Detach vertex 2 by rerouting its parent to itself, simulating a stray
	// vertex that BuildFromBackend never wired to the root.
	g.Vertices[2].Parent = 2
	g.Vertices[1].Children = nil

	prune.ConnectivitySweep(g)

	assert.True(t, g.Vertices[2].Removed)
	assert.False(t, g.Vertices[0].Removed)
	assert.False(t, g.Vertices[1].Removed)
}

func TestRun_EndToEndDropsDarkLeaf(t *testing.T) {
	g, vol := buildLine(t, []float64{200, 200, 200, 200, 200, 2})
	cfg := prune.DefaultConfig(10)

	prune.Run(g, vol, intensityFn(vol), 200, cfg)

	_, ok := g.Vertices[5]
	assert.False(t, ok)
	require.Contains(t, g.Vertices, int64(0))
}
