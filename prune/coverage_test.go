package prune_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/graphmodel"
	"github.com/arborist/neurotrace/prune"
	"github.com/arborist/neurotrace/volume"
)

// TestPhaseD_RemovesLeafSwallowedByItsTrunk exercises §4.11 Phase D's leaf
// pruning: a thin terminal tip sitting immediately against a much thicker
// trunk voxel is entirely covered by that voxel's sphere and is removed,
// while the trunk voxel itself (whose own sphere is barely covered by the
// root's much smaller one) survives both the leaf and joint-leaf passes.
func TestPhaseD_RemovesLeafSwallowedByItsTrunk(t *testing.T) {
	data := make([]float64, 21)
	for i := range data {
		data[i] = 200
	}
	vol, err := volume.NewDense(data, 0, 20, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	g := graphmodel.New()
	g.Root = 0
	root := &graphmodel.Vertex{ID: 0, X: 0, Y: 0, Z: 0, Radius: 0}
	trunk := &graphmodel.Vertex{ID: 5, X: 5, Y: 0, Z: 0, Radius: 5, Parent: 0}
	tip := &graphmodel.Vertex{ID: 6, X: 6, Y: 0, Z: 0, Radius: 1, Parent: 5}
	root.Children = []int64{5}
	trunk.Children = []int64{6}
	g.Vertices[0] = root
	g.Vertices[5] = trunk
	g.Vertices[6] = tip

	cfg := prune.DefaultConfig(10)
	prune.PhaseD(g, vol, func(v *graphmodel.Vertex) float64 { return vol.Get(v.X, v.Y, v.Z) }, cfg)

	assert.True(t, g.Vertices[6].Removed, "tip is entirely covered by the adjacent trunk voxel's sphere")
	assert.False(t, g.Vertices[5].Removed, "trunk voxel's own sphere is barely covered by the root's")
	assert.False(t, g.Vertices[0].Removed)
}
