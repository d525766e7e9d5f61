package reconstruct_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/config"
	"github.com/arborist/neurotrace/reconstruct"
	"github.com/arborist/neurotrace/volume"
)

func TestTrace_StraightLineProducesSingleRootedTree(t *testing.T) {
	// The line must reach well past the root's minimum coverage-sphere
	// radius (5 voxels, §4.11 Phase C) on both sides, or the whole arm
	// reads as already covered and gets pruned away with it.
	const n = 21
	data := make([]float64, n)
	for i := range data {
		data[i] = 200
	}
	vol, err := volume.NewDense(data, 0, n-1, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Threshold = 10
	cfg.Pruning.EnableLeafJointPruning = false

	res, err := reconstruct.Trace(reconstruct.Request{
		Volume: vol,
		Seed:   [3]int{10, 0, 0},
		Config: cfg,
	})
	require.NoError(t, err)

	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]
	assert.Equal(t, int64(10), tree.Root)
	require.Len(t, tree.Paths, 2, "one segment per arm of the seeded line")
}

func TestTrace_RejectsOutOfBoundsSeed(t *testing.T) {
	data := []float64{200, 200, 200}
	vol, err := volume.NewDense(data, 0, 2, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	_, err = reconstruct.Trace(reconstruct.Request{
		Volume: vol,
		Seed:   [3]int{9, 0, 0},
		Config: config.Default(),
	})
	assert.ErrorIs(t, err, reconstruct.ErrInvalidSeed)
}

// TestTrace_YShapedVolume approximates the automatic-trace scenario: three
// bright arms radiating from a seeded junction should converge to one tree
// whose root sits at the junction and whose leaves sit at the three tips.
func TestTrace_YShapedVolume(t *testing.T) {
	const w, h = 21, 21
	data := make([]float64, w*h)
	set := func(x, y int) { data[x+y*w] = 200 }

	cx, cy := 10, 10
	for x := 2; x <= cx; x++ {
		set(x, cy) // arm toward -x
	}
	for x := cx; x <= 18; x++ {
		set(x, cy) // arm toward +x
	}
	for y := 2; y <= cy; y++ {
		set(cx, y) // arm toward -y
	}

	vol, err := volume.NewDense(data, 0, w-1, 0, h-1, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Threshold = 10
	cfg.Connectivity = 1
	cfg.Pruning.EnableLeafJointPruning = false

	res, err := reconstruct.Trace(reconstruct.Request{
		Volume: vol,
		Seed:   [3]int{cx, cy, 0},
		Config: cfg,
	})
	require.NoError(t, err)

	require.Len(t, res.Trees, 1)
	tree := res.Trees[0]
	assert.Equal(t, int64(storageIndex(cx, cy, w)), tree.Root)
	require.Len(t, tree.Paths, 3, "one segment per arm")
}

func storageIndex(x, y, w int) int64 {
	return int64(x + y*w)
}
