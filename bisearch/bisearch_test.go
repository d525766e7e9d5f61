package bisearch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/bisearch"
	"github.com/arborist/neurotrace/costfn"
	"github.com/arborist/neurotrace/search"
	"github.com/arborist/neurotrace/volume"
)

// TestRun_MatchesUnidirectionalCost exercises the spec's bidirectional
// equivalence scenario: the same volume and cost produce paths of
// identical total cost whether searched uni- or bidirectionally.
func TestRun_MatchesUnidirectionalCost(t *testing.T) {
	data := make([]float64, 20)
	for i := range data {
		data[i] = 255
	}
	vol, err := volume.NewDense(data, 0, 19, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	cost := costfn.Reciprocal{Min: 0, Max: 255}
	start, goal := [3]int{0, 0, 0}, [3]int{19, 0, 0}

	uniEngine := search.New(cost, search.WithHeuristic(costfn.EuclideanHeuristic{Scale: cost.MinStepCost()}))
	uniRes := uniEngine.Run(vol, start, goal, func(pos [3]int) bool { return pos == goal })
	require.Equal(t, search.Success, uniRes.Reason)

	biEngine := bisearch.New(cost, bisearch.WithHeuristic(costfn.EuclideanHeuristic{Scale: cost.MinStepCost()}))
	biRes := biEngine.Run(vol, start, goal)
	require.Equal(t, search.Success, biRes.Reason)

	assert.Equal(t, pathCost(uniRes.Path), pathCost(biRes.Path))
	assert.Equal(t, start, firstVoxel(uniRes.Path))
	assert.Equal(t, start, firstVoxel(biRes.Path))
	assert.Equal(t, goal, lastVoxel(uniRes.Path))
	assert.Equal(t, goal, lastVoxel(biRes.Path))
}

func pathCost(path []search.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		dz := path[i].Z - path[i-1].Z
		total += dx*dx + dy*dy + dz*dz // squared length is enough to compare equal-cost uniform paths
	}

	return total
}

func firstVoxel(path []search.Point) [3]int {
	if len(path) == 0 {
		return [3]int{}
	}

	return [3]int{int(path[0].X), int(path[0].Y), int(path[0].Z)}
}

func lastVoxel(path []search.Point) [3]int {
	if len(path) == 0 {
		return [3]int{}
	}
	last := path[len(path)-1]

	return [3]int{int(last.X), int(last.Y), int(last.Z)}
}
