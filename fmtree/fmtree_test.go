package fmtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/fmtree"
	"github.com/arborist/neurotrace/gwdt"
	"github.com/arborist/neurotrace/storage"
	"github.com/arborist/neurotrace/volume"
)

func TestBuild_LineRootedAtSeed(t *testing.T) {
	data := make([]float64, 5)
	for i := range data {
		data[i] = 200
	}
	vol, err := volume.NewDense(data, 0, 4, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	backend := storage.NewDenseBackend()
	maxGWDT, err := gwdt.Compute(vol, backend, gwdt.Options{Threshold: 10, Conn: conn.Face})
	require.NoError(t, err)

	seed := [3]int{2, 0, 0}
	err = fmtree.Build(vol, backend, seed, fmtree.Options{Threshold: 10, Conn: conn.Face, MaxGWDT: maxGWDT})
	require.NoError(t, err)

	idxOf := func(x int) int64 { return storage.Index(x, 0, 0, 5, 1) }
	seedIdx := idxOf(2)
	assert.Equal(t, seedIdx, backend.Parent(seedIdx))
	assert.Equal(t, 0.0, backend.Distance(seedIdx))

	assert.Equal(t, seedIdx, backend.Parent(idxOf(1)))
	assert.Equal(t, idxOf(1), backend.Parent(idxOf(0)))
	assert.Equal(t, seedIdx, backend.Parent(idxOf(3)))
	assert.Equal(t, idxOf(3), backend.Parent(idxOf(4)))

	for x := 0; x <= 4; x++ {
		assert.Equal(t, storage.Alive, backend.State(idxOf(x)))
	}
}
