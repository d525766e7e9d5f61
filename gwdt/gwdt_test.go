package gwdt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/conn"
	"github.com/arborist/neurotrace/gwdt"
	"github.com/arborist/neurotrace/storage"
	"github.com/arborist/neurotrace/volume"
)

// TestCompute_OneDimensionalBar exercises the relaxation rule of §4.7 over
// a strip with background on both ends: gwdt accumulates the crossed
// foreground voxels' own intensities along the cheapest path to background.
func TestCompute_OneDimensionalBar(t *testing.T) {
	// x: 0=bg(0) 1=fg(2) 2=fg(2) 3=fg(2) 4=bg(0)
	data := []float64{0, 2, 2, 2, 0}
	vol, err := volume.NewDense(data, 0, 4, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	backend := storage.NewDenseBackend()
	maxGWDT, err := gwdt.Compute(vol, backend, gwdt.Options{Threshold: 0, Conn: conn.Face})
	require.NoError(t, err)

	idxOf := func(x int) int64 { return storage.Index(x, 0, 0, 5, 1) }

	assert.Equal(t, 0.0, backend.GWDT(idxOf(0)))
	assert.Equal(t, 2.0, backend.GWDT(idxOf(1)))
	assert.Equal(t, 4.0, backend.GWDT(idxOf(2)))
	assert.Equal(t, 2.0, backend.GWDT(idxOf(3)))
	assert.Equal(t, 0.0, backend.GWDT(idxOf(4)))
	assert.Equal(t, 4.0, maxGWDT)

	for x := 0; x <= 4; x++ {
		assert.Equal(t, storage.Alive, backend.State(idxOf(x)))
	}
}

func TestCompute_AllBackgroundReturnsOne(t *testing.T) {
	data := []float64{0, 0, 0}
	vol, err := volume.NewDense(data, 0, 2, 0, 0, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	backend := storage.NewDenseBackend()
	maxGWDT, err := gwdt.Compute(vol, backend, gwdt.Options{Threshold: 0, Conn: conn.Face})
	require.NoError(t, err)

	assert.Equal(t, 1.0, maxGWDT)
}
