package radius_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborist/neurotrace/radius"
	"github.com/arborist/neurotrace/volume"
)

func TestEstimate_StopsAtBackgroundShell(t *testing.T) {
	const w, h = 21, 21
	data := make([]float64, w*h)
	cx, cy := 10, 10
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= 9 { // a filled disk of radius 3
				data[x+y*w] = 200
			}
		}
	}
	vol, err := volume.NewDense(data, 0, w-1, 0, h-1, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	r := radius.Estimate(vol, cx, cy, 0, radius.Options{Threshold: 10})
	assert.Equal(t, 4, r, "the shell just past the disk's edge is the first to read mostly background")
}

func TestEstimate_StopsAtVolumeBoundary(t *testing.T) {
	const w, h = 5, 5
	data := make([]float64, w*h)
	for i := range data {
		data[i] = 200
	}
	vol, err := volume.NewDense(data, 0, w-1, 0, h-1, 0, 0, 1, 1, 1, "um")
	require.NoError(t, err)

	r := radius.Estimate(vol, 2, 2, 0, radius.Options{Threshold: 10})
	assert.Equal(t, 3, r, "centered in a small all-foreground volume, expansion stops once a shell runs off the edge")
}

func TestEstimatePhysical_ScalesByXSpacing(t *testing.T) {
	const w = 9
	data := make([]float64, w)
	for i := range data {
		data[i] = 200
	}
	vol, err := volume.NewDense(data, 0, w-1, 0, 0, 0, 0, 2.5, 1, 1, "um")
	require.NoError(t, err)

	voxelR := radius.Estimate(vol, 4, 0, 0, radius.Options{Threshold: 10})
	physR := radius.EstimatePhysical(vol, 4, 0, 0, radius.Options{Threshold: 10})
	assert.Equal(t, float64(voxelR)*2.5, physR)
}
