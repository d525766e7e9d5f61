// Package radius implements image-based radius estimation (§4.10):
// concentric-shell expansion around each vertex, stopping once the shell's
// background fraction gets too high or it runs off the image.
package radius

import (
	"math"

	"github.com/arborist/neurotrace/volume"
)

// backgroundFractionStop is the fraction of a shell's voxels that may be
// background before expansion stops.
const backgroundFractionStop = 0.001

// Options configures Estimate.
type Options struct {
	Threshold float64 // θ; a shell voxel counts as background at intensity ≤ max(40, θ)
	MaxRadius int      // safety bound on shell radius, in voxels
}

// Estimate returns the radius, in voxel units, at vertex (x,y,z): the
// first integer shell radius, counting up from 0, whose shell either leaves
// the volume or has more than 0.1% of its voxels background. A filled disk
// of radius 3 therefore yields 4.
func Estimate(vol volume.Volume, x, y, z int, opts Options) int {
	bgThresh := math.Max(40, opts.Threshold)
	is2D := volume.Is2D(vol)
	maxR := opts.MaxRadius
	if maxR <= 0 {
		maxR = 64
	}

	r := 0
	for ; r < maxR; r++ {
		shell := shellVoxels(x, y, z, r, is2D)
		if len(shell) == 0 {
			break
		}
		bgCount := 0
		hitBoundary := false
		for _, p := range shell {
			if !volume.InBounds(vol, p[0], p[1], p[2]) {
				hitBoundary = true

				continue
			}
			if vol.Get(p[0], p[1], p[2]) <= bgThresh {
				bgCount++
			}
		}
		if hitBoundary {
			break
		}
		if float64(bgCount)/float64(len(shell)) > backgroundFractionStop {
			break
		}
	}

	return r
}

// EstimatePhysical converts Estimate's voxel-unit result to physical units
// using vol's isotropic-XY spacing assumption.
func EstimatePhysical(vol volume.Volume, x, y, z int, opts Options) float64 {
	sx, _, _ := vol.Spacing()

	return float64(Estimate(vol, x, y, z, opts)) * sx
}

// shellVoxels enumerates the integer lattice points whose Euclidean distance
// d from (x,y,z) satisfies r-1 < d <= r: spherical in 3-D, annular (z fixed)
// when is2D holds.
func shellVoxels(x, y, z, r int, is2D bool) [][3]int {
	if r == 0 {
		return [][3]int{{x, y, z}}
	}

	var out [][3]int
	zRange := r
	if is2D {
		zRange = 0
	}
	for dz := -zRange; dz <= zRange; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				d2 := dx*dx + dy*dy + dz*dz
				rr := r * r
				prevRR := (r - 1) * (r - 1)
				if d2 <= rr && d2 > prevRR {
					out = append(out, [3]int{x + dx, y + dy, z + dz})
				}
			}
		}
	}

	return out
}
