// Package volume provides uniform 3-D addressing over 2-D or 3-D scalar
// intensity volumes, with physical voxel spacing and axis bounds that need
// not start at zero.
//
// Clients must never dereference out of bounds; Volume signals validity
// through its Bounds, not through panics or errors on Get.
package volume

import "errors"

// Sentinel errors for volume construction.
var (
	// ErrEmptyVolume indicates a volume with zero voxels on some axis, or a
	// data slice whose length does not match the bounds.
	ErrEmptyVolume = errors.New("volume: dimensions must be positive on every axis")
	// ErrBadSpacing indicates non-positive physical spacing on some axis.
	ErrBadSpacing = errors.New("volume: spacing must be strictly positive on every axis")
)

// Volume is a read-only 3-D scalar image indexed by integer voxel
// coordinates. A 2-D input is represented by ZMin==ZMax==0.
type Volume interface {
	// Get returns the intensity at (x,y,z). Callers must check Bounds first;
	// behavior for out-of-bounds coordinates is unspecified.
	Get(x, y, z int) float64

	// Bounds returns the inclusive voxel index ranges per axis.
	Bounds() (xMin, xMax, yMin, yMax, zMin, zMax int)

	// Spacing returns the physical size of one voxel along each axis.
	Spacing() (sx, sy, sz float64)

	// Unit returns a sanitized physical-unit label (e.g. "um", "px").
	Unit() string
}

// InBounds reports whether (x,y,z) lies within v's addressable range.
func InBounds(v Volume, x, y, z int) bool {
	xMin, xMax, yMin, yMax, zMin, zMax := v.Bounds()

	return x >= xMin && x <= xMax && y >= yMin && y <= yMax && z >= zMin && z <= zMax
}

// Is2D reports whether v has a degenerate (single-plane) Z axis.
func Is2D(v Volume) bool {
	_, _, _, _, zMin, zMax := v.Bounds()

	return zMin == zMax
}

// Dims returns the voxel extent of v along each axis (max-min+1).
func Dims(v Volume) (w, h, d int) {
	xMin, xMax, yMin, yMax, zMin, zMax := v.Bounds()

	return xMax - xMin + 1, yMax - yMin + 1, zMax - zMin + 1
}
