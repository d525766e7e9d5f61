package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/arborist/neurotrace/volume"
)

// loadRawVolume reads the minimal on-disk volume format this CLI
// understands: a little-endian header (int32 width, height, depth, then
// float32 sx, sy, sz) followed by width*height*depth float32 intensities
// in x-fastest, then y, then z order. Full image decoding and calibration
// is out of the reconstruction core's scope; this loader exists only to
// exercise the CLI end to end against a file the core can consume.
func loadRawVolume(path string) (*volume.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadRawVolume: %w", err)
	}
	defer f.Close()

	var header [6]int32
	var headerF [3]float32
	if err := binary.Read(f, binary.LittleEndian, header[:3]); err != nil {
		return nil, fmt.Errorf("loadRawVolume: reading dims: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, headerF[:]); err != nil {
		return nil, fmt.Errorf("loadRawVolume: reading spacing: %w", err)
	}

	w, h, d := int(header[0]), int(header[1]), int(header[2])
	n := w * h * d
	raw := make([]float32, n)
	if err := binary.Read(f, binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("loadRawVolume: reading voxels: %w", err)
	}

	data := make([]float64, n)
	for i, v := range raw {
		data[i] = float64(v)
	}

	return volume.NewDense(data, 0, w-1, 0, h-1, 0, d-1,
		float64(headerF[0]), float64(headerF[1]), float64(headerF[2]), "um")
}
