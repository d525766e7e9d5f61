// Package conn computes voxel neighbor offsets for the connectivity types
// used across the search and GWDT/fast-marching engines: 26-connectivity
// for interactive search (§4.4–4.6), and the selectable 6/18/26-neighbor
// (cnnType 1/2/3) connectivity for GWDT and fast marching (§4.7–4.8,
// GLOSSARY "Connectivity type"). A 2-D volume (Z extent of 1) halves
// cnnType's neighbor count to 4/8, per the GLOSSARY.
package conn

// Type selects face (1), face+edge (2), or face+edge+corner (3)
// connectivity in 3-D; halves to 4/8 in 2-D.
type Type int

const (
	Face          Type = 1
	FaceEdge      Type = 2
	FaceEdgeCorner Type = 3
)

// Offsets26 returns every non-zero offset in {-1,0,1}^3: full 26-connectivity,
// used by the interactive search engines (§4.4–4.6) regardless of cnnType.
func Offsets26() [][3]int {
	offs := make([][3]int, 0, 26)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offs = append(offs, [3]int{dx, dy, dz})
			}
		}
	}

	return offs
}

// OffsetsForType returns the neighbor offsets allowed by cnnType, filtered
// by Σ|Δ_d| ≤ cnnType (GLOSSARY, §4.7). is2D halves the connectivity degree
// as specified (6→4 becomes meaningless in 2D since z is fixed; this
// function instead simply omits any offset with a non-zero dz when is2D is
// true, which is the 2-D reduction of the same Manhattan-radius rule).
func OffsetsForType(t Type, is2D bool) [][3]int {
	var offs [][3]int
	for _, o := range Offsets26() {
		if is2D && o[2] != 0 {
			continue
		}
		manhattan := abs(o[0]) + abs(o[1]) + abs(o[2])
		if manhattan <= int(t) {
			offs = append(offs, o)
		}
	}

	return offs
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
