package searchnode

import (
	"math"

	"github.com/arborist/neurotrace/pqueue"
)

// posInf is the initial g/f score for an unvisited node (§3).
var posInf = math.Inf(1)

// UniNode is the per-voxel search state for Dijkstra / A* / the region
// filler: a single g/h/f, a single predecessor, a single open-heap handle,
// and a Status drawn from the five-value enum in status.go (§3).
type UniNode struct {
	Pos     [3]int
	G, H, F float64
	Pred    *UniNode
	Handle  *pqueue.Handle[*UniNode]
	Status  Status
}

// Priority implements pqueue.Keyed.
func (n *UniNode) Priority() float64 { return n.F }

// TieKey implements pqueue.Keyed.
func (n *UniNode) TieKey() (int, int, int) { return n.Pos[0], n.Pos[1], n.Pos[2] }

// NewUniNode returns a freshly allocated, FREE node at pos with g=f=+Inf.
func NewUniNode(pos [3]int) *UniNode {
	return &UniNode{
		Pos:    pos,
		G:      posInf,
		H:      0,
		F:      posInf,
		Status: Free,
	}
}
