package searchnode

import "github.com/arborist/neurotrace/pqueue"

// BiNode is the per-voxel search state for bidirectional A* (§3): two
// g-scores, two f-scores, two predecessors, two open-heap handles, and a
// per-direction State.
type BiNode struct {
	Pos [3]int

	GFromStart, GFromGoal float64
	FFromStart, FFromGoal float64

	PredFromStart, PredFromGoal *BiNode

	HandleFromStart *pqueue.Handle[StartView]
	HandleFromGoal  *pqueue.Handle[GoalView]

	StateFromStart, StateFromGoal State
}

// NewBiNode returns a freshly allocated node at pos with both g/f scores
// at +Inf and both directions FREE.
func NewBiNode(pos [3]int) *BiNode {
	return &BiNode{
		Pos:            pos,
		GFromStart:     posInf,
		GFromGoal:      posInf,
		FFromStart:     posInf,
		FFromGoal:      posInf,
		StateFromStart: StateFree,
		StateFromGoal:  StateFree,
	}
}

// StartView and GoalView adapt *BiNode to pqueue.Keyed once per direction,
// since a single node carries two independent priorities (one per open
// heap) that cannot both be served by a single Priority() method.

// StartView is the pqueue.Keyed view of a node for the from-start open heap.
type StartView struct{ Node *BiNode }

// Priority implements pqueue.Keyed.
func (v StartView) Priority() float64 { return v.Node.FFromStart }

// TieKey implements pqueue.Keyed.
func (v StartView) TieKey() (int, int, int) {
	return v.Node.Pos[0], v.Node.Pos[1], v.Node.Pos[2]
}

// GoalView is the pqueue.Keyed view of a node for the from-goal open heap.
type GoalView struct{ Node *BiNode }

// Priority implements pqueue.Keyed.
func (v GoalView) Priority() float64 { return v.Node.FFromGoal }

// TieKey implements pqueue.Keyed.
func (v GoalView) TieKey() (int, int, int) {
	return v.Node.Pos[0], v.Node.Pos[1], v.Node.Pos[2]
}
