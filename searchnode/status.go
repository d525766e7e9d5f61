// Package searchnode holds the per-voxel search state used by the
// unidirectional and bidirectional search engines: tagged status enums,
// the node types themselves, and a per-z sliced grid that maps a voxel
// position to its node without requiring a dense array over the whole
// volume (§3, §4.3–4.6).
package searchnode

// Status is the per-voxel state for the unidirectional / filler search
// variant. Values are a small tagged enum — never reused for other
// meanings (§9 Design notes).
type Status int

const (
	// Free means the voxel has never been reached by either frontier.
	Free Status = iota
	// OpenFromStart means the voxel is in the start-side open heap.
	OpenFromStart
	// ClosedFromStart means the voxel's cost from the start is frozen.
	ClosedFromStart
	// OpenFromGoal means the voxel is in a goal-side open heap. No engine in
	// this module sets it: search.Engine only searches from the start, and
	// bisearch keeps per-direction State on BiNode instead.
	OpenFromGoal
	// ClosedFromGoal means the voxel's cost from the goal is frozen. Like
	// OpenFromGoal, no engine in this module sets it.
	ClosedFromGoal
)

func (s Status) String() string {
	switch s {
	case Free:
		return "FREE"
	case OpenFromStart:
		return "OPEN_FROM_START"
	case ClosedFromStart:
		return "CLOSED_FROM_START"
	case OpenFromGoal:
		return "OPEN_FROM_GOAL"
	case ClosedFromGoal:
		return "CLOSED_FROM_GOAL"
	default:
		return "UNKNOWN"
	}
}

// State is the per-direction state for the bidirectional A* node variant.
type State int

const (
	// StateFree means this direction has never reached the voxel.
	StateFree State = iota
	// StateOpen means the voxel is in this direction's open heap.
	StateOpen
	// StateClosed means this direction's cost to the voxel is frozen.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "FREE"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
