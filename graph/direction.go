package graph

import "math"

// EdgeDirection is the closed set of navigation intents an edge can carry.
// Adding a direction is a compile-time-checked change: every switch over
// EdgeDirection in this package is exhaustive with a default that rejects
// unknown values.
type EdgeDirection int

const (
	// DirectionNext moves to the successor node in the owning sequence
	DirectionNext EdgeDirection = iota
	// DirectionPrev moves to the predecessor node in the owning sequence
	DirectionPrev
	// DirectionStepForward steps along the current viewing direction
	DirectionStepForward
	// DirectionStepBackward steps against the current viewing direction
	DirectionStepBackward
	// DirectionStepLeft steps 90 degrees counter-clockwise
	DirectionStepLeft
	// DirectionStepRight steps 90 degrees clockwise
	DirectionStepRight
	// DirectionTurnLeft turns 90 degrees counter-clockwise in place
	DirectionTurnLeft
	// DirectionTurnRight turns 90 degrees clockwise in place
	DirectionTurnRight
	// DirectionTurnU turns 180 degrees in place
	DirectionTurnU
	// DirectionPano enters a full panorama; azimuth-addressable from any bearing
	DirectionPano
)

// String returns the direction name for logging and diagnostics
func (d EdgeDirection) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrev:
		return "prev"
	case DirectionStepForward:
		return "step_forward"
	case DirectionStepBackward:
		return "step_backward"
	case DirectionStepLeft:
		return "step_left"
	case DirectionStepRight:
		return "step_right"
	case DirectionTurnLeft:
		return "turn_left"
	case DirectionTurnRight:
		return "turn_right"
	case DirectionTurnU:
		return "turn_u"
	case DirectionPano:
		return "pano"
	default:
		return "unknown"
	}
}

// Offset returns the angular offset in radians this direction applies to
// the current bearing when deriving a desired navigation angle. The second
// return is false for directions with no angular meaning (Next/Prev/Pano).
func (d EdgeDirection) Offset() (float64, bool) {
	switch d {
	case DirectionStepForward:
		return 0, true
	case DirectionStepBackward:
		return math.Pi, true
	case DirectionStepLeft:
		return math.Pi / 2, true
	case DirectionStepRight:
		return -math.Pi / 2, true
	case DirectionTurnLeft:
		return math.Pi / 2, true
	case DirectionTurnRight:
		return -math.Pi / 2, true
	case DirectionTurnU:
		return math.Pi, true
	case DirectionNext, DirectionPrev, DirectionPano:
		return 0, false
	default:
		return 0, false
	}
}

// IsSequence reports whether the direction is resolved by sequence lookup
// instead of angular edge selection.
func (d EdgeDirection) IsSequence() bool {
	return d == DirectionNext || d == DirectionPrev
}

// IsStep reports whether the direction is a spatial step between nodes
func (d EdgeDirection) IsStep() bool {
	switch d {
	case DirectionStepForward, DirectionStepBackward, DirectionStepLeft, DirectionStepRight:
		return true
	default:
		return false
	}
}
