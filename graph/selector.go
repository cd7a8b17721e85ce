package graph

import (
	"math"

	"github.com/Caboosey/mapillary-js/spatial"
)

// SelectionThreshold is the maximum angular distance in radians between an
// edge's world motion azimuth and the desired navigation angle for the edge
// to be selectable. Candidates beyond it are rejected so that navigation
// never drifts toward a "closest available" edge pointing somewhere else
// entirely.
const SelectionThreshold = math.Pi / 4

// SelectKey picks the outgoing edge key best matching a navigation intent,
// or "" if no edge qualifies.
//
// Sequence directions bypass angular selection and consult the node's
// sequence. Step intents, and any intent on a panoramic node, use angular
// selection against the desired world-frame angle. Remaining intents on
// perspective nodes degenerate to an exact direction match.
func SelectKey(n *Node, direction EdgeDirection, desiredAngle float64) string {
	switch {
	case direction == DirectionNext:
		return n.FindNextKeyInSequence()
	case direction == DirectionPrev:
		return n.FindPrevKeyInSequence()
	case n.Pano() || direction.IsStep():
		return SelectKeyAngular(n.Edges(), direction, desiredAngle)
	default:
		return SelectKeyDirection(n.Edges(), direction)
	}
}

// SelectKeyAngular returns the key of the candidate edge whose world motion
// azimuth is angularly closest to the desired angle, or "" if every
// candidate is farther than SelectionThreshold.
//
// Candidates are edges matching the requested direction, plus pano edges
// regardless of the requested direction: a panorama can be entered from any
// bearing, so pano edges stay azimuth-addressable for every discrete intent.
//
// Comparison is strict, so of two edges at equal angular distance the
// first-encountered wins. Iteration order over the edge list is therefore
// part of the contract and follows assignment order.
func SelectKeyAngular(edges []Edge, direction EdgeDirection, desiredAngle float64) string {
	best := ""
	bestDiff := SelectionThreshold

	for _, edge := range edges {
		if edge.Direction != direction && edge.Direction != DirectionPano {
			continue
		}

		diff := math.Abs(spatial.WrapAngle(edge.WorldMotionAzimuth - desiredAngle))
		if diff < bestDiff {
			best = edge.To
			bestDiff = diff
		}
	}

	return best
}

// SelectKeyDirection returns the key of the edge whose direction exactly
// equals the requested direction, or "" if absent. No angular computation
// is involved.
func SelectKeyDirection(edges []Edge, direction EdgeDirection) string {
	for _, edge := range edges {
		if edge.Direction == direction {
			return edge.To
		}
	}
	return ""
}
