package regions

import (
	"errors"
	"fmt"
)

// ErrUnknownPriority is returned for a priority position outside the enum.
var ErrUnknownPriority = errors.New("unrecognized priority position")

// PriorityPosition is the tie-break signal the engine uses when candidate
// regions compete for the same area. It is carried through unchanged; the
// engine owns the tie-break algorithm.
type PriorityPosition string

const (
	PriorityNone    PriorityPosition = "none"
	PriorityTop     PriorityPosition = "top"
	PriorityBottom  PriorityPosition = "bottom"
	PriorityLeft    PriorityPosition = "left"
	PriorityRight   PriorityPosition = "right"
	PriorityLargest PriorityPosition = "largest"
)

// ParsePriority resolves a priority string. Empty means PriorityNone.
func ParsePriority(s string) (PriorityPosition, error) {
	switch p := PriorityPosition(s); p {
	case "":
		return PriorityNone, nil
	case PriorityNone, PriorityTop, PriorityBottom, PriorityLeft, PriorityRight, PriorityLargest:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
}
