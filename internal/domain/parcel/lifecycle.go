package parcel

import (
	"parceldesk/internal/core/apperror"
)

// transitions lists the legal status edges. PickedUp and Cancelled have no
// outgoing edges.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusInTransit, StatusCancelled},
	StatusInTransit:  {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusPickedUp},
	StatusPickedUp:   {},
	StatusCancelled:  {},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ValidateTransition checks the edge and returns an error naming both the
// current and the requested state. A repeated request for the current status
// is reported as a conflict, not an illegal edge, so callers can treat it as
// an idempotent retry.
func ValidateTransition(from, to Status) error {
	if from == to {
		return apperror.NewConflict("parcel is already " + string(to)).
			WithDetail("status", string(from))
	}
	if !CanTransition(from, to) {
		return apperror.NewIllegalTransition("parcel", string(from), string(to))
	}
	return nil
}
