package delivery

import (
	"fmt"
	"strings"

	"deliveryhub/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery.
//
// State transitions:
//
//	Assigned ──┬──> OnTheWayToStore ──┬──> PickedUp ──┬──> OnTheWay ──┬──> Delivered
//	           └──> ArrivedAtStore ───┘               └──> Arrived ───┘
//
//	any non-terminal status ──> Failed | Cancelled
//
// Forward moves may skip optional steps (Assigned -> ArrivedAtStore, PickedUp ->
// Arrived) but never skip PickedUp. Delivered, Failed and Cancelled are terminal.
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	Assigned
	OnTheWayToStore
	ArrivedAtStore
	PickedUp
	OnTheWay
	Arrived
	Delivered
	Failed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "UNKNOWN",
		Assigned:        "ASSIGNED",
		OnTheWayToStore: "ON_THE_WAY_TO_STORE",
		ArrivedAtStore:  "ARRIVED_AT_STORE",
		PickedUp:        "PICKED_UP",
		OnTheWay:        "ON_THE_WAY",
		Arrived:         "ARRIVED",
		Delivered:       "DELIVERED",
		Failed:          "FAILED",
		Cancelled:       "CANCELLED",
	}
}

// progress orders the non-absorbing statuses along the happy path.
var progress = map[Status]int{
	Assigned:        0,
	OnTheWayToStore: 1,
	ArrivedAtStore:  2,
	PickedUp:        3,
	OnTheWay:        4,
	Arrived:         5,
	Delivered:       6,
}

// ParseStatus converts the wire representation ("PICKED_UP") into a Status.
// Matching ignores case and surrounding spaces.
//
// Example:
//
//	status, err := delivery.ParseStatus("picked_up")
//	// status == delivery.PickedUp
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// Validate checks that s is one of the defined statuses.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, "UNKNOWN" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Failed || s == Cancelled
}

// ReleasesCapacity reports whether reaching s frees the partner's slot.
func (s Status) ReleasesCapacity() bool {
	return s.IsTerminal()
}

// CanTransitionTo reports whether moving from s to next follows the lifecycle.
// Re-applying the same status is not a transition and returns false.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Validate() != nil || next.Validate() != nil || s.IsTerminal() || s == next {
		return false
	}

	if next == Failed || next == Cancelled {
		return true
	}

	from, to := progress[s], progress[next]
	if to <= from {
		return false
	}

	return to <= progress[PickedUp] || from >= progress[PickedUp]
}

// TransitionTo returns next when the move is legal.
//
// Returns:
//   - (next, nil) on a legal move
//   - (s, error wrapping ErrInvalidStatusTransition) otherwise
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s, next)
	}
	return next, nil
}
