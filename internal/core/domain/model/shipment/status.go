package shipment

import (
	"fmt"
	"strings"

	"shiptrack/internal/pkg/errs"
)

// Status is the lifecycle state of a shipment.
//
// State transitions:
//
//	Pending ──> InTransit ──> Delivered
//
// Unknown (0) is never stored on a shipment. It is what CurrentStatus reports for a
// shipment with no recorded history.
type Status int

const (
	Unknown Status = iota
	Pending
	InTransit
	Delivered
)

var statusNames = map[Status]string{
	Unknown:   "Unknown",
	Pending:   "Pending",
	InTransit: "InTransit",
	Delivered: "Delivered",
}

// successors encodes the fixed order. Statuses without an entry are terminal.
var successors = map[Status]Status{
	Pending:   InTransit,
	InTransit: Delivered,
}

// ParseStatus converts a status name into a Status. Matching ignores case and
// accepts the "In transit" spelling used by older clients. "Unknown" is rejected.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch normalized {
	case "pending":
		return Pending, nil
	case "intransit":
		return InTransit, nil
	case "delivered":
		return Delivered, nil
	default:
		return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
	}
}

// Validate accepts Pending, InTransit and Delivered.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the status name, or "Unknown" for out-of-range values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// Next returns the immediate successor and false when s is terminal or invalid.
func (s Status) Next() (Status, bool) {
	next, ok := successors[s]
	return next, ok
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	_, ok := successors[s]
	return !ok
}

// Advance returns to if it is the immediate successor of s.
//
// Returns:
//   - (to, nil) for Pending -> InTransit and InTransit -> Delivered
//   - (Unknown, errs.IllegalTransitionError) for anything else, including skips,
//     repeats, moves backwards and moves out of Delivered
func (s Status) Advance(to Status) (Status, error) {
	next, ok := s.Next()
	if !ok || next != to {
		return Unknown, errs.NewIllegalTransitionError(s.String(), to.String())
	}
	return next, nil
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes any spelling accepted by ParseStatus, plus "Unknown".
func (s *Status) UnmarshalText(text []byte) error {
	if strings.EqualFold(strings.TrimSpace(string(text)), statusNames[Unknown]) {
		*s = Unknown
		return nil
	}
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
