package shipment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/pkg/errs"
	"shiptrack/internal/pkg/guard"
)

// ErrShipmentIsNotConstructed is returned when a Shipment was not created through
// NewShipment or RestoreShipment.
var ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment or RestoreShipment")

// Shipment is the aggregate root of the tracking core.
//
// Shipment follows these invariants:
//   - id is positive and weight is greater than 0
//   - dimensions, productType and address are non-empty
//   - status is Pending while sequence is 0; afterwards status is the status of
//     event number sequence
//   - an assignment is only recorded by Assign, which requires Pending
//
// Mutating methods return the StatusEvent they produced; the caller persists the
// aggregate and the event together.
type Shipment struct {
	id          kernel.ShipmentID
	weight      float64
	dimensions  string
	productType string
	address     string
	status      Status
	sequence    int64
	assignment  *Assignment
	guard       guard.ConstructorGuard
}

// NewShipment creates a Pending shipment with an empty history.
//
// Returns:
//   - *Shipment on success
//   - the joined validation errors otherwise (errs.ValueIsInvalidError,
//     errs.ValueIsRequiredError)
//
// Example:
//
//	s, err := shipment.NewShipment(7, 12.5, "40x30x20", "Electronics", "Main st. 1")
func NewShipment(
	id kernel.ShipmentID,
	weight float64,
	dimensions, productType, address string,
) (*Shipment, error) {
	s := &Shipment{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}
	if err := errors.Join(
		s.setID(id),
		s.setWeight(weight),
		s.setDescription(dimensions, productType, address),
	); err != nil {
		return nil, err
	}
	return s, nil
}

// RestoreShipment rebuilds a shipment from storage. It checks the same invariants
// as NewShipment plus the consistency of status, sequence and assignment.
func RestoreShipment(
	id kernel.ShipmentID,
	weight float64,
	dimensions, productType, address string,
	status Status,
	sequence int64,
	assignment *Assignment,
) (*Shipment, error) {
	s, err := NewShipment(id, weight, dimensions, productType, address)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if sequence < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is negative", sequence))
	}
	if (sequence == 0) != (status == Pending) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is inconsistent with sequence %d", status, sequence))
	}
	if assignment != nil {
		if err := assignment.Validate(); err != nil {
			return nil, err
		}
		a := *assignment
		s.assignment = &a
	}
	s.status = status
	s.sequence = sequence
	return s, nil
}

// Validate ensures the Shipment was built by one of its constructors.
func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

func (s *Shipment) ID() kernel.ShipmentID { return s.id }
func (s *Shipment) Weight() float64       { return s.weight }
func (s *Shipment) Dimensions() string    { return s.dimensions }
func (s *Shipment) ProductType() string   { return s.productType }
func (s *Shipment) Address() string       { return s.address }
func (s *Shipment) Status() Status        { return s.status }

// Sequence is the number of status events recorded so far.
func (s *Shipment) Sequence() int64 { return s.sequence }

// Assignment returns a copy of the recorded assignment, or nil.
func (s *Shipment) Assignment() *Assignment {
	if s.assignment == nil {
		return nil
	}
	a := *s.assignment
	return &a
}

// Assign records the assignment and moves the shipment from Pending to InTransit.
//
// Returns:
//   - the InTransit StatusEvent on success
//   - errs.InvalidStateError if the shipment is not Pending (nothing changes)
//   - the assignment's validation error for a zero-value Assignment
func (s *Shipment) Assign(a Assignment, at time.Time) (StatusEvent, error) {
	if err := a.Validate(); err != nil {
		return StatusEvent{}, err
	}
	if s.status != Pending {
		return StatusEvent{}, errs.NewInvalidStateError("assign", s.status.String())
	}
	next, err := s.status.Advance(InTransit)
	if err != nil {
		return StatusEvent{}, err
	}

	s.assignment = &a
	return s.record(next, at), nil
}

// Advance moves the shipment to newStatus, which must be the immediate successor
// of the current status.
//
// Returns:
//   - the new StatusEvent on success
//   - errs.ValueIsInvalidError for an invalid newStatus
//   - errs.IllegalTransitionError otherwise (nothing changes)
func (s *Shipment) Advance(newStatus Status, at time.Time) (StatusEvent, error) {
	if err := newStatus.Validate(); err != nil {
		return StatusEvent{}, err
	}
	next, err := s.status.Advance(newStatus)
	if err != nil {
		return StatusEvent{}, err
	}
	return s.record(next, at), nil
}

func (s *Shipment) record(status Status, at time.Time) StatusEvent {
	s.status = status
	s.sequence++
	return StatusEvent{
		shipmentID: s.id,
		status:     status,
		timestamp:  at.UTC(),
		sequence:   s.sequence,
	}
}

func (s *Shipment) setID(id kernel.ShipmentID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shipment) setWeight(weight float64) error {
	if !(weight > 0) {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is not greater than 0", weight))
	}
	s.weight = weight
	return nil
}

func (s *Shipment) setDescription(dimensions, productType, address string) error {
	dimensions = strings.TrimSpace(dimensions)
	productType = strings.TrimSpace(productType)
	address = strings.TrimSpace(address)

	var problems []error
	if dimensions == "" {
		problems = append(problems, errs.NewValueIsRequiredError("dimensions"))
	}
	if productType == "" {
		problems = append(problems, errs.NewValueIsRequiredError("product_type"))
	}
	if address == "" {
		problems = append(problems, errs.NewValueIsRequiredError("address"))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	s.dimensions = dimensions
	s.productType = productType
	s.address = address
	return nil
}
