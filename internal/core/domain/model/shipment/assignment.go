package shipment

import (
	"errors"
	"strings"

	"shiptrack/internal/pkg/errs"
	"shiptrack/internal/pkg/guard"
)

// ErrAssignmentIsNotConstructed is returned when a zero-value Assignment is used.
var ErrAssignmentIsNotConstructed = errs.NewValueIsRequiredError("assignment must be created via NewAssignment")

// Assignment binds a route, a carrier and a vehicle to a shipment. References are
// by name (route and carrier) and by plate number (vehicle), as they appear in
// the entity store.
type Assignment struct {
	routeName    string
	carrierName  string
	vehiclePlate string
	guard        guard.ConstructorGuard
}

// NewAssignment trims its inputs and rejects empty ones with errs.ValueIsRequiredError.
// All missing fields are reported together.
func NewAssignment(routeName, carrierName, vehiclePlate string) (Assignment, error) {
	routeName = strings.TrimSpace(routeName)
	carrierName = strings.TrimSpace(carrierName)
	vehiclePlate = strings.TrimSpace(vehiclePlate)

	var problems []error
	if routeName == "" {
		problems = append(problems, errs.NewValueIsRequiredError("route"))
	}
	if carrierName == "" {
		problems = append(problems, errs.NewValueIsRequiredError("carrier"))
	}
	if vehiclePlate == "" {
		problems = append(problems, errs.NewValueIsRequiredError("vehicle"))
	}
	if err := errors.Join(problems...); err != nil {
		return Assignment{}, err
	}

	return Assignment{
		routeName:    routeName,
		carrierName:  carrierName,
		vehiclePlate: vehiclePlate,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (a Assignment) RouteName() string    { return a.routeName }
func (a Assignment) CarrierName() string  { return a.carrierName }
func (a Assignment) VehiclePlate() string { return a.vehiclePlate }

func (a Assignment) Validate() error {
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

func (a Assignment) IsEqual(other Assignment) bool {
	return a.routeName == other.routeName &&
		a.carrierName == other.carrierName &&
		a.vehiclePlate == other.vehiclePlate
}
