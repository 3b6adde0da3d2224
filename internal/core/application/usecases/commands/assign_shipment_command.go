package commands

import (
	"errors"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/guard"
)

var ErrAssignShipmentCommandIsNotConstructed = errors.New(
	"AssignShipmentCommand must be created via NewAssignShipmentCommand constructor",
)

// AssignShipmentCommand binds a route, carrier and vehicle to a pending shipment.
// There is no automatic selection: all three references are supplied by the caller.
//
// Example:
//
//	cmd, err := NewAssignShipmentCommand(7, "R1", "C1", "V1")
//	if err != nil {
//	    return err // errs.ValueIsRequiredError / errs.ValueIsInvalidError
//	}
//	s, err := handler.Handle(ctx, cmd)
type AssignShipmentCommand struct {
	shipmentID kernel.ShipmentID
	assignment shipment.Assignment

	guard guard.ConstructorGuard
}

func NewAssignShipmentCommand(shipmentID int64, routeName, carrierName, vehiclePlate string) (AssignShipmentCommand, error) {
	id, idErr := kernel.NewShipmentID(shipmentID)
	assignment, assignmentErr := shipment.NewAssignment(routeName, carrierName, vehiclePlate)
	if err := errors.Join(idErr, assignmentErr); err != nil {
		return AssignShipmentCommand{}, err
	}

	return AssignShipmentCommand{
		shipmentID: id,
		assignment: assignment,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignShipmentCommand) Validate() error {
	return c.guard.Validate(ErrAssignShipmentCommandIsNotConstructed)
}

func (c AssignShipmentCommand) ShipmentID() kernel.ShipmentID   { return c.shipmentID }
func (c AssignShipmentCommand) Assignment() shipment.Assignment { return c.assignment }
