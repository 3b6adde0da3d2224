package commands

import (
	"errors"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/guard"
)

var ErrAdvanceStatusCommandIsNotConstructed = errors.New(
	"AdvanceStatusCommand must be created via NewAdvanceStatusCommand constructor",
)

// AdvanceStatusCommand moves a shipment to the next status of its lifecycle,
// for example when the carrier reports it delivered.
type AdvanceStatusCommand struct {
	shipmentID kernel.ShipmentID
	status     shipment.Status

	guard guard.ConstructorGuard
}

// NewAdvanceStatusCommand parses newStatus with shipment.ParseStatus.
func NewAdvanceStatusCommand(shipmentID int64, newStatus string) (AdvanceStatusCommand, error) {
	id, idErr := kernel.NewShipmentID(shipmentID)
	status, statusErr := shipment.ParseStatus(newStatus)
	if err := errors.Join(idErr, statusErr); err != nil {
		return AdvanceStatusCommand{}, err
	}

	return AdvanceStatusCommand{
		shipmentID: id,
		status:     status,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c AdvanceStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStatusCommandIsNotConstructed)
}

func (c AdvanceStatusCommand) ShipmentID() kernel.ShipmentID { return c.shipmentID }
func (c AdvanceStatusCommand) Status() shipment.Status       { return c.status }
