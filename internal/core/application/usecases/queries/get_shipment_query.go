package queries

import (
	"errors"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/pkg/guard"
)

var ErrGetShipmentQueryIsNotConstructed = errors.New(
	"GetShipmentQuery must be created via NewGetShipmentQuery constructor",
)

// GetShipmentQuery fetches one shipment with its assignment.
type GetShipmentQuery struct {
	shipmentID kernel.ShipmentID

	guard guard.ConstructorGuard
}

func NewGetShipmentQuery(shipmentID int64) (GetShipmentQuery, error) {
	id, err := kernel.NewShipmentID(shipmentID)
	if err != nil {
		return GetShipmentQuery{}, err
	}
	return GetShipmentQuery{shipmentID: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetShipmentQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentQueryIsNotConstructed)
}

func (q GetShipmentQuery) ShipmentID() kernel.ShipmentID { return q.shipmentID }
