package queries

import (
	"errors"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/guard"
)

var ErrGetShipmentStatusQueryIsNotConstructed = errors.New(
	"GetShipmentStatusQuery must be created via NewGetShipmentStatusQuery constructor",
)

// GetShipmentStatusQuery asks for the current status of a shipment together with
// its full history.
//
// Example:
//
//	query, err := NewGetShipmentStatusQuery(7)
//	resp, err := handler.Handle(ctx, query)
//	fmt.Println(resp.CurrentStatus, len(resp.History)) // InTransit 1
type GetShipmentStatusQuery struct {
	shipmentID kernel.ShipmentID

	guard guard.ConstructorGuard
}

func NewGetShipmentStatusQuery(shipmentID int64) (GetShipmentStatusQuery, error) {
	id, err := kernel.NewShipmentID(shipmentID)
	if err != nil {
		return GetShipmentStatusQuery{}, err
	}
	return GetShipmentStatusQuery{shipmentID: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetShipmentStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentStatusQueryIsNotConstructed)
}

func (q GetShipmentStatusQuery) ShipmentID() kernel.ShipmentID { return q.shipmentID }

// GetShipmentStatusQueryResponse carries CurrentStatus Unknown and an empty
// History when nothing has been recorded yet.
type GetShipmentStatusQueryResponse struct {
	ShipmentID    kernel.ShipmentID
	CurrentStatus shipment.Status
	History       []StatusEventResponse
}

type StatusEventResponse struct {
	Status    shipment.Status
	Timestamp time.Time
	Sequence  int64
}
