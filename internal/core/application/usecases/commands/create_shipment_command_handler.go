package commands

import (
	"context"

	"shiptrack/internal/core/domain/model/shipment"
)

// CreateShipmentCommandHandler persists new Pending shipments under a freshly
// allocated id.
type CreateShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
}

func NewCreateShipmentCommandHandler(uowFactory ShipmentUoWFactory) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle allocates an id, builds the shipment and stores it in one transaction.
func (h CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()
	id, err := repo.NextID(ctx)
	if err != nil {
		return nil, err
	}

	s, err := shipment.NewShipment(id, cmd.Weight(), cmd.Dimensions(), cmd.ProductType(), cmd.Address())
	if err != nil {
		return nil, err
	}

	if err = repo.Add(ctx, s); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return s, nil
}
