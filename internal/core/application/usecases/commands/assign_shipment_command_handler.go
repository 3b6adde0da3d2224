package commands

import (
	"context"

	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// AssignShipmentCommandHandler is the assignment coordinator. It checks the
// shipment, resolves the three references against the entity store and then
// records the assignment through the status ledger.
//
// Entity store lookups run concurrently and before the ledger takes the
// shipment's lock; the ledger re-checks the Pending status under the lock, so of
// two concurrent assignments exactly one succeeds.
//
// Example:
//
//	handler := NewAssignShipmentCommandHandler(uowFactory, entityStore, ledger)
//	s, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):      // unknown shipment
//	case errors.Is(err, errs.ErrStateIsInvalid):      // not Pending any more
//	case errors.Is(err, errs.ErrReferenceNotFound):   // route, carrier or vehicle unknown
//	}
type AssignShipmentCommandHandler struct {
	uowFactory  ShipmentUoWFactory
	entityStore ports.EntityStore
	ledger      StatusLedger
}

func NewAssignShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	entityStore ports.EntityStore,
	ledger StatusLedger,
) AssignShipmentCommandHandler {
	return AssignShipmentCommandHandler{
		uowFactory:  uowFactory,
		entityStore: entityStore,
		ledger:      ledger,
	}
}

// Handle returns the assigned shipment, now InTransit.
func (h AssignShipmentCommandHandler) Handle(ctx context.Context, cmd AssignShipmentCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	current, err := h.uowFactory.Create().ShipmentRepository().Get(ctx, cmd.ShipmentID())
	if err != nil {
		return nil, err
	}
	if current.Status() != shipment.Pending {
		return nil, errs.NewInvalidStateError("assign", current.Status().String())
	}

	if err = h.resolve(ctx, cmd.Assignment()); err != nil {
		return nil, err
	}

	assigned, _, err := h.ledger.Assign(ctx, cmd.ShipmentID(), cmd.Assignment())
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

func (h AssignShipmentCommandHandler) resolve(ctx context.Context, a shipment.Assignment) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.entityStore.ResolveRoute(gctx, a.RouteName()) })
	g.Go(func() error { return h.entityStore.ResolveCarrier(gctx, a.CarrierName()) })
	g.Go(func() error { return h.entityStore.ResolveVehicle(gctx, a.VehiclePlate()) })
	return g.Wait()
}
