package commands

import (
	"context"

	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/errs"
)

// AdvanceStatusCommandHandler appends a status change through the ledger.
//
// A Pending shipment only leaves Pending through assignment, so it is rejected
// with errs.InvalidStateError. Otherwise the ledger fails with
// errs.IllegalTransitionError unless the requested status is the immediate
// successor. Unknown shipments fail with errs.ObjectNotFoundError.
type AdvanceStatusCommandHandler struct {
	uowFactory ShipmentUoWFactory
	ledger     StatusLedger
}

func NewAdvanceStatusCommandHandler(uowFactory ShipmentUoWFactory, ledger StatusLedger) AdvanceStatusCommandHandler {
	return AdvanceStatusCommandHandler{uowFactory: uowFactory, ledger: ledger}
}

func (h AdvanceStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceStatusCommand) (shipment.StatusEvent, error) {
	if err := cmd.Validate(); err != nil {
		return shipment.StatusEvent{}, err
	}

	// Status never moves back to Pending, so a stale read here cannot let an
	// unassigned shipment through.
	current, err := h.uowFactory.Create().ShipmentRepository().Get(ctx, cmd.ShipmentID())
	if err != nil {
		return shipment.StatusEvent{}, err
	}
	if current.Status() == shipment.Pending {
		return shipment.StatusEvent{}, errs.NewInvalidStateError("status update before assignment", current.Status().String())
	}

	return h.ledger.Append(ctx, cmd.ShipmentID(), cmd.Status())
}
