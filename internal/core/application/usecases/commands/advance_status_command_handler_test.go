package commands_test

import (
	"testing"

	"shiptrack/internal/core/application/usecases/commands"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceStatusCommandHandler_Handle(t *testing.T) {
	// Given
	f := newFixture(t)
	s := f.createShipment(t)
	_, err := commands.NewAssignShipmentCommandHandler(f.uowFactory, new(MockEntityStore).resolvesAll(), f.ledger).
		Handle(t.Context(), assignCmd(t, s.ID().Int64()))
	require.NoError(t, err)
	cmd, err := commands.NewAdvanceStatusCommand(s.ID().Int64(), "Delivered")
	require.NoError(t, err)
	h := commands.NewAdvanceStatusCommandHandler(f.uowFactory, f.ledger)

	// When
	ev, err := h.Handle(t.Context(), cmd)

	// Then
	require.NoError(t, err)
	assert.Equal(t, shipment.Delivered, ev.Status())
	assert.Equal(t, int64(2), ev.Sequence())
	assert.Len(t, f.publisher.Events(), 2)

	_, err = h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrTransitionIsIllegal)
}

func TestAdvanceStatusCommandHandler_Handle_PendingNeedsAssignment(t *testing.T) {
	for _, status := range []string{"InTransit", "Delivered"} {
		t.Run(status, func(t *testing.T) {
			// Given
			f := newFixture(t)
			s := f.createShipment(t)
			cmd, err := commands.NewAdvanceStatusCommand(s.ID().Int64(), status)
			require.NoError(t, err)

			// When
			_, err = commands.NewAdvanceStatusCommandHandler(f.uowFactory, f.ledger).Handle(t.Context(), cmd)

			// Then
			var invalidState *errs.InvalidStateError
			require.ErrorAs(t, err, &invalidState)
			assert.Equal(t, "Pending", invalidState.State)
			assert.Empty(t, f.publisher.Events())

			// the shipment can still be assigned
			assigned, err := commands.NewAssignShipmentCommandHandler(f.uowFactory, new(MockEntityStore).resolvesAll(), f.ledger).
				Handle(t.Context(), assignCmd(t, s.ID().Int64()))
			require.NoError(t, err)
			assert.Equal(t, shipment.InTransit, assigned.Status())
			assert.NotNil(t, assigned.Assignment())
		})
	}
}

func TestAdvanceStatusCommandHandler_Handle_RepeatedStatus(t *testing.T) {
	f := newFixture(t)
	s := f.createShipment(t)
	_, err := commands.NewAssignShipmentCommandHandler(f.uowFactory, new(MockEntityStore).resolvesAll(), f.ledger).
		Handle(t.Context(), assignCmd(t, s.ID().Int64()))
	require.NoError(t, err)
	cmd, err := commands.NewAdvanceStatusCommand(s.ID().Int64(), "InTransit")
	require.NoError(t, err)

	_, err = commands.NewAdvanceStatusCommandHandler(f.uowFactory, f.ledger).Handle(t.Context(), cmd)

	var transition *errs.IllegalTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "InTransit", transition.From)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestAdvanceStatusCommandHandler_Handle_UnknownShipment(t *testing.T) {
	f := newFixture(t)
	cmd, err := commands.NewAdvanceStatusCommand(99, "InTransit")
	require.NoError(t, err)

	_, err = commands.NewAdvanceStatusCommandHandler(f.uowFactory, f.ledger).Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
