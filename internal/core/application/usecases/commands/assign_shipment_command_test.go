package commands_test

import (
	"testing"

	"shiptrack/internal/core/application/usecases/commands"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssignShipmentCommand(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		route   string
		carrier string
		vehicle string
		wantErr error
	}{
		{name: "valid", id: 7, route: "R1", carrier: "C1", vehicle: "V1"},
		{name: "empty route", id: 7, route: "", carrier: "C1", vehicle: "V1", wantErr: errs.ErrValueIsRequired},
		{name: "blank vehicle", id: 7, route: "R1", carrier: "C1", vehicle: "  ", wantErr: errs.ErrValueIsRequired},
		{name: "zero id", id: 0, route: "R1", carrier: "C1", vehicle: "V1", wantErr: errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := commands.NewAssignShipmentCommand(tt.id, tt.route, tt.carrier, tt.vehicle)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NoError(t, cmd.Validate())
			assert.Equal(t, kernel.ShipmentID(tt.id), cmd.ShipmentID())
			assert.Equal(t, "R1", cmd.Assignment().RouteName())
			assert.Equal(t, "C1", cmd.Assignment().CarrierName())
			assert.Equal(t, "V1", cmd.Assignment().VehiclePlate())
		})
	}
}

func TestAssignShipmentCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.AssignShipmentCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrAssignShipmentCommandIsNotConstructed)
}
