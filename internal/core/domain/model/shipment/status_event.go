package shipment

import (
	"fmt"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/pkg/errs"
)

// StatusEvent records one accepted status change. Events are immutable; Sequence
// starts at 1 for each shipment and increases by one per event.
type StatusEvent struct {
	shipmentID kernel.ShipmentID
	status     Status
	timestamp  time.Time
	sequence   int64
}

// RestoreStatusEvent rebuilds an event read from storage or received from another
// instance, validating its fields.
func RestoreStatusEvent(
	shipmentID kernel.ShipmentID,
	status Status,
	timestamp time.Time,
	sequence int64,
) (StatusEvent, error) {
	if err := shipmentID.Validate(); err != nil {
		return StatusEvent{}, err
	}
	if err := status.Validate(); err != nil {
		return StatusEvent{}, err
	}
	if sequence < 1 {
		return StatusEvent{}, errs.NewValueIsInvalidErrorWithCause(
			"sequence", fmt.Errorf("%d is not greater than 0", sequence))
	}
	return StatusEvent{shipmentID: shipmentID, status: status, timestamp: timestamp.UTC(), sequence: sequence}, nil
}

func (e StatusEvent) ShipmentID() kernel.ShipmentID { return e.shipmentID }
func (e StatusEvent) Status() Status                { return e.status }
func (e StatusEvent) Timestamp() time.Time          { return e.timestamp }
func (e StatusEvent) Sequence() int64               { return e.sequence }

func (e StatusEvent) String() string {
	return fmt.Sprintf("shipment %s #%d %s", e.shipmentID, e.sequence, e.status)
}
