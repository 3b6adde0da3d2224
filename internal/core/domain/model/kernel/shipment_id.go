package kernel

import (
	"fmt"
	"strconv"

	"shiptrack/internal/pkg/errs"
)

// ShipmentID identifies a shipment. Valid identifiers are strictly positive; the
// zero value means "no shipment".
type ShipmentID int64

// NewShipmentID validates raw and converts it to a ShipmentID.
//
// Returns:
//   - the identifier when raw > 0
//   - errs.ValueIsInvalidError otherwise
func NewShipmentID(raw int64) (ShipmentID, error) {
	id := ShipmentID(raw)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// ParseShipmentID parses a decimal shipment identifier, as found in URLs and
// websocket messages.
func ParseShipmentID(s string) (ShipmentID, error) {
	raw, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("shipmentId", err)
	}
	return NewShipmentID(raw)
}

// Validate reports whether the identifier is positive.
func (id ShipmentID) Validate() error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("shipmentId", fmt.Errorf("%d is not greater than 0", int64(id)))
	}
	return nil
}

func (id ShipmentID) Int64() int64 {
	return int64(id)
}

func (id ShipmentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
