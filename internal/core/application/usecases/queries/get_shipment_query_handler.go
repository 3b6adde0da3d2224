package queries

import (
	"context"
)

// GetShipmentQueryHandler returns errs.ObjectNotFoundError for unknown ids.
type GetShipmentQueryHandler struct {
	reader ShipmentReader
}

func NewGetShipmentQueryHandler(reader ShipmentReader) GetShipmentQueryHandler {
	return GetShipmentQueryHandler{reader: reader}
}

func (h GetShipmentQueryHandler) Handle(ctx context.Context, query GetShipmentQuery) (ShipmentResponse, error) {
	if err := query.Validate(); err != nil {
		return ShipmentResponse{}, err
	}

	s, err := h.reader.Get(ctx, query.ShipmentID())
	if err != nil {
		return ShipmentResponse{}, err
	}
	return newShipmentResponse(s), nil
}
