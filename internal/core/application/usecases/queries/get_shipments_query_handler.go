package queries

import (
	"context"
)

type GetShipmentsQueryHandler struct {
	reader ShipmentReader
}

func NewGetShipmentsQueryHandler(reader ShipmentReader) GetShipmentsQueryHandler {
	return GetShipmentsQueryHandler{reader: reader}
}

// Handle never returns a nil slice.
func (h GetShipmentsQueryHandler) Handle(ctx context.Context, query GetShipmentsQuery) ([]ShipmentResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	found, err := h.reader.List(ctx, query.Status())
	if err != nil {
		return nil, err
	}

	out := make([]ShipmentResponse, 0, len(found))
	for _, s := range found {
		out = append(out, newShipmentResponse(s))
	}
	return out, nil
}
