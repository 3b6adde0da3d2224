package queries

import (
	"context"
)

// GetShipmentStatusQueryHandler reads status and history from one ledger
// snapshot, so the reported status always matches the last history entry.
type GetShipmentStatusQueryHandler struct {
	reader StatusReader
}

func NewGetShipmentStatusQueryHandler(reader StatusReader) GetShipmentStatusQueryHandler {
	return GetShipmentStatusQueryHandler{reader: reader}
}

func (h GetShipmentStatusQueryHandler) Handle(
	ctx context.Context,
	query GetShipmentStatusQuery,
) (GetShipmentStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShipmentStatusQueryResponse{}, err
	}

	current, history, err := h.reader.Snapshot(ctx, query.ShipmentID())
	if err != nil {
		return GetShipmentStatusQueryResponse{}, err
	}

	resp := GetShipmentStatusQueryResponse{
		ShipmentID:    query.ShipmentID(),
		CurrentStatus: current,
		History:       make([]StatusEventResponse, 0, len(history)),
	}
	for _, ev := range history {
		resp.History = append(resp.History, StatusEventResponse{
			Status:    ev.Status(),
			Timestamp: ev.Timestamp(),
			Sequence:  ev.Sequence(),
		})
	}
	return resp, nil
}
