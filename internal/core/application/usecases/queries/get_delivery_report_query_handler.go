package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"shiptrack/internal/core/domain/model/shipment"
)

// GetDeliveryReportQueryHandler builds the carrier performance report from the
// delivered shipments and their status history.
type GetDeliveryReportQueryHandler struct {
	shipments ShipmentReader
	statuses  StatusReader
}

func NewGetDeliveryReportQueryHandler(shipments ShipmentReader, statuses StatusReader) GetDeliveryReportQueryHandler {
	return GetDeliveryReportQueryHandler{shipments: shipments, statuses: statuses}
}

// Handle returns rows ordered by carrier name and never a nil slice. A shipment
// counts when its Delivered event falls inside the query window.
func (h GetDeliveryReportQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryReportQuery,
) ([]CarrierPerformanceResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	delivered, err := h.shipments.List(ctx, shipment.Delivered)
	if err != nil {
		return nil, err
	}

	type totals struct {
		elapsed time.Duration
		count   int
	}
	byCarrier := make(map[string]*totals)
	for _, s := range delivered {
		a := s.Assignment()
		if a == nil {
			continue
		}
		if query.Carrier() != "" && !strings.EqualFold(a.CarrierName(), query.Carrier()) {
			continue
		}

		_, history, err := h.statuses.Snapshot(ctx, s.ID())
		if err != nil {
			return nil, err
		}
		elapsed, deliveredAt, ok := deliveryTime(history)
		if !ok || deliveredAt.Before(query.From()) || !deliveredAt.Before(query.Until()) {
			continue
		}

		t, found := byCarrier[a.CarrierName()]
		if !found {
			t = &totals{}
			byCarrier[a.CarrierName()] = t
		}
		t.elapsed += elapsed
		t.count++
	}

	rows := make([]CarrierPerformanceResponse, 0, len(byCarrier))
	for name, t := range byCarrier {
		rows = append(rows, CarrierPerformanceResponse{
			CarrierName:        name,
			AvgDeliveryTime:    t.elapsed / time.Duration(t.count),
			CompletedShipments: t.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CarrierName < rows[j].CarrierName })

	return paginate(rows, query.Page(), query.PageSize()), nil
}

func deliveryTime(history []shipment.StatusEvent) (elapsed time.Duration, deliveredAt time.Time, ok bool) {
	var inTransitAt time.Time
	var seenInTransit bool
	for _, ev := range history {
		switch ev.Status() {
		case shipment.InTransit:
			inTransitAt, seenInTransit = ev.Timestamp(), true
		case shipment.Delivered:
			if !seenInTransit {
				return 0, time.Time{}, false
			}
			return ev.Timestamp().Sub(inTransitAt), ev.Timestamp(), true
		}
	}
	return 0, time.Time{}, false
}

func paginate(rows []CarrierPerformanceResponse, page, pageSize int) []CarrierPerformanceResponse {
	if pageSize == 0 {
		return rows
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []CarrierPerformanceResponse{}
	}
	return rows[start:min(start+pageSize, len(rows))]
}
