// Package queries contains read-only operations of the CQRS architecture.
// Queries never change state and never take shipment locks.
package queries

import (
	"context"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

type (
	// StatusReader reads the status ledger.
	StatusReader interface {
		Snapshot(ctx context.Context, id kernel.ShipmentID) (shipment.Status, []shipment.StatusEvent, error)
	}

	// ShipmentReader reads shipment records outside of a transaction.
	ShipmentReader interface {
		Get(ctx context.Context, id kernel.ShipmentID) (*shipment.Shipment, error)
		List(ctx context.Context, status shipment.Status) ([]*shipment.Shipment, error)
	}
)

// ShipmentResponse is the read model of a shipment.
type ShipmentResponse struct {
	ID          kernel.ShipmentID
	Weight      float64
	Dimensions  string
	ProductType string
	Address     string
	Status      shipment.Status
	Assignment  *AssignmentResponse
}

type AssignmentResponse struct {
	RouteName    string
	CarrierName  string
	VehiclePlate string
}

func newShipmentResponse(s *shipment.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:          s.ID(),
		Weight:      s.Weight(),
		Dimensions:  s.Dimensions(),
		ProductType: s.ProductType(),
		Address:     s.Address(),
		Status:      s.Status(),
	}
	if a := s.Assignment(); a != nil {
		resp.Assignment = &AssignmentResponse{
			RouteName:    a.RouteName(),
			CarrierName:  a.CarrierName(),
			VehiclePlate: a.VehiclePlate(),
		}
	}
	return resp
}
