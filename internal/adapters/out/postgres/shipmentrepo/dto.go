// Package shipmentrepo persists shipment aggregates with gorm.
package shipmentrepo

import (
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

// ShipmentDTO is the row of the shipments table. The primary key is backed by
// the shipments_id_seq sequence, which NextID draws from.
type ShipmentDTO struct {
	ID          int64 `gorm:"primaryKey"`
	Weight      float64
	Dimensions  string
	ProductType string
	Address     string
	Status      int           `gorm:"index"`
	Sequence    int64         `gorm:"not null;default:0"`
	Assignment  AssignmentDTO `gorm:"embedded;embeddedPrefix:assignment_"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

// AssignmentDTO holds the assignment columns; all empty means unassigned.
type AssignmentDTO struct {
	Route   string
	Carrier string
	Vehicle string
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	dto := ShipmentDTO{
		ID:          s.ID().Int64(),
		Weight:      s.Weight(),
		Dimensions:  s.Dimensions(),
		ProductType: s.ProductType(),
		Address:     s.Address(),
		Status:      int(s.Status()),
		Sequence:    s.Sequence(),
	}
	if a := s.Assignment(); a != nil {
		dto.Assignment = AssignmentDTO{
			Route:   a.RouteName(),
			Carrier: a.CarrierName(),
			Vehicle: a.VehiclePlate(),
		}
	}
	return dto
}

func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	var assignment *shipment.Assignment
	if dto.Assignment != (AssignmentDTO{}) {
		a, err := shipment.NewAssignment(dto.Assignment.Route, dto.Assignment.Carrier, dto.Assignment.Vehicle)
		if err != nil {
			return nil, err
		}
		assignment = &a
	}

	return shipment.RestoreShipment(
		kernel.ShipmentID(dto.ID),
		dto.Weight,
		dto.Dimensions,
		dto.ProductType,
		dto.Address,
		shipment.Status(dto.Status),
		dto.Sequence,
		assignment,
	)
}
