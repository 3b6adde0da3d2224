// Package eventrepo persists the append-only status history with gorm.
package eventrepo

import (
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

// StatusEventDTO is one row of status_events. The unique (shipment_id, sequence)
// index rejects a second writer of the same sequence number.
type StatusEventDTO struct {
	ID         int64     `gorm:"primaryKey"`
	ShipmentID int64     `gorm:"not null;uniqueIndex:idx_status_events_shipment_sequence,priority:1"`
	Sequence   int64     `gorm:"not null;uniqueIndex:idx_status_events_shipment_sequence,priority:2"`
	Status     int       `gorm:"not null"`
	OccurredAt time.Time `gorm:"not null"`
}

func (StatusEventDTO) TableName() string {
	return "status_events"
}

func fromDomain(ev shipment.StatusEvent) StatusEventDTO {
	return StatusEventDTO{
		ShipmentID: ev.ShipmentID().Int64(),
		Sequence:   ev.Sequence(),
		Status:     int(ev.Status()),
		OccurredAt: ev.Timestamp(),
	}
}

func toDomain(dto StatusEventDTO) (shipment.StatusEvent, error) {
	return shipment.RestoreStatusEvent(
		kernel.ShipmentID(dto.ShipmentID),
		shipment.Status(dto.Status),
		dto.OccurredAt,
		dto.Sequence,
	)
}
