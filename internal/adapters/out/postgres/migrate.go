package postgres

import (
	"shiptrack/internal/adapters/out/postgres/eventrepo"
	"shiptrack/internal/adapters/out/postgres/shipmentrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the shipments and status_events tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&shipmentrepo.ShipmentDTO{}, &eventrepo.StatusEventDTO{})
}
