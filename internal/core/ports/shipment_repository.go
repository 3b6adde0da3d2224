package ports

import (
	"context"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment aggregates.
type ShipmentRepository interface {
	// NextID allocates a fresh shipment identifier.
	NextID(ctx context.Context) (kernel.ShipmentID, error)

	// Add persists a new shipment. The identifier must not be in use.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists status, sequence and assignment of an existing shipment.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// Get returns errs.ObjectNotFoundError for unknown identifiers.
	Get(ctx context.Context, id kernel.ShipmentID) (*shipment.Shipment, error)

	// GetForUpdate is Get plus a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.ShipmentID) (*shipment.Shipment, error)

	// List returns shipments ordered by id. shipment.Unknown means no status filter.
	List(ctx context.Context, status shipment.Status) ([]*shipment.Shipment, error)
}

// StatusEventRepository is the append-only store behind the status ledger.
type StatusEventRepository interface {
	// Append stores ev. A second event with the same shipment and sequence fails
	// with errs.VersionIsInvalidError.
	Append(ctx context.Context, ev shipment.StatusEvent) error

	// Last returns the highest-sequence event; ok is false when there is none.
	Last(ctx context.Context, id kernel.ShipmentID) (ev shipment.StatusEvent, ok bool, err error)

	// History returns all events of a shipment, oldest first.
	History(ctx context.Context, id kernel.ShipmentID) ([]shipment.StatusEvent, error)
}
