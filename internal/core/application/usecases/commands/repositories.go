// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// Every command is built by a validating constructor and executed by a handler.
package commands

import (
	"context"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ShipmentRepoFactory provides access to the shipment repository within a transaction.
	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	// ShipmentUoW manages transactions for shipment-only operations.
	ShipmentUoW interface {
		TxManager
		ShipmentRepoFactory
	}

	// ShipmentUoWFactory creates new shipment unit of work instances.
	ShipmentUoWFactory interface {
		Create() ShipmentUoW
	}

	// StatusLedger is the part of the status ledger that commands write through.
	// Status changes never bypass it, so every change is sequenced and broadcast.
	StatusLedger interface {
		Append(ctx context.Context, id kernel.ShipmentID, newStatus shipment.Status) (shipment.StatusEvent, error)
		Assign(
			ctx context.Context,
			id kernel.ShipmentID,
			assignment shipment.Assignment,
		) (*shipment.Shipment, shipment.StatusEvent, error)
	}
)
