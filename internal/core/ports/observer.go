package ports

import (
	"errors"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

var (
	// ErrObserverLagging is returned by Deliver when the observer's outbound queue is full.
	ErrObserverLagging = errors.New("observer is lagging")

	// ErrObserverClosed is returned by Deliver after Close.
	ErrObserverClosed = errors.New("observer is closed")
)

// Observer is a connected client that receives status events.
type Observer interface {
	ID() kernel.UUID

	// Deliver hands ev to the observer without blocking.
	Deliver(ev shipment.StatusEvent) error

	// LastSeen is the last time the client showed signs of life.
	LastSeen() time.Time

	// Close releases the connection. It is safe to call more than once.
	Close()
}
