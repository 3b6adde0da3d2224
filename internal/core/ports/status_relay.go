package ports

import (
	"context"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
)

// RelayMessage carries a status event between server instances. Origin identifies
// the instance that committed the event.
type RelayMessage struct {
	Origin kernel.UUID
	Event  shipment.StatusEvent
}

// StatusRelay fans status events out to the other server instances.
type StatusRelay interface {
	Publish(ctx context.Context, msg RelayMessage) error

	// Subscribe calls handle for every received message until ctx is done or the
	// relay is closed.
	Subscribe(ctx context.Context, handle func(RelayMessage)) error

	Close() error
}
