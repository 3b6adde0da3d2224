package tracking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"

	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeObserver struct {
	id       kernel.UUID
	capacity int

	mu       sync.Mutex
	events   []shipment.StatusEvent
	closed   int
	lastSeen time.Time
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{id: kernel.NewUUID(), lastSeen: time.Now()}
}

func (o *fakeObserver) ID() kernel.UUID { return o.id }

func (o *fakeObserver) Deliver(ev shipment.StatusEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed > 0 {
		return ports.ErrObserverClosed
	}
	if o.capacity > 0 && len(o.events) >= o.capacity {
		return ports.ErrObserverLagging
	}
	o.events = append(o.events, ev)
	return nil
}

func (o *fakeObserver) LastSeen() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSeen
}

func (o *fakeObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed++
}

func (o *fakeObserver) setLastSeen(t time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastSeen = t
}

func (o *fakeObserver) received() []shipment.StatusEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]shipment.StatusEvent(nil), o.events...)
}

func (o *fakeObserver) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed > 0
}

func event(t *testing.T, id kernel.ShipmentID, status shipment.Status, seq int64) shipment.StatusEvent {
	t.Helper()
	ev, err := shipment.RestoreStatusEvent(id, status, at, seq)
	require.NoError(t, err)
	return ev
}

type fakeRelay struct {
	published chan ports.RelayMessage
	incoming  chan ports.RelayMessage
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		published: make(chan ports.RelayMessage, 16),
		incoming:  make(chan ports.RelayMessage, 16),
	}
}

func (r *fakeRelay) Publish(_ context.Context, msg ports.RelayMessage) error {
	r.published <- msg
	return nil
}

func (r *fakeRelay) Subscribe(ctx context.Context, handle func(ports.RelayMessage)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-r.incoming:
			handle(msg)
		}
	}
}

func (r *fakeRelay) Close() error { return nil }
