package tracking

import (
	"context"
	"errors"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const defaultRelayQueueSize = 1024

// BroadcasterOption customizes a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithRelay forwards published events to other instances through relay and
// delivers events received from it. origin identifies this instance.
func WithRelay(relay ports.StatusRelay, origin kernel.UUID) BroadcasterOption {
	return func(b *Broadcaster) {
		b.relay = relay
		b.origin = origin
	}
}

// WithRelayQueueSize bounds the number of events waiting to be relayed.
func WithRelayQueueSize(n int) BroadcasterOption {
	return func(b *Broadcaster) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// Broadcaster delivers status events to the observers registered for the
// event's shipment. Delivery never blocks: an observer that cannot take an event
// is treated as lagging and disconnected, so it can resynchronize from history.
type Broadcaster struct {
	registry  *Registry
	log       *logger.Logger
	relay     ports.StatusRelay
	origin    kernel.UUID
	queueSize int
	outbox    chan shipment.StatusEvent
}

func NewBroadcaster(registry *Registry, log *logger.Logger, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		registry:  registry,
		log:       log.Named("broadcaster"),
		queueSize: defaultRelayQueueSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.relay != nil {
		b.outbox = make(chan shipment.StatusEvent, b.queueSize)
	}
	return b
}

// Publish delivers ev to local observers and queues it for the relay.
func (b *Broadcaster) Publish(ev shipment.StatusEvent) {
	b.deliver(ev)

	if b.outbox == nil {
		return
	}
	select {
	case b.outbox <- ev:
	default:
		b.log.Warn("relay queue full, event not relayed",
			"shipment_id", ev.ShipmentID().Int64(), "sequence", ev.Sequence())
	}
}

// Run pumps the relay until ctx is done. Without a relay it just waits for ctx.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.relay == nil {
		<-ctx.Done()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-b.outbox:
				msg := ports.RelayMessage{Origin: b.origin, Event: ev}
				if err := b.relay.Publish(gctx, msg); err != nil && gctx.Err() == nil {
					b.log.Error("relay publish failed",
						"shipment_id", ev.ShipmentID().Int64(), "sequence", ev.Sequence(), "error", err)
				}
			}
		}
	})
	g.Go(func() error {
		err := b.relay.Subscribe(gctx, b.receive)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}

func (b *Broadcaster) receive(msg ports.RelayMessage) {
	if msg.Origin.IsEqual(b.origin) {
		return
	}
	b.deliver(msg.Event)
}

func (b *Broadcaster) deliver(ev shipment.StatusEvent) {
	for _, sub := range b.registry.subscriptionsOf(ev.ShipmentID()) {
		if _, err := sub.deliver(ev); err != nil {
			b.evict(sub.observer, ev, err)
		}
	}
}

func (b *Broadcaster) evict(observer ports.Observer, ev shipment.StatusEvent, cause error) {
	removed := b.registry.UnsubscribeAll(observer)
	observer.Close()

	log := b.log.With(
		"observer_id", observer.ID().String(),
		"shipment_id", ev.ShipmentID().Int64(),
		"sequence", ev.Sequence(),
		"subscriptions", removed,
	)
	if errors.Is(cause, ports.ErrObserverClosed) {
		log.Debug("closed observer removed")
		return
	}
	log.Warn("observer disconnected", "error", cause)
}
