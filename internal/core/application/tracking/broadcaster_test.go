package tracking_test

import (
	"context"
	"testing"
	"time"

	"shiptrack/internal/core/application/tracking"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_DeliversOnlyToObserversOfTheShipment(t *testing.T) {
	// Given
	r := tracking.NewRegistry(logger.NewNop())
	b := tracking.NewBroadcaster(r, logger.NewNop())
	of42, of43 := newFakeObserver(), newFakeObserver()
	require.NoError(t, r.Subscribe(42, of42))
	require.NoError(t, r.Subscribe(43, of43))

	// When
	b.Publish(event(t, 42, shipment.InTransit, 1))

	// Then
	got := of42.received()
	require.Len(t, got, 1)
	assert.Equal(t, kernel.ShipmentID(42), got[0].ShipmentID())
	assert.Equal(t, shipment.InTransit, got[0].Status())
	assert.Empty(t, of43.received())
}

func TestBroadcaster_EveryObserverGetsEachEventOnceInOrder(t *testing.T) {
	r := tracking.NewRegistry(logger.NewNop())
	b := tracking.NewBroadcaster(r, logger.NewNop())
	observers := []*fakeObserver{newFakeObserver(), newFakeObserver(), newFakeObserver()}
	for _, o := range observers {
		require.NoError(t, r.Subscribe(7, o))
	}

	b.Publish(event(t, 7, shipment.InTransit, 1))
	b.Publish(event(t, 7, shipment.Delivered, 2))

	for _, o := range observers {
		got := o.received()
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].Sequence())
		assert.Equal(t, int64(2), got[1].Sequence())
	}
}

func TestBroadcaster_DropsDuplicateAndStaleEvents(t *testing.T) {
	r := tracking.NewRegistry(logger.NewNop())
	b := tracking.NewBroadcaster(r, logger.NewNop())
	o := newFakeObserver()
	require.NoError(t, r.Subscribe(7, o))

	b.Publish(event(t, 7, shipment.InTransit, 1))
	b.Publish(event(t, 7, shipment.InTransit, 1))
	b.Publish(event(t, 7, shipment.Delivered, 2))
	b.Publish(event(t, 7, shipment.InTransit, 1))

	got := o.received()
	require.Len(t, got, 2)
	assert.Equal(t, []int64{1, 2}, []int64{got[0].Sequence(), got[1].Sequence()})
}

func TestBroadcaster_LateSubscriberStartsFromNextEvent(t *testing.T) {
	r := tracking.NewRegistry(logger.NewNop())
	b := tracking.NewBroadcaster(r, logger.NewNop())
	early, late := newFakeObserver(), newFakeObserver()
	require.NoError(t, r.Subscribe(7, early))

	b.Publish(event(t, 7, shipment.InTransit, 1))
	require.NoError(t, r.Subscribe(7, late))
	b.Publish(event(t, 7, shipment.Delivered, 2))

	assert.Len(t, early.received(), 2)
	got := late.received()
	require.Len(t, got, 1)
	assert.Equal(t, shipment.Delivered, got[0].Status())
}

func TestBroadcaster_LaggingObserverIsDisconnectedWithoutAffectingOthers(t *testing.T) {
	// Given
	r := tracking.NewRegistry(logger.NewNop())
	b := tracking.NewBroadcaster(r, logger.NewNop())
	slow := newFakeObserver()
	slow.capacity = 1
	healthy := newFakeObserver()
	for _, o := range []*fakeObserver{slow, healthy} {
		require.NoError(t, r.Subscribe(7, o))
		require.NoError(t, r.Subscribe(8, o))
	}

	// When
	b.Publish(event(t, 7, shipment.InTransit, 1))
	b.Publish(event(t, 7, shipment.Delivered, 2))
	b.Publish(event(t, 8, shipment.InTransit, 1))

	// Then
	assert.True(t, slow.isClosed())
	assert.Len(t, slow.received(), 1)
	assert.Len(t, healthy.received(), 3)
	assert.Equal(t, []ports.Observer{healthy}, r.ObserversOf(7))
	assert.Equal(t, []ports.Observer{healthy}, r.ObserversOf(8))
}

func TestBroadcaster_ClosedObserverIsRemoved(t *testing.T) {
	r := tracking.NewRegistry(logger.NewNop())
	b := tracking.NewBroadcaster(r, logger.NewNop())
	o := newFakeObserver()
	require.NoError(t, r.Subscribe(7, o))
	o.Close()

	b.Publish(event(t, 7, shipment.InTransit, 1))

	assert.Empty(t, r.ObserversOf(7))
}

func TestBroadcaster_Relay(t *testing.T) {
	// Given
	r := tracking.NewRegistry(logger.NewNop())
	relay := newFakeRelay()
	origin := kernel.NewUUID()
	b := tracking.NewBroadcaster(r, logger.NewNop(), tracking.WithRelay(relay, origin))
	o := newFakeObserver()
	require.NoError(t, r.Subscribe(7, o))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	t.Run("local events are relayed in order with this origin", func(t *testing.T) {
		b.Publish(event(t, 7, shipment.InTransit, 1))
		b.Publish(event(t, 9, shipment.InTransit, 1))

		for _, want := range []kernel.ShipmentID{7, 9} {
			select {
			case msg := <-relay.published:
				assert.True(t, msg.Origin.IsEqual(origin))
				assert.Equal(t, want, msg.Event.ShipmentID())
			case <-time.After(time.Second):
				t.Fatal("event was not relayed")
			}
		}
	})

	t.Run("own messages coming back are ignored", func(t *testing.T) {
		relay.incoming <- ports.RelayMessage{Origin: origin, Event: event(t, 7, shipment.Delivered, 2)}

		assert.Never(t, func() bool { return len(o.received()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	})

	t.Run("foreign messages are delivered locally", func(t *testing.T) {
		relay.incoming <- ports.RelayMessage{Origin: kernel.NewUUID(), Event: event(t, 7, shipment.Delivered, 2)}

		assert.Eventually(t, func() bool { return len(o.received()) == 2 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, shipment.Delivered, o.received()[1].Status())
	})

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestBroadcaster_RelayQueueOverflowDropsEvents(t *testing.T) {
	// Given
	r := tracking.NewRegistry(logger.NewNop())
	relay := newFakeRelay()
	b := tracking.NewBroadcaster(r, logger.NewNop(),
		tracking.WithRelay(relay, kernel.NewUUID()),
		tracking.WithRelayQueueSize(2),
	)
	o := newFakeObserver()
	require.NoError(t, r.Subscribe(7, o))

	// When
	for seq := int64(1); seq <= 4; seq++ {
		b.Publish(event(t, 7, shipment.InTransit, seq))
	}
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	// Then
	assert.Eventually(t, func() bool { return len(relay.published) == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return len(relay.published) > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int64(1), (<-relay.published).Event.Sequence())
	assert.Equal(t, int64(2), (<-relay.published).Event.Sequence())
	assert.Len(t, o.received(), 4, "local delivery is not affected by the relay queue")

	cancel()
	require.NoError(t, <-done)
}

func TestBroadcaster_RunWithoutRelayWaitsForContext(t *testing.T) {
	b := tracking.NewBroadcaster(tracking.NewRegistry(logger.NewNop()), logger.NewNop())
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.NoError(t, b.Run(ctx))
}
