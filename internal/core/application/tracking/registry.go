// Package tracking holds the process-wide subscription registry and the status
// broadcaster that pushes committed status events to subscribed observers.
package tracking

import (
	"errors"
	"sync"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/logger"
)

// ErrRegistryClosed is returned by Subscribe after Close.
var ErrRegistryClosed = errors.New("subscription registry is closed")

// subscription binds one observer to one shipment. lastSequence is the highest
// sequence delivered through it; older or repeated events are dropped.
type subscription struct {
	mu           sync.Mutex
	observer     ports.Observer
	lastSequence int64
}

// deliver returns false without error when ev was already superseded.
func (s *subscription) deliver(ev shipment.StatusEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Sequence() <= s.lastSequence {
		return false, nil
	}
	if err := s.observer.Deliver(ev); err != nil {
		return false, err
	}
	s.lastSequence = ev.Sequence()
	return true, nil
}

type observerEntry struct {
	observer  ports.Observer
	shipments map[kernel.ShipmentID]struct{}
}

// Registry maps shipment ids to the observers watching them. It never checks
// that a shipment exists. All methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	byShipment map[kernel.ShipmentID]map[kernel.UUID]*subscription
	byObserver map[kernel.UUID]*observerEntry
	closed     bool
	log        *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		byShipment: make(map[kernel.ShipmentID]map[kernel.UUID]*subscription),
		byObserver: make(map[kernel.UUID]*observerEntry),
		log:        log.Named("registry"),
	}
}

// Subscribe binds observer to the shipment. Subscribing twice is a no-op.
func (r *Registry) Subscribe(id kernel.ShipmentID, observer ports.Observer) error {
	if err := id.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}

	observerID := observer.ID()
	subs, ok := r.byShipment[id]
	if !ok {
		subs = make(map[kernel.UUID]*subscription)
		r.byShipment[id] = subs
	}
	if _, ok = subs[observerID]; ok {
		return nil
	}
	subs[observerID] = &subscription{observer: observer}

	entry, ok := r.byObserver[observerID]
	if !ok {
		entry = &observerEntry{observer: observer, shipments: make(map[kernel.ShipmentID]struct{})}
		r.byObserver[observerID] = entry
	}
	entry.shipments[id] = struct{}{}

	r.log.Debug("observer subscribed", "observer_id", observerID.String(), "shipment_id", id.Int64())
	return nil
}

// Unsubscribe removes a single binding. Unknown bindings are ignored.
func (r *Registry) Unsubscribe(id kernel.ShipmentID, observer ports.Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	observerID := observer.ID()
	r.unbindLocked(id, observerID)
	if entry, ok := r.byObserver[observerID]; ok {
		delete(entry.shipments, id)
		if len(entry.shipments) == 0 {
			delete(r.byObserver, observerID)
		}
	}
}

// UnsubscribeAll removes every binding of observer and reports how many there were.
// The observer itself is not closed.
func (r *Registry) UnsubscribeAll(observer ports.Observer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeObserverLocked(observer.ID())
}

// ObserversOf returns a snapshot of the observers bound to the shipment.
func (r *Registry) ObserversOf(id kernel.ShipmentID) []ports.Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.byShipment[id]
	out := make([]ports.Observer, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.observer)
	}
	return out
}

// Sweep unsubscribes and closes observers not seen since cutoff.
// It returns the number of observers removed.
func (r *Registry) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	var stale []ports.Observer
	for observerID, entry := range r.byObserver {
		if entry.observer.LastSeen().Before(cutoff) {
			stale = append(stale, entry.observer)
			r.removeObserverLocked(observerID)
		}
	}
	r.mu.Unlock()

	for _, o := range stale {
		o.Close()
		r.log.Info("stale observer removed", "observer_id", o.ID().String(), "last_seen", o.LastSeen())
	}
	return len(stale)
}

// Close removes and closes every observer. Later Subscribe calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	observers := make([]ports.Observer, 0, len(r.byObserver))
	for _, entry := range r.byObserver {
		observers = append(observers, entry.observer)
	}
	r.byShipment = make(map[kernel.ShipmentID]map[kernel.UUID]*subscription)
	r.byObserver = make(map[kernel.UUID]*observerEntry)
	r.mu.Unlock()

	for _, o := range observers {
		o.Close()
	}
}

// Stats reports the number of distinct observers and of bindings.
func (r *Registry) Stats() (observers, subscriptions int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, subs := range r.byShipment {
		subscriptions += len(subs)
	}
	return len(r.byObserver), subscriptions
}

func (r *Registry) subscriptionsOf(id kernel.ShipmentID) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.byShipment[id]
	out := make([]*subscription, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

func (r *Registry) removeObserverLocked(observerID kernel.UUID) int {
	entry, ok := r.byObserver[observerID]
	if !ok {
		return 0
	}
	for id := range entry.shipments {
		r.unbindLocked(id, observerID)
	}
	delete(r.byObserver, observerID)
	return len(entry.shipments)
}

func (r *Registry) unbindLocked(id kernel.ShipmentID, observerID kernel.UUID) {
	subs, ok := r.byShipment[id]
	if !ok {
		return
	}
	delete(subs, observerID)
	if len(subs) == 0 {
		delete(r.byShipment, id)
	}
}
