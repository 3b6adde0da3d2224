// Package memory provides an in-process transactional store implementing the
// persistence ports. Writes made inside a unit of work are buffered and applied
// atomically on Commit; reads inside the unit of work see its own writes.
//
// The store backs the "memory" storage backend for local runs and the
// application-level tests. It keeps nothing across restarts.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/errs"
)

// shipmentRecord is the stored form of a shipment. Aggregates are rebuilt from it
// on every read so callers never share mutable state with the store.
type shipmentRecord struct {
	id          kernel.ShipmentID
	weight      float64
	dimensions  string
	productType string
	address     string
	status      shipment.Status
	sequence    int64
	assignment  *shipment.Assignment
}

func recordOf(s *shipment.Shipment) shipmentRecord {
	return shipmentRecord{
		id:          s.ID(),
		weight:      s.Weight(),
		dimensions:  s.Dimensions(),
		productType: s.ProductType(),
		address:     s.Address(),
		status:      s.Status(),
		sequence:    s.Sequence(),
		assignment:  s.Assignment(),
	}
}

func (r shipmentRecord) restore() (*shipment.Shipment, error) {
	return shipment.RestoreShipment(
		r.id, r.weight, r.dimensions, r.productType, r.address, r.status, r.sequence, r.assignment)
}

// Store holds committed state.
type Store struct {
	mu        sync.RWMutex
	lastID    int64
	shipments map[kernel.ShipmentID]shipmentRecord
	events    map[kernel.ShipmentID][]shipment.StatusEvent
}

func NewStore() *Store {
	return &Store{
		shipments: make(map[kernel.ShipmentID]shipmentRecord),
		events:    make(map[kernel.ShipmentID][]shipment.StatusEvent),
	}
}

// nextID behaves like a database sequence: it is not rolled back.
func (s *Store) nextID() kernel.ShipmentID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return kernel.ShipmentID(s.lastID)
}

func (s *Store) shipment(id kernel.ShipmentID) (shipmentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.shipments[id]
	return r, ok
}

func (s *Store) history(id kernel.ShipmentID) []shipment.StatusEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shipment.StatusEvent, 0, len(s.events[id]))
	return append(out, s.events[id]...)
}

func (s *Store) list() []shipmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shipmentRecord, 0, len(s.shipments))
	for _, r := range s.shipments {
		out = append(out, r)
	}
	return out
}

// batch is the set of writes buffered by one unit of work.
type batch struct {
	added   map[kernel.ShipmentID]shipmentRecord
	updated map[kernel.ShipmentID]shipmentRecord
	events  []shipment.StatusEvent
}

func newBatch() *batch {
	return &batch{
		added:   make(map[kernel.ShipmentID]shipmentRecord),
		updated: make(map[kernel.ShipmentID]shipmentRecord),
	}
}

func (b *batch) isEmpty() bool {
	return len(b.added) == 0 && len(b.updated) == 0 && len(b.events) == 0
}

// apply validates b against committed state and applies it as a whole or not at all.
func (s *Store) apply(b *batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range b.added {
		if _, ok := s.shipments[id]; ok {
			return errs.NewVersionIsInvalidErrorWithCause("shipmentId", fmt.Errorf("%s already exists", id))
		}
	}
	for id := range b.updated {
		_, committed := s.shipments[id]
		_, added := b.added[id]
		if !committed && !added {
			return errs.NewObjectNotFoundError("shipmentId", id.String())
		}
	}
	expected := make(map[kernel.ShipmentID]int64)
	for _, ev := range b.events {
		id := ev.ShipmentID()
		want, ok := expected[id]
		if !ok {
			want = int64(len(s.events[id])) + 1
		}
		if ev.Sequence() != want {
			return errs.NewVersionIsInvalidError("sequence")
		}
		expected[id] = want + 1
	}

	for id, r := range b.added {
		s.shipments[id] = r
	}
	for id, r := range b.updated {
		s.shipments[id] = r
	}
	for _, ev := range b.events {
		s.events[ev.ShipmentID()] = append(s.events[ev.ShipmentID()], ev)
	}
	return nil
}

func sortRecords(records []shipmentRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].id < records[j].id })
}
