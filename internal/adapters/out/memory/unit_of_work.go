package memory

import (
	"context"
	"errors"
	"sync"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/errs"
)

// ErrNoActiveTransaction is returned by Commit and Rollback without a preceding Begin.
var ErrNoActiveTransaction = errors.New("no active transaction")

// UnitOfWorkFactory creates UnitOfWork instances over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork buffers writes between Begin and Commit. Outside a transaction each
// write is applied immediately. Row locks are not emulated: GetForUpdate is Get,
// and callers serialize writers per shipment themselves.
type UnitOfWork struct {
	mu    sync.Mutex
	store *Store
	tx    *batch
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	if uow.tx == nil {
		uow.tx = newBatch()
	}
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	if uow.tx == nil {
		return ErrNoActiveTransaction
	}
	tx := uow.tx
	uow.tx = nil
	if tx.isEmpty() {
		return nil
	}
	return uow.store.apply(tx)
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	if uow.tx == nil {
		return ErrNoActiveTransaction
	}
	uow.tx = nil
	return nil
}

func (uow *UnitOfWork) ShipmentRepository() ports.ShipmentRepository {
	return &shipmentRepository{uow: uow}
}

func (uow *UnitOfWork) StatusEventRepository() ports.StatusEventRepository {
	return &statusEventRepository{uow: uow}
}

// write stages fn's changes in the open transaction, or applies them at once.
func (uow *UnitOfWork) write(fn func(b *batch)) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	if uow.tx != nil {
		fn(uow.tx)
		return nil
	}
	b := newBatch()
	fn(b)
	return uow.store.apply(b)
}

func (uow *UnitOfWork) lookup(id kernel.ShipmentID) (shipmentRecord, bool) {
	uow.mu.Lock()
	if uow.tx != nil {
		if r, ok := uow.tx.updated[id]; ok {
			uow.mu.Unlock()
			return r, true
		}
		if r, ok := uow.tx.added[id]; ok {
			uow.mu.Unlock()
			return r, true
		}
	}
	uow.mu.Unlock()
	return uow.store.shipment(id)
}

func (uow *UnitOfWork) events(id kernel.ShipmentID) []shipment.StatusEvent {
	committed := uow.store.history(id)

	uow.mu.Lock()
	defer uow.mu.Unlock()
	if uow.tx == nil {
		return committed
	}
	for _, ev := range uow.tx.events {
		if ev.ShipmentID() == id {
			committed = append(committed, ev)
		}
	}
	return committed
}

func (uow *UnitOfWork) records() []shipmentRecord {
	byID := make(map[kernel.ShipmentID]shipmentRecord)
	for _, r := range uow.store.list() {
		byID[r.id] = r
	}

	uow.mu.Lock()
	if uow.tx != nil {
		for id, r := range uow.tx.added {
			byID[id] = r
		}
		for id, r := range uow.tx.updated {
			byID[id] = r
		}
	}
	uow.mu.Unlock()

	out := make([]shipmentRecord, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

type shipmentRepository struct {
	uow *UnitOfWork
}

func (r *shipmentRepository) NextID(_ context.Context) (kernel.ShipmentID, error) {
	return r.uow.store.nextID(), nil
}

func (r *shipmentRepository) Add(_ context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	rec := recordOf(aggregate)
	return r.uow.write(func(b *batch) { b.added[rec.id] = rec })
}

func (r *shipmentRepository) Update(_ context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	rec := recordOf(aggregate)
	if _, ok := r.uow.lookup(rec.id); !ok {
		return errs.NewObjectNotFoundError("shipmentId", rec.id.String())
	}
	return r.uow.write(func(b *batch) { b.updated[rec.id] = rec })
}

func (r *shipmentRepository) Get(_ context.Context, id kernel.ShipmentID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	rec, ok := r.uow.lookup(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("shipmentId", id.String())
	}
	return rec.restore()
}

func (r *shipmentRepository) GetForUpdate(ctx context.Context, id kernel.ShipmentID) (*shipment.Shipment, error) {
	return r.Get(ctx, id)
}

func (r *shipmentRepository) List(_ context.Context, status shipment.Status) ([]*shipment.Shipment, error) {
	out := make([]*shipment.Shipment, 0)
	for _, rec := range r.uow.records() {
		if status != shipment.Unknown && rec.status != status {
			continue
		}
		s, err := rec.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

type statusEventRepository struct {
	uow *UnitOfWork
}

func (r *statusEventRepository) Append(_ context.Context, ev shipment.StatusEvent) error {
	if err := ev.ShipmentID().Validate(); err != nil {
		return err
	}
	return r.uow.write(func(b *batch) { b.events = append(b.events, ev) })
}

func (r *statusEventRepository) Last(_ context.Context, id kernel.ShipmentID) (shipment.StatusEvent, bool, error) {
	history := r.uow.events(id)
	if len(history) == 0 {
		return shipment.StatusEvent{}, false, nil
	}
	return history[len(history)-1], true, nil
}

func (r *statusEventRepository) History(_ context.Context, id kernel.ShipmentID) ([]shipment.StatusEvent, error) {
	return r.uow.events(id), nil
}
