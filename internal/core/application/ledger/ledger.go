// Package ledger implements the status ledger: the append-only, per-shipment
// history of status changes and the source of truth for a shipment's current status.
//
// Writes for one shipment are serialized by an in-process keyed lock and run in a
// single transaction that updates the shipment row and appends the event. The
// event is handed to the Publisher after commit and before the lock is released,
// so events of one shipment are published in sequence order.
package ledger

import (
	"context"
	"fmt"
	"time"

	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/keylock"
	"shiptrack/internal/pkg/logger"
)

// Publisher receives every committed event. Publish must not block.
type Publisher interface {
	Publish(ev shipment.StatusEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(shipment.StatusEvent) {}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

type Ledger struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  Publisher
	locks      *keylock.Map[kernel.ShipmentID]
	now        func() time.Time
	log        *logger.Logger
}

// New creates a Ledger. A nil publisher discards events.
func New(uowFactory ports.UnitOfWorkFactory, publisher Publisher, log *logger.Logger, opts ...Option) *Ledger {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	l := &Ledger{
		uowFactory: uowFactory,
		publisher:  publisher,
		locks:      keylock.New[kernel.ShipmentID](),
		now:        time.Now,
		log:        log.Named("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records newStatus for the shipment.
//
// Returns:
//   - the new StatusEvent on success
//   - errs.ObjectNotFoundError if the shipment does not exist
//   - errs.IllegalTransitionError unless newStatus is the immediate successor of
//     the current status; history is left unchanged
//   - ctx.Err() if ctx ends while waiting for the shipment's lock
func (l *Ledger) Append(ctx context.Context, id kernel.ShipmentID, newStatus shipment.Status) (shipment.StatusEvent, error) {
	_, ev, err := l.apply(ctx, id, func(s *shipment.Shipment, at time.Time) (shipment.StatusEvent, error) {
		return s.Advance(newStatus, at)
	})
	return ev, err
}

// Assign records the assignment and the Pending -> InTransit event in one
// transaction. It fails with errs.InvalidStateError when the shipment is not Pending.
func (l *Ledger) Assign(
	ctx context.Context,
	id kernel.ShipmentID,
	assignment shipment.Assignment,
) (*shipment.Shipment, shipment.StatusEvent, error) {
	return l.apply(ctx, id, func(s *shipment.Shipment, at time.Time) (shipment.StatusEvent, error) {
		return s.Assign(assignment, at)
	})
}

// CurrentStatus returns the status of the latest event, or shipment.Unknown when
// nothing has been recorded (including for shipments that do not exist).
func (l *Ledger) CurrentStatus(ctx context.Context, id kernel.ShipmentID) (shipment.Status, error) {
	if err := id.Validate(); err != nil {
		return shipment.Unknown, err
	}
	ev, ok, err := l.uowFactory.Create().StatusEventRepository().Last(ctx, id)
	if err != nil {
		return shipment.Unknown, fmt.Errorf("read last status of shipment %s: %w", id, err)
	}
	if !ok {
		return shipment.Unknown, nil
	}
	return ev.Status(), nil
}

// History returns the shipment's events, oldest first. It is never nil.
func (l *Ledger) History(ctx context.Context, id kernel.ShipmentID) ([]shipment.StatusEvent, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	history, err := l.uowFactory.Create().StatusEventRepository().History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read history of shipment %s: %w", id, err)
	}
	if history == nil {
		history = []shipment.StatusEvent{}
	}
	return history, nil
}

// Snapshot returns the current status together with the history it was derived
// from, so both always agree.
func (l *Ledger) Snapshot(ctx context.Context, id kernel.ShipmentID) (shipment.Status, []shipment.StatusEvent, error) {
	history, err := l.History(ctx, id)
	if err != nil {
		return shipment.Unknown, nil, err
	}
	if len(history) == 0 {
		return shipment.Unknown, history, nil
	}
	return history[len(history)-1].Status(), history, nil
}

type mutation func(s *shipment.Shipment, at time.Time) (shipment.StatusEvent, error)

func (l *Ledger) apply(
	ctx context.Context,
	id kernel.ShipmentID,
	mutate mutation,
) (*shipment.Shipment, shipment.StatusEvent, error) {
	if err := id.Validate(); err != nil {
		return nil, shipment.StatusEvent{}, err
	}

	unlock, err := l.locks.Lock(ctx, id)
	if err != nil {
		return nil, shipment.StatusEvent{}, fmt.Errorf("wait for shipment %s: %w", id, err)
	}
	defer unlock()

	// From here on the transition either commits or rolls back as a whole.
	txCtx := context.WithoutCancel(ctx)

	uow := l.uowFactory.Create()
	if err = uow.Begin(txCtx); err != nil {
		return nil, shipment.StatusEvent{}, err
	}
	defer func() {
		_ = uow.Rollback(txCtx)
	}()

	s, err := uow.ShipmentRepository().GetForUpdate(txCtx, id)
	if err != nil {
		return nil, shipment.StatusEvent{}, err
	}

	ev, err := mutate(s, l.timestamp())
	if err != nil {
		return nil, shipment.StatusEvent{}, err
	}

	if err = uow.StatusEventRepository().Append(txCtx, ev); err != nil {
		return nil, shipment.StatusEvent{}, err
	}
	if err = uow.ShipmentRepository().Update(txCtx, s); err != nil {
		return nil, shipment.StatusEvent{}, err
	}
	if err = uow.Commit(txCtx); err != nil {
		return nil, shipment.StatusEvent{}, err
	}

	l.log.Debug("status recorded",
		"shipment_id", id.Int64(), "status", ev.Status().String(), "sequence", ev.Sequence())
	l.publisher.Publish(ev)
	return s, ev, nil
}

// timestamp is truncated to the precision postgres stores.
func (l *Ledger) timestamp() time.Time {
	return l.now().UTC().Truncate(time.Microsecond)
}
