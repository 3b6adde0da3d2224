package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"shiptrack/internal/adapters/out/memory"
	"shiptrack/internal/core/application/ledger"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/pkg/errs"
	"shiptrack/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shipment.StatusEvent
}

func (p *recordingPublisher) Publish(ev shipment.StatusEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) Events() []shipment.StatusEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shipment.StatusEvent(nil), p.events...)
}

type fixture struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  *recordingPublisher
	ledger     *ledger.Ledger
}

func newFixture(t *testing.T, ids ...kernel.ShipmentID) fixture {
	t.Helper()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	for _, id := range ids {
		s, err := shipment.NewShipment(id, 5, "10x10x10", "Books", "Main st. 1")
		require.NoError(t, err)
		require.NoError(t, factory.Create().ShipmentRepository().Add(t.Context(), s))
	}
	publisher := &recordingPublisher{}
	l := ledger.New(factory, publisher, logger.NewNop(), ledger.WithClock(func() time.Time { return fixedNow }))
	return fixture{uowFactory: factory, publisher: publisher, ledger: l}
}

func mustAssignment(t *testing.T) shipment.Assignment {
	t.Helper()
	a, err := shipment.NewAssignment("R1", "C1", "V1")
	require.NoError(t, err)
	return a
}

func TestLedger_ShipmentSevenScenario(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t, 7)

	// A new shipment reads as Unknown with no history.
	status, history, err := f.ledger.Snapshot(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, shipment.Unknown, status)
	assert.Empty(t, history)
	assert.NotNil(t, history)

	// Assign moves it to InTransit with sequence 1.
	s, ev, err := f.ledger.Assign(ctx, 7, mustAssignment(t))
	require.NoError(t, err)
	assert.Equal(t, shipment.InTransit, s.Status())
	assert.Equal(t, "R1", s.Assignment().RouteName())
	assert.Equal(t, int64(1), ev.Sequence())

	status, history, err = f.ledger.Snapshot(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, shipment.InTransit, status)
	require.Len(t, history, 1)
	assert.Equal(t, shipment.InTransit, history[0].Status())
	assert.Equal(t, int64(1), history[0].Sequence())

	// Delivered follows.
	ev, err = f.ledger.Append(ctx, 7, shipment.Delivered)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ev.Sequence())

	history, err = f.ledger.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, shipment.InTransit, history[0].Status())
	assert.Equal(t, shipment.Delivered, history[1].Status())

	// A second Delivered is rejected.
	_, err = f.ledger.Append(ctx, 7, shipment.Delivered)
	require.ErrorIs(t, err, errs.ErrTransitionIsIllegal)

	current, err := f.ledger.CurrentStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, shipment.Delivered, current)
	assert.Len(t, f.publisher.Events(), 2)
}

func TestLedger_Append(t *testing.T) {
	t.Run("skipping a state is rejected and history is unchanged", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(t, 1)

		_, err := f.ledger.Append(ctx, 1, shipment.Delivered)

		require.ErrorIs(t, err, errs.ErrTransitionIsIllegal)
		history, err := f.ledger.History(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Empty(t, f.publisher.Events())

		s, err := f.uowFactory.Create().ShipmentRepository().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, shipment.Pending, s.Status())
	})

	t.Run("unknown shipment is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.ledger.Append(t.Context(), 404, shipment.InTransit)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("invalid id is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.ledger.Append(t.Context(), 0, shipment.InTransit)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("timestamps are UTC with microsecond precision", func(t *testing.T) {
		f := newFixture(t, 1)

		ev, err := f.ledger.Append(t.Context(), 1, shipment.InTransit)

		require.NoError(t, err)
		assert.Equal(t, fixedNow.Truncate(time.Microsecond), ev.Timestamp())
	})
}

func TestLedger_AssignRequiresPending(t *testing.T) {
	for _, advanceTo := range [][]shipment.Status{
		{shipment.InTransit},
		{shipment.InTransit, shipment.Delivered},
	} {
		t.Run(advanceTo[len(advanceTo)-1].String(), func(t *testing.T) {
			ctx := t.Context()
			f := newFixture(t, 1)
			for _, st := range advanceTo {
				_, err := f.ledger.Append(ctx, 1, st)
				require.NoError(t, err)
			}

			_, _, err := f.ledger.Assign(ctx, 1, mustAssignment(t))

			require.ErrorIs(t, err, errs.ErrStateIsInvalid)
			history, err := f.ledger.History(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, history, len(advanceTo))

			s, err := f.uowFactory.Create().ShipmentRepository().Get(ctx, 1)
			require.NoError(t, err)
			assert.Nil(t, s.Assignment())
		})
	}
}

func TestLedger_CurrentStatusOfMissingShipment(t *testing.T) {
	f := newFixture(t)

	status, err := f.ledger.CurrentStatus(t.Context(), 12345)

	require.NoError(t, err)
	assert.Equal(t, shipment.Unknown, status)
}

func TestLedger_ConcurrentAppendsOnOneShipment(t *testing.T) {
	// Given
	ctx := t.Context()
	f := newFixture(t, 1)
	const writers = 16

	// When
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		illegal   int
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Append(ctx, 1, shipment.InTransit)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, errs.ErrTransitionIsIllegal):
				illegal++
			}
		}()
	}
	wg.Wait()

	// Then
	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, illegal)
	history, err := f.ledger.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLedger_SequencesAreGapFreeAcrossShipments(t *testing.T) {
	// Given
	ctx := t.Context()
	ids := []kernel.ShipmentID{1, 2, 3, 4, 5, 6, 7, 8}
	f := newFixture(t, ids...)

	// When
	var wg sync.WaitGroup
	for _, id := range ids {
		for _, st := range []shipment.Status{shipment.InTransit, shipment.Delivered} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Retry until the predecessor has landed; order between the two
				// writers of one shipment is not fixed.
				for {
					_, err := f.ledger.Append(ctx, id, st)
					if err == nil {
						return
					}
					if !assert.ErrorIs(t, err, errs.ErrTransitionIsIllegal) {
						return
					}
					time.Sleep(time.Millisecond)
				}
			}()
		}
	}
	wg.Wait()

	// Then
	for _, id := range ids {
		status, history, err := f.ledger.Snapshot(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
		for i, ev := range history {
			assert.Equal(t, int64(i+1), ev.Sequence())
		}
		assert.Equal(t, history[len(history)-1].Status(), status)

		current, err := f.ledger.CurrentStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, current)
	}

	perShipment := make(map[kernel.ShipmentID][]int64)
	for _, ev := range f.publisher.Events() {
		perShipment[ev.ShipmentID()] = append(perShipment[ev.ShipmentID()], ev.Sequence())
	}
	for _, id := range ids {
		assert.Equal(t, []int64{1, 2}, perShipment[id], "publish order of shipment %s", id)
	}
}

type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) Publish(shipment.StatusEvent) {
	p.entered <- struct{}{}
	<-p.release
}

func TestLedger_LockWaitHonoursContext(t *testing.T) {
	// Given a writer that holds the shipment's lock while publishing
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	s, err := shipment.NewShipment(1, 5, "d", "p", "a")
	require.NoError(t, err)
	require.NoError(t, factory.Create().ShipmentRepository().Add(t.Context(), s))

	publisher := &blockingPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
	l := ledger.New(factory, publisher, logger.NewNop())

	done := make(chan error, 1)
	go func() {
		_, appendErr := l.Append(context.Background(), 1, shipment.InTransit)
		done <- appendErr
	}()
	<-publisher.entered

	// When
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Append(ctx, 1, shipment.Delivered)

	// Then
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(publisher.release)
	require.NoError(t, <-done)
	history, err := l.History(t.Context(), 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
