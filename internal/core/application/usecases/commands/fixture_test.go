package commands_test

import (
	"context"
	"sync"
	"testing"

	"shiptrack/internal/adapters/out/memory"
	"shiptrack/internal/core/application/ledger"
	"shiptrack/internal/core/application/usecases/commands"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/domain/model/shipment"
	"shiptrack/internal/pkg/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEntityStore struct{ mock.Mock }

func (m *MockEntityStore) ResolveRoute(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockEntityStore) ResolveCarrier(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockEntityStore) ResolveVehicle(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockEntityStore) resolvesAll() *MockEntityStore {
	m.On("ResolveRoute", mock.Anything, mock.Anything).Return(nil)
	m.On("ResolveCarrier", mock.Anything, mock.Anything).Return(nil)
	m.On("ResolveVehicle", mock.Anything, mock.Anything).Return(nil)
	return m
}

// FuncShipmentUoWFactory narrows the memory factory to commands.ShipmentUoWFactory.
type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW { return f() }

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
	uowFactory commands.ShipmentUoWFactory
	publisher  *recordingPublisher
	ledger     *ledger.Ledger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	publisher := &recordingPublisher{}
	return fixture{
		uowFactory: FuncShipmentUoWFactory(func() commands.ShipmentUoW { return factory.Create() }),
		publisher:  publisher,
		ledger:     ledger.New(factory, publisher, logger.NewNop()),
	}
}

func (f fixture) createShipment(t *testing.T) *shipment.Shipment {
	t.Helper()
	cmd, err := commands.NewCreateShipmentCommand(5, "10x10x10", "Books", "Main st. 1")
	require.NoError(t, err)
	s, err := commands.NewCreateShipmentCommandHandler(f.uowFactory).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return s
}

func (f fixture) load(t *testing.T, id kernel.ShipmentID) *shipment.Shipment {
	t.Helper()
	s, err := f.uowFactory.Create().ShipmentRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return s
}
