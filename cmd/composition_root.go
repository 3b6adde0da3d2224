package cmd

import (
	"context"
	"errors"
	"fmt"

	httpin "shiptrack/internal/adapters/in/http"
	"shiptrack/internal/adapters/in/ws"
	"shiptrack/internal/adapters/out/entitystore"
	"shiptrack/internal/adapters/out/memory"
	"shiptrack/internal/adapters/out/postgres"
	"shiptrack/internal/adapters/out/redisbus"
	"shiptrack/internal/core/application/ledger"
	"shiptrack/internal/core/application/tracking"
	"shiptrack/internal/core/application/usecases/commands"
	"shiptrack/internal/core/application/usecases/queries"
	"shiptrack/internal/core/domain/model/kernel"
	"shiptrack/internal/core/ports"
	"shiptrack/internal/jobs"
	"shiptrack/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CompositionRoot owns the process-wide singletons: the status ledger, the
// subscription registry and the broadcaster, plus the outbound adapters.
type CompositionRoot struct {
	cfg         Config
	log         *logger.Logger
	uowFactory  ports.UnitOfWorkFactory
	entityStore ports.EntityStore
	registry    *tracking.Registry
	broadcaster *tracking.Broadcaster
	ledger      *ledger.Ledger
	relay       *redisbus.Relay
}

// NewCompositionRoot wires the application. gormDB is only used with the postgres
// backend. When REDIS_ADDR is set the broadcaster also relays through redis.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, log *logger.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{cfg: cfg, log: log}

	switch cfg.StorageBackend {
	case StoragePostgres:
		if gormDB == nil {
			return nil, errors.New("postgres backend needs a database connection")
		}
		root.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	case StorageMemory:
		root.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	store, err := entitystore.New(cfg.EntityStoreURL, log,
		entitystore.WithTimeout(cfg.EntityStoreTimeout),
		entitystore.WithToken(cfg.EntityStoreToken),
	)
	if err != nil {
		return nil, err
	}
	root.entityStore = store

	var opts []tracking.BroadcasterOption
	if cfg.RedisAddr != "" {
		root.relay, err = redisbus.New(ctx, redisbus.Config{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel}, log)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			tracking.WithRelay(root.relay, kernel.NewUUID()),
			tracking.WithRelayQueueSize(cfg.RelayQueueSize),
		)
	}

	root.registry = tracking.NewRegistry(log)
	root.broadcaster = tracking.NewBroadcaster(root.registry, log, opts...)
	root.ledger = ledger.New(root.uowFactory, root.broadcaster, log)
	return root, nil
}

func (c *CompositionRoot) shipmentUoWFactory() commands.ShipmentUoWFactory {
	return FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) shipmentReader() queries.ShipmentReader {
	return c.uowFactory.Create().ShipmentRepository()
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.shipmentUoWFactory())
}

func (c *CompositionRoot) CreateAssignShipmentCommandHandler() commands.AssignShipmentCommandHandler {
	return commands.NewAssignShipmentCommandHandler(c.shipmentUoWFactory(), c.entityStore, c.ledger)
}

func (c *CompositionRoot) CreateAdvanceStatusCommandHandler() commands.AdvanceStatusCommandHandler {
	return commands.NewAdvanceStatusCommandHandler(c.shipmentUoWFactory(), c.ledger)
}

func (c *CompositionRoot) CreateGetShipmentsQueryHandler() queries.GetShipmentsQueryHandler {
	return queries.NewGetShipmentsQueryHandler(c.shipmentReader())
}

func (c *CompositionRoot) CreateGetShipmentQueryHandler() queries.GetShipmentQueryHandler {
	return queries.NewGetShipmentQueryHandler(c.shipmentReader())
}

func (c *CompositionRoot) CreateGetShipmentStatusQueryHandler() queries.GetShipmentStatusQueryHandler {
	return queries.NewGetShipmentStatusQueryHandler(c.ledger)
}

func (c *CompositionRoot) CreateGetDeliveryReportQueryHandler() queries.GetDeliveryReportQueryHandler {
	return queries.NewGetDeliveryReportQueryHandler(c.shipmentReader(), c.ledger)
}

// NewRouter builds the HTTP surface: REST handlers and the observer websocket.
func (c *CompositionRoot) NewRouter(ctx context.Context) (*echo.Echo, error) {
	server := httpin.NewServer(
		c.CreateCreateShipmentCommandHandler(),
		c.CreateAssignShipmentCommandHandler(),
		c.CreateAdvanceStatusCommandHandler(),
		c.CreateGetShipmentsQueryHandler(),
		c.CreateGetShipmentQueryHandler(),
		c.CreateGetShipmentStatusQueryHandler(),
		c.CreateGetDeliveryReportQueryHandler(),
		c.log,
	)
	opts := []ws.Option{
		ws.WithQueueSize(c.cfg.ObserverBuffer),
		ws.WithPingInterval(c.cfg.ObserverIdleTimeout / 3),
	}
	if len(c.cfg.ObserverAllowedOrigins) > 0 {
		opts = append(opts, ws.WithCheckOrigin(ws.AllowOrigins(c.cfg.ObserverAllowedOrigins)))
	}
	observers := ws.NewHandler(c.registry, c.log, opts...)
	return httpin.NewRouter(ctx, server, observers.Serve, c.log)
}

func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewObserverSweepJob(c.registry, c.cfg.ObserverIdleTimeout, c.cfg.ObserverSweepSchedule, c.log),
	)
}

// RunBroadcaster pumps the redis relay until ctx is done.
func (c *CompositionRoot) RunBroadcaster(ctx context.Context) error {
	return c.broadcaster.Run(ctx)
}

// Close disconnects all observers and the relay.
func (c *CompositionRoot) Close() error {
	c.registry.Close()
	if c.relay != nil {
		return c.relay.Close()
	}
	return nil
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}
