package api

import (
	"context"
	"fmt"
	"log/slog"

	analyticscatalog "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/catalog"
	analyticsobs "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/observability"
	analyticsorders "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/orders"
	analyticsapp "github.com/Apurer/storekeeper/internal/domains/analytics/application"
	catalogmemory "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/storekeeper/internal/domains/catalog/application"
	catalogports "github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	ordercatalog "github.com/Apurer/storekeeper/internal/domains/orders/adapters/catalog"
	ordermemory "github.com/Apurer/storekeeper/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/storekeeper/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/storekeeper/internal/domains/orders/adapters/persistence/postgres"
	orderredis "github.com/Apurer/storekeeper/internal/domains/orders/adapters/redis"
	ordersapp "github.com/Apurer/storekeeper/internal/domains/orders/application"
	ordersports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
	ownersmemory "github.com/Apurer/storekeeper/internal/domains/owners/adapters/memory"
	ownersobs "github.com/Apurer/storekeeper/internal/domains/owners/adapters/observability"
	ownerspostgres "github.com/Apurer/storekeeper/internal/domains/owners/adapters/persistence/postgres"
	ownersapp "github.com/Apurer/storekeeper/internal/domains/owners/application"
	ownersports "github.com/Apurer/storekeeper/internal/domains/owners/ports"
	"github.com/Apurer/storekeeper/internal/platform/database"
	"github.com/Apurer/storekeeper/internal/platform/migrations"
	platformobservability "github.com/Apurer/storekeeper/internal/platform/observability"
	platformredis "github.com/Apurer/storekeeper/internal/platform/redis"
	"github.com/Apurer/storekeeper/internal/transport/httpapi"
)

// Stack is the wired application shared by the api, worker, and purger binaries.
type Stack struct {
	// Services are the decorated use cases served over HTTP.
	Services httpapi.Services
	// Orders is the undecorated order engine. Its committer is always in
	// process so the Temporal activity can call it.
	Orders  *ordersapp.Service
	closers []func()
}

// Close releases database and cache connections in reverse order.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

type repositories struct {
	owners  ownersports.Repository
	catalog catalogports.Repository
	orders  ordersports.Repository
	baskets ordersports.BasketStore

	ownerDependents []ownersports.Dependent
	productCounter  ownersports.Counter
	orderCounter    ownersports.Counter
}

// Build opens the configured stores and wires every service. A non-nil
// committer routes PlaceOrder and ConfirmBasket through it.
func Build(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, committer ordersports.Committer) (*Stack, error) {
	logger := effectiveLogger(instruments)
	stack := &Stack{}

	repos, err := stack.buildRepositories(ctx, cfg, logger)
	if err != nil {
		stack.Close()
		return nil, err
	}

	core := ordersapp.NewService(repos.orders, ordercatalog.NewStockReader(repos.catalog), repos.baskets,
		ordersapp.WithBasketTTL(cfg.BasketTTL))
	stack.Orders = core

	ordersService := core
	if committer != nil {
		ordersService = ordersapp.NewService(repos.orders, ordercatalog.NewStockReader(repos.catalog), repos.baskets,
			ordersapp.WithBasketTTL(cfg.BasketTTL),
			ordersapp.WithCommitter(committer))
	}

	owners := ownersapp.NewService(repos.owners,
		ownersapp.WithDependents(repos.ownerDependents...),
		ownersapp.WithCounters(repos.productCounter, repos.orderCounter),
	)
	catalog := catalogapp.NewService(repos.catalog)
	analytics := analyticsapp.NewService(
		analyticsorders.NewSalesReader(repos.orders),
		analyticscatalog.NewStockReader(repos.catalog),
		analyticsapp.WithLocation(cfg.ReportLocation),
	)

	stack.Services = httpapi.Services{
		Owners: ownersobs.New(owners,
			ownersobs.WithLogger(logger),
			ownersobs.WithTracer(instruments.Tracer("internal.owners.application")),
			ownersobs.WithMeter(instruments.Meter("internal.owners.application")),
		),
		Catalog: catalogobs.New(catalog,
			catalogobs.WithLogger(logger),
			catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
			catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
		),
		Orders: ordersobs.New(ordersService,
			ordersobs.WithLogger(logger),
			ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
			ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
		),
		Analytics: analyticsobs.New(analytics,
			analyticsobs.WithLogger(logger),
			analyticsobs.WithTracer(instruments.Tracer("internal.analytics.application")),
			analyticsobs.WithMeter(instruments.Meter("internal.analytics.application")),
		),
	}
	return stack, nil
}

func (s *Stack) buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (*repositories, error) {
	repos := &repositories{}
	switch cfg.DatabaseDriver {
	case DriverMemory:
		catalog := catalogmemory.NewRepository()
		orders := ordermemory.NewRepository(catalog)
		repos.owners = ownersmemory.NewRepository()
		repos.catalog = catalog
		repos.orders = orders
		repos.productCounter, repos.orderCounter = catalog, orders
		logger.Warn("DATABASE_DRIVER=memory, data is lost on restart")
	default:
		db, cleanup, err := database.Open(ctx, cfg.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
		}
		s.closers = append(s.closers, cleanup)
		if err := migrations.Run(db); err != nil {
			return nil, fmt.Errorf("migrate %s database: %w", cfg.DatabaseDriver, err)
		}
		catalog := catalogpostgres.NewRepository(db)
		orders := orderpostgres.NewRepository(db)
		repos.owners = ownerspostgres.NewRepository(db)
		repos.catalog = catalog
		repos.orders = orders
		repos.productCounter, repos.orderCounter = catalog, orders
		if cfg.BasketStore == BasketStoreDatabase {
			repos.baskets = orderpostgres.NewBasketStore(db)
		}
		logger.Info("repositories configured", slog.String("driver", cfg.DatabaseDriver))
	}

	switch cfg.BasketStore {
	case BasketStoreRedis:
		client, err := platformredis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		repos.baskets = orderredis.NewBasketStore(client, orderredis.DefaultPrefix)
		logger.Info("basket sessions stored in redis", slog.String("addr", cfg.RedisAddr))
	case BasketStoreMemory:
		repos.baskets = ordermemory.NewBasketStore()
	}
	if repos.baskets == nil {
		return nil, fmt.Errorf("basket store %q is not available with driver %q", cfg.BasketStore, cfg.DatabaseDriver)
	}

	repos.ownerDependents = []ownersports.Dependent{repos.orders, repos.baskets, repos.catalog}
	return repos, nil
}
