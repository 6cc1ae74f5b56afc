package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/domain"
	"github.com/vladislavdragonenkov/customers/internal/metrics"
	"github.com/vladislavdragonenkov/customers/internal/service/customers"
	"github.com/vladislavdragonenkov/customers/internal/storage/cosmos"
	"github.com/vladislavdragonenkov/customers/internal/storage/memory"
	"github.com/vladislavdragonenkov/customers/internal/storage/observed"
	"github.com/vladislavdragonenkov/customers/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store       domain.CustomerStore
	Repo        *customers.Repository
	HTTPMetrics *metrics.HTTPMetrics
	Logger      *log.Entry

	closers []func(ctx context.Context) error
}

// NewDependencies открывает хранилище выбранного драйвера, провижинит коллекцию
// и собирает репозиторий. Ошибка открытия хранилища фатальна для запуска.
func NewDependencies(ctx context.Context, cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	deps := &Dependencies{
		HTTPMetrics: metrics.NewHTTPMetrics(registerer),
		Logger:      logger,
	}

	store, closeStore, err := initStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.addCloser(closeStore)
	deps.Store = observed.Wrap(store, cfg.StoreDriver, metrics.NewStoreMetrics(registerer), logger.WithField("layer", "store"))

	var publisher domain.EventPublisher
	customerPublisher, producer := initEventPublisher(cfg, metrics.NewEventMetrics(registerer), logger)
	if customerPublisher != nil {
		publisher = customerPublisher
		deps.addCloser(func(context.Context) error {
			closeKafka(producer, logger)
			return nil
		})
	}

	deps.Repo = customers.NewRepository(deps.Store, publisher, logger.WithField("layer", "repository"))
	return deps, nil
}

func (d *Dependencies) addCloser(fn func(ctx context.Context) error) {
	if fn != nil {
		d.closers = append(d.closers, fn)
	}
}

// Close освобождает ресурсы в обратном порядке открытия.
func (d *Dependencies) Close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			d.Logger.WithError(err).Warn("failed to release dependency")
		}
	}
	d.closers = nil
}

func initStore(ctx context.Context, cfg Config, logger *log.Entry) (domain.CustomerStore, func(context.Context) error, error) {
	fields := log.Fields{
		"driver":     cfg.StoreDriver,
		"database":   cfg.StoreDatabase,
		"collection": cfg.StoreCollection,
	}

	switch cfg.StoreDriver {
	case StoreDriverMemory:
		logger.WithFields(fields).Warn("using in-memory store, data is lost on restart")
		return memory.NewCustomerStore(), nil, nil

	case StoreDriverCosmos:
		store, err := cosmos.Open(ctx, cosmos.Config{
			ConnectionString: cfg.StoreDSN,
			Database:         cfg.StoreDatabase,
			Collection:       cfg.StoreCollection,
			OpTimeout:        cfg.StoreTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open cosmos store: %w", err)
		}
		if err := store.EnsureCollection(ctx, cfg.StoreCollection); err != nil {
			_ = store.Close(context.Background())
			return nil, nil, fmt.Errorf("ensure cosmos collection: %w", err)
		}
		logger.WithFields(fields).Info("cosmos store initialized")
		return cosmos.NewCustomerStore(store, cfg.StoreCollection), store.Close, nil

	case StoreDriverPostgres:
		store, err := postgres.Open(ctx, postgres.Config{
			DSN:       cfg.StoreDSN,
			Database:  cfg.StoreDatabase,
			OpTimeout: cfg.StoreTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
		}
		logger.WithFields(fields).WithField("auto_migrate", cfg.PostgresAutoMigrate).Info("postgres store initialized")
		return postgres.NewCustomerStore(store, cfg.StoreCollection), func(context.Context) error { return store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
