package backend

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/amqp"
	"ledger/internal/ledger"
	"ledger/internal/ledger/memory"
	applog "ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// Factory creates backends based on configuration
type Factory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory. A nil logger falls back to the
// one carried by the context passed to CreateBackend.
func NewFactory(logger *applog.Logger) *Factory {
	return &Factory{
		logger: logger,
	}
}

// CreateBackend opens the configured store, connects the optional AMQP
// publisher and builds the services.
func (f *Factory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := f.logger
	if logger == nil {
		logger = applog.FromContext(ctx)
	}
	logger = logger.WithComponent(applog.ComponentBackend)

	var (
		store    ledger.Store
		cleanups []func() error
	)

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		cleanups = append(cleanups, repo.Close)
		logger.InfoContext(ctx, "Initialized SQLite backend",
			applog.FieldOperation, applog.OpStartup,
			"db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		logger.InfoContext(ctx, "Initialized memory backend", applog.FieldOperation, applog.OpStartup)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	var events services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
				applog.FieldOperation, applog.OpStartup,
				applog.FieldError, err)
		} else {
			events = client
			cleanups = append(cleanups, client.Close)
			logger.InfoContext(ctx, "Initialized AMQP client",
				applog.FieldOperation, applog.OpStartup,
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return &Backend{
		Store:  store,
		Ledger: services.NewLedgerService(store, events),
		Import: services.NewImportService(store, events, services.WithMaxRows(config.ImportMaxRows)),
		Cleanup: func() error {
			var errs []error
			for i := len(cleanups) - 1; i >= 0; i-- {
				if err := cleanups[i](); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}, nil
}
