package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/activity"
	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// Without a broker, events go straight to the activity table.
	var publisher activity.Publisher = activity.SinkPublisher{Sink: repo}
	client := f.amqpClient(ctx, config)
	if client != nil {
		publisher = client
	}

	checks := map[string]http.ReadinessCheck{"sqlite": repo.Ping}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", client != nil)

	return &BackendResult{
		Users:     repo,
		Publisher: publisher,
		Checks:    checks,
		Cleanup: func() error {
			return errors.Join(publisher.Close(), repo.Close())
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var publisher activity.Publisher = activity.NopPublisher{}
	if client := f.amqpClient(ctx, config); client != nil {
		publisher = client
	}

	f.logger.InfoContext(ctx, "Initialized memory backend",
		"amqp_enabled", config.AMQPURL != "")

	return &BackendResult{
		Users:     auth.NewMemoryStore(),
		Publisher: publisher,
		Checks:    map[string]http.ReadinessCheck{},
		Cleanup:   publisher.Close,
	}, nil
}

// amqpClient connects to the broker when one is configured. A failed
// connection is logged and the backend continues without it.
func (f *DefaultFactory) amqpClient(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without activity events",
			log.FieldError, err.Error())
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
