package backend

import (
	"context"
	"fmt"
	"log/slog"

	"skeletonkey/internal/amqp"
	"skeletonkey/internal/services"
	"skeletonkey/internal/store/memory"
	"skeletonkey/internal/store/sqlite"
)

// BackendResult contains the wired ledger service and optional cleanup
type BackendResult struct {
	Ledger  *services.LedgerService
	Cleanup CleanupFunc
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; the ledger works without the sync queue.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(repo, repo.KV(), amqpClient)
	ledger.AddCloser(repo.Close)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Ledger:  ledger,
		Cleanup: ledger.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	mem := memory.NewFromFile(config.SeedDataPath)
	ledger := services.NewLedgerService(mem, mem.KV(), nil)

	f.logger.Info("Initialized memory backend", "seed_path", config.SeedDataPath)

	return &BackendResult{
		Ledger:  ledger,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
