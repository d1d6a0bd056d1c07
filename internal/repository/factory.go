package repository

import (
	"context"
	"fmt"
	"io"

	"deskbook/internal/config"
	"deskbook/internal/database"
	"deskbook/internal/domain"

	"github.com/rs/zerolog"
)

// Backend keys accepted by Open. The set is closed: adding a backend means
// adding a driver, not loading code at runtime.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Open maps the configured backend key to a constructed driver. It is
// called once at process start; the returned closer owns the driver's
// client and is released on shutdown. When storage.fallback_backend is set
// a failover wrapper around both drivers is returned.
func Open(cfg config.StorageConfig, logger *zerolog.Logger) (domain.DeskStore, io.Closer, error) {
	primary, primaryCloser, err := openOne(cfg.Backend, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.FallbackBackend == "" {
		return primary, primaryCloser, nil
	}

	fallback, fallbackCloser, err := openOne(cfg.FallbackBackend, cfg, logger)
	if err != nil {
		_ = primaryCloser.Close()
		return nil, nil, fmt.Errorf("open fallback backend: %w", err)
	}

	store := NewFailoverDeskStore(primary, fallback, logger)
	return store, multiCloser{primaryCloser, fallbackCloser}, nil
}

func openOne(backend string, cfg config.StorageConfig, logger *zerolog.Logger) (domain.DeskStore, io.Closer, error) {
	switch backend {
	case BackendSQLite:
		db, err := database.NewDB(cfg.SQLite.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case BackendPostgres:
		store, err := NewPostgresDeskStore(cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case BackendRedis:
		client := NewRedisClient(cfg.Redis)
		if err := Ping(context.Background(), client); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		store := NewRedisDeskStore(client, logger)
		return store, store, nil
	case BackendMemory:
		store := NewMemoryDeskStore()
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (supported: %s, %s, %s, %s)",
			backend, BackendSQLite, BackendPostgres, BackendRedis, BackendMemory)
	}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var firstErr error
	for _, c := range m {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
