// Package persistence stores autosave snapshots and named maps behind a
// string-keyed Store. Backends: memory, file, Redis and PostgreSQL.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrKeyNotFound is returned by Store.Get for a key that was never set or was removed
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidStoreType is returned when an unknown store type is configured
	ErrInvalidStoreType = errors.New("invalid store type")
)

// Store is a string-keyed byte store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// ListKeys returns every key starting with prefix, sorted
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// StoreType represents the type of store backend
type StoreType string

const (
	// StoreTypeNone disables persistence
	StoreTypeNone StoreType = "none"
	// StoreTypeMemory keeps documents in process memory
	StoreTypeMemory StoreType = "memory"
	// StoreTypeFile writes one file per key under a directory
	StoreTypeFile StoreType = "file"
	// StoreTypeRedis stores documents as Redis strings
	StoreTypeRedis StoreType = "redis"
	// StoreTypePostgres stores documents in a key/value table
	StoreTypePostgres StoreType = "postgres"
)

// StoreConfig contains configuration for the store backend
type StoreConfig struct {
	Type StoreType

	// File-based config
	BaseDir string

	// Redis config
	RedisURL string

	// Postgres config
	DatabaseURL string
	Table       string
}

// DefaultStoreConfig returns a default store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:    StoreTypeMemory,
		BaseDir: "saves",
		Table:   "kv_store",
	}
}

// NewStore opens the backend named by cfg.Type. StoreTypeNone returns a nil
// Store; callers treat that as persistence disabled.
func NewStore(ctx context.Context, cfg StoreConfig, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "persistence").Str("store_type", string(cfg.Type)).Logger()
	switch cfg.Type {
	case StoreTypeNone, "":
		logger.Info().Msg("Persistence disabled")
		return nil, nil
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	case StoreTypeFile:
		return NewFileStore(cfg.BaseDir, logger)
	case StoreTypeRedis:
		return NewRedisStore(ctx, cfg.RedisURL, logger)
	case StoreTypePostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Table, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, cfg.Type)
	}
}

// StoreStats contains statistics about store operations
type StoreStats struct {
	Writes      int64
	Reads       int64
	Deletes     int64
	WriteErrors int64
	ReadErrors  int64
	LastWrite   time.Time
}

// statsCounter is embedded by backends to track StoreStats
type statsCounter struct {
	writes, reads, deletes  atomic.Int64
	writeErrors, readErrors atomic.Int64
	lastWrite               atomic.Int64 // unix nanos
}

func (s *statsCounter) recordWrite(err error) {
	if err != nil {
		s.writeErrors.Add(1)
		return
	}
	s.writes.Add(1)
	s.lastWrite.Store(time.Now().UnixNano())
}

func (s *statsCounter) recordRead(err error) {
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		s.readErrors.Add(1)
		return
	}
	s.reads.Add(1)
}

func (s *statsCounter) recordDelete() { s.deletes.Add(1) }

// Stats returns a snapshot of the counters
func (s *statsCounter) Stats() StoreStats {
	st := StoreStats{
		Writes:      s.writes.Load(),
		Reads:       s.reads.Load(),
		Deletes:     s.deletes.Load(),
		WriteErrors: s.writeErrors.Load(),
		ReadErrors:  s.readErrors.Load(),
	}
	if n := s.lastWrite.Load(); n > 0 {
		st.LastWrite = time.Unix(0, n)
	}
	return st
}
