package config

import (
	"fmt"

	"github.com/aretw0/isoscene/internal/adapters/file"
	"github.com/aretw0/isoscene/pkg/adapters/memory"
	redisadapter "github.com/aretw0/isoscene/pkg/adapters/redis"
	"github.com/aretw0/isoscene/pkg/adapters/sqlite"
	"github.com/aretw0/isoscene/pkg/persistence/middleware"
	"github.com/aretw0/isoscene/pkg/ports"
)

// Backend is an opened snapshot store.
type Backend struct {
	Store ports.SnapshotStore
	// Locker is set for backends shared between processes.
	Locker ports.DistributedLocker

	closers []func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenStore builds the configured backend, wrapped in encryption when a key is set.
func OpenStore(c Config) (*Backend, error) {
	b := &Backend{}
	switch c.Backend {
	case BackendMemory:
		b.Store = memory.NewStore()
	case BackendFile:
		b.Store = file.New(c.DataDir)
	case BackendSQLite:
		db, err := sqlite.Open(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.Store = db
		b.closers = append(b.closers, db.Close)
	case BackendRedis:
		var opts []redisadapter.Option
		if c.Redis.Prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(c.Redis.Prefix))
		}
		if c.Redis.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(c.Redis.TTL))
		}
		rs := redisadapter.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB, opts...)
		b.Store = rs
		b.Locker = redisadapter.NewLocker(rs.Client(), c.Redis.Prefix)
		b.closers = append(b.closers, rs.Close)
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.EncryptionKey != "" {
		mw, err := encryption(c)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Store = middleware.Chain(b.Store, mw)
	}
	return b, nil
}

func encryption(c Config) (middleware.Middleware, error) {
	active, err := decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key: %w", err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(cfg)
}
