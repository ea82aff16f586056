package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/isoscene/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "isoscene:snapshot:"

// noExpiryScore is the index score used when snapshots never expire (2100-01-01).
const noExpiryScore = 4102444800

// Store implements ports.SnapshotStore using Redis.
// Each snapshot is a plain string key; a sorted set indexes keys by expiry for List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for snapshots.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for snapshots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so a Locker can share the connection pool.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the snapshot to Redis.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("snapshot key cannot be empty")
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: key,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the snapshot from Redis.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the snapshot and its index entry.
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns live snapshot keys, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired snapshots: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
