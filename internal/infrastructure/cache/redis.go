package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/edusuite/backend/internal/domain/subscription"
)

const snapshotKeyPrefix = "usage:snapshot:"

// RedisSnapshotStore implements SnapshotStore using Redis.
// Suitable for distributed deployments where multiple instances
// need to share cached usage snapshots.
type RedisSnapshotStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSnapshotStore creates a new Redis-based snapshot store
func NewRedisSnapshotStore(cfg RedisConfig) (*RedisSnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSnapshotStore{
		client:    client,
		keyPrefix: snapshotKeyPrefix,
	}, nil
}

// NewRedisSnapshotStoreWithClient creates a store with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisSnapshotStoreWithClient(client *redis.Client, keyPrefix string) *RedisSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = snapshotKeyPrefix
	}
	return &RedisSnapshotStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisSnapshotStore) key(tenantID uuid.UUID) string {
	return s.keyPrefix + tenantID.String()
}

// Get retrieves a cached snapshot for a tenant
func (s *RedisSnapshotStore) Get(ctx context.Context, tenantID uuid.UUID) (*subscription.UsageSnapshot, error) {
	data, err := s.client.Get(ctx, s.key(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read usage snapshot: %w", err)
	}

	var snap subscription.UsageSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		// A corrupt entry is treated as a miss so the caller recomputes
		_ = s.client.Del(ctx, s.key(tenantID)).Err()
		return nil, nil
	}
	return &snap, nil
}

// Set stores a snapshot for a tenant with a TTL
func (s *RedisSnapshotStore) Set(ctx context.Context, tenantID uuid.UUID, snapshot *subscription.UsageSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	if ttl == 0 {
		ttl = defaultSnapshotTTL
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode usage snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.key(tenantID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store usage snapshot: %w", err)
	}
	return nil
}

// Delete removes a tenant's cached snapshot
func (s *RedisSnapshotStore) Delete(ctx context.Context, tenantID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to delete usage snapshot: %w", err)
	}
	return nil
}

// Flush removes every snapshot under the store's key prefix. Uses SCAN so a
// large keyspace is walked incrementally instead of blocking the server.
func (s *RedisSnapshotStore) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to flush usage snapshots: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush usage snapshots: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}

var _ SnapshotStore = (*RedisSnapshotStore)(nil)
