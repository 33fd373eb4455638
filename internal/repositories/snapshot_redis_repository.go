package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSnapshotRepository stores snapshots in Redis under a key namespace.
type RedisSnapshotRepository struct {
	client    *redis.Client
	namespace string
}

// NewRedisSnapshotRepository parses redisURL, checks the connection and returns the repository.
func NewRedisSnapshotRepository(ctx context.Context, redisURL, namespace string) (*RedisSnapshotRepository, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSnapshotRepositoryWithClient(client, namespace), nil
}

// NewRedisSnapshotRepositoryWithClient wraps an existing client.
func NewRedisSnapshotRepositoryWithClient(client *redis.Client, namespace string) *RedisSnapshotRepository {
	if namespace == "" {
		namespace = "storefront:snapshot"
	}
	return &RedisSnapshotRepository{
		client:    client,
		namespace: namespace,
	}
}

func (r *RedisSnapshotRepository) key(key string) string {
	return r.namespace + ":" + key
}

// Get retrieves the snapshot stored under key.
func (r *RedisSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("snapshot %q: %w", key, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot %q: %w", key, err)
	}
	return value, nil
}

// Put stores the snapshot under key without expiry.
func (r *RedisSnapshotRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot stored under key.
func (r *RedisSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisSnapshotRepository) Close() error {
	return r.client.Close()
}
