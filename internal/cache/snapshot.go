// Package cache provides project snapshot caches for the read path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"qualcode/internal/domain/models/coding"
	codingRepo "qualcode/internal/domain/repositories/coding"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "qualcode:snapshot:"
	generationPrefix = "qualcode:snapshot-gen:"
)

// errStaleGeneration aborts a Set whose snapshot predates an invalidation
var errStaleGeneration = errors.New("snapshot generation changed")

// RedisSnapshotCache stores serialized project snapshots in Redis
type RedisSnapshotCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSnapshotCache connects to redisURL and verifies the connection
func NewRedisSnapshotCache(redisURL string, ttl time.Duration) (*RedisSnapshotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisSnapshotCacheWithClient(client, ttl), nil
}

// NewRedisSnapshotCacheWithClient creates a cache from an existing Redis client
func NewRedisSnapshotCacheWithClient(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		client: client,
		prefix: keyPrefix,
		ttl:    ttl,
	}
}

func (c *RedisSnapshotCache) key(projectID string) string {
	return c.prefix + projectID
}

func (c *RedisSnapshotCache) generationKey(projectID string) string {
	return generationPrefix + projectID
}

// Generation returns the project's invalidation counter; a missing counter is 0
func (c *RedisSnapshotCache) Generation(ctx context.Context, projectID string) (int64, error) {
	return readGeneration(ctx, c.client, c.generationKey(projectID))
}

// getter is the part of *redis.Client and *redis.Tx that readGeneration needs
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, key string) (int64, error) {
	gen, err := cmd.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get snapshot generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached snapshot, or (nil, nil) on a miss
func (c *RedisSnapshotCache) Get(ctx context.Context, projectID string) (*coding.ProjectSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snapshot coding.ProjectSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// Set stores a snapshot under its project id, unless the project was
// invalidated after generation was read. A skipped write is not an error.
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot *coding.ProjectSnapshot, generation int64) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	genKey := c.generationKey(snapshot.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(snapshot.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("set snapshot: %w", err)
	}
}

// Invalidate advances the project's generation and drops its cached snapshot
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, projectID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(projectID))
		pipe.Del(ctx, c.key(projectID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *RedisSnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

// NoopSnapshotCache never stores anything; used when Redis is not configured
type NoopSnapshotCache struct{}

func (NoopSnapshotCache) Get(context.Context, string) (*coding.ProjectSnapshot, error) { return nil, nil }
func (NoopSnapshotCache) Generation(context.Context, string) (int64, error)            { return 0, nil }
func (NoopSnapshotCache) Set(context.Context, *coding.ProjectSnapshot, int64) error    { return nil }
func (NoopSnapshotCache) Invalidate(context.Context, string) error                     { return nil }

var (
	_ codingRepo.SnapshotCache = (*RedisSnapshotCache)(nil)
	_ codingRepo.SnapshotCache = NoopSnapshotCache{}
)
