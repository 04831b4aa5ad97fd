package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// stateKeyPrefix is prepended to the character id to form the cache key.
const stateKeyPrefix = "game_state_"

// RedisStateCache implements storage.StateCache on Redis. States are stored as
// JSON under game_state_<character id>.
type RedisStateCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStateCache implements StateCache interface
var _ storage.StateCache = (*RedisStateCache)(nil)

// NewRedisStateCache creates a cache from a redis:// URL or a bare host:port.
// A ttl of zero keeps states until they are deleted.
func NewRedisStateCache(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStateCache, error) {
	opt, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStateCache{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

func parseRedisURL(redisURL string) (*redis.Options, error) {
	if !strings.Contains(redisURL, "://") {
		return &redis.Options{Addr: redisURL}, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return opt, nil
}

// StateKey returns the cache key for a character's state.
func StateKey(id uuid.UUID) string {
	return stateKeyPrefix + id.String()
}

func (r *RedisStateCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStateCache) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStateCache) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStateCache) Get(ctx context.Context, id uuid.UUID) (*state.SimulationState, error) {
	data, err := r.client.Get(ctx, StateKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load state", "character_id", id, "error", err)
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var s state.SimulationState
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Failed to unmarshal state", "character_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return s.Normalize(), nil
}

func (r *RedisStateCache) Set(ctx context.Context, id uuid.UUID, s *state.SimulationState) error {
	if s == nil {
		return errors.New("state cannot be nil")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := r.client.Set(ctx, StateKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save state", "character_id", id, "error", err)
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (r *RedisStateCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, StateKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
