package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/survival-engine/pkg/state"
)

// RedisStorage implements the Storage interface using Redis for animals and
// journals, and the filesystem for content.
type RedisStorage struct {
	*ContentLoader
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL may be a
// bare host:port or a redis:// URL.
func NewRedisStorage(redisURL, dataDir string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisStorage{
		ContentLoader: NewContentLoader(dataDir),
		client:        redis.NewClient(opt),
		logger:        logger,
		ttl:           ttl,
	}
}

func animalKey(id uuid.UUID) string  { return "animal:" + id.String() }
func journalKey(id uuid.UUID) string { return "journal:" + id.String() }

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
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

// Animal operations. Saving refreshes the TTL of the animal and its journal.

func (r *RedisStorage) SaveAnimal(ctx context.Context, a *state.Animal) error {
	if a == nil {
		return fmt.Errorf("animal cannot be nil")
	}
	data, err := json.Marshal(a)
	if err != nil {
		r.logger.Error("Failed to marshal animal", "uuid", a.ID, "error", err)
		return fmt.Errorf("failed to marshal animal: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, animalKey(a.ID), data, r.ttl)
	pipe.Expire(ctx, journalKey(a.ID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save animal", "uuid", a.ID, "error", err)
		return fmt.Errorf("failed to save animal: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadAnimal(ctx context.Context, id uuid.UUID) (*state.Animal, error) {
	data, err := r.client.Get(ctx, animalKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.logger.Warn("Animal not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load animal", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load animal: %w", err)
	}

	var a state.Animal
	if err := json.Unmarshal(data, &a); err != nil {
		r.logger.Error("Failed to unmarshal animal", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal animal: %w", err)
	}
	return &a, nil
}

func (r *RedisStorage) DeleteAnimal(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, animalKey(id), journalKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete animal", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete animal: %w", err)
	}
	return nil
}

// Journal operations

func (r *RedisStorage) AppendJournal(ctx context.Context, id uuid.UUID, entries ...JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]any, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal journal entry: %w", err)
		}
		values = append(values, data)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, journalKey(id), values...)
	pipe.Expire(ctx, journalKey(id), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append journal: %w", err)
	}
	return nil
}

// Journal returns the last limit entries in turn order, or all when limit <= 0.
func (r *RedisStorage) Journal(ctx context.Context, id uuid.UUID, limit int) ([]JournalEntry, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := r.client.LRange(ctx, journalKey(id), start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := make([]JournalEntry, 0, len(raw))
	for _, s := range raw {
		var e JournalEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
