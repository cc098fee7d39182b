package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"maestro/internal/config"
	"maestro/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository keeps the volatile marketplace state in Redis:
// cached search results, pending-queue counters and rate-limit windows.
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{client: client}
}

func (r *RedisCacheRepository) GetSearchResults(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, "search:"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search results from redis: %w", err)
	}
	return val, nil
}

func (r *RedisCacheRepository) SetSearchResults(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, "search:"+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search results in redis: %w", err)
	}
	return nil
}

func (r *RedisCacheRepository) GetPendingCount(ctx context.Context, kind models.ModerationKind) (int64, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, pendingCountKey(kind)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get pending count from redis: %w", err)
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse pending count: %w", err)
	}
	return count, true, nil
}

func (r *RedisCacheRepository) SetPendingCount(ctx context.Context, kind models.ModerationKind, count int64, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, pendingCountKey(kind), count, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set pending count in redis: %w", err)
	}
	return nil
}

func (r *RedisCacheRepository) CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := "rate_limit:" + clientKey
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

func pendingCountKey(kind models.ModerationKind) string {
	return fmt.Sprintf("moderation:pending:%s", kind)
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
