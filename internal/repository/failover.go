package repository

import (
	"context"
	"sync/atomic"
	"time"

	"maestro/internal/domain"
	"maestro/internal/models"

	"github.com/rs/zerolog"
)

// FailoverCacheRepository routes to the primary (Redis) cache and falls
// back to the in-memory one when the primary errors. After a cool-down
// the primary is probed again.
type FailoverCacheRepository struct {
	primary   domain.CacheRepository
	fallback  domain.CacheRepository
	logger    zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

const recoveryInterval = time.Minute

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "cache-failover").Logger()
	} else {
		log = zerolog.Nop()
	}
	return &FailoverCacheRepository{primary: primary, fallback: fallback, logger: log}
}

func (r *FailoverCacheRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary reports whether the primary should handle this call.
func (r *FailoverCacheRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval {
		// Probe the primary again after the cool-down.
		return true
	}
	return false
}

func (r *FailoverCacheRepository) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("primary cache recovered")
	}
}

func (r *FailoverCacheRepository) GetSearchResults(ctx context.Context, key string) ([]byte, error) {
	if r.usePrimary() {
		payload, err := r.primary.GetSearchResults(ctx, key)
		if err == nil {
			r.recovered()
			return payload, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetSearchResults(ctx, key)
}

func (r *FailoverCacheRepository) SetSearchResults(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if r.usePrimary() {
		if err := r.primary.SetSearchResults(ctx, key, payload, ttl); err == nil {
			r.recovered()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.SetSearchResults(ctx, key, payload, ttl)
}

func (r *FailoverCacheRepository) GetPendingCount(ctx context.Context, kind models.ModerationKind) (int64, bool, error) {
	if r.usePrimary() {
		count, found, err := r.primary.GetPendingCount(ctx, kind)
		if err == nil {
			r.recovered()
			return count, found, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetPendingCount(ctx, kind)
}

func (r *FailoverCacheRepository) SetPendingCount(ctx context.Context, kind models.ModerationKind, count int64, ttl time.Duration) error {
	if r.usePrimary() {
		if err := r.primary.SetPendingCount(ctx, kind, count, ttl); err == nil {
			r.recovered()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.SetPendingCount(ctx, kind, count, ttl)
}

func (r *FailoverCacheRepository) CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, clientKey, limit, window)
		if err == nil {
			r.recovered()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, clientKey, limit, window)
}
