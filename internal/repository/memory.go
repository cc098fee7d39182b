package repository

import (
	"context"
	"sync"
	"time"

	"maestro/internal/models"
)

// MemoryCacheRepository is the in-process fallback used when Redis is
// unavailable or not configured. Entries honor their TTL lazily.
type MemoryCacheRepository struct {
	searches      sync.Map // key -> *cacheEntry
	pendingCounts sync.Map // kind -> *cacheEntry
	rateLimits    sync.Map // clientKey -> *rateLimitEntry
	mu            sync.Mutex
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{}
}

type cacheEntry struct {
	payload   []byte
	count     int64
	expiresAt time.Time
}

func (e *cacheEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func (r *MemoryCacheRepository) GetSearchResults(ctx context.Context, key string) ([]byte, error) {
	val, ok := r.searches.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(*cacheEntry)
	if entry.expired() {
		r.searches.Delete(key)
		return nil, nil
	}
	return entry.payload, nil
}

func (r *MemoryCacheRepository) SetSearchResults(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	r.searches.Store(key, &cacheEntry{payload: payload, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (r *MemoryCacheRepository) GetPendingCount(ctx context.Context, kind models.ModerationKind) (int64, bool, error) {
	val, ok := r.pendingCounts.Load(kind)
	if !ok {
		return 0, false, nil
	}
	entry := val.(*cacheEntry)
	if entry.expired() {
		r.pendingCounts.Delete(kind)
		return 0, false, nil
	}
	return entry.count, true, nil
}

func (r *MemoryCacheRepository) SetPendingCount(ctx context.Context, kind models.ModerationKind, count int64, ttl time.Duration) error {
	r.pendingCounts.Store(kind, &cacheEntry{count: count, expiresAt: time.Now().Add(ttl)})
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryCacheRepository) CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	val, ok := r.rateLimits.Load(clientKey)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}
	r.rateLimits.Store(clientKey, entry)

	return entry.count <= limit, nil
}
