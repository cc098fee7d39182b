package repository

import (
	"context"
	"testing"
	"time"

	"maestro/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*RedisCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCacheRepository(client), mr
}

func TestRedisSearchResults(t *testing.T) {
	repo, mr := setupRedisCache(t)
	ctx := context.Background()

	got, err := repo.GetSearchResults(ctx, "city=Москва")
	require.NoError(t, err)
	assert.Nil(t, got)

	payload := []byte(`[{"id":1}]`)
	require.NoError(t, repo.SetSearchResults(ctx, "city=Москва", payload, time.Minute))

	got, err = repo.GetSearchResults(ctx, "city=Москва")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// TTL истекает
	mr.FastForward(2 * time.Minute)
	got, err = repo.GetSearchResults(ctx, "city=Москва")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisPendingCount(t *testing.T) {
	repo, _ := setupRedisCache(t)
	ctx := context.Background()

	_, found, err := repo.GetPendingCount(ctx, models.KindGallery)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SetPendingCount(ctx, models.KindGallery, 7, time.Minute))

	count, found, err := repo.GetPendingCount(ctx, models.KindGallery)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), count)

	// Нулевое значение тоже найдено, а не "нет записи"
	require.NoError(t, repo.SetPendingCount(ctx, models.KindProfile, 0, time.Minute))
	count, found, err = repo.GetPendingCount(ctx, models.KindProfile)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, count)
}

func TestRedisCheckRateLimit(t *testing.T) {
	repo, mr := setupRedisCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, "client-1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, "client-1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Другой клиент считается отдельно
	allowed, err = repo.CheckRateLimit(ctx, "client-2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Окно истекло, счетчик сброшен
	mr.FastForward(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, "client-1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisNilClient(t *testing.T) {
	repo := NewRedisCacheRepository(nil)
	ctx := context.Background()

	_, err := repo.GetSearchResults(ctx, "key")
	assert.Error(t, err)
	assert.Error(t, repo.SetSearchResults(ctx, "key", nil, time.Minute))
}
