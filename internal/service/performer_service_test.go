package service

import (
	"context"
	"os"
	"testing"
	"time"

	"maestro/internal/database"
	"maestro/internal/domain"
	"maestro/internal/models"
	"maestro/internal/repository"
	"maestro/internal/search"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPerformerService(t *testing.T) (*PerformerService, *database.DB) {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cities := search.NewCityIndex([]models.Region{
		{Name: "Московская область", Cities: []string{"Москва", "Можайск"}},
	})
	cache := repository.NewMemoryCacheRepository()
	return NewPerformerService(db, cache, cities, time.Minute, &logger), db
}

func TestSearchPerformersCached(t *testing.T) {
	svc, db := setupPerformerService(t)
	ctx := context.Background()
	seedPerformer(t, db, "Фотограф А", 0)

	filter := &search.Filter{City: "Москва", Category: models.CategoryPhotographer}
	first, err := svc.Search(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Второй исполнитель появился после кеширования и не виден до истечения TTL
	seedPerformer(t, db, "Фотограф Б", 0)

	second, err := svc.Search(ctx, &search.Filter{City: "Москва", Category: models.CategoryPhotographer})
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestSearchCacheKeyIsNormalized(t *testing.T) {
	svc, db := setupPerformerService(t)
	ctx := context.Background()
	seedPerformer(t, db, "Фотограф А", 0)

	_, err := svc.Search(ctx, &search.Filter{City: "Москва", Category: "all"})
	require.NoError(t, err)

	seedPerformer(t, db, "Фотограф Б", 0)

	// Эквивалентное состояние фильтра попадает в ту же запись кеша
	results, err := svc.Search(ctx, &search.Filter{City: "  Москва  "})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchUnknownCategory(t *testing.T) {
	svc, _ := setupPerformerService(t)

	_, err := svc.Search(context.Background(), &search.Filter{Category: "Фокусник"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearchNilFilterAndNilCache(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()

	svc := NewPerformerService(db, nil, nil, 0, &logger)
	seedPerformer(t, db, "Фотограф А", 0)

	results, err := svc.Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGetPerformerNotFound(t *testing.T) {
	svc, _ := setupPerformerService(t)

	_, err := svc.GetPerformer(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAutocompleteCities(t *testing.T) {
	svc, _ := setupPerformerService(t)

	assert.Equal(t, []string{"Москва", "Можайск"}, svc.AutocompleteCities("Мо"))
	assert.Empty(t, svc.AutocompleteCities("М"))

	var bare PerformerService
	assert.Nil(t, bare.AutocompleteCities("Мо"))
}
