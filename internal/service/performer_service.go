package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maestro/internal/database"
	"maestro/internal/domain"
	"maestro/internal/metrics"
	"maestro/internal/models"
	"maestro/internal/search"

	"github.com/rs/zerolog"
)

// PerformerService serves the catalog side: performer lookups, filtered
// search with a short-lived cache, and city autocomplete.
type PerformerService struct {
	repo     domain.Repository
	cache    domain.CacheRepository
	cities   *search.CityIndex
	cacheTTL time.Duration
	logger   zerolog.Logger
}

func NewPerformerService(repo domain.Repository, cache domain.CacheRepository, cities *search.CityIndex, cacheTTL time.Duration, logger *zerolog.Logger) *PerformerService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "performer-service").Logger()
	} else {
		log = zerolog.Nop()
	}
	if cacheTTL <= 0 {
		cacheTTL = models.SearchCacheTTL * time.Second
	}
	return &PerformerService{
		repo:     repo,
		cache:    cache,
		cities:   cities,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (s *PerformerService) GetPerformer(ctx context.Context, id int64) (*models.Performer, error) {
	performer, err := s.repo.GetPerformer(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: performer %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return performer, nil
}

// Search runs a filtered catalog query. The canonical query string of
// the normalized filter doubles as the cache key, so equivalent UI
// states share one cache entry.
func (s *PerformerService) Search(ctx context.Context, filter *search.Filter) ([]*models.Performer, error) {
	if filter == nil {
		filter = &search.Filter{}
	}
	filter.Normalize()
	if filter.Category != "" && !models.IsKnownCategory(filter.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, filter.Category)
	}

	key := filter.Encode()

	if s.cache != nil {
		payload, err := s.cache.GetSearchResults(ctx, key)
		if err == nil && payload != nil {
			var performers []*models.Performer
			if err := json.Unmarshal(payload, &performers); err == nil {
				metrics.IncSearch("hit")
				return performers, nil
			}
			s.logger.Warn().Str("key", key).Msg("corrupt search cache entry, dropping")
		}
	}

	performers, err := s.repo.SearchPerformers(ctx, filter)
	if err != nil {
		return nil, err
	}
	metrics.IncSearch("miss")

	if s.cache != nil {
		if payload, err := json.Marshal(performers); err == nil {
			if err := s.cache.SetSearchResults(ctx, key, payload, s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("search cache error")
			}
		}
	}
	return performers, nil
}

// AutocompleteCities suggests up to ten city names for a prefix of at
// least two characters.
func (s *PerformerService) AutocompleteCities(prefix string) []string {
	if s.cities == nil {
		return nil
	}
	return s.cities.Autocomplete(prefix)
}
