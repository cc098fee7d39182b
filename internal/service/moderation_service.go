package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maestro/internal/database"
	"maestro/internal/domain"
	"maestro/internal/events"
	"maestro/internal/metrics"
	"maestro/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ModerationService holds the four review queues (profile, gallery,
// certificate, letter) and applies moderator decisions. Profile
// decisions also update the performer record itself.
type ModerationService struct {
	repo     domain.Repository
	cache    domain.CacheRepository
	eventBus domain.EventPublisher
	countTTL time.Duration
	logger   zerolog.Logger
}

func NewModerationService(repo domain.Repository, cache domain.CacheRepository, eventBus domain.EventPublisher, countTTL time.Duration, logger *zerolog.Logger) *ModerationService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "moderation-service").Logger()
	} else {
		log = zerolog.Nop()
	}
	if countTTL <= 0 {
		countTTL = models.DefaultRedisTTL * time.Second
	}
	return &ModerationService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		countTTL: countTTL,
		logger:   log,
	}
}

// Submit places new performer content into the matching review queue.
// The item enters as pending_approval; a profile submission also flips
// the performer record back to pending_approval.
func (s *ModerationService) Submit(ctx context.Context, kind models.ModerationKind, performerID int64, payload models.ModerationPayload) (*models.ModerationItem, error) {
	performer, err := s.repo.GetPerformer(ctx, performerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: performer %d", domain.ErrNotFound, performerID)
		}
		return nil, err
	}

	item := &models.ModerationItem{
		PublicID:      uuid.NewString(),
		Kind:          kind,
		PerformerID:   performerID,
		PerformerName: performer.Name,
		Status:        models.ModerationPending,
		Payload:       payload,
	}
	if err := item.ValidatePayload(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.repo.CreateModerationItem(ctx, item); err != nil {
		return nil, err
	}

	if kind == models.KindProfile {
		if err := s.repo.UpdatePerformerModerationStatus(ctx, performerID, models.ModerationPending); err != nil {
			s.logger.Error().Err(err).Int64("performer_id", performerID).Msg("performer status update error")
		}
	}

	s.refreshPendingCount(ctx, kind)
	s.publishEvent(events.EventModerationSubmitted, item)
	return item, nil
}

// Approve finalizes the item as approved. An item that was already
// decided is no longer in the queue, so the caller gets not-found.
func (s *ModerationService) Approve(ctx context.Context, itemID string) error {
	item, err := s.getPendingItem(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.updateStatus(ctx, item, models.ModerationApproved, ""); err != nil {
		return err
	}

	if item.Kind == models.KindProfile {
		if err := s.repo.UpdatePerformerModerationStatus(ctx, item.PerformerID, models.ModerationApproved); err != nil {
			s.logger.Error().Err(err).Int64("performer_id", item.PerformerID).Msg("performer status update error")
		}
		if item.Payload.Profile != nil {
			if err := s.repo.ApplyProfilePayload(ctx, item.PerformerID, *item.Payload.Profile); err != nil {
				s.logger.Error().Err(err).Int64("performer_id", item.PerformerID).Msg("profile payload apply error")
			}
		}
	}

	item.Status = models.ModerationApproved
	metrics.IncModerationDecision(string(item.Kind), models.ModerationApproved)
	s.refreshPendingCount(ctx, item.Kind)
	s.publishEvent(events.EventModerationApproved, item)
	return nil
}

// Reject finalizes the item as rejected. The reason is mandatory and is
// persisted on the item so the performer sees what to fix.
func (s *ModerationService) Reject(ctx context.Context, itemID string, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}

	item, err := s.getPendingItem(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.updateStatus(ctx, item, models.ModerationRejected, reason); err != nil {
		return err
	}

	if item.Kind == models.KindProfile {
		if err := s.repo.UpdatePerformerModerationStatus(ctx, item.PerformerID, models.ModerationRejected); err != nil {
			s.logger.Error().Err(err).Int64("performer_id", item.PerformerID).Msg("performer status update error")
		}
	}

	item.Status = models.ModerationRejected
	item.Reason = reason
	metrics.IncModerationDecision(string(item.Kind), models.ModerationRejected)
	s.refreshPendingCount(ctx, item.Kind)
	s.publishEvent(events.EventModerationRejected, item)
	return nil
}

// ListPending returns the queue for one kind in submission order.
func (s *ModerationService) ListPending(ctx context.Context, kind models.ModerationKind) ([]*models.ModerationItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown moderation kind %q", domain.ErrValidation, kind)
	}
	return s.repo.ListPendingModeration(ctx, kind)
}

// PendingCount serves the queue badge; it prefers the cached counter
// and falls back to the database.
func (s *ModerationService) PendingCount(ctx context.Context, kind models.ModerationKind) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: unknown moderation kind %q", domain.ErrValidation, kind)
	}

	if s.cache != nil {
		if count, found, err := s.cache.GetPendingCount(ctx, kind); err == nil && found {
			return count, nil
		}
	}

	count, err := s.repo.CountPendingModeration(ctx, kind)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetPendingCount(ctx, kind, count, s.countTTL); err != nil {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("pending count cache error")
		}
	}
	return count, nil
}

func (s *ModerationService) getPendingItem(ctx context.Context, itemID string) (*models.ModerationItem, error) {
	item, err := s.repo.GetModerationItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: moderation item %s", domain.ErrNotFound, itemID)
		}
		return nil, err
	}
	if item.Status != models.ModerationPending {
		// Уже решенный элемент в очереди не находится.
		return nil, fmt.Errorf("%w: moderation item %s is not in the queue", domain.ErrNotFound, itemID)
	}
	return item, nil
}

func (s *ModerationService) updateStatus(ctx context.Context, item *models.ModerationItem, status, reason string) error {
	err := s.repo.UpdateModerationStatusWithVersion(ctx, item.PublicID, item.Version, status, reason)
	if err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			return fmt.Errorf("%w: moderation item %s is not in the queue", domain.ErrNotFound, item.PublicID)
		}
		return err
	}
	return nil
}

func (s *ModerationService) refreshPendingCount(ctx context.Context, kind models.ModerationKind) {
	if s.cache == nil {
		return
	}
	count, err := s.repo.CountPendingModeration(ctx, kind)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("pending count refresh error")
		return
	}
	if err := s.cache.SetPendingCount(ctx, kind, count, s.countTTL); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("pending count cache error")
	}
}

func (s *ModerationService) publishEvent(eventType string, item *models.ModerationItem) {
	if s.eventBus == nil {
		return
	}

	payload := events.ModerationEventPayload{
		ItemID:        item.PublicID,
		Kind:          string(item.Kind),
		PerformerID:   item.PerformerID,
		PerformerName: item.PerformerName,
		Status:        item.Status,
		Reason:        item.Reason,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("item_id", item.PublicID).Msg("publish event error")
	}
}
