package service

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"maestro/internal/database"
	"maestro/internal/domain"
	"maestro/internal/events"
	"maestro/internal/models"
	"maestro/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupModerationService(t *testing.T) (*ModerationService, *database.DB, *events.EventBus) {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bus := events.NewEventBus()
	cache := repository.NewMemoryCacheRepository()
	return NewModerationService(db, cache, bus, time.Minute, &logger), db, bus
}

func galleryPayload() models.ModerationPayload {
	return models.ModerationPayload{
		Gallery: &models.GalleryPayload{ImageURLs: []string{"https://cdn.example.com/1.jpg"}},
	}
}

func TestSubmitModeration(t *testing.T) {
	svc, db, bus := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	var submitted int
	bus.Subscribe(events.EventModerationSubmitted, func(e *events.Event) error {
		submitted++
		return nil
	})

	item, err := svc.Submit(ctx, models.KindGallery, performer.ID, galleryPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, item.PublicID)
	assert.Equal(t, models.ModerationPending, item.Status)
	assert.Equal(t, "Алексей", item.PerformerName)
	assert.Equal(t, 1, submitted)

	count, err := svc.PendingCount(ctx, models.KindGallery)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSubmitModerationValidation(t *testing.T) {
	svc, db, _ := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	// Payload не того вида
	_, err := svc.Submit(ctx, models.KindProfile, performer.ID, galleryPayload())
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Неизвестный исполнитель
	_, err = svc.Submit(ctx, models.KindGallery, 404, galleryPayload())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitProfileFlipsPerformerStatus(t *testing.T) {
	svc, db, _ := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)
	require.Equal(t, models.ModerationApproved, performer.ModerationStatus)

	payload := models.ModerationPayload{Profile: &models.ProfilePayload{Name: "Алексей Смирнов", Email: "new@example.com"}}
	_, err := svc.Submit(ctx, models.KindProfile, performer.ID, payload)
	require.NoError(t, err)

	got, err := db.GetPerformer(ctx, performer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationPending, got.ModerationStatus)
}

func TestApproveProfileAppliesPayload(t *testing.T) {
	svc, db, bus := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	var approved int
	bus.Subscribe(events.EventModerationApproved, func(e *events.Event) error {
		approved++
		return nil
	})

	payload := models.ModerationPayload{Profile: &models.ProfilePayload{Name: "Алексей Смирнов", Email: "new@example.com"}}
	item, err := svc.Submit(ctx, models.KindProfile, performer.ID, payload)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, item.PublicID))
	assert.Equal(t, 1, approved)

	got, err := db.GetPerformer(ctx, performer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationApproved, got.ModerationStatus)
	assert.Equal(t, "Алексей Смирнов", got.Name)
	assert.Equal(t, "new@example.com", got.Email)

	// Очередь профилей опустела
	count, err := svc.PendingCount(ctx, models.KindProfile)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, db, _ := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	item, err := svc.Submit(ctx, models.KindGallery, performer.ID, galleryPayload())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Reject(ctx, item.PublicID, ""), domain.ErrValidation)
	assert.ErrorIs(t, svc.Reject(ctx, item.PublicID, "   "), domain.ErrValidation)

	// Элемент остается в очереди
	items, err := svc.ListPending(ctx, models.KindGallery)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRejectPersistsReason(t *testing.T) {
	svc, db, bus := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	var rejectedReason string
	bus.Subscribe(events.EventModerationRejected, func(e *events.Event) error {
		var payload events.ModerationEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		rejectedReason = payload.Reason
		return nil
	})

	item, err := svc.Submit(ctx, models.KindGallery, performer.ID, galleryPayload())
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, item.PublicID, "Низкое качество фото"))
	assert.Equal(t, "Низкое качество фото", rejectedReason)

	got, err := db.GetModerationItem(ctx, item.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationRejected, got.Status)
	assert.Equal(t, "Низкое качество фото", got.Reason)
}

func TestDecideOnDecidedItem(t *testing.T) {
	svc, db, _ := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	item, err := svc.Submit(ctx, models.KindGallery, performer.ID, galleryPayload())
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, item.PublicID))

	// Решенный элемент больше не в очереди
	assert.ErrorIs(t, svc.Approve(ctx, item.PublicID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Reject(ctx, item.PublicID, "причина"), domain.ErrNotFound)

	assert.ErrorIs(t, svc.Approve(ctx, "missing"), domain.ErrNotFound)
}

func TestListPendingOrder(t *testing.T) {
	svc, db, _ := setupModerationService(t)
	ctx := context.Background()
	performer := seedPerformer(t, db, "Алексей", 0)

	first, err := svc.Submit(ctx, models.KindGallery, performer.ID, galleryPayload())
	require.NoError(t, err)
	second, err := svc.Submit(ctx, models.KindGallery, performer.ID, galleryPayload())
	require.NoError(t, err)

	items, err := svc.ListPending(ctx, models.KindGallery)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.PublicID, items[0].PublicID)
	assert.Equal(t, second.PublicID, items[1].PublicID)
}
