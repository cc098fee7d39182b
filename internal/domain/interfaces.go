package domain

import (
	"context"
	"time"

	"maestro/internal/models"
	"maestro/internal/search"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	// Performers
	CreatePerformer(ctx context.Context, performer *models.Performer) error
	GetPerformer(ctx context.Context, id int64) (*models.Performer, error)
	GetSpecialists(ctx context.Context, agencyID int64) ([]*models.Performer, error)
	UpdatePerformerModerationStatus(ctx context.Context, id int64, status string) error
	ApplyProfilePayload(ctx context.Context, id int64, payload models.ProfilePayload) error
	SearchPerformers(ctx context.Context, filter *search.Filter) ([]*models.Performer, error)

	// Booking requests
	CreateBookingRequest(ctx context.Context, request *models.BookingRequest) error
	GetBookingRequest(ctx context.Context, publicID string) (*models.BookingRequest, error)
	UpdateBookingStatusWithVersion(ctx context.Context, publicID string, fromVersion int64, status string) error
	GetPerformerBookings(ctx context.Context, performerID int64) ([]*models.BookingRequest, error)
	GetAgencyBookings(ctx context.Context, agencyID int64) ([]*models.BookingRequest, error)
	ListBookingsSince(ctx context.Context, since time.Time) ([]*models.BookingRequest, error)

	// Moderation queue
	CreateModerationItem(ctx context.Context, item *models.ModerationItem) error
	GetModerationItem(ctx context.Context, publicID string) (*models.ModerationItem, error)
	UpdateModerationStatusWithVersion(ctx context.Context, publicID string, fromVersion int64, status, reason string) error
	ListPendingModeration(ctx context.Context, kind models.ModerationKind) ([]*models.ModerationItem, error)
	CountPendingModeration(ctx context.Context, kind models.ModerationKind) (int64, error)

	// Sync queue
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// CacheRepository is the volatile side store: search result cache,
// pending-queue counters and per-client rate limiting.
type CacheRepository interface {
	GetSearchResults(ctx context.Context, key string) ([]byte, error)
	SetSearchResults(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	GetPendingCount(ctx context.Context, kind models.ModerationKind) (int64, bool, error)
	SetPendingCount(ctx context.Context, kind models.ModerationKind, count int64, ttl time.Duration) error
	CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type SheetsWriter interface {
	UpsertBooking(ctx context.Context, request *models.BookingRequest) error
	UpdateBookingStatus(ctx context.Context, requestID string, status string) error
	ReplaceBookingsSheet(ctx context.Context, requests []*models.BookingRequest) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, requestID string, request *models.BookingRequest, status string) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, request *models.BookingRequest) error
	AcceptBooking(ctx context.Context, requestID string, performerID int64) (*models.BookingRequest, error)
	RejectBooking(ctx context.Context, requestID string, performerID int64) (*models.BookingRequest, error)
	CancelBooking(ctx context.Context, requestID string, customerID int64) (*models.BookingRequest, error)
	GetBooking(ctx context.Context, requestID string) (*models.BookingRequest, error)
	ListPerformerBookings(ctx context.Context, performerID int64) ([]*models.BookingRequest, error)
	ListAgencyBookings(ctx context.Context, agencyID int64) ([]*models.BookingRequest, error)
}

type ModerationService interface {
	Submit(ctx context.Context, kind models.ModerationKind, performerID int64, payload models.ModerationPayload) (*models.ModerationItem, error)
	Approve(ctx context.Context, itemID string) error
	Reject(ctx context.Context, itemID string, reason string) error
	ListPending(ctx context.Context, kind models.ModerationKind) ([]*models.ModerationItem, error)
	PendingCount(ctx context.Context, kind models.ModerationKind) (int64, error)
}

type PerformerService interface {
	GetPerformer(ctx context.Context, id int64) (*models.Performer, error)
	Search(ctx context.Context, filter *search.Filter) ([]*models.Performer, error)
	AutocompleteCities(prefix string) []string
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
