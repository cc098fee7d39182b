package service

import (
	"context"
	"errors"
	"fmt"

	"maestro/internal/database"
	"maestro/internal/domain"
	"maestro/internal/events"
	"maestro/internal/metrics"
	"maestro/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService governs the booking request lifecycle:
// pending -> confirmed | rejected | cancelled_by_customer.
type BookingService struct {
	repo       domain.Repository
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "booking-service").Logger()
	} else {
		log = zerolog.Nop()
	}
	return &BookingService{
		repo:       repo,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     log,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, request *models.BookingRequest) error {
	if request.Date.IsZero() {
		return fmt.Errorf("%w: booking date is required", domain.ErrValidation)
	}
	if request.CustomerID == 0 {
		return fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}

	performer, err := s.repo.GetPerformer(ctx, request.PerformerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: performer %d", domain.ErrNotFound, request.PerformerID)
		}
		return err
	}

	request.PublicID = uuid.NewString()
	request.PerformerName = performer.Name
	request.Status = models.BookingStatusPending

	if err := s.repo.CreateBookingRequest(ctx, request); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCreated, request)
	s.enqueueSync(ctx, request, "upsert")
	return nil
}

func (s *BookingService) AcceptBooking(ctx context.Context, requestID string, performerID int64) (*models.BookingRequest, error) {
	return s.decide(ctx, requestID, performerID, models.BookingStatusConfirmed, events.EventBookingConfirmed)
}

func (s *BookingService) RejectBooking(ctx context.Context, requestID string, performerID int64) (*models.BookingRequest, error) {
	return s.decide(ctx, requestID, performerID, models.BookingStatusRejected, events.EventBookingRejected)
}

// decide applies a performer decision under the lifecycle guards. The
// status write is a compare-and-swap on the stored version, so of two
// racing decisions exactly one succeeds and the other sees invalid state.
func (s *BookingService) decide(ctx context.Context, requestID string, performerID int64, status, eventType string) (*models.BookingRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, request, performerID); err != nil {
		return nil, err
	}
	if request.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking %s is %s", domain.ErrInvalidState, requestID, request.Status)
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, requestID, request.Version, status)
	if err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			return nil, fmt.Errorf("%w: booking %s was decided concurrently", domain.ErrInvalidState, requestID)
		}
		return nil, err
	}

	updated, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(status)
	s.publishEvent(eventType, updated)
	s.enqueueSync(ctx, updated, "update_status")
	return updated, nil
}

// CancelBooking is the customer-side transition to cancelled_by_customer.
func (s *BookingService) CancelBooking(ctx context.Context, requestID string, customerID int64) (*models.BookingRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.CustomerID != customerID {
		return nil, fmt.Errorf("%w: booking %s belongs to another customer", domain.ErrForbidden, requestID)
	}
	if request.Status != models.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking %s is %s", domain.ErrInvalidState, requestID, request.Status)
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, requestID, request.Version, models.BookingStatusCancelledByCustomer)
	if err != nil {
		if errors.Is(err, database.ErrConcurrentModification) {
			return nil, fmt.Errorf("%w: booking %s was decided concurrently", domain.ErrInvalidState, requestID)
		}
		return nil, err
	}

	updated, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(models.BookingStatusCancelledByCustomer)
	s.publishEvent(events.EventBookingCancelled, updated)
	s.enqueueSync(ctx, updated, "update_status")
	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, requestID string) (*models.BookingRequest, error) {
	return s.getRequest(ctx, requestID)
}

// ListPerformerBookings returns one performer's requests, pending first,
// then by event date descending.
func (s *BookingService) ListPerformerBookings(ctx context.Context, performerID int64) ([]*models.BookingRequest, error) {
	bookings, err := s.repo.GetPerformerBookings(ctx, performerID)
	if err != nil {
		return nil, err
	}
	models.SortBookingsForDisplay(bookings)
	return bookings, nil
}

// ListAgencyBookings returns the union across an agency's specialists.
func (s *BookingService) ListAgencyBookings(ctx context.Context, agencyID int64) ([]*models.BookingRequest, error) {
	bookings, err := s.repo.GetAgencyBookings(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	models.SortBookingsForDisplay(bookings)
	return bookings, nil
}

func (s *BookingService) getRequest(ctx context.Context, requestID string) (*models.BookingRequest, error) {
	request, err := s.repo.GetBookingRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, requestID)
		}
		return nil, err
	}
	return request, nil
}

// checkOwnership allows the performer itself or the agency owning the
// performer's sub-profile.
func (s *BookingService) checkOwnership(ctx context.Context, request *models.BookingRequest, performerID int64) error {
	if request.PerformerID == performerID {
		return nil
	}
	performer, err := s.repo.GetPerformer(ctx, request.PerformerID)
	if err == nil && performer.AgencyID != 0 && performer.AgencyID == performerID {
		return nil
	}
	return fmt.Errorf("%w: booking %s is not addressed to performer %d", domain.ErrForbidden, request.PublicID, performerID)
}

func (s *BookingService) publishEvent(eventType string, request *models.BookingRequest) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		RequestID:     request.PublicID,
		PerformerID:   request.PerformerID,
		PerformerName: request.PerformerName,
		CustomerID:    request.CustomerID,
		CustomerName:  request.CustomerName,
		Status:        request.Status,
		Date:          request.Date,
		Details:       request.Details,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("request_id", request.PublicID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, request *models.BookingRequest, taskType string) {
	if s.syncWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = request.Status
	}
	if err := s.syncWorker.EnqueueTask(ctx, taskType, request.PublicID, request, status); err != nil {
		s.logger.Error().Err(err).Str("request_id", request.PublicID).Str("task", taskType).Msg("sync enqueue error")
	}
}
