package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"maestro/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func createTestPerformer(t *testing.T, db *DB, name, category, city string) *models.Performer {
	t.Helper()
	performer := &models.Performer{
		Name:             name,
		AccountType:      models.AccountTypeIndividual,
		Category:         category,
		City:             city,
		Price:            10000,
		ModerationStatus: models.ModerationApproved,
		IsActive:         true,
	}
	require.NoError(t, db.CreatePerformer(context.Background(), performer))
	return performer
}

func createTestBooking(t *testing.T, db *DB, publicID string, performerID int64) *models.BookingRequest {
	t.Helper()
	request := &models.BookingRequest{
		PublicID:     publicID,
		PerformerID:  performerID,
		CustomerID:   100,
		CustomerName: "Мария",
		Date:         time.Now().AddDate(0, 0, 7),
		Service:      "Свадьба",
		Price:        20000,
		Status:       models.BookingStatusPending,
	}
	require.NoError(t, db.CreateBookingRequest(context.Background(), request))
	return request
}

func TestCreateAndGetBookingRequest(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	performer := createTestPerformer(t, db, "Алексей", models.CategoryPhotographer, "Москва")
	created := createTestBooking(t, db, "req-1", performer.ID)

	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(1), created.Version)

	got, err := db.GetBookingRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, created.PublicID, got.PublicID)
	assert.Equal(t, models.BookingStatusPending, got.Status)
	assert.Equal(t, "Мария", got.CustomerName)
}

func TestGetBookingRequestNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetBookingRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookingStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	performer := createTestPerformer(t, db, "Алексей", models.CategoryPhotographer, "Москва")
	request := createTestBooking(t, db, "req-1", performer.ID)

	err := db.UpdateBookingStatusWithVersion(ctx, request.PublicID, request.Version, models.BookingStatusConfirmed)
	require.NoError(t, err)

	got, err := db.GetBookingRequest(ctx, request.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestUpdateBookingStatusWithVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	performer := createTestPerformer(t, db, "Алексей", models.CategoryPhotographer, "Москва")
	request := createTestBooking(t, db, "req-1", performer.ID)

	// Первое обновление выигрывает
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, request.PublicID, request.Version, models.BookingStatusConfirmed))

	// Второе со старой версией проигрывает
	err := db.UpdateBookingStatusWithVersion(ctx, request.PublicID, request.Version, models.BookingStatusRejected)
	assert.True(t, errors.Is(err, ErrConcurrentModification))

	got, err := db.GetBookingRequest(ctx, request.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
}

func TestGetPerformerBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	performer := createTestPerformer(t, db, "Алексей", models.CategoryPhotographer, "Москва")
	other := createTestPerformer(t, db, "Ирина", models.CategoryHost, "Казань")

	createTestBooking(t, db, "req-1", performer.ID)
	createTestBooking(t, db, "req-2", performer.ID)
	createTestBooking(t, db, "req-3", other.ID)

	bookings, err := db.GetPerformerBookings(ctx, performer.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, performer.ID, b.PerformerID)
	}
}

func TestGetAgencyBookings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	agency := &models.Performer{
		Name:             "Агентство Праздник",
		AccountType:      models.AccountTypeAgency,
		Category:         models.CategoryHost,
		City:             "Москва",
		ModerationStatus: models.ModerationApproved,
		IsActive:         true,
	}
	require.NoError(t, db.CreatePerformer(ctx, agency))

	specialist := &models.Performer{
		Name:             "Ведущий Петр",
		AccountType:      models.AccountTypeIndividual,
		AgencyID:         agency.ID,
		Category:         models.CategoryHost,
		City:             "Москва",
		ModerationStatus: models.ModerationApproved,
		IsActive:         true,
	}
	require.NoError(t, db.CreatePerformer(ctx, specialist))

	outsider := createTestPerformer(t, db, "Посторонний", models.CategoryPhotographer, "Москва")

	createTestBooking(t, db, "req-agency", agency.ID)
	createTestBooking(t, db, "req-spec", specialist.ID)
	createTestBooking(t, db, "req-other", outsider.ID)

	bookings, err := db.GetAgencyBookings(ctx, agency.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.NotEqual(t, "req-other", b.PublicID)
	}
}

func TestListBookingsSince(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	performer := createTestPerformer(t, db, "Алексей", models.CategoryPhotographer, "Москва")
	createTestBooking(t, db, "req-1", performer.ID)
	createTestBooking(t, db, "req-2", performer.ID)

	bookings, err := db.ListBookingsSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, "req-1", bookings[0].PublicID)
}
