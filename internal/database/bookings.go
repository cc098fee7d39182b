package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"maestro/internal/models"
)

func (db *DB) CreateBookingRequest(ctx context.Context, request *models.BookingRequest) error {
	query := `INSERT INTO booking_requests (
                public_id, performer_id, performer_name, customer_id, customer_name,
                date, details, service, price, status, created_at, updated_at, version
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		request.PublicID,
		request.PerformerID,
		request.PerformerName,
		request.CustomerID,
		request.CustomerName,
		request.Date,
		request.Details,
		request.Service,
		request.Price,
		request.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now
	request.UpdatedAt = now
	request.Version = 1
	return nil
}

const bookingColumns = `id, public_id, performer_id, performer_name, customer_id, customer_name,
                 date, details, service, price, status, created_at, updated_at, version`

func (db *DB) GetBookingRequest(ctx context.Context, publicID string) (*models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE public_id = ?`
	request, err := scanBookingRequest(db.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}
	return request, nil
}

// UpdateBookingStatusWithVersion performs the compare-and-swap transition:
// the row is updated only when the stored version still matches. Zero rows
// affected means a concurrent caller won the race.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, publicID string, fromVersion int64, status string) error {
	query := `UPDATE booking_requests SET status = ?, version = version + 1, updated_at = ?
              WHERE public_id = ? AND version = ?`
	result, err := db.db.ExecContext(ctx, query, status, time.Now(), publicID, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetPerformerBookings(ctx context.Context, performerID int64) ([]*models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests
              WHERE performer_id = ? ORDER BY date DESC`
	rows, err := db.db.QueryContext(ctx, query, performerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get performer bookings: %w", err)
	}
	defer rows.Close()
	return scanBookingRequests(rows)
}

// GetAgencyBookings returns the union of bookings across the agency's
// specialist sub-profiles, the agency's own requests included.
func (db *DB) GetAgencyBookings(ctx context.Context, agencyID int64) ([]*models.BookingRequest, error) {
	specialists, err := db.GetSpecialists(ctx, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agency specialists: %w", err)
	}

	args := make([]interface{}, 0, len(specialists)+1)
	args = append(args, agencyID)
	for _, s := range specialists {
		args = append(args, s.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")

	query := `SELECT ` + bookingColumns + ` FROM booking_requests
              WHERE performer_id IN (` + placeholders + `) ORDER BY date DESC`
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get agency bookings: %w", err)
	}
	defer rows.Close()
	return scanBookingRequests(rows)
}

// ListBookingsSince returns every booking created at or after since,
// oldest first. Used by the xlsx export and the sheet resync.
func (db *DB) ListBookingsSince(ctx context.Context, since time.Time) ([]*models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests
              WHERE created_at >= ? ORDER BY created_at ASC`
	rows, err := db.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()
	return scanBookingRequests(rows)
}

func scanBookingRequest(row rowScanner) (*models.BookingRequest, error) {
	var b models.BookingRequest
	var details, service sql.NullString
	err := row.Scan(
		&b.ID, &b.PublicID, &b.PerformerID, &b.PerformerName, &b.CustomerID, &b.CustomerName,
		&b.Date, &details, &service, &b.Price, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.Details = details.String
	b.Service = service.String
	return &b, nil
}

func scanBookingRequests(rows *sql.Rows) ([]*models.BookingRequest, error) {
	var bookings []*models.BookingRequest
	for rows.Next() {
		b, err := scanBookingRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking request: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
