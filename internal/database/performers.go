package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maestro/internal/models"
	"maestro/internal/search"
)

func (db *DB) CreatePerformer(ctx context.Context, performer *models.Performer) error {
	attrs, err := marshalAttributes(performer.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal performer attributes: %w", err)
	}

	query := `INSERT INTO performers (
                name, company_name, email, phone, account_type, agency_id,
                category, city, price, description, attributes,
                moderation_status, is_active, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if performer.ModerationStatus == "" {
		performer.ModerationStatus = models.ModerationPending
	}
	result, err := db.db.ExecContext(ctx, query,
		performer.Name,
		performer.CompanyName,
		performer.Email,
		performer.Phone,
		performer.AccountType,
		nullableID(performer.AgencyID),
		performer.Category,
		performer.City,
		performer.Price,
		performer.Description,
		attrs,
		performer.ModerationStatus,
		performer.IsActive,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create performer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	performer.ID = id
	performer.CreatedAt = now
	performer.UpdatedAt = now
	return nil
}

const performerColumns = `id, name, company_name, email, phone, account_type, agency_id,
                 category, city, price, description, attributes,
                 moderation_status, is_active, created_at, updated_at`

func (db *DB) GetPerformer(ctx context.Context, id int64) (*models.Performer, error) {
	query := `SELECT ` + performerColumns + ` FROM performers WHERE id = ?`
	performer, err := scanPerformer(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get performer: %w", err)
	}
	return performer, nil
}

func (db *DB) GetSpecialists(ctx context.Context, agencyID int64) ([]*models.Performer, error) {
	query := `SELECT ` + performerColumns + ` FROM performers WHERE agency_id = ? ORDER BY name`
	rows, err := db.db.QueryContext(ctx, query, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get specialists: %w", err)
	}
	defer rows.Close()
	return scanPerformers(rows)
}

func (db *DB) UpdatePerformerModerationStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE performers SET moderation_status = ?, updated_at = ? WHERE id = ?`
	result, err := db.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update performer moderation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyProfilePayload writes approved profile fields onto the performer row.
func (db *DB) ApplyProfilePayload(ctx context.Context, id int64, payload models.ProfilePayload) error {
	query := `UPDATE performers SET name = ?, company_name = ?,
              email = COALESCE(NULLIF(?, ''), email),
              phone = COALESCE(NULLIF(?, ''), phone),
              updated_at = ? WHERE id = ?`
	result, err := db.db.ExecContext(ctx, query,
		payload.Name, payload.CompanyName, payload.Email, payload.Phone, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to apply profile payload: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchPerformers applies the scalar filter fields in SQL and the
// category-specific attribute filters in memory, since attributes are
// stored as a JSON document.
func (db *DB) SearchPerformers(ctx context.Context, filter *search.Filter) ([]*models.Performer, error) {
	query := `SELECT ` + performerColumns + ` FROM performers
              WHERE moderation_status = ? AND is_active = 1`
	args := []interface{}{models.ModerationApproved}

	if filter.City != "" {
		query += ` AND city = ? COLLATE NOCASE`
		args = append(args, filter.City)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.AccountType != "" {
		query += ` AND account_type = ?`
		args = append(args, filter.AccountType)
	}
	if filter.PriceMin > 0 {
		query += ` AND price >= ?`
		args = append(args, filter.PriceMin)
	}
	if filter.PriceMax > 0 {
		query += ` AND price <= ?`
		args = append(args, filter.PriceMax)
	}
	query += ` ORDER BY name`

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search performers: %w", err)
	}
	defer rows.Close()

	performers, err := scanPerformers(rows)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Performer, 0, len(performers))
	for _, p := range performers {
		if filter.MatchesAttributes(p.Attributes) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerformer(row rowScanner) (*models.Performer, error) {
	var p models.Performer
	var companyName, phone, description, attrs sql.NullString
	var agencyID sql.NullInt64
	err := row.Scan(
		&p.ID, &p.Name, &companyName, &p.Email, &phone, &p.AccountType, &agencyID,
		&p.Category, &p.City, &p.Price, &description, &attrs,
		&p.ModerationStatus, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CompanyName = companyName.String
	p.Phone = phone.String
	p.Description = description.String
	p.AgencyID = agencyID.Int64
	if attrs.Valid && attrs.String != "" {
		if err := json.Unmarshal([]byte(attrs.String), &p.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal performer attributes: %w", err)
		}
	}
	return &p, nil
}

func scanPerformers(rows *sql.Rows) ([]*models.Performer, error) {
	var performers []*models.Performer
	for rows.Next() {
		p, err := scanPerformer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan performer: %w", err)
		}
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return performers, nil
}

func marshalAttributes(attrs map[string][]string) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
