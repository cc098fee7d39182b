package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maestro/internal/models"
)

func (db *DB) CreateModerationItem(ctx context.Context, item *models.ModerationItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal moderation payload: %w", err)
	}

	query := `INSERT INTO moderation_items (
                public_id, kind, performer_id, performer_name, status, payload,
                reason, created_at, updated_at, version
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		item.PublicID,
		string(item.Kind),
		item.PerformerID,
		item.PerformerName,
		item.Status,
		string(payload),
		item.Reason,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create moderation item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1
	return nil
}

const moderationColumns = `id, public_id, kind, performer_id, performer_name, status,
                 payload, reason, created_at, updated_at, version`

func (db *DB) GetModerationItem(ctx context.Context, publicID string) (*models.ModerationItem, error) {
	query := `SELECT ` + moderationColumns + ` FROM moderation_items WHERE public_id = ?`
	item, err := scanModerationItem(db.db.QueryRowContext(ctx, query, publicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get moderation item: %w", err)
	}
	return item, nil
}

// UpdateModerationStatusWithVersion applies a moderation decision with the
// same versioned compare-and-swap used for booking transitions.
func (db *DB) UpdateModerationStatusWithVersion(ctx context.Context, publicID string, fromVersion int64, status, reason string) error {
	query := `UPDATE moderation_items SET status = ?, reason = ?, version = version + 1, updated_at = ?
              WHERE public_id = ? AND version = ?`
	result, err := db.db.ExecContext(ctx, query, status, reason, time.Now(), publicID, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update moderation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) ListPendingModeration(ctx context.Context, kind models.ModerationKind) ([]*models.ModerationItem, error) {
	query := `SELECT ` + moderationColumns + ` FROM moderation_items
              WHERE kind = ? AND status = ? ORDER BY created_at ASC`
	rows, err := db.db.QueryContext(ctx, query, string(kind), models.ModerationPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending moderation: %w", err)
	}
	defer rows.Close()

	var items []*models.ModerationItem
	for rows.Next() {
		item, err := scanModerationItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (db *DB) CountPendingModeration(ctx context.Context, kind models.ModerationKind) (int64, error) {
	query := `SELECT COUNT(*) FROM moderation_items WHERE kind = ? AND status = ?`
	var count int64
	err := db.db.QueryRowContext(ctx, query, string(kind), models.ModerationPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending moderation: %w", err)
	}
	return count, nil
}

func scanModerationItem(row rowScanner) (*models.ModerationItem, error) {
	var m models.ModerationItem
	var kind string
	var payload string
	var reason sql.NullString
	err := row.Scan(
		&m.ID, &m.PublicID, &kind, &m.PerformerID, &m.PerformerName, &m.Status,
		&payload, &reason, &m.CreatedAt, &m.UpdatedAt, &m.Version,
	)
	if err != nil {
		return nil, err
	}
	m.Kind = models.ModerationKind(kind)
	m.Reason = reason.String
	if err := json.Unmarshal([]byte(payload), &m.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moderation payload: %w", err)
	}
	return &m, nil
}
