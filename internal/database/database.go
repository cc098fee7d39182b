package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound: запись отсутствует
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification: проигран CAS по версии
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "database").Logger()
	} else {
		log = zerolog.Nop()
	}
	log.Info().Str("path", path).Msg("database initialized")

	return &DB{db: db, logger: log}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Исполнители (включая специалистов агентств через agency_id)
		`CREATE TABLE IF NOT EXISTS performers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            company_name TEXT,
            email TEXT NOT NULL,
            phone TEXT,
            account_type TEXT NOT NULL DEFAULT 'individual',
            agency_id INTEGER,
            category TEXT NOT NULL,
            city TEXT NOT NULL,
            price INTEGER NOT NULL DEFAULT 0,
            description TEXT,
            attributes TEXT,
            moderation_status TEXT NOT NULL DEFAULT 'pending_approval',
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Заявки на бронирование
		`CREATE TABLE IF NOT EXISTS booking_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            public_id TEXT UNIQUE NOT NULL,
            performer_id INTEGER NOT NULL,
            performer_name TEXT NOT NULL,
            customer_id INTEGER NOT NULL,
            customer_name TEXT NOT NULL,
            date DATETIME NOT NULL,
            details TEXT,
            service TEXT,
            price INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            version INTEGER NOT NULL DEFAULT 1
        )`,

		// Очередь модерации
		`CREATE TABLE IF NOT EXISTS moderation_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            public_id TEXT UNIQUE NOT NULL,
            kind TEXT NOT NULL,
            performer_id INTEGER NOT NULL,
            performer_name TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending_approval',
            payload TEXT NOT NULL,
            reason TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            version INTEGER NOT NULL DEFAULT 1
        )`,

		// Очередь синхронизации экспорта
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            request_id TEXT NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_performers_category ON performers(category)`,
		`CREATE INDEX IF NOT EXISTS idx_performers_city ON performers(city)`,
		`CREATE INDEX IF NOT EXISTS idx_performers_agency_id ON performers(agency_id)`,
		`CREATE INDEX IF NOT EXISTS idx_performers_moderation ON performers(moderation_status)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_public_id ON booking_requests(public_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_performer_id ON booking_requests(performer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON booking_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON booking_requests(date)`,

		`CREATE INDEX IF NOT EXISTS idx_moderation_public_id ON moderation_items(public_id)`,
		`CREATE INDEX IF NOT EXISTS idx_moderation_kind_status ON moderation_items(kind, status)`,

		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}
