package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func NewDB(dbPath string) (*DB, error) {
	err := os.MkdirAll(filepath.Dir(dbPath), 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Migrate() error {
	slog.Info("Running database migrations")

	migrations := []string{
		createRequestsTable,
		createConnectionsTable,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

const createRequestsTable = `
CREATE TABLE IF NOT EXISTS requests (
	id INTEGER PRIMARY KEY,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	tg_user_id TEXT,
	tg_username TEXT,
	direction_key TEXT,
	direction_label TEXT,
	from_currency TEXT,
	to_currency TEXT,
	amount_text TEXT,
	amount_value REAL,
	payment_method TEXT,
	city TEXT,
	urgency_key TEXT,
	urgency_label TEXT,
	phone TEXT UNIQUE NOT NULL,
	priority TEXT,
	duplicate_count INTEGER DEFAULT 0,
	raw_payload TEXT
);`

const createConnectionsTable = `
CREATE TABLE IF NOT EXISTS connections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	tg_user_id TEXT,
	tg_username TEXT,
	kind TEXT NOT NULL CHECK (kind IN ('exchange', 'wallet')),
	exchange_name TEXT,
	network TEXT,
	identifier TEXT NOT NULL
);`
