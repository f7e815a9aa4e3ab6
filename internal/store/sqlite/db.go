package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"devconnect_go/internal/domain"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the devconnect schema.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users table
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE,
			hashed_password VARCHAR(255) NOT NULL,
			display_name VARCHAR(100) NOT NULL,
			photo_url TEXT DEFAULT NULL,
			about TEXT DEFAULT NULL,
			is_active BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Connection requests: one row per unordered user pair. The unique
		// index on (pair_lo, pair_hi) is what makes Insert an atomic
		// conditional insert rather than a check-then-write.
		`CREATE TABLE IF NOT EXISTS connection_requests (
			id INTEGER PRIMARY KEY,
			pair_lo INTEGER NOT NULL,
			pair_hi INTEGER NOT NULL,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at DATETIME NOT NULL,
			reviewed_at DATETIME DEFAULT NULL,
			CHECK (pair_lo < pair_hi),
			FOREIGN KEY (from_user_id) REFERENCES users(id),
			FOREIGN KEY (to_user_id) REFERENCES users(id)
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pair ON connection_requests(pair_lo, pair_hi);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_to_status ON connection_requests(to_user_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_from ON connection_requests(from_user_id);`,
		// Messages, keyed by the canonical pair
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			pair_lo INTEGER NOT NULL,
			pair_hi INTEGER NOT NULL,
			sender_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			image_url TEXT DEFAULT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'sent',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair_created ON messages(pair_lo, pair_hi, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

const (
	maxWriteAttempts = 3
	retryBackoff     = 50 * time.Millisecond
)

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// execRetry runs a write statement, retrying a bounded number of times when
// the database is contended. Exhausted retries surface as ErrTransient so
// callers know the operation is safe to repeat.
func execRetry(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	var err error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		res, err = db.ExecContext(ctx, query, args...)
		if err == nil || !isBusy(err) {
			return res, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff << attempt):
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
}
