package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the devconnect schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id               BIGSERIAL    PRIMARY KEY,
			username         VARCHAR(50)  UNIQUE NOT NULL,
			email            VARCHAR(100) UNIQUE,
			hashed_password  VARCHAR(255) NOT NULL,
			display_name     VARCHAR(100) NOT NULL,
			photo_url        TEXT,
			about            TEXT,
			is_active        BOOLEAN      NOT NULL DEFAULT TRUE,
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_seen        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Connection requests, one row per unordered user pair
		`CREATE TABLE IF NOT EXISTS connection_requests (
			id            BIGSERIAL    PRIMARY KEY,
			pair_lo       BIGINT       NOT NULL,
			pair_hi       BIGINT       NOT NULL,
			from_user_id  BIGINT       NOT NULL REFERENCES users(id),
			to_user_id    BIGINT       NOT NULL REFERENCES users(id),
			status        VARCHAR(20)  NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL,
			reviewed_at   TIMESTAMPTZ,
			CHECK (pair_lo < pair_hi)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pair ON connection_requests(pair_lo, pair_hi)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_to_status ON connection_requests(to_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_from ON connection_requests(from_user_id)`,

		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id          BIGSERIAL    PRIMARY KEY,
			pair_lo     BIGINT       NOT NULL,
			pair_hi     BIGINT       NOT NULL,
			sender_id   BIGINT       NOT NULL REFERENCES users(id),
			text        TEXT         NOT NULL,
			image_url   TEXT,
			status      VARCHAR(20)  NOT NULL DEFAULT 'sent',
			created_at  TIMESTAMPTZ  NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair_created ON messages(pair_lo, pair_hi, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
