package rolldb

import (
	"context"
	"fmt"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS voters (
    voter_id      TEXT PRIMARY KEY,
    serial_no     INTEGER NOT NULL,
    voter_name    TEXT NOT NULL DEFAULT '',
    voter_name_en TEXT NOT NULL DEFAULT '',
    relative_name TEXT,
    house_no      TEXT,
    age           INTEGER,
    gender        TEXT,
    booth_id      TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_voters_serial_no ON voters (serial_no)`,
	`CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    is_admin      INTEGER NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS voter_visits (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    voter_id   TEXT NOT NULL UNIQUE,
    visited_by TEXT NOT NULL,
    visited_at INTEGER NOT NULL,
    notes      TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_voter_visits_visited_by ON voter_visits (visited_by)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS voters (
    voter_id      VARCHAR(64) NOT NULL PRIMARY KEY,
    serial_no     BIGINT NOT NULL,
    voter_name    VARCHAR(255) NOT NULL DEFAULT '',
    voter_name_en VARCHAR(255) NOT NULL DEFAULT '',
    relative_name VARCHAR(255),
    house_no      VARCHAR(64),
    age           INT,
    gender        VARCHAR(16),
    booth_id      VARCHAR(64),
    INDEX idx_voters_serial_no (serial_no)
) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS users (
    id            VARCHAR(36) NOT NULL PRIMARY KEY,
    username      VARCHAR(128) NOT NULL UNIQUE,
    display_name  VARCHAR(255) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    is_admin      TINYINT(1) NOT NULL DEFAULT 0,
    created_at    BIGINT NOT NULL
) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS voter_visits (
    id         BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    voter_id   VARCHAR(64) NOT NULL UNIQUE,
    visited_by VARCHAR(36) NOT NULL,
    visited_at BIGINT NOT NULL,
    notes      TEXT,
    INDEX idx_voter_visits_visited_by (visited_by)
) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS voters (
    voter_id      TEXT PRIMARY KEY,
    serial_no     BIGINT NOT NULL,
    voter_name    TEXT NOT NULL DEFAULT '',
    voter_name_en TEXT NOT NULL DEFAULT '',
    relative_name TEXT,
    house_no      TEXT,
    age           INTEGER,
    gender        TEXT,
    booth_id      TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_voters_serial_no ON voters (serial_no)`,
	`CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS voter_visits (
    id         BIGSERIAL PRIMARY KEY,
    voter_id   TEXT NOT NULL UNIQUE,
    visited_by TEXT NOT NULL,
    visited_at BIGINT NOT NULL,
    notes      TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_voter_visits_visited_by ON voter_visits (visited_by)`,
}

func schemaFor(d Dialect) []string {
	switch d.Name {
	case MySQLDialect.Name:
		return mysqlSchema
	case PostgresDialect.Name:
		return postgresSchema
	default:
		return sqliteSchema
	}
}

// migrate creates the tables if they do not exist yet.
func migrate(ctx context.Context, db DBTX, d Dialect) error {
	for _, stmt := range schemaFor(d) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
