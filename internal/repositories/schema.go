package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS excel_files (
		id                 BIGSERIAL PRIMARY KEY,
		file_name          TEXT NOT NULL UNIQUE,
		original_file_name TEXT NOT NULL DEFAULT '',
		upload_date        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_active          BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS excel_data_rows (
		id            BIGSERIAL PRIMARY KEY,
		file_name     TEXT NOT NULL,
		sheet_name    TEXT NOT NULL,
		row_index     INTEGER NOT NULL,
		row_data      TEXT NOT NULL,
		created_date  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_date TIMESTAMPTZ,
		modified_by   TEXT,
		version       BIGINT NOT NULL DEFAULT 1,
		is_deleted    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_excel_data_rows_scope
		ON excel_data_rows (file_name, sheet_name, row_index)
		WHERE is_deleted = FALSE`,
}

// Timestamps are stored as UTC unix nanoseconds.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS excel_files (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		file_name          TEXT NOT NULL UNIQUE,
		original_file_name TEXT NOT NULL DEFAULT '',
		upload_date        INTEGER NOT NULL,
		is_active          INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS excel_data_rows (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		file_name     TEXT NOT NULL,
		sheet_name    TEXT NOT NULL,
		row_index     INTEGER NOT NULL,
		row_data      TEXT NOT NULL,
		created_date  INTEGER NOT NULL,
		modified_date INTEGER,
		modified_by   TEXT,
		version       INTEGER NOT NULL DEFAULT 1,
		is_deleted    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_excel_data_rows_scope
		ON excel_data_rows (file_name, sheet_name, row_index)
		WHERE is_deleted = 0`,
}

func EnsurePostgresSchema(ctx context.Context, db DB) error {
	for i, stmt := range postgresSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema statement %d: %w", i, err)
		}
	}
	return nil
}

func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite schema statement %d: %w", i, err)
		}
	}
	return nil
}
