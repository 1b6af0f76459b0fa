package repositories

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// DB is the subset of *pgxpool.Pool (and pgx.Tx) the PostgreSQL
// repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgQueryRow(db DB) QueryRowFunc {
	return func(ctx context.Context, sql string, args ...any) RowScanner {
		return db.QueryRow(ctx, sql, args...)
	}
}

// RowFilter narrows a row query. FileNames is the candidate file set of the
// search scope and is mandatory: an empty set matches nothing. The other
// fields apply only when non-empty. PayloadContains is a case-sensitive
// substring test against the stored, still-encoded row data.
type RowFilter struct {
	FileNames       []string
	FileName        string
	SheetName       string
	PayloadContains string
}

// FileSummary aggregates the live rows of one file.
type FileSummary struct {
	FileName string
	RowCount int
	Sheets   []string
}
