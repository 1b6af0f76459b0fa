package repositories

import (
	"context"
)

// RowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// QueryRowFunc issues a single-row query on whichever driver backs a repo.
type QueryRowFunc func(ctx context.Context, sql string, args ...any) RowScanner

/*
BaseVersionedRepo holds a single-row query function, a SELECT‑by‑ID
statement, and a scanner for a single entity type T.  It gives you:

	• GetByID(ctx, id int64) (T, error)
	• UpdateWithVersionCheck(ctx, id, mutate, updateIfVersion)
*/
type BaseVersionedRepo[T EntityWithVersion] struct {
	queryRow   QueryRowFunc
	selectByID string
	scan       func(row RowScanner) (T, error)
}

// NewBaseRepo is called by concrete repositories.
func NewBaseRepo[T EntityWithVersion](
	queryRow QueryRowFunc,
	selectByID string,
	scan func(RowScanner) (T, error),
) *BaseVersionedRepo[T] {
	return &BaseVersionedRepo[T]{queryRow: queryRow, selectByID: selectByID, scan: scan}
}

// -------------------------- public helpers --------------------------

func (b *BaseVersionedRepo[T]) GetByID(ctx context.Context, id int64) (T, error) {
	row := b.queryRow(ctx, b.selectByID, id)
	return b.scan(row)
}

// UpdateWithVersionCheck wires the generic optimistic‑locking pass.
func (b *BaseVersionedRepo[T]) UpdateWithVersionCheck(
	ctx context.Context,
	id int64,
	mutate func(T) error,
	updateIfVersion UpdateIfVersionFunc[T],
) (T, error) {
	return WithVersionCheck(
		ctx,
		id,
		b.GetByID,
		updateIfVersion,
		mutate,
	)
}
