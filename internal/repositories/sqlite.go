package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteDriver = "sqlite"

// OpenSQLite opens (or creates) a SQLite database at path and ensures the
// schema exists. ":memory:" yields a private in-memory database pinned to a
// single connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")

	dsn := path
	if !inMemory {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, err
	}
	if inMemory {
		// every new connection to :memory: would be a fresh, empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := EnsureSQLiteSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteQueryRow(db *sql.DB) QueryRowFunc {
	return func(ctx context.Context, query string, args ...any) RowScanner {
		return db.QueryRowContext(ctx, query, args...)
	}
}

func toUnixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
