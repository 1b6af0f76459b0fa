package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/repositories"
	"github.com/poofware/macro-service/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond

	sqliteScheme = "sqlite://"
)

// App owns the database handle and the repositories built on it. Exactly
// one of DB and SQLite is set.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLite *sql.DB

	Rows  repositories.ExcelDataRowRepository
	Files repositories.ExcelFileRepository
}

func NewApp(cfg *config.Config) (*App, error) {
	if path, ok := strings.CutPrefix(cfg.DBUrl, sqliteScheme); ok {
		return newSQLiteApp(cfg, path)
	}
	return newPostgresApp(cfg)
}

func newSQLiteApp(cfg *config.Config, path string) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := repositories.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	utils.Logger.Infof("%s using SQLite database %s", cfg.AppName, path)

	return &App{
		Config: cfg,
		SQLite: db,
		Rows:   repositories.NewSQLiteExcelDataRowRepository(db),
		Files:  repositories.NewSQLiteExcelFileRepository(db),
	}, nil
}

func newPostgresApp(cfg *config.Config) (*App, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("%s connected to DB on attempt %d", cfg.AppName, i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := repositories.EnsurePostgresSchema(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, err
	}

	return &App{
		Config: cfg,
		DB:     dbPool,
		Rows:   repositories.NewExcelDataRowRepository(dbPool),
		Files:  repositories.NewExcelFileRepository(dbPool),
	}, nil
}

func (a *App) Ping(ctx context.Context) error {
	if a.SQLite != nil {
		return a.SQLite.PingContext(ctx)
	}
	return a.DB.Ping(ctx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("DB connection closed.")
	}
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Closing SQLite database failed")
			return
		}
		utils.Logger.Info("SQLite database closed.")
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
