package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/repositories"
)

func newSQLiteTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{AppName: "macro-service-test", DBUrl: "sqlite://:memory:", Policy: config.DefaultPolicy()}
	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewApp_SQLite(t *testing.T) {
	a := newSQLiteTestApp(t)

	assert.Nil(t, a.DB)
	require.NotNil(t, a.SQLite)
	require.NotNil(t, a.Rows)
	require.NotNil(t, a.Files)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestSeedAllTestData_Idempotent(t *testing.T) {
	a := newSQLiteTestApp(t)
	ctx := context.Background()
	policy := a.Config.Policy

	require.NoError(t, SeedAllTestData(ctx, policy, a.Files, a.Rows))
	require.NoError(t, SeedAllTestData(ctx, policy, a.Files, a.Rows))

	rows, err := a.Rows.Query(ctx, repositories.RowFilter{
		FileNames:       []string{policy.MakroFile, policy.HesapFile, seedArchiveFile},
		PayloadContains: SentinelDocumentNumber,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	files, err := a.Files.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
