//go:build integration

package repositories

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/utils"
)

// Runs against a real PostgreSQL; file names carry a per-run suffix so
// repeated runs against one database do not see each other's rows.
func openPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("MACRO_TEST_DATABASE_URL")
	require.NotEmpty(t, dbURL, "MACRO_TEST_DATABASE_URL environment variable must be set")

	pool, err := pgxpool.Connect(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsurePostgresSchema(context.Background(), pool))
	return pool
}

func runFile(name string) string {
	return uuid.NewString()[:8] + "_" + name
}

func TestPostgresRowRepo_Lifecycle(t *testing.T) {
	pool := openPostgres(t)
	repo := NewExcelDataRowRepository(pool)
	ctx := context.Background()
	file := runFile("gerceklesenmakro.xlsx")

	r := createRow(t, repo, file, "Makro", 1, `{"Belge No":"PG-DOC-1","Tutar":"10"}`)
	createRow(t, repo, file, "Makro", 2, `{"Belge No":"PG-DOC-2"}`)
	assert.Equal(t, int64(1), r.RowVersion)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, r.RowData, got.RowData)

	rows, err := repo.Query(ctx, RowFilter{FileNames: []string{file}, PayloadContains: "PG-DOC-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, r.ID, rows[0].ID)

	// substring match is case-sensitive
	rows, err = repo.Query(ctx, RowFilter{FileNames: []string{file}, PayloadContains: "pg-doc-1"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	updated, err := repo.UpdateWithVersionCheck(ctx, r.ID, func(row *models.ExcelDataRow) error {
		row.RowData = `{"Belge No":"PG-DOC-1","Tutar":"20"}`
		row.ModifiedBy = utils.Ptr("pg-test")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.RowVersion)

	stale := *got
	ok, err := repo.UpdateIfVersion(ctx, &stale, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	summary, err := repo.SummarizeFile(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RowCount)
	assert.Equal(t, []string{"Makro"}, summary.Sheets)

	require.NoError(t, repo.SoftDelete(ctx, r.ID))
	gone, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPostgresRowRepo_ConcurrentWritersOneWins(t *testing.T) {
	pool := openPostgres(t)
	repo := NewExcelDataRowRepository(pool)
	ctx := context.Background()
	r := createRow(t, repo, runFile("gerceklesenhesap.xlsx"), "Hesap", 1, `{"Belge No":"PG-DOC-3"}`)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			current, err := repo.GetByID(ctx, r.ID)
			if err != nil || current == nil {
				return
			}
			ok, err := repo.UpdateIfVersion(ctx, current, current.RowVersion)
			if err == nil && ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	final, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, successes, 1)
	assert.Equal(t, int64(1+successes), final.RowVersion)
}

func TestPostgresFileRepo(t *testing.T) {
	pool := openPostgres(t)
	repo := NewExcelFileRepository(pool)
	ctx := context.Background()
	name := runFile("gerceklesenmakro.xlsx")

	require.NoError(t, repo.Create(ctx, &models.ExcelFile{FileName: name, OriginalFileName: name, IsActive: true}))

	files, err := repo.ListActive(ctx)
	require.NoError(t, err)
	var found bool
	for _, f := range files {
		if f.FileName == name {
			found = true
		}
	}
	assert.True(t, found)
}
