package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/poofware/macro-service/internal/app"
	"github.com/poofware/macro-service/internal/dtos"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seededDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "macro.db")
	out, err := execute(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, app.SentinelDocumentNumber)
	return db
}

func TestDatabaseURL(t *testing.T) {
	assert.Equal(t, "sqlite://macro.db", databaseURL("macro.db"))
	assert.Equal(t, "sqlite://:memory:", databaseURL("sqlite://:memory:"))
	assert.Equal(t, "postgres://u@h/db", databaseURL("postgres://u@h/db"))
}

func TestParseAssignments(t *testing.T) {
	changes, err := parseAssignments([]string{"Tutar=10", "Not=a=b", "Bos="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Tutar": "10", "Not": "a=b", "Bos": ""}, changes)

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=x"})
	assert.Error(t, err)
}

func TestSearch_JSONAndScopes(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "search", app.SentinelDocumentNumber, "--db", db)
	require.NoError(t, err)
	var resp dtos.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	// the archive file is excluded by the policy marker
	assert.Equal(t, 3, resp.TotalRows)

	out, err = execute(t, "search", app.SentinelDocumentNumber, "--db", db, "--scope", "makro")
	require.NoError(t, err)
	resp = dtos.SearchResponse{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.TotalRows)

	_, err = execute(t, "search", app.SentinelDocumentNumber, "--db", db, "--scope", "nowhere")
	assert.Error(t, err)
}

func TestSearch_YAMLOutput(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "search", "SEED-DOC-0002", "--db", db, "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "SEED-DOC-0002", doc["documentNumber"])
	assert.Equal(t, 2, doc["totalRows"])
}

func TestUnsupportedOutput(t *testing.T) {
	_, err := execute(t, "files", "--db", filepath.Join(t.TempDir(), "x.db"), "-o", "xml")
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "search", app.SentinelDocumentNumber, "--db", db, "--scope", "makro")
	require.NoError(t, err)
	var found dtos.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.NotEmpty(t, found.Data)
	target := found.Data[0]

	out, err = execute(t, "update", app.SentinelDocumentNumber, "--db", db,
		"--row", jsonInt(target.ID), "--set", "Tutar=2000.00", "--set", "Not=checked", "--actor", "alice")
	require.NoError(t, err)

	var updated dtos.ExcelDataResponse
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, target.Version+1, updated.Version)
	assert.Equal(t, "2000.00", updated.Data["Tutar"])
	assert.Equal(t, "checked", updated.Data["Not"])
	assert.Equal(t, app.SentinelDocumentNumber, updated.Data["Belge No"])
	require.NotNil(t, updated.ModifiedBy)
	assert.Equal(t, "alice", *updated.ModifiedBy)

	// wrong document for the row
	_, err = execute(t, "update", "SEED-DOC-0002", "--db", db,
		"--row", jsonInt(target.ID), "--set", "Tutar=1")
	assert.Error(t, err)
}

func TestBulkUpdate(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "search", app.SentinelDocumentNumber, "--db", db, "--scope", "makro")
	require.NoError(t, err)
	var found dtos.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found.Data, 2)

	items := []dtos.BulkUpdateItem{
		{RowID: found.Data[0].ID, UpdateData: map[string]string{"Tutar": "1"}},
		{RowID: 9999, UpdateData: map[string]string{"Tutar": "2"}},
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(file, raw, 0o600))

	out, err = execute(t, "bulk-update", app.SentinelDocumentNumber, "--db", db, "-f", file, "--actor", "bob")
	require.NoError(t, err)

	var res dtos.BulkUpdateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.TotalRequested)
	assert.Equal(t, 1, res.SuccessfulUpdates)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(9999), res.Failed[0].RowID)
}

func TestStatsAndFiles(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "stats", app.SentinelDocumentNumber, "--db", db)
	require.NoError(t, err)
	var stats dtos.DocumentStatistics
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.TotalRows)
	assert.Len(t, stats.FileBreakdown, 2)

	_, err = execute(t, "stats", "NO-SUCH-DOC", "--db", db)
	assert.Error(t, err)

	out, err = execute(t, "files", "--db", db)
	require.NoError(t, err)
	var files []dtos.AvailableFile
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	assert.Len(t, files, 2)

	out, err = execute(t, "files", "--db", db, "--excluded")
	require.NoError(t, err)
	var excluded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &excluded))
	assert.Len(t, excluded, 1)
}

func TestExport(t *testing.T) {
	db := seededDB(t)
	target := filepath.Join(t.TempDir(), "doc.xlsx")

	out, err := execute(t, "export", app.SentinelDocumentNumber, "--db", db, "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 rows")

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSeed_Idempotent(t *testing.T) {
	db := seededDB(t)
	_, err := execute(t, "seed", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "search", app.SentinelDocumentNumber, "--db", db)
	require.NoError(t, err)
	var resp dtos.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.TotalRows)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
