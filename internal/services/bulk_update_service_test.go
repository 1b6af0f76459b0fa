package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/repositories"
	"github.com/poofware/macro-service/internal/utils"
)

func TestBulkUpdate_PartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addRow(t, makroFile, "S1", 1, map[string]string{"doc": "DOC-1", "amount": "1"})
	b := env.addRow(t, makroFile, "S1", 2, map[string]string{"doc": "DOC-2", "amount": "2"})
	c := env.addRow(t, hesapFile, "S1", 1, map[string]string{"doc": "DOC-1", "amount": "3"})
	d := env.addRow(t, otherFile, "S1", 1, map[string]string{"doc": "DOC-1", "amount": "4"})

	items := []dtos.BulkUpdateItem{
		{RowID: a.ID, UpdateData: map[string]string{"amount": "10"}},
		{RowID: b.ID, UpdateData: map[string]string{"amount": "20"}}, // other document
		{RowID: c.ID, UpdateData: map[string]string{"amount": "30"}},
		{RowID: d.ID, UpdateData: map[string]string{"amount": "40"}}, // ineligible file
		{RowID: 0, UpdateData: map[string]string{"amount": "50"}},
		{RowID: a.ID, UpdateData: nil},
	}

	res, err := env.bulk.BulkUpdate(ctx, "DOC-1", items, "carol")
	require.NoError(t, err)

	_, err = uuid.Parse(res.BatchID)
	assert.NoError(t, err)
	assert.Equal(t, "DOC-1", res.DocumentNumber)
	assert.Equal(t, 6, res.TotalRequested)
	assert.Equal(t, 2, res.SuccessfulUpdates)
	assert.Len(t, res.Succeeded, 2)
	assert.Equal(t, res.TotalRequested, res.SuccessfulUpdates+len(res.Failed))

	assert.Equal(t, a.ID, res.Succeeded[0].ID)
	assert.Equal(t, "10", res.Succeeded[0].Data["amount"])
	assert.Equal(t, int64(2), res.Succeeded[0].Version)
	assert.Equal(t, c.ID, res.Succeeded[1].ID)

	codes := map[int64]string{}
	for _, f := range res.Failed {
		assert.NotEmpty(t, f.Reason)
		codes[f.RowID] = f.Code
	}
	assert.Equal(t, utils.ErrCodeScopeMismatch, codes[b.ID])
	assert.Equal(t, utils.ErrCodeNotFound, codes[d.ID])
	assert.Equal(t, utils.ErrCodeInvalidPayload, codes[0])
	assert.Equal(t, utils.ErrCodeInvalidPayload, codes[a.ID])

	// failures left their rows alone
	stored, err := env.rows.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.RowVersion)
}

func TestBulkUpdate_SameRowTwiceAppliesBoth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	row := env.addRow(t, makroFile, "S1", 1, map[string]string{"doc": "DOC-1"})

	res, err := env.bulk.BulkUpdate(ctx, "DOC-1", []dtos.BulkUpdateItem{
		{RowID: row.ID, UpdateData: map[string]string{"a": "1"}},
		{RowID: row.ID, UpdateData: map[string]string{"b": "2"}},
	}, "dave")
	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessfulUpdates)
	assert.Empty(t, res.Failed)

	stored, err := env.rows.GetByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.RowVersion)
	assert.Equal(t, `{"a":"1","b":"2","doc":"DOC-1"}`, stored.RowData)
}

func TestBulkUpdate_RejectsWholeCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.bulk.BulkUpdate(ctx, " ", []dtos.BulkUpdateItem{{RowID: 1, UpdateData: map[string]string{"a": "b"}}}, "x")
	assert.True(t, errors.Is(err, utils.ErrInvalidArgument))

	_, err = env.bulk.BulkUpdate(ctx, "DOC-1", nil, "x")
	assert.True(t, errors.Is(err, utils.ErrInvalidArgument))
}

// flakyRows fails one row outright and lets a competing writer commit
// another row between its read and its compare-and-set.
type flakyRows struct {
	repositories.ExcelDataRowRepository
	failID  int64
	raceID  int64
	failErr error
}

func (r *flakyRows) UpdateWithVersionCheck(ctx context.Context, id int64, mutate func(*models.ExcelDataRow) error) (*models.ExcelDataRow, error) {
	switch id {
	case r.failID:
		return nil, r.failErr
	case r.raceID:
		return r.ExcelDataRowRepository.UpdateWithVersionCheck(ctx, id, func(row *models.ExcelDataRow) error {
			other, err := r.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if ok, err := r.UpdateIfVersion(ctx, other, other.RowVersion); err != nil || !ok {
				return errors.New("competing write did not land")
			}
			return mutate(row)
		})
	default:
		return r.ExcelDataRowRepository.UpdateWithVersionCheck(ctx, id, mutate)
	}
}

func TestBulkUpdate_StorageErrorAndConflictDoNotStopBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	broken := env.addRow(t, makroFile, "S1", 1, map[string]string{"doc": "DOC-1"})
	raced := env.addRow(t, makroFile, "S1", 2, map[string]string{"doc": "DOC-1"})
	fine := env.addRow(t, makroFile, "S1", 3, map[string]string{"doc": "DOC-1"})

	rows := &flakyRows{
		ExcelDataRowRepository: env.rows,
		failID:                 broken.ID,
		raceID:                 raced.ID,
		failErr:                errors.New("disk on fire"),
	}
	bulk := NewBulkUpdateService(NewRowUpdateService(rows, env.filter))

	res, err := bulk.BulkUpdate(ctx, "DOC-1", []dtos.BulkUpdateItem{
		{RowID: broken.ID, UpdateData: map[string]string{"amount": "1"}},
		{RowID: raced.ID, UpdateData: map[string]string{"amount": "2"}},
		{RowID: fine.ID, UpdateData: map[string]string{"amount": "3"}},
	}, "erin")
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRequested)
	assert.Equal(t, 1, res.SuccessfulUpdates)
	assert.Equal(t, res.TotalRequested, res.SuccessfulUpdates+len(res.Failed))
	require.Len(t, res.Succeeded, 1)
	assert.Equal(t, fine.ID, res.Succeeded[0].ID)
	assert.Equal(t, "3", res.Succeeded[0].Data["amount"])

	require.Len(t, res.Failed, 2)
	assert.Equal(t, broken.ID, res.Failed[0].RowID)
	assert.Equal(t, utils.ErrCodeInternal, res.Failed[0].Code)
	assert.Contains(t, res.Failed[0].Reason, "disk on fire")
	assert.Equal(t, raced.ID, res.Failed[1].RowID)
	assert.Equal(t, utils.ErrCodeRowVersionConflict, res.Failed[1].Code)

	// only the competing write landed on the raced row
	stored, err := env.rows.GetByID(ctx, raced.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.RowVersion)
	assert.Equal(t, raced.RowData, stored.RowData)
}
