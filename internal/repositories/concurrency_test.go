package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/utils"
)

type memRows struct {
	stored map[int64]models.ExcelDataRow
	writes int
}

func (m *memRows) get(_ context.Context, id int64) (*models.ExcelDataRow, error) {
	r, ok := m.stored[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memRows) updateIfVersion(_ context.Context, r *models.ExcelDataRow, expected int64) (bool, error) {
	cur := m.stored[r.ID]
	if cur.RowVersion != expected {
		return false, nil
	}
	next := *r
	next.RowVersion = expected + 1
	m.stored[r.ID] = next
	m.writes++
	return true, nil
}

func TestWithVersionCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("success bumps version", func(t *testing.T) {
		m := &memRows{stored: map[int64]models.ExcelDataRow{1: {ID: 1, RowData: "a", Versioned: models.Versioned{RowVersion: 3}}}}
		got, err := WithVersionCheck(ctx, 1, m.get, m.updateIfVersion, func(r *models.ExcelDataRow) error {
			r.RowData = "b"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.RowVersion)
		assert.Equal(t, "b", m.stored[1].RowData)
		assert.Equal(t, int64(4), m.stored[1].RowVersion)
	})

	t.Run("missing row", func(t *testing.T) {
		m := &memRows{stored: map[int64]models.ExcelDataRow{}}
		_, err := WithVersionCheck(ctx, 7, m.get, m.updateIfVersion, func(*models.ExcelDataRow) error { return nil })
		assert.ErrorIs(t, err, utils.ErrNotFound)
	})

	t.Run("mutate error skips write", func(t *testing.T) {
		m := &memRows{stored: map[int64]models.ExcelDataRow{1: {ID: 1, Versioned: models.Versioned{RowVersion: 1}}}}
		boom := errors.New("boom")
		_, err := WithVersionCheck(ctx, 1, m.get, m.updateIfVersion, func(*models.ExcelDataRow) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, m.writes)
	})

	t.Run("lost race is a conflict, no retry", func(t *testing.T) {
		m := &memRows{stored: map[int64]models.ExcelDataRow{1: {ID: 1, Versioned: models.Versioned{RowVersion: 1}}}}
		calls := 0
		_, err := WithVersionCheck(ctx, 1, m.get, m.updateIfVersion, func(r *models.ExcelDataRow) error {
			calls++
			other := m.stored[1]
			other.RowVersion++
			m.stored[1] = other
			return nil
		})
		assert.ErrorIs(t, err, utils.ErrRowVersionConflict)
		assert.Equal(t, 1, calls)
		assert.Zero(t, m.writes)
	})
}
