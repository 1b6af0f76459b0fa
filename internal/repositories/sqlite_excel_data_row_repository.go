package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/utils"
)

type sqliteExcelDataRowRepo struct {
	*BaseVersionedRepo[*models.ExcelDataRow]
	db *sql.DB
}

// NewSQLiteExcelDataRowRepository backs the row store with SQLite; used for
// local runs, the operator CLI and tests.
func NewSQLiteExcelDataRowRepository(db *sql.DB) ExcelDataRowRepository {
	r := &sqliteExcelDataRowRepo{db: db}
	selectStmt := baseSelectRow() + " WHERE id=? AND is_deleted=0"
	r.BaseVersionedRepo = NewBaseRepo(sqliteQueryRow(db), selectStmt, r.scanRow)
	return r
}

func (r *sqliteExcelDataRowRepo) Create(ctx context.Context, row *models.ExcelDataRow) error {
	if row.CreatedDate.IsZero() {
		row.CreatedDate = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO excel_data_rows (
			file_name, sheet_name, row_index, row_data, created_date, version, is_deleted
		) VALUES (?,?,?,?,?,1,0)
	`, row.FileName, row.SheetName, row.RowIndex, row.RowData, toUnixNano(row.CreatedDate))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row.ID = id
	row.CreatedDate = fromUnixNano(toUnixNano(row.CreatedDate))
	row.RowVersion = 1
	row.IsDeleted = false
	return nil
}

func (r *sqliteExcelDataRowRepo) UpdateWithVersionCheck(ctx context.Context, id int64, mutate func(*models.ExcelDataRow) error) (*models.ExcelDataRow, error) {
	return r.BaseVersionedRepo.UpdateWithVersionCheck(ctx, id, mutate, r.UpdateIfVersion)
}

func (r *sqliteExcelDataRowRepo) UpdateIfVersion(ctx context.Context, row *models.ExcelDataRow, expected int64) (bool, error) {
	var modified sql.NullInt64
	if row.ModifiedDate != nil {
		modified = sql.NullInt64{Int64: toUnixNano(*row.ModifiedDate), Valid: true}
	}
	var modifiedBy sql.NullString
	if row.ModifiedBy != nil {
		modifiedBy = sql.NullString{String: *row.ModifiedBy, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE excel_data_rows
		SET row_data=?, modified_date=?, modified_by=?, version=version+1
		WHERE id=? AND version=? AND is_deleted=0
	`, row.RowData, modified, modifiedBy, row.ID, expected)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sqliteExcelDataRowRepo) Query(ctx context.Context, f RowFilter) ([]*models.ExcelDataRow, error) {
	if len(f.FileNames) == 0 {
		return nil, nil
	}

	query := baseSelectRow() + " WHERE is_deleted=0 AND file_name IN (" + placeholders(len(f.FileNames)) + ")"
	args := make([]any, 0, len(f.FileNames)+3)
	for _, name := range f.FileNames {
		args = append(args, name)
	}
	if f.FileName != "" {
		query += " AND file_name=?"
		args = append(args, f.FileName)
	}
	if f.SheetName != "" {
		query += " AND sheet_name=?"
		args = append(args, f.SheetName)
	}
	if f.PayloadContains != "" {
		query += " AND instr(row_data, ?) > 0"
		args = append(args, f.PayloadContains)
	}
	query += " ORDER BY file_name, sheet_name, row_index, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ExcelDataRow
	for rows.Next() {
		row, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *sqliteExcelDataRowRepo) DistinctFileNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT file_name FROM excel_data_rows
		WHERE is_deleted=0
		ORDER BY file_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *sqliteExcelDataRowRepo) SummarizeFile(ctx context.Context, fileName string) (*FileSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sheet_name, COUNT(*) FROM excel_data_rows
		WHERE file_name=? AND is_deleted=0
		GROUP BY sheet_name
		ORDER BY sheet_name
	`, fileName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &FileSummary{FileName: fileName, Sheets: []string{}}
	for rows.Next() {
		var sheet string
		var count int64
		if err := rows.Scan(&sheet, &count); err != nil {
			return nil, err
		}
		summary.Sheets = append(summary.Sheets, sheet)
		summary.RowCount += int(count)
	}
	return summary, rows.Err()
}

func (r *sqliteExcelDataRowRepo) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE excel_data_rows SET is_deleted=1 WHERE id=? AND is_deleted=0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *sqliteExcelDataRowRepo) scanRow(row RowScanner) (*models.ExcelDataRow, error) {
	var d models.ExcelDataRow
	var created int64
	var modifiedDate sql.NullInt64
	var modifiedBy sql.NullString
	if err := row.Scan(
		&d.ID, &d.FileName, &d.SheetName, &d.RowIndex, &d.RowData, &created,
		&modifiedDate, &modifiedBy, &d.RowVersion, &d.IsDeleted,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.CreatedDate = fromUnixNano(created)
	if modifiedDate.Valid {
		t := fromUnixNano(modifiedDate.Int64)
		d.ModifiedDate = &t
	}
	if modifiedBy.Valid {
		s := modifiedBy.String
		d.ModifiedBy = &s
	}
	return &d, nil
}
