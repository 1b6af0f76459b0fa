package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/utils"
)

type ExcelDataRowRepository interface {
	Create(ctx context.Context, r *models.ExcelDataRow) error
	// GetByID returns (nil, nil) for unknown or soft-deleted rows.
	GetByID(ctx context.Context, id int64) (*models.ExcelDataRow, error)
	// Query returns live rows ordered by file name, sheet name, row index.
	Query(ctx context.Context, f RowFilter) ([]*models.ExcelDataRow, error)
	DistinctFileNames(ctx context.Context) ([]string, error)
	SummarizeFile(ctx context.Context, fileName string) (*FileSummary, error)
	UpdateIfVersion(ctx context.Context, r *models.ExcelDataRow, expected int64) (bool, error)
	UpdateWithVersionCheck(ctx context.Context, id int64, mutate func(*models.ExcelDataRow) error) (*models.ExcelDataRow, error)
	SoftDelete(ctx context.Context, id int64) error
}

type excelDataRowRepo struct {
	*BaseVersionedRepo[*models.ExcelDataRow]
	db DB
}

func NewExcelDataRowRepository(db DB) ExcelDataRowRepository {
	r := &excelDataRowRepo{db: db}
	selectStmt := baseSelectRow() + " WHERE id=$1 AND is_deleted=FALSE"
	r.BaseVersionedRepo = NewBaseRepo(pgQueryRow(db), selectStmt, r.scanRow)
	return r
}

func (r *excelDataRowRepo) Create(ctx context.Context, row *models.ExcelDataRow) error {
	if row.CreatedDate.IsZero() {
		row.CreatedDate = time.Now().UTC()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO excel_data_rows (
			file_name, sheet_name, row_index, row_data, created_date, version, is_deleted
		) VALUES ($1,$2,$3,$4,$5,1,FALSE)
		RETURNING id
	`, row.FileName, row.SheetName, row.RowIndex, row.RowData, row.CreatedDate).Scan(&row.ID)
	if err != nil {
		return err
	}
	row.RowVersion = 1
	row.IsDeleted = false
	return nil
}

func (r *excelDataRowRepo) UpdateWithVersionCheck(ctx context.Context, id int64, mutate func(*models.ExcelDataRow) error) (*models.ExcelDataRow, error) {
	return r.BaseVersionedRepo.UpdateWithVersionCheck(ctx, id, mutate, r.UpdateIfVersion)
}

func (r *excelDataRowRepo) UpdateIfVersion(ctx context.Context, row *models.ExcelDataRow, expected int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE excel_data_rows
		SET row_data=$1, modified_date=$2, modified_by=$3, version=version+1
		WHERE id=$4 AND version=$5 AND is_deleted=FALSE
	`, row.RowData, row.ModifiedDate, row.ModifiedBy, row.ID, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *excelDataRowRepo) Query(ctx context.Context, f RowFilter) ([]*models.ExcelDataRow, error) {
	if len(f.FileNames) == 0 {
		return nil, nil
	}

	sql := baseSelectRow() + " WHERE is_deleted=FALSE AND file_name = ANY($1)"
	args := []any{f.FileNames}
	if f.FileName != "" {
		args = append(args, f.FileName)
		sql += fmt.Sprintf(" AND file_name=$%d", len(args))
	}
	if f.SheetName != "" {
		args = append(args, f.SheetName)
		sql += fmt.Sprintf(" AND sheet_name=$%d", len(args))
	}
	if f.PayloadContains != "" {
		args = append(args, f.PayloadContains)
		sql += fmt.Sprintf(" AND strpos(row_data, $%d) > 0", len(args))
	}
	sql += ` ORDER BY file_name COLLATE "C", sheet_name COLLATE "C", row_index, id`

	rows, err := r.db.Query(ctx, sql, args...)
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

func (r *excelDataRowRepo) DistinctFileNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT file_name FROM excel_data_rows
		WHERE is_deleted=FALSE
		GROUP BY file_name
		ORDER BY file_name COLLATE "C"
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

func (r *excelDataRowRepo) SummarizeFile(ctx context.Context, fileName string) (*FileSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sheet_name, COUNT(*) FROM excel_data_rows
		WHERE file_name=$1 AND is_deleted=FALSE
		GROUP BY sheet_name
		ORDER BY sheet_name COLLATE "C"
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

func (r *excelDataRowRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE excel_data_rows SET is_deleted=TRUE WHERE id=$1 AND is_deleted=FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func baseSelectRow() string {
	return `
		SELECT id, file_name, sheet_name, row_index, row_data, created_date,
		       modified_date, modified_by, version, is_deleted
		FROM excel_data_rows`
}

func (r *excelDataRowRepo) scanRow(row RowScanner) (*models.ExcelDataRow, error) {
	var d models.ExcelDataRow
	var modifiedDate pgtype.Timestamptz
	var modifiedBy pgtype.Text
	if err := row.Scan(
		&d.ID, &d.FileName, &d.SheetName, &d.RowIndex, &d.RowData, &d.CreatedDate,
		&modifiedDate, &modifiedBy, &d.RowVersion, &d.IsDeleted,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if modifiedDate.Status == pgtype.Present {
		t := modifiedDate.Time
		d.ModifiedDate = &t
	}
	if modifiedBy.Status == pgtype.Present {
		s := modifiedBy.String
		d.ModifiedBy = &s
	}
	return &d, nil
}
