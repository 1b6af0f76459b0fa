package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/poofware/macro-service/internal/models"
)

type sqliteExcelFileRepo struct {
	db *sql.DB
}

func NewSQLiteExcelFileRepository(db *sql.DB) ExcelFileRepository {
	return &sqliteExcelFileRepo{db: db}
}

func (r *sqliteExcelFileRepo) Create(ctx context.Context, f *models.ExcelFile) error {
	if f.UploadDate.IsZero() {
		f.UploadDate = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO excel_files (file_name, original_file_name, upload_date, is_active)
		VALUES (?,?,?,?)
	`, f.FileName, f.OriginalFileName, toUnixNano(f.UploadDate), f.IsActive)
	return err
}

func (r *sqliteExcelFileRepo) ListActive(ctx context.Context) ([]*models.ExcelFile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, original_file_name, upload_date, is_active
		FROM excel_files
		WHERE is_active=1
		ORDER BY file_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ExcelFile
	for rows.Next() {
		var f models.ExcelFile
		var uploaded int64
		if err := rows.Scan(&f.ID, &f.FileName, &f.OriginalFileName, &uploaded, &f.IsActive); err != nil {
			return nil, err
		}
		f.UploadDate = fromUnixNano(uploaded)
		out = append(out, &f)
	}
	return out, rows.Err()
}
