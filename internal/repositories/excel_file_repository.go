package repositories

import (
	"context"
	"time"

	"github.com/poofware/macro-service/internal/models"
)

type ExcelFileRepository interface {
	// Create registers a file; an existing file name is left untouched.
	Create(ctx context.Context, f *models.ExcelFile) error
	ListActive(ctx context.Context) ([]*models.ExcelFile, error)
}

type excelFileRepo struct {
	db DB
}

func NewExcelFileRepository(db DB) ExcelFileRepository {
	return &excelFileRepo{db: db}
}

func (r *excelFileRepo) Create(ctx context.Context, f *models.ExcelFile) error {
	if f.UploadDate.IsZero() {
		f.UploadDate = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO excel_files (file_name, original_file_name, upload_date, is_active)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (file_name) DO NOTHING
	`, f.FileName, f.OriginalFileName, f.UploadDate, f.IsActive)
	return err
}

func (r *excelFileRepo) ListActive(ctx context.Context) ([]*models.ExcelFile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, file_name, original_file_name, upload_date, is_active
		FROM excel_files
		WHERE is_active=TRUE
		ORDER BY file_name COLLATE "C"
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ExcelFile
	for rows.Next() {
		var f models.ExcelFile
		if err := rows.Scan(&f.ID, &f.FileName, &f.OriginalFileName, &f.UploadDate, &f.IsActive); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
