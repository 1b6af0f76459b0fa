package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/repositories"
	"github.com/poofware/macro-service/internal/services"
	"github.com/poofware/macro-service/internal/utils"
)

// SentinelDocumentNumber marks seeded rows; its presence means seeding
// already ran.
const SentinelDocumentNumber = "SEED-DOC-0001"

const seedArchiveFile = "GERÇEKLEŞEN_gerceklesenmakro_arsiv.xlsx"

type seedRow struct {
	file  string
	sheet string
	index int
	data  map[string]string
}

func seedRows(policy config.MacroPolicy) []seedRow {
	return []seedRow{
		{policy.MakroFile, "Makro", 1, map[string]string{"Belge No": SentinelDocumentNumber, "Tutar": "1250.00", "Para Birimi": "TRY"}},
		{policy.MakroFile, "Makro", 2, map[string]string{"Belge No": SentinelDocumentNumber, "Tutar": "310.50", "Para Birimi": "TRY"}},
		{policy.MakroFile, "Makro", 3, map[string]string{"Belge No": "SEED-DOC-0002", "Tutar": "99.90", "Para Birimi": "EUR"}},
		{policy.HesapFile, "Hesap", 1, map[string]string{"Belge No": SentinelDocumentNumber, "Hesap": "120.01", "Borç": "1250.00"}},
		{policy.HesapFile, "Hesap", 2, map[string]string{"Belge No": "SEED-DOC-0002", "Hesap": "320.05", "Alacak": "99.90"}},
		{seedArchiveFile, "Arsiv", 1, map[string]string{"Belge No": SentinelDocumentNumber, "Tutar": "1.00"}},
	}
}

// SeedAllTestData registers the policy's makro and hesap files plus one
// excluded archive file, and imports a handful of rows into them.
// Idempotent: nothing is written when the sentinel document is present.
func SeedAllTestData(
	ctx context.Context,
	policy config.MacroPolicy,
	files repositories.ExcelFileRepository,
	rows repositories.ExcelDataRowRepository,
) error {
	names, err := rows.DistinctFileNames(ctx)
	if err != nil {
		return fmt.Errorf("list row files: %w", err)
	}
	if slices.Contains(names, policy.MakroFile) {
		existing, err := rows.Query(ctx, repositories.RowFilter{
			FileNames:       []string{policy.MakroFile},
			PayloadContains: SentinelDocumentNumber,
		})
		if err != nil {
			return fmt.Errorf("check sentinel rows: %w", err)
		}
		if len(existing) > 0 {
			utils.Logger.Info("Seed data already present; skipping seeding.")
			return nil
		}
	}

	for _, name := range []string{policy.MakroFile, policy.HesapFile, seedArchiveFile} {
		if err := files.Create(ctx, &models.ExcelFile{FileName: name, OriginalFileName: name, IsActive: true}); err != nil {
			return fmt.Errorf("seed file %s: %w", name, err)
		}
	}

	for _, r := range seedRows(policy) {
		encoded, err := services.EncodeRowData(r.data)
		if err != nil {
			return err
		}
		row := &models.ExcelDataRow{FileName: r.file, SheetName: r.sheet, RowIndex: r.index, RowData: encoded}
		if err := rows.Create(ctx, row); err != nil {
			return fmt.Errorf("seed row %s/%s/%d: %w", r.file, r.sheet, r.index, err)
		}
	}

	utils.Logger.Infof("Seeded %d rows for document %s", len(seedRows(policy)), SentinelDocumentNumber)
	return nil
}
