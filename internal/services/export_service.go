package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/poofware/macro-service/internal/constants"
	"github.com/poofware/macro-service/internal/utils"
)

var exportFixedColumns = []string{"Id", "FileName", "SheetName", "RowIndex", "Version", "ModifiedBy", "ModifiedDate"}

type ExportService struct {
	query *RowQueryService
}

func NewExportService(query *RowQueryService) *ExportService {
	return &ExportService{query: query}
}

// ExportDocument renders the search result as a single-sheet xlsx workbook.
// Data columns follow the fixed columns, sorted by name.
func (s *ExportService) ExportDocument(
	ctx context.Context,
	documentID string,
	scope SearchScope,
	fileName, sheetName string,
) ([]byte, int, error) {
	result, err := s.query.Search(ctx, documentID, scope, fileName, sheetName)
	if err != nil {
		return nil, 0, err
	}
	if len(result.Rows) == 0 {
		return nil, 0, utils.NewNotFoundError(fmt.Sprintf("Document number '%s' was not found", result.Scope.DocumentNumber))
	}

	var dataColumns []string
	for _, row := range result.Rows {
		for col := range row.Data {
			if !slices.Contains(dataColumns, col) {
				dataColumns = append(dataColumns, col)
			}
		}
	}
	slices.Sort(dataColumns)

	f := excelize.NewFile()
	defer f.Close()

	sheet := constants.ExportSheetName
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to create export sheet", err)
	}
	f.SetActiveSheet(index)
	if defaultSheet := f.GetSheetName(0); defaultSheet != sheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	header := make([]any, 0, len(exportFixedColumns)+len(dataColumns))
	for _, col := range exportFixedColumns {
		header = append(header, col)
	}
	for _, col := range dataColumns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, 0, utils.NewInternalError("Failed to write export header", err)
	}

	for i, row := range result.Rows {
		modified := ""
		if row.ModifiedDate != nil {
			modified = row.ModifiedDate.UTC().Format(time.RFC3339)
		}
		values := []any{
			strconv.FormatInt(row.ID, 10),
			row.FileName,
			row.SheetName,
			strconv.Itoa(row.RowIndex),
			strconv.FormatInt(row.Version, 10),
			utils.Val(row.ModifiedBy),
			modified,
		}
		for _, col := range dataColumns {
			values = append(values, row.Data[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, 0, utils.NewInternalError("Failed to address export row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, 0, utils.NewInternalError(fmt.Sprintf("Failed to write export row %d", row.ID), err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to render workbook", err)
	}
	return buf.Bytes(), len(result.Rows), nil
}
