package services

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/constants"
	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/repositories"
	"github.com/poofware/macro-service/internal/utils"
)

// FileBreakdown splits the active files by eligibility.
type FileBreakdown struct {
	Eligible []*models.ExcelFile
	Excluded []*models.ExcelFile
}

type CatalogService struct {
	files  repositories.ExcelFileRepository
	rows   repositories.ExcelDataRowRepository
	filter *EligibilityFilter
	query  *RowQueryService
	policy config.MacroPolicy
}

func NewCatalogService(
	policy config.MacroPolicy,
	files repositories.ExcelFileRepository,
	rows repositories.ExcelDataRowRepository,
	filter *EligibilityFilter,
	query *RowQueryService,
) *CatalogService {
	return &CatalogService{files: files, rows: rows, filter: filter, query: query, policy: policy}
}

func (s *CatalogService) FileBreakdown(ctx context.Context) (*FileBreakdown, error) {
	active, err := s.files.ListActive(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Failed to list files", err)
	}

	out := &FileBreakdown{Eligible: []*models.ExcelFile{}, Excluded: []*models.ExcelFile{}}
	for _, f := range active {
		if s.filter.IsEligible(f.FileName) {
			out.Eligible = append(out.Eligible, f)
		} else {
			out.Excluded = append(out.Excluded, f)
		}
	}
	return out, nil
}

// AvailableFiles summarizes every eligible active file, priority files
// first in policy order, the rest by name.
func (s *CatalogService) AvailableFiles(ctx context.Context) ([]dtos.AvailableFile, error) {
	breakdown, err := s.FileBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	files := breakdown.Eligible

	out := make([]dtos.AvailableFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.FileSummaryConcurrency)
	for i, f := range files {
		g.Go(func() error {
			summary, err := s.rows.SummarizeFile(gctx, f.FileName)
			if err != nil {
				return err
			}
			priority := s.policy.IsPriorityFile(f.FileName)
			status := constants.FileStatusNormal
			if priority {
				status = constants.FileStatusPriority
			}
			out[i] = dtos.AvailableFile{
				FileName:          f.FileName,
				OriginalFileName:  f.OriginalFileName,
				UploadDate:        f.UploadDate,
				DataRowCount:      summary.RowCount,
				AvailableSheets:   summary.Sheets,
				ReadyForSearch:    summary.RowCount > 0,
				IsNewPriorityFile: priority,
				Status:            status,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, utils.NewInternalError("Failed to summarize files", err)
	}

	slices.SortStableFunc(out, func(a, b dtos.AvailableFile) int {
		pa, pb := slices.Index(s.policy.PriorityFiles, a.FileName), slices.Index(s.policy.PriorityFiles, b.FileName)
		switch {
		case pa >= 0 && pb >= 0:
			return pa - pb
		case pa >= 0:
			return -1
		case pb >= 0:
			return 1
		default:
			return strings.Compare(a.FileName, b.FileName)
		}
	})
	return out, nil
}

// DocumentStatistics aggregates the rows an all-eligible search for
// documentID returns, optionally restricted to one file.
func (s *CatalogService) DocumentStatistics(ctx context.Context, documentID, fileName string) (*dtos.DocumentStatistics, error) {
	meta, rows, err := s.query.searchRows(ctx, documentID, AllEligible(), fileName, "")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.NewNotFoundError("Document number '" + meta.DocumentNumber + "' was not found in the macro files")
	}

	stats := &dtos.DocumentStatistics{
		TotalRows:      len(rows),
		FileBreakdown:  []dtos.FileCount{},
		SheetBreakdown: []dtos.SheetCount{},
	}
	// rows arrive ordered by file then sheet, so groups are contiguous
	for _, row := range rows {
		if n := len(stats.FileBreakdown); n == 0 || stats.FileBreakdown[n-1].FileName != row.FileName {
			stats.FileBreakdown = append(stats.FileBreakdown, dtos.FileCount{FileName: row.FileName})
		}
		stats.FileBreakdown[len(stats.FileBreakdown)-1].Count++

		n := len(stats.SheetBreakdown)
		if n == 0 || stats.SheetBreakdown[n-1].FileName != row.FileName || stats.SheetBreakdown[n-1].SheetName != row.SheetName {
			stats.SheetBreakdown = append(stats.SheetBreakdown, dtos.SheetCount{FileName: row.FileName, SheetName: row.SheetName})
		}
		stats.SheetBreakdown[len(stats.SheetBreakdown)-1].Count++

		if row.ModifiedDate != nil && (stats.LastModified == nil || row.ModifiedDate.After(stats.LastModified.ModifiedDate)) {
			stats.LastModified = &dtos.LastModified{ModifiedDate: *row.ModifiedDate, ModifiedBy: row.ModifiedBy}
		}
	}
	stats.FilesCount = len(stats.FileBreakdown)
	return stats, nil
}
