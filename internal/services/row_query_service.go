package services

import (
	"context"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/repositories"
	"github.com/poofware/macro-service/internal/utils"
)

type RowQueryService struct {
	rows   repositories.ExcelDataRowRepository
	filter *EligibilityFilter
	policy config.MacroPolicy
}

func NewRowQueryService(policy config.MacroPolicy, rows repositories.ExcelDataRowRepository, filter *EligibilityFilter) *RowQueryService {
	return &RowQueryService{rows: rows, filter: filter, policy: policy}
}

func (s *RowQueryService) Policy() config.MacroPolicy {
	return s.policy
}

// Search returns the live rows of the scope whose encoded payload contains
// documentID, ordered by file name, sheet name and row index. fileName and
// sheetName narrow the result when non-empty. No match is an empty result.
func (s *RowQueryService) Search(
	ctx context.Context,
	documentID string,
	scope SearchScope,
	fileName, sheetName string,
) (*dtos.SearchResult, error) {
	meta, rows, err := s.searchRows(ctx, documentID, scope, fileName, sheetName)
	if err != nil {
		return nil, err
	}

	result := &dtos.SearchResult{Scope: meta, Rows: make([]dtos.ExcelDataResponse, 0, len(rows))}
	for _, row := range rows {
		resp, err := ToExcelDataResponse(row)
		if err != nil {
			return nil, utils.NewInternalError("Stored row data could not be decoded", err)
		}
		result.Rows = append(result.Rows, resp)
	}
	return result, nil
}

func (s *RowQueryService) searchRows(
	ctx context.Context,
	documentID string,
	scope SearchScope,
	fileName, sheetName string,
) (dtos.SearchScope, []*models.ExcelDataRow, error) {
	doc := strings.TrimSpace(documentID)
	if doc == "" {
		return dtos.SearchScope{}, nil, utils.NewInvalidArgumentError("Document number must not be empty")
	}

	files, err := s.candidateFiles(ctx, scope)
	if err != nil {
		return dtos.SearchScope{}, nil, err
	}

	meta := dtos.SearchScope{
		Kind:           scope.Kind.String(),
		Files:          files,
		FileName:       fileName,
		SheetName:      sheetName,
		DocumentNumber: doc,
	}
	if len(files) == 0 {
		return meta, nil, nil
	}

	rows, err := s.rows.Query(ctx, repositories.RowFilter{
		FileNames:       files,
		FileName:        fileName,
		SheetName:       sheetName,
		PayloadContains: doc,
	})
	if err != nil {
		return meta, nil, utils.NewInternalError("Failed to search rows", err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"document": doc,
		"scope":    scope.Kind.String(),
		"files":    len(files),
		"matches":  len(rows),
	}).Debug("Row search finished")

	return meta, rows, nil
}

func (s *RowQueryService) candidateFiles(ctx context.Context, scope SearchScope) ([]string, error) {
	switch scope.Kind {
	case ScopeAllEligible:
		names, err := s.rows.DistinctFileNames(ctx)
		if err != nil {
			return nil, utils.NewInternalError("Failed to list row files", err)
		}
		return s.filter.EligibleFiles(names), nil
	case ScopeFixedPrioritySet:
		return slices.Clone(s.policy.PriorityFiles), nil
	case ScopeSingleFile:
		if scope.FileName == "" {
			return nil, utils.NewInvalidArgumentError("Single-file scope needs a file name")
		}
		return []string{scope.FileName}, nil
	default:
		return nil, utils.NewInvalidArgumentError("Unknown search scope")
	}
}
