package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/poofware/macro-service/internal/models"
	"github.com/poofware/macro-service/internal/repositories"
	"github.com/poofware/macro-service/internal/utils"
)

type RowUpdateService struct {
	rows   repositories.ExcelDataRowRepository
	filter *EligibilityFilter
	now    func() time.Time
}

func NewRowUpdateService(rows repositories.ExcelDataRowRepository, filter *EligibilityFilter) *RowUpdateService {
	return &RowUpdateService{rows: rows, filter: filter, now: time.Now}
}

// Update merges changes into the row's payload if the row is live, sits in an
// eligible file and its payload carries documentID. One optimistic attempt;
// a concurrent writer yields a conflict error and nothing is written.
func (s *RowUpdateService) Update(
	ctx context.Context,
	rowID int64,
	documentID string,
	changes map[string]string,
	actor string,
) (*models.ExcelDataRow, error) {
	doc := strings.TrimSpace(documentID)
	switch {
	case doc == "":
		return nil, utils.NewInvalidArgumentError("Document number is required")
	case rowID <= 0:
		return nil, utils.NewInvalidArgumentError("A valid row id is required")
	case len(changes) == 0:
		return nil, utils.NewInvalidArgumentError("Update data is required")
	}

	logger := utils.Logger.WithFields(logrus.Fields{
		"rowID":    rowID,
		"document": doc,
		"actor":    actor,
	})

	updated, err := s.rows.UpdateWithVersionCheck(ctx, rowID, func(row *models.ExcelDataRow) error {
		if !s.filter.IsEligible(row.FileName) {
			return utils.ErrNotFound
		}
		if !PayloadContains(row.RowData, doc) {
			return utils.ErrScopeMismatch
		}

		data, err := DecodeRowData(row.RowData)
		if err != nil {
			return fmt.Errorf("decode row %d: %w", row.ID, err)
		}
		maps.Copy(data, changes)
		encoded, err := EncodeRowData(data)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", row.ID, err)
		}

		now := s.now().UTC()
		row.RowData = encoded
		row.ModifiedDate = &now
		row.ModifiedBy = utils.StrPtrOrNil(actor)
		return nil
	})
	if err != nil {
		appErr := translateUpdateError(rowID, err)
		if appErr.StatusCode >= 500 {
			logger.WithError(err).Error("Row update failed")
		} else {
			logger.WithField("code", appErr.Code).Info("Row update rejected")
		}
		return nil, appErr
	}

	logger.WithField("version", updated.RowVersion).Info("Row updated")
	return updated, nil
}

func translateUpdateError(rowID int64, err error) *utils.AppError {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return utils.NewNotFoundError(fmt.Sprintf("Row %d was not found in the macro files", rowID))
	case errors.Is(err, utils.ErrScopeMismatch):
		return utils.NewScopeMismatchError(fmt.Sprintf("Row %d does not belong to this document number", rowID))
	case errors.Is(err, utils.ErrRowVersionConflict):
		return utils.NewConflictError(fmt.Sprintf("Row %d was modified concurrently; reload and retry", rowID))
	default:
		return utils.NewInternalError("Failed to update row", err)
	}
}
