package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/utils"
)

type BulkUpdateService struct {
	updater *RowUpdateService
}

func NewBulkUpdateService(updater *RowUpdateService) *BulkUpdateService {
	return &BulkUpdateService{updater: updater}
}

// BulkUpdate applies items one by one in request order. A failing item is
// recorded and the batch moves on; earlier successes are never rolled back.
func (s *BulkUpdateService) BulkUpdate(
	ctx context.Context,
	documentID string,
	items []dtos.BulkUpdateItem,
	actor string,
) (*dtos.BulkUpdateResult, error) {
	doc := strings.TrimSpace(documentID)
	if doc == "" {
		return nil, utils.NewInvalidArgumentError("Document number is required")
	}
	if len(items) == 0 {
		return nil, utils.NewInvalidArgumentError("Update list is required")
	}

	result := &dtos.BulkUpdateResult{
		BatchID:        uuid.NewString(),
		DocumentNumber: doc,
		TotalRequested: len(items),
		Succeeded:      []dtos.ExcelDataResponse{},
		Failed:         []dtos.BulkUpdateFailure{},
	}
	logger := utils.Logger.WithFields(logrus.Fields{
		"batchID":  result.BatchID,
		"document": doc,
		"actor":    actor,
	})

	for _, item := range items {
		row, err := s.updater.Update(ctx, item.RowID, doc, item.UpdateData, actor)
		if err != nil {
			result.Failed = append(result.Failed, bulkFailure(item.RowID, err))
			continue
		}

		resp, err := ToExcelDataResponse(row)
		if err != nil {
			// the row is committed; report it without its data
			logger.WithError(err).WithField("rowID", row.ID).Warn("Updated row could not be decoded")
			resp = dtos.ExcelDataResponse{ID: row.ID, FileName: row.FileName, SheetName: row.SheetName, RowIndex: row.RowIndex, Version: row.RowVersion}
		}
		result.Succeeded = append(result.Succeeded, resp)
	}
	result.SuccessfulUpdates = len(result.Succeeded)

	logger.WithFields(logrus.Fields{
		"requested": result.TotalRequested,
		"succeeded": result.SuccessfulUpdates,
	}).Info("Bulk update finished")
	return result, nil
}

func bulkFailure(rowID int64, err error) dtos.BulkUpdateFailure {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		reason := appErr.Message
		if appErr.StatusCode >= http.StatusInternalServerError && appErr.Err != nil {
			reason = appErr.Error()
		}
		return dtos.BulkUpdateFailure{RowID: rowID, Code: appErr.Code, Reason: reason}
	}
	return dtos.BulkUpdateFailure{RowID: rowID, Code: utils.ErrCodeInternal, Reason: err.Error()}
}
