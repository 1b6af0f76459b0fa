package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/constants"
	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/routes"
	"github.com/poofware/macro-service/internal/services"
	"github.com/poofware/macro-service/internal/utils"
)

type MacroController struct {
	policy   config.MacroPolicy
	query    *services.RowQueryService
	update   *services.RowUpdateService
	bulk     *services.BulkUpdateService
	catalog  *services.CatalogService
	export   *services.ExportService
	validate *validator.Validate
}

func NewMacroController(
	policy config.MacroPolicy,
	query *services.RowQueryService,
	update *services.RowUpdateService,
	bulk *services.BulkUpdateService,
	catalog *services.CatalogService,
	export *services.ExportService,
) *MacroController {
	return &MacroController{
		policy:   policy,
		query:    query,
		update:   update,
		bulk:     bulk,
		catalog:  catalog,
		export:   export,
		validate: validator.New(),
	}
}

// formatValidationErrors converts validator errors into the shared detail DTO.
func (c *MacroController) formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	var details []dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must contain at least %s entries", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// decodeAndValidate writes the error response itself and reports whether
// the handler may continue.
func (c *MacroController) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	if err := c.validate.Struct(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", c.formatValidationErrors(validationErrs))
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		}
		return false
	}
	return true
}

// GET /api/macro/test
func (c *MacroController) TestHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.ServiceInfoResponse{
		Message:   "Macro API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		AvailableOperations: []string{
			"Quick search (priority files only): GET " + routes.MacroQuickSearch,
			"Search by document number (all eligible files): GET " + routes.MacroSearchByDocument,
			"Search the makro file: GET " + routes.MacroQuickSearchMakro,
			"Search the hesap file: GET " + routes.MacroSearchInHesap,
			"Update row data by document number: PUT " + routes.MacroUpdateDocumentData,
			"Bulk update by document number: PUT " + routes.MacroBulkUpdateDocument,
			"List available files: GET " + routes.MacroAvailableFiles,
			"Document statistics: GET " + routes.MacroDocumentStatistics,
			"File filter status: GET " + routes.MacroFileFilterStatus,
			"Export search result as xlsx: GET " + routes.MacroExport,
		},
		PriorityFiles: c.policy.PriorityFiles,
		Policy: dtos.PolicyDTO{
			IncludeMarkers: c.policy.IncludeMarkers,
			ExcludeMarker:  c.policy.ExcludeMarker,
		},
	})
}

// GET /api/macro/available-files
func (c *MacroController) AvailableFilesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	files, err := c.catalog.AvailableFiles(ctx)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	resp := dtos.AvailableFilesResponse{
		Success:       true,
		Data:          files,
		TotalFiles:    len(files),
		PriorityFiles: c.policy.PriorityFiles,
		Message:       "Excel files usable for macro operations (priority files first)",
	}
	for _, f := range files {
		if f.IsNewPriorityFile {
			resp.Breakdown.NewPriorityFiles++
		} else {
			resp.Breakdown.OtherFiles++
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/macro/file-filter-status
func (c *MacroController) FileFilterStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	breakdown, err := c.catalog.FileBreakdown(ctx)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	resp := dtos.FileFilterStatusResponse{
		Success:       true,
		MacroFiles:    make([]dtos.FileStatusDTO, 0, len(breakdown.Eligible)),
		ExcludedFiles: make([]dtos.FileStatusDTO, 0, len(breakdown.Excluded)),
		Counts: dtos.FileBreakdownCounts{
			TotalFiles:         len(breakdown.Eligible) + len(breakdown.Excluded),
			MacroFilesCount:    len(breakdown.Eligible),
			ExcludedFilesCount: len(breakdown.Excluded),
		},
		Message: "Macro API file filter status",
	}
	for _, f := range breakdown.Eligible {
		resp.MacroFiles = append(resp.MacroFiles, dtos.FileStatusDTO{
			FileName: f.FileName, OriginalFileName: f.OriginalFileName, UploadDate: f.UploadDate, Status: constants.FileStatusUsed,
		})
	}
	for _, f := range breakdown.Excluded {
		resp.ExcludedFiles = append(resp.ExcludedFiles, dtos.FileStatusDTO{
			FileName: f.FileName, OriginalFileName: f.OriginalFileName, UploadDate: f.UploadDate, Status: constants.FileStatusNotUsed,
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/macro/search-by-document/{documentNumber}?fileName=&sheetName=
func (c *MacroController) SearchByDocumentHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c.search(w, r, services.AllEligible(), q.Get("fileName"), q.Get("sheetName"))
}

// GET /api/macro/quick-search/{documentNumber}?sheetName=
func (c *MacroController) QuickSearchHandler(w http.ResponseWriter, r *http.Request) {
	c.search(w, r, services.FixedPrioritySet(), "", r.URL.Query().Get("sheetName"))
}

// GET /api/macro/quick-search-makro/{documentNumber}?sheetName=
func (c *MacroController) QuickSearchMakroHandler(w http.ResponseWriter, r *http.Request) {
	c.search(w, r, services.MakroScope(c.policy), "", r.URL.Query().Get("sheetName"))
}

// GET /api/macro/search-in-hesap/{documentNumber}?sheetName=
func (c *MacroController) SearchInHesapHandler(w http.ResponseWriter, r *http.Request) {
	c.search(w, r, services.HesapScope(c.policy), "", r.URL.Query().Get("sheetName"))
}

func (c *MacroController) search(w http.ResponseWriter, r *http.Request, scope services.SearchScope, fileName, sheetName string) {
	documentNumber := mux.Vars(r)["documentNumber"]
	logger := utils.Logger.WithFields(logrus.Fields{
		"handler":  "search",
		"scope":    scope.Kind.String(),
		"document": documentNumber,
	})

	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	res, err := c.query.Search(ctx, documentNumber, scope, fileName, sheetName)
	if err != nil {
		logger.WithError(err).Warn("Search failed")
		utils.HandleAppError(w, err)
		return
	}

	doc := res.Scope.DocumentNumber
	if len(res.Rows) == 0 {
		searchedFile := fileName
		if searchedFile == "" {
			searchedFile = "All eligible macro files"
			if scope.Kind != services.ScopeAllEligible {
				searchedFile = "Files of the " + scope.Kind.String() + " scope"
			}
		}
		searchedSheet := sheetName
		if searchedSheet == "" {
			searchedSheet = "All sheets"
		}
		utils.RespondWithJSON(w, http.StatusNotFound, dtos.SearchNotFoundResponse{
			Success:       false,
			Message:       fmt.Sprintf("Document number '%s' was not found in the searched macro files.", doc),
			SearchedIn:    dtos.SearchedIn{FileName: searchedFile, SheetName: searchedSheet, DocumentNumber: doc},
			SearchedFiles: res.Scope.Files,
		})
		return
	}

	resp := dtos.SearchResponse{
		Success:        true,
		DocumentNumber: doc,
		TotalRows:      len(res.Rows),
		Data:           res.Rows,
		Message:        fmt.Sprintf("Found %d rows for document number '%s'.", len(res.Rows), doc),
	}
	if scope.Kind != services.ScopeAllEligible {
		resp.SearchedFiles = res.Scope.Files
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/macro/document-statistics/{documentNumber}?fileName=
func (c *MacroController) DocumentStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	documentNumber := strings.TrimSpace(mux.Vars(r)["documentNumber"])

	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	stats, err := c.catalog.DocumentStatistics(ctx, documentNumber, r.URL.Query().Get("fileName"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.DocumentStatisticsResponse{
		Success:        true,
		DocumentNumber: documentNumber,
		Statistics:     *stats,
		Message:        fmt.Sprintf("Macro file statistics for document number '%s'", documentNumber),
	})
}

// PUT /api/macro/update-document-data
func (c *MacroController) UpdateDocumentDataHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "UpdateDocumentDataHandler")

	var req dtos.UpdateDocumentDataRequest
	if !c.decodeAndValidate(w, r, &req) {
		return
	}
	logger = logger.WithFields(logrus.Fields{"rowID": req.RowID, "document": req.DocumentNumber})

	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	row, err := c.update.Update(ctx, req.RowID, req.DocumentNumber, req.UpdateData, req.UpdatedBy)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	data, err := services.ToExcelDataResponse(row)
	if err != nil {
		logger.WithError(err).Error("Updated row could not be decoded")
		utils.HandleAppError(w, utils.NewInternalError("Updated row could not be decoded", err))
		return
	}

	fields := make([]string, 0, len(req.UpdateData))
	for k := range req.UpdateData {
		fields = append(fields, k)
	}
	slices.Sort(fields)

	utils.RespondWithJSON(w, http.StatusOK, dtos.UpdateDocumentDataResponse{
		Success:        true,
		Data:           data,
		DocumentNumber: req.DocumentNumber,
		UpdatedFields:  fields,
		Version:        row.RowVersion,
		ModifiedDate:   row.ModifiedDate,
		UpdatedInFile:  row.FileName,
		Message:        "Macro file row updated",
	})
}

// PUT /api/macro/bulk-update-document
func (c *MacroController) BulkUpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.BulkUpdateDocumentRequest
	if !c.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.BulkUpdateTimeout)
	defer cancel()

	res, err := c.bulk.BulkUpdate(ctx, req.DocumentNumber, req.Updates, req.UpdatedBy)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BulkUpdateResponse{
		Success:          true,
		BulkUpdateResult: *res,
		Message:          fmt.Sprintf("%d/%d macro file updates succeeded", res.SuccessfulUpdates, res.TotalRequested),
	})
}

// GET /api/macro/export/{documentNumber}?fileName=&sheetName=
func (c *MacroController) ExportHandler(w http.ResponseWriter, r *http.Request) {
	documentNumber := mux.Vars(r)["documentNumber"]
	q := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), constants.ExportTimeout)
	defer cancel()

	data, count, err := c.export.ExportDocument(ctx, documentNumber, services.AllEligible(), q.Get("fileName"), q.Get("sheetName"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.Logger.WithFields(logrus.Fields{"document": documentNumber, "rows": count}).Info("Exported document rows")
	w.Header().Set("Content-Type", constants.ExportContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": documentNumber + ".xlsx"}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
