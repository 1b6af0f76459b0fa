package dtos

import "time"

// ExcelDataResponse is a row with its payload decoded.
type ExcelDataResponse struct {
	ID           int64             `json:"id"`
	FileName     string            `json:"fileName"`
	SheetName    string            `json:"sheetName"`
	RowIndex     int               `json:"rowIndex"`
	Data         map[string]string `json:"data"`
	CreatedDate  time.Time         `json:"createdDate"`
	ModifiedDate *time.Time        `json:"modifiedDate,omitempty"`
	Version      int64             `json:"version"`
	ModifiedBy   *string           `json:"modifiedBy,omitempty"`
}

// SearchScope describes what a search looked at, so empty results can
// still be explained to the caller.
type SearchScope struct {
	Kind           string   `json:"kind"`
	Files          []string `json:"searchedFiles"`
	FileName       string   `json:"fileName,omitempty"`
	SheetName      string   `json:"sheetName,omitempty"`
	DocumentNumber string   `json:"documentNumber"`
}

type SearchResult struct {
	Scope SearchScope
	Rows  []ExcelDataResponse
}

type SearchResponse struct {
	Success        bool                `json:"success"`
	DocumentNumber string              `json:"documentNumber"`
	TotalRows      int                 `json:"totalRows"`
	Data           []ExcelDataResponse `json:"data"`
	SearchedFiles  []string            `json:"searchedFiles,omitempty"`
	Message        string              `json:"message"`
}

type SearchedIn struct {
	FileName       string `json:"fileName"`
	SheetName      string `json:"sheetName"`
	DocumentNumber string `json:"documentNumber"`
}

type SearchNotFoundResponse struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message"`
	SearchedIn    SearchedIn `json:"searchedIn"`
	SearchedFiles []string   `json:"searchedFiles"`
}

// ---------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------

type UpdateDocumentDataRequest struct {
	DocumentNumber string            `json:"documentNumber" validate:"required"`
	RowID          int64             `json:"rowId" validate:"gt=0"`
	UpdateData     map[string]string `json:"updateData" validate:"required,min=1"`
	UpdatedBy      string            `json:"updatedBy"`
}

type UpdateDocumentDataResponse struct {
	Success        bool              `json:"success"`
	Data           ExcelDataResponse `json:"data"`
	DocumentNumber string            `json:"documentNumber"`
	UpdatedFields  []string          `json:"updatedFields"`
	Version        int64             `json:"version"`
	ModifiedDate   *time.Time        `json:"modifiedDate,omitempty"`
	UpdatedInFile  string            `json:"updatedInFile"`
	Message        string            `json:"message"`
}

// BulkUpdateItem is validated per item by the bulk coordinator, not by the
// request validator, so one bad item does not reject the whole batch.
type BulkUpdateItem struct {
	RowID      int64             `json:"rowId"`
	UpdateData map[string]string `json:"updateData"`
}

type BulkUpdateDocumentRequest struct {
	DocumentNumber string           `json:"documentNumber" validate:"required"`
	Updates        []BulkUpdateItem `json:"updates" validate:"required,min=1"`
	UpdatedBy      string           `json:"updatedBy"`
}

type BulkUpdateFailure struct {
	RowID  int64  `json:"rowId"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type BulkUpdateResult struct {
	BatchID           string              `json:"batchId"`
	DocumentNumber    string              `json:"documentNumber"`
	TotalRequested    int                 `json:"totalRequested"`
	SuccessfulUpdates int                 `json:"successfulUpdates"`
	Succeeded         []ExcelDataResponse `json:"data"`
	Failed            []BulkUpdateFailure `json:"errors"`
}

type BulkUpdateResponse struct {
	Success bool `json:"success"`
	BulkUpdateResult
	Message string `json:"message"`
}

// ---------------------------------------------------------------------
// Catalog / statistics
// ---------------------------------------------------------------------

type FileStatusDTO struct {
	FileName         string    `json:"fileName"`
	OriginalFileName string    `json:"originalFileName"`
	UploadDate       time.Time `json:"uploadDate"`
	Status           string    `json:"status"`
}

type FileBreakdownCounts struct {
	TotalFiles         int `json:"totalFiles"`
	MacroFilesCount    int `json:"macroFilesCount"`
	ExcludedFilesCount int `json:"excludedFilesCount"`
}

type FileFilterStatusResponse struct {
	Success       bool                `json:"success"`
	MacroFiles    []FileStatusDTO     `json:"macroFiles"`
	ExcludedFiles []FileStatusDTO     `json:"excludedFiles"`
	Counts        FileBreakdownCounts `json:"counts"`
	Message       string              `json:"message"`
}

type AvailableFile struct {
	FileName          string    `json:"fileName"`
	OriginalFileName  string    `json:"originalFileName"`
	UploadDate        time.Time `json:"uploadDate"`
	DataRowCount      int       `json:"dataRowCount"`
	AvailableSheets   []string  `json:"availableSheets"`
	ReadyForSearch    bool      `json:"readyForSearch"`
	IsNewPriorityFile bool      `json:"isNewPriorityFile"`
	Status            string    `json:"status"`
}

type AvailableFilesBreakdown struct {
	NewPriorityFiles int `json:"newPriorityFiles"`
	OtherFiles       int `json:"otherFiles"`
}

type AvailableFilesResponse struct {
	Success       bool                    `json:"success"`
	Data          []AvailableFile         `json:"data"`
	TotalFiles    int                     `json:"totalFiles"`
	Breakdown     AvailableFilesBreakdown `json:"breakdown"`
	PriorityFiles []string                `json:"priorityFiles"`
	Message       string                  `json:"message"`
}

type FileCount struct {
	FileName string `json:"fileName"`
	Count    int    `json:"count"`
}

type SheetCount struct {
	FileName  string `json:"fileName"`
	SheetName string `json:"sheetName"`
	Count     int    `json:"count"`
}

type LastModified struct {
	ModifiedDate time.Time `json:"modifiedDate"`
	ModifiedBy   *string   `json:"modifiedBy,omitempty"`
}

type DocumentStatistics struct {
	TotalRows      int           `json:"totalRows"`
	FilesCount     int           `json:"filesCount"`
	FileBreakdown  []FileCount   `json:"fileBreakdown"`
	SheetBreakdown []SheetCount  `json:"sheetBreakdown"`
	LastModified   *LastModified `json:"lastModified"`
}

type DocumentStatisticsResponse struct {
	Success        bool               `json:"success"`
	DocumentNumber string             `json:"documentNumber"`
	Statistics     DocumentStatistics `json:"statistics"`
	Message        string             `json:"message"`
}
