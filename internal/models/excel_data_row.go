package models

import "time"

// ExcelDataRow is one imported spreadsheet row. RowData holds the row's
// columns as an encoded JSON object of string to string.
type ExcelDataRow struct {
	Versioned
	ID           int64      `json:"id"`
	FileName     string     `json:"fileName"`
	SheetName    string     `json:"sheetName"`
	RowIndex     int        `json:"rowIndex"`
	RowData      string     `json:"rowData"`
	CreatedDate  time.Time  `json:"createdDate"`
	ModifiedDate *time.Time `json:"modifiedDate,omitempty"`
	ModifiedBy   *string    `json:"modifiedBy,omitempty"`
	IsDeleted    bool       `json:"isDeleted"`
}

func (r *ExcelDataRow) GetID() int64 { return r.ID }
