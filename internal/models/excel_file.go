package models

import "time"

// ExcelFile describes an uploaded workbook. Only active files take part in
// macro searches.
type ExcelFile struct {
	ID               int64     `json:"id"`
	FileName         string    `json:"fileName"`
	OriginalFileName string    `json:"originalFileName"`
	UploadDate       time.Time `json:"uploadDate"`
	IsActive         bool      `json:"isActive"`
}
