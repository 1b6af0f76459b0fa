package constants

import "time"

// Default macro file policy. Overridable through the policy YAML file.
const (
	DefaultExcludeMarker = "GERÇEKLEŞEN"
	DefaultMakroFile     = "gerceklesenmakrodata_20250915153256.xlsx"
	DefaultHesapFile     = "gerceklesenhesap_20250905104743.xlsx"
)

var (
	DefaultIncludeMarkers = []string{"gerceklesenmakro", "gerceklesenhesap"}
	DefaultPriorityFiles  = []string{DefaultHesapFile, DefaultMakroFile}
)

const (
	RequestTimeout    = 30 * time.Second
	BulkUpdateTimeout = 2 * time.Minute
	ExportTimeout     = time.Minute

	// Upper bound on concurrent per-file summaries when listing available files.
	FileSummaryConcurrency = 4

	ExportSheetName   = "Rows"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const (
	FileStatusPriority = "NEW - PRIORITY"
	FileStatusNormal   = "Normal"
	FileStatusUsed     = "Used in macro operations"
	FileStatusNotUsed  = "Not used in macro operations"
)
