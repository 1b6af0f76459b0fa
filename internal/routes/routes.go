package routes

const (
	Health = "/health"

	MacroTest               = "/api/macro/test"
	MacroAvailableFiles     = "/api/macro/available-files"
	MacroFileFilterStatus   = "/api/macro/file-filter-status"
	MacroSearchByDocument   = "/api/macro/search-by-document/{documentNumber}"
	MacroQuickSearch        = "/api/macro/quick-search/{documentNumber}"
	MacroQuickSearchMakro   = "/api/macro/quick-search-makro/{documentNumber}"
	MacroSearchInHesap      = "/api/macro/search-in-hesap/{documentNumber}"
	MacroDocumentStatistics = "/api/macro/document-statistics/{documentNumber}"
	MacroUpdateDocumentData = "/api/macro/update-document-data"
	MacroBulkUpdateDocument = "/api/macro/bulk-update-document"
	MacroExport             = "/api/macro/export/{documentNumber}"
)
