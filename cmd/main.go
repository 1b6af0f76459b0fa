package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/poofware/macro-service/internal/app"
	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/controllers"
	"github.com/poofware/macro-service/internal/routes"
	"github.com/poofware/macro-service/internal/services"
	"github.com/poofware/macro-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize macro-service:", err)
	}
	defer application.Close()

	if cfg.SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), cfg.Policy, application.Files, application.Rows); err != nil {
			utils.Logger.Fatal("Failed to seed macro test data:", err)
		}
	}

	// Services
	filter := services.NewEligibilityFilter(cfg.Policy)
	queryService := services.NewRowQueryService(cfg.Policy, application.Rows, filter)
	updateService := services.NewRowUpdateService(application.Rows, filter)
	bulkService := services.NewBulkUpdateService(updateService)
	catalogService := services.NewCatalogService(cfg.Policy, application.Files, application.Rows, filter, queryService)
	exportService := services.NewExportService(queryService)

	// Controllers
	healthController := controllers.NewHealthController(application)
	macroController := controllers.NewMacroController(cfg.Policy, queryService, updateService, bulkService, catalogService, exportService)

	// Router setup
	router := mux.NewRouter()

	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	router.HandleFunc(routes.MacroTest, macroController.TestHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroAvailableFiles, macroController.AvailableFilesHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroFileFilterStatus, macroController.FileFilterStatusHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroSearchByDocument, macroController.SearchByDocumentHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroQuickSearch, macroController.QuickSearchHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroQuickSearchMakro, macroController.QuickSearchMakroHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroSearchInHesap, macroController.SearchInHesapHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroDocumentStatistics, macroController.DocumentStatisticsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MacroUpdateDocumentData, macroController.UpdateDocumentDataHandler).Methods(http.MethodPut)
	router.HandleFunc(routes.MacroBulkUpdateDocument, macroController.BulkUpdateDocumentHandler).Methods(http.MethodPut)
	router.HandleFunc(routes.MacroExport, macroController.ExportHandler).Methods(http.MethodGet)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, config.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("macro-service failed to start:", err)
	}
}
