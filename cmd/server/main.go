package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmsops/optimove-export/internal/handlers"
	"github.com/cmsops/optimove-export/internal/middleware"
	"github.com/cmsops/optimove-export/internal/services"
	"github.com/cmsops/optimove-export/pkg/config"
	"github.com/cmsops/optimove-export/pkg/metrics"
	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	m := metrics.New()

	// Initialize collaborator clients. Without a CMS base URL the service
	// runs against the built-in fixtures.
	var (
		mappings services.MappingSource
		mailings services.MailingSource
		params   services.EmailParameterSource
		html     services.HtmlRetriever
		submit   services.ExportSubmitter
	)
	if cfg.CMS.BaseURL == "" {
		log.Println("CMS_BASE_URL not set, running in fixture mode")
		fixtures := services.NewFixtureCatalog()
		mappings = fixtures
		mailings = fixtures
		params = fixtures
		html = fixtures
		submit = fixtures
	} else {
		mappingService := services.NewMappingService(cfg.CMS.BaseURL, cfg.CMS.HTTPTimeout)
		mailingService := services.NewMailingService(cfg.CMS.BaseURL, cfg.CMS.HTTPTimeout)
		optimoveService := services.NewOptimoveService(cfg.CMS.BaseURL, cfg.CMS.ExportURL, cfg.CMS.HTTPTimeout)
		mappings = mappingService
		mailings = mailingService
		params = optimoveService
		html = mailingService
		submit = optimoveService
	}

	// Initialize dependencies
	exportService := services.NewExportService(html, submit, m)
	workspaceService := services.NewWorkspaceService(mappings, mailings, params, exportService, cfg.Export.Concurrency)
	previewCache := services.NewPreviewCache(cfg.Preview.CacheSize)
	previewService := services.NewPreviewService(previewCache, cfg.CMS.HTTPTimeout, m)
	reportService := services.NewReportService()

	// Initialize router
	router := gin.Default()

	// Apply middleware
	router.Use(middleware.WorkspaceMiddleware())

	// Setup routes
	setupRoutes(router, workspaceService, previewService, reportService, m)

	// Setup server
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}

func setupRoutes(router *gin.Engine, workspaceService *services.WorkspaceService,
	previewService *services.PreviewService, reportService *services.ReportService, m *metrics.Metrics) {
	cfg := config.AppConfig

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(workspaceService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	previewHandler := handlers.NewPreviewHandler(previewService, cfg.CMS.SiteBaseURL, cfg.Preview.PrefetchMarginPx)
	reportHandler := handlers.NewReportHandler(reportService, workspaceService)
	healthHandler := handlers.NewHealthHandler()

	api := router.Group("/api")
	{
		api.GET("/state", workspaceHandler.GetState)

		api.GET("/brands", catalogHandler.GetBrands)
		api.GET("/products", catalogHandler.GetProducts)
		api.GET("/items", catalogHandler.GetItems)

		api.POST("/brand", workspaceHandler.SelectBrand)
		api.POST("/product", workspaceHandler.SelectProduct)
		api.POST("/items", workspaceHandler.SelectItems)

		api.POST("/combinations", workspaceHandler.AddCombinations)
		api.DELETE("/combinations", workspaceHandler.ClearGrid)
		api.GET("/combinations/:id/languages", workspaceHandler.RowLanguages)
		api.PUT("/combinations/:id/languages", workspaceHandler.UpdateLanguages)
		api.POST("/combinations/:id/toggle", workspaceHandler.ToggleExpanded)
		api.DELETE("/combinations/:id", workspaceHandler.RemoveCombination)

		api.POST("/export", workspaceHandler.ExportSingle)
		api.POST("/export-all", workspaceHandler.ExportAll)
		api.POST("/reset", workspaceHandler.Reset)

		api.GET("/preview", previewHandler.GetPreview)
		api.POST("/preview/prefetch", previewHandler.Prefetch)
		api.DELETE("/preview/binding", previewHandler.ReleaseBinding)
		api.GET("/preview-url", previewHandler.GetPreviewURL)

		api.GET("/report.xlsx", reportHandler.Download)
	}

	// Health check and metrics endpoints
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(m.Handler()))
}
