package handlers

import (
	"net/http"

	"github.com/cmsops/optimove-export/internal/middleware"
	"github.com/cmsops/optimove-export/internal/services"
	"github.com/cmsops/optimove-export/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the export summary workbook download.
type ReportHandler struct {
	reportService    *services.ReportService
	workspaceService *services.WorkspaceService
}

func NewReportHandler(reportService *services.ReportService, workspaceService *services.WorkspaceService) *ReportHandler {
	return &ReportHandler{
		reportService:    reportService,
		workspaceService: workspaceService,
	}
}

// Download streams the workspace summary as an xlsx file
func (h *ReportHandler) Download(c *gin.Context) {
	ws := h.workspaceService.Workspace(middleware.GetWorkspaceID(c))

	workbook, err := h.reportService.BuildWorkbook(ws)
	if err != nil {
		logger.WithError(err).Error("failed to build export report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="export-summary.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		logger.WithError(err).Error("failed to stream export report")
	}
}
