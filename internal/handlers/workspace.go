package handlers

import (
	"errors"
	"net/http"

	"github.com/cmsops/optimove-export/internal/middleware"
	"github.com/cmsops/optimove-export/internal/models"
	"github.com/cmsops/optimove-export/internal/services"
	"github.com/cmsops/optimove-export/pkg/logger"
	"github.com/gin-gonic/gin"
)

// WorkspaceHandler exposes the selection funnel and the combination grid.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

func (h *WorkspaceHandler) workspace(c *gin.Context) *models.Workspace {
	return h.workspaceService.Workspace(middleware.GetWorkspaceID(c))
}

// GetState returns the full workspace snapshot
func (h *WorkspaceHandler) GetState(c *gin.Context) {
	ws := h.workspace(c)

	ws.Lock()
	defer ws.Unlock()
	c.JSON(http.StatusOK, ws)
}

// SelectBrand replaces the selected brand and clears forward state
func (h *WorkspaceHandler) SelectBrand(c *gin.Context) {
	var brand models.Brand
	if err := c.ShouldBindJSON(&brand); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand payload"})
		return
	}

	ws := h.workspace(c)
	if brand.Code == "" {
		h.workspaceService.SelectBrand(ws, nil)
	} else {
		h.workspaceService.SelectBrand(ws, &brand)
	}

	c.Status(http.StatusNoContent)
}

// SelectProduct selects a product and loads its mapping
func (h *WorkspaceHandler) SelectProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product payload"})
		return
	}

	ws := h.workspace(c)
	var selected *models.Product
	if product.Code != "" {
		selected = &product
	}

	if err := h.workspaceService.SelectProduct(c.Request.Context(), ws, selected); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load mapping configuration"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SelectItems replaces the pending mailing item selection
func (h *WorkspaceHandler) SelectItems(c *gin.Context) {
	var items []models.MailingItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid items payload"})
		return
	}

	h.workspaceService.SelectMailingItems(h.workspace(c), items)
	c.Status(http.StatusNoContent)
}

// AddCombinations stages the pending items into the grid
func (h *WorkspaceHandler) AddCombinations(c *gin.Context) {
	ws := h.workspace(c)

	if err := h.workspaceService.AddToCombinations(c.Request.Context(), ws); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to add items to combinations"})
		return
	}

	ws.Lock()
	defer ws.Unlock()
	c.JSON(http.StatusOK, ws.Combinations)
}

// UpdateLanguages fully replaces a row's selected languages
func (h *WorkspaceHandler) UpdateLanguages(c *gin.Context) {
	var languages []models.Language
	if err := c.ShouldBindJSON(&languages); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid languages payload"})
		return
	}

	h.workspaceService.UpdateCombinationLanguages(h.workspace(c), c.Param("id"), languages)
	c.Status(http.StatusNoContent)
}

// ToggleExpanded flips a row's expanded flag
func (h *WorkspaceHandler) ToggleExpanded(c *gin.Context) {
	h.workspaceService.ToggleCombinationExpanded(h.workspace(c), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// RemoveCombination deletes one row from the grid
func (h *WorkspaceHandler) RemoveCombination(c *gin.Context) {
	h.workspaceService.RemoveCombination(h.workspace(c), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ClearGrid empties the combination grid
func (h *WorkspaceHandler) ClearGrid(c *gin.Context) {
	h.workspaceService.ClearGrid(h.workspace(c))
	c.Status(http.StatusNoContent)
}

// RowLanguages lists every language available for a staged row's item
func (h *WorkspaceHandler) RowLanguages(c *gin.Context) {
	ws := h.workspace(c)

	ws.Lock()
	row := ws.FindCombination(c.Param("id"))
	ws.Unlock()

	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "combination not found"})
		return
	}

	languages, err := h.workspaceService.LanguagesFor(c.Request.Context(), row.MailingItem.ID)
	if err != nil {
		logger.WithError(err).Error("failed to load languages")
		languages = []models.Language{}
	}
	c.JSON(http.StatusOK, languages)
}

type exportRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Language string `json:"language" binding:"required"`
}

// ExportSingle exports one staged item for one language
func (h *WorkspaceHandler) ExportSingle(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid export payload"})
		return
	}

	ws := h.workspace(c)
	response, err := h.workspaceService.ExportSingle(c.Request.Context(), ws, req.ItemID, req.Language)
	if err != nil {
		status := http.StatusBadGateway
		var confErr *models.ConfigurationError
		if errors.As(err, &confErr) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportAll exports every staged combination for every selected language
func (h *WorkspaceHandler) ExportAll(c *gin.Context) {
	ws := h.workspace(c)
	summary := h.workspaceService.ExportAll(c.Request.Context(), ws)
	c.JSON(http.StatusOK, summary)
}

// Reset restores the workspace to its initial empty state
func (h *WorkspaceHandler) Reset(c *gin.Context) {
	h.workspaceService.Reset(h.workspace(c))
	c.Status(http.StatusNoContent)
}
