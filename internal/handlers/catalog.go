package handlers

import (
	"net/http"

	"github.com/cmsops/optimove-export/internal/middleware"
	"github.com/cmsops/optimove-export/internal/models"
	"github.com/cmsops/optimove-export/internal/services"
	"github.com/cmsops/optimove-export/pkg/logger"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the dropdown data: brands, products and mailing
// items. List fetch failures degrade to empty lists so the UI stays usable.
type CatalogHandler struct {
	workspaceService *services.WorkspaceService
}

func NewCatalogHandler(workspaceService *services.WorkspaceService) *CatalogHandler {
	return &CatalogHandler{
		workspaceService: workspaceService,
	}
}

// GetBrands lists all brands
func (h *CatalogHandler) GetBrands(c *gin.Context) {
	brands, err := h.workspaceService.GetBrands(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("failed to load brands")
		brands = []models.Brand{}
	}
	c.JSON(http.StatusOK, brands)
}

// GetProducts lists the products of a brand. Without an explicit brand
// query the workspace's selected brand is used.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	if brandCode := c.Query("brand"); brandCode != "" {
		products, err := h.workspaceService.GetProductsByBrand(c.Request.Context(), brandCode)
		if err != nil {
			logger.WithError(err).Error("failed to load products")
			products = []models.Product{}
		}
		c.JSON(http.StatusOK, products)
		return
	}

	ws := h.workspaceService.Workspace(middleware.GetWorkspaceID(c))

	products, err := h.workspaceService.GetProducts(c.Request.Context(), ws)
	if err != nil {
		logger.WithError(err).Error("failed to load products")
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetItems lists the mailing items of the mapped mailing site
func (h *CatalogHandler) GetItems(c *gin.Context) {
	ws := h.workspaceService.Workspace(middleware.GetWorkspaceID(c))

	items, err := h.workspaceService.GetMailingItems(c.Request.Context(), ws)
	if err != nil {
		logger.WithError(err).Error("failed to load mailing items")
		items = []models.MailingItem{}
	}
	c.JSON(http.StatusOK, items)
}
