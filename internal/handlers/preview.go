package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmsops/optimove-export/internal/models"
	"github.com/cmsops/optimove-export/internal/services"
	"github.com/gin-gonic/gin"
)

// PreviewHandler serves rendered preview HTML and the prefetch entry point.
type PreviewHandler struct {
	previewService   *services.PreviewService
	siteBaseURL      string
	prefetchMarginPx int
}

func NewPreviewHandler(previewService *services.PreviewService, siteBaseURL string, prefetchMarginPx int) *PreviewHandler {
	return &PreviewHandler{
		previewService:   previewService,
		siteBaseURL:      siteBaseURL,
		prefetchMarginPx: prefetchMarginPx,
	}
}

func (h *PreviewHandler) request(c *gin.Context) services.PreviewRequest {
	return services.PreviewRequest{
		Binding:     c.Query("binding"),
		SiteBaseURL: h.siteBaseURL,
		ItemID:      c.Query("itemId"),
		Lang:        c.Query("lang"),
		Cookie:      c.GetHeader("Cookie"),
	}
}

// GetPreview returns the rendered HTML for an item+language
func (h *PreviewHandler) GetPreview(c *gin.Context) {
	req := h.request(c)
	if req.Binding == "" {
		// One binding per browser slot; fall back to the key itself.
		req.Binding = req.ItemID + "|" + req.Lang
	}

	html, err := h.previewService.Render(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Superseded by a newer request for the same binding.
			c.Status(http.StatusNoContent)
			return
		}
		var urlErr *models.InvalidURLError
		if errors.As(err, &urlErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"html": html})
}

// Prefetch warms the preview cache when a row scrolls near the viewport
func (h *PreviewHandler) Prefetch(c *gin.Context) {
	h.previewService.Prefetch(h.request(c))
	c.JSON(http.StatusAccepted, gin.H{"margin_px": h.prefetchMarginPx})
}

// ReleaseBinding aborts the in-flight fetch of an unmounted preview slot
func (h *PreviewHandler) ReleaseBinding(c *gin.Context) {
	h.previewService.Release(c.Query("binding"))
	c.Status(http.StatusNoContent)
}

// GetPreviewURL returns the CMS preview URL for opening in a new tab
func (h *PreviewHandler) GetPreviewURL(c *gin.Context) {
	previewURL, err := services.BuildPreviewURL(h.siteBaseURL, c.Query("itemId"), c.Query("lang"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": previewURL})
}
