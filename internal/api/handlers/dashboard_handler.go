// server/internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"

	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/inventory"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	Store database.AssetStore
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	assets, err := h.Store.ListAssets(c.Request.Context())
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	c.JSON(http.StatusOK, inventory.ComputeStats(assets))
}

// Chart cross-tabulates live assets by the x and group axes.
func (h *DashboardHandler) Chart(c *gin.Context) {
	x := c.DefaultQuery("x", "location")
	group := c.DefaultQuery("group", "state")

	assets, err := h.Store.ListAssets(c.Request.Context())
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	chart, err := inventory.ComputeChart(assets, x, group)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "axes": inventory.ChartAxes})
		return
	}
	c.JSON(http.StatusOK, chart)
}
