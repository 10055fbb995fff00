// server/internal/api/handlers/config_handler.go
package handlers

import (
	"net/http"
	"strings"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	Store database.Store
	Hub   Broadcaster
}

// GetConfig returns the shared taxonomy, or the defaults before the first save.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := loadAppConfig(c.Request.Context(), h.Store)
	if err != nil {
		respondStoreError(c, "Failed to load configuration", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig replaces the whole configuration document.
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var cfg models.AppConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(cfg.CompanyName) == "" || len(cfg.Categories) == 0 || len(cfg.States) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyName, categories and states are required"})
		return
	}
	if cfg.CategoriesDescriptions == nil {
		cfg.CategoriesDescriptions = map[string]string{}
	}

	if err := h.Store.SaveConfig(c.Request.Context(), cfg); err != nil {
		respondStoreError(c, "Failed to save configuration", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	h.Hub.Broadcast(socket.EventConfigChanged, database.ConfigCollection)
	auditor{h.Store, h.Hub}.record(c, models.ActionConfig, "Mise à jour de la configuration par "+actorName(user), "", nil)
	c.JSON(http.StatusOK, cfg)
}
