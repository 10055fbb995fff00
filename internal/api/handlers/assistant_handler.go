// server/internal/api/handlers/assistant_handler.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"edc-panorama-api-server/internal/assistant"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/inventory"
	"edc-panorama-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

// Asker answers one question over the given assets.
type Asker interface {
	Ask(ctx context.Context, question string, assets []models.Asset, companyName string) (assistant.Message, error)
}

type AssistantHandler struct {
	Store     database.Store
	Assistant Asker
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

func (h *AssistantHandler) Greeting(c *gin.Context) {
	cfg, err := loadAppConfig(c.Request.Context(), h.Store)
	if err != nil {
		respondStoreError(c, "Failed to load configuration", err)
		return
	}
	c.JSON(http.StatusOK, assistant.Greeting(cfg.CompanyName))
}

// Ask sends the question with every live asset as context.
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cfg, err := loadAppConfig(ctx, h.Store)
	if err != nil {
		respondStoreError(c, "Failed to load configuration", err)
		return
	}
	assets, err := h.Store.ListAssets(ctx)
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}

	msg, err := h.Assistant.Ask(ctx, req.Question, inventory.Filter(assets, inventory.Query{}), cfg.CompanyName)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, assistant.ErrMissingKey):
			status = http.StatusServiceUnavailable
		case errors.Is(err, assistant.ErrRateLimited):
			status = http.StatusTooManyRequests
		}
		slog.Error("assistant request failed", "error", err)
		c.JSON(status, gin.H{"error": assistant.ErrorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, msg)
}
