// server/internal/api/handlers/common.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broadcaster publishes change events to websocket subscribers.
type Broadcaster interface {
	Broadcast(event, collection string)
}

// loadAppConfig returns the stored configuration, or the defaults when none
// has been saved yet.
func loadAppConfig(ctx context.Context, store database.ConfigStore) (models.AppConfig, error) {
	cfg, err := store.GetConfig(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return models.DefaultAppConfig(), nil
	}
	return cfg, err
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondStoreError maps store failures to HTTP statuses.
func respondStoreError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, database.ErrDuplicateCode):
		c.JSON(http.StatusConflict, gin.H{"error": "Asset code already exists"})
	case errors.Is(err, database.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
	default:
		slog.Error(msg, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": err.Error()})
	}
}

// actorName is the display name used in log descriptions.
func actorName(user models.User) string {
	if name := user.DisplayName(); name != "" {
		return name
	}
	return "Inconnu"
}

// auditor appends log entries after a mutation has been written. The two
// writes are not atomic; a failed log write is reported but does not undo
// the mutation.
type auditor struct {
	logs database.LogStore
	hub  Broadcaster
}

func (a auditor) record(c *gin.Context, action, description, target string, changes []models.FieldChange) {
	user, _ := middleware.CurrentUser(c)
	userName := user.DisplayName()
	if userName == "" {
		userName = "Utilisateur Inconnu"
	}
	if target == "" {
		target = "N/A"
	}
	entry := models.Log{
		UserID:      user.ID.Hex(),
		UserEmail:   user.Email,
		UserName:    userName,
		Action:      action,
		Description: description,
		TargetCode:  target,
		Changes:     changes,
	}
	if err := a.logs.AppendLog(c.Request.Context(), &entry); err != nil {
		slog.Error("failed to write audit log", "action", action, "target", target, "error", err)
		return
	}
	a.hub.Broadcast(socket.EventLogsChanged, database.LogsCollection)
}
