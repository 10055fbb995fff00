// server/internal/api/handlers/admin_handler.go
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/inventory"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/socket"
	"edc-panorama-api-server/internal/spreadsheet"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler serves the trash, audit trail and spreadsheet import.
type AdminHandler struct {
	Store database.Store
	Hub   Broadcaster
	// Now is overridable in tests.
	Now func() time.Time
}

func (h *AdminHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *AdminHandler) audit() auditor { return auditor{h.Store, h.Hub} }

// ListLogs returns the most recent audit entries, newest first.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	limit := database.DefaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	logs, err := h.Store.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		respondStoreError(c, "Failed to list logs", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *AdminHandler) ListArchived(c *gin.Context) {
	assets, err := h.Store.ListAssets(c.Request.Context())
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	c.JSON(http.StatusOK, inventory.Archived(assets))
}

// RestoreAsset clears the archive flag. The state stays as it was.
func (h *AdminHandler) RestoreAsset(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	asset, err := h.Store.GetAsset(ctx, id)
	if err != nil {
		respondStoreError(c, "Failed to load asset", err)
		return
	}
	if err := h.Store.SetArchived(ctx, id, false, ""); err != nil {
		respondStoreError(c, "Failed to restore asset", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	h.audit().record(c, models.ActionUpdate, "Restauration par "+actorName(user), asset.Code, nil)
	c.JSON(http.StatusOK, gin.H{"status": "success", "code": asset.Code})
}

// PurgeAsset permanently deletes an archived asset. The confirm query
// parameter must repeat the asset code.
func (h *AdminHandler) PurgeAsset(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	asset, err := h.Store.GetAsset(ctx, id)
	if err != nil {
		respondStoreError(c, "Failed to load asset", err)
		return
	}
	if c.Query("confirm") != asset.Code {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation must match the asset code", "code": asset.Code})
		return
	}
	if !asset.IsArchived {
		c.JSON(http.StatusConflict, gin.H{"error": "Only archived assets can be deleted permanently"})
		return
	}
	if err := h.Store.DeleteAsset(ctx, id); err != nil {
		respondStoreError(c, "Failed to delete asset", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	h.audit().record(c, models.ActionDelete, "Suppression DÉFINITIVE par "+actorName(user), asset.Code, nil)
	c.JSON(http.StatusOK, gin.H{"status": "success", "code": asset.Code})
}

// EmptyTrash permanently deletes every archived asset in chunks and writes a
// single log. A failing chunk stops the run; earlier chunks stay deleted.
func (h *AdminHandler) EmptyTrash(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Explicit confirmation is required (confirm=true)"})
		return
	}
	ctx := c.Request.Context()
	assets, err := h.Store.ListAssets(ctx)
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	archived := inventory.Archived(assets)
	if len(archived) == 0 {
		c.JSON(http.StatusOK, gin.H{"deleted": 0})
		return
	}

	ids := make([]primitive.ObjectID, len(archived))
	for i, a := range archived {
		ids[i] = a.ID
	}
	deleted, err := h.Store.DeleteAssets(ctx, ids)
	user, _ := middleware.CurrentUser(c)
	if deleted > 0 {
		h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	}
	if err != nil {
		if deleted > 0 {
			desc := fmt.Sprintf("VIDAGE CORBEILLE INTERROMPU (%d/%d éléments) par %s", deleted, len(archived), actorName(user))
			h.audit().record(c, models.ActionDelete, desc, "MASS_DELETE", nil)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to empty trash", "details": err.Error(), "deleted": deleted})
		return
	}

	desc := fmt.Sprintf("VIDAGE CORBEILLE (%d éléments) par %s", deleted, actorName(user))
	h.audit().record(c, models.ActionDelete, desc, "MASS_DELETE", nil)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ImportAssets reconciles an uploaded workbook against the live dataset and
// writes the new assets. Any validation error aborts before the first write.
func (h *AdminHandler) ImportAssets(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Spreadsheet file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read spreadsheet"})
		return
	}
	defer file.Close()

	sheet, err := spreadsheet.Read(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier vide ou illisible.", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cfg, err := loadAppConfig(ctx, h.Store)
	if err != nil {
		respondStoreError(c, "Failed to load configuration", err)
		return
	}
	live, err := h.Store.ListAssets(ctx)
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}

	result, err := inventory.Reconcile(sheet.Headers, sheet.Rows, codesOf(live), cfg, h.now())
	if err != nil {
		var missing *inventory.MissingColumnsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "missingColumns": missing.Columns})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !result.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           "Import annulé : erreurs de validation.",
			"errors":          result.Errors,
			"duplicateInFile": result.DuplicateInFile,
			"alreadyExisting": result.AlreadyExisting,
		})
		return
	}

	imported := 0
	for _, asset := range result.Assets {
		if err := h.Store.UpsertAssetByCode(ctx, asset); err != nil {
			if imported > 0 {
				h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Import interrupted", "details": err.Error(), "imported": imported})
			return
		}
		imported++
	}

	if imported > 0 {
		h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	}
	user, _ := middleware.CurrentUser(c)
	firstName := user.FirstName
	if firstName == "" {
		firstName = "Inconnu"
	}
	h.audit().record(c, models.ActionConfig, fmt.Sprintf("Import Excel : %d éléments par %s.", imported, firstName), "", nil)
	c.JSON(http.StatusOK, gin.H{
		"imported":        imported,
		"duplicateInFile": result.DuplicateInFile,
		"alreadyExisting": result.AlreadyExisting,
	})
}

// ImportTemplate returns an example workbook with the expected columns.
func (h *AdminHandler) ImportTemplate(c *gin.Context) {
	cfg, err := loadAppConfig(c.Request.Context(), h.Store)
	if err != nil {
		respondStoreError(c, "Failed to load configuration", err)
		return
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf, cfg); err != nil {
		respondStoreError(c, "Failed to build workbook", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="Modele_Import_EDC.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
