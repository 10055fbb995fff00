// server/internal/api/handlers/asset_handler.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/inventory"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/s3"
	"edc-panorama-api-server/internal/socket"
	"edc-panorama-api-server/internal/spreadsheet"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PhotoUploader stores asset photos and returns their public URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, assetID string, file io.Reader) (string, error)
}

type AssetHandler struct {
	Store    database.Store
	Hub      Broadcaster
	Uploader PhotoUploader
}

// AssetInput is the editable part of an asset.
type AssetInput struct {
	Name             string            `json:"name"`
	Category         string            `json:"category"`
	Location         string            `json:"location"`
	AcquisitionYear  string            `json:"acquisitionYear"`
	RegistrationDate string            `json:"registrationDate"`
	State            string            `json:"state"`
	Holder           string            `json:"holder"`
	HolderPresence   string            `json:"holderPresence"`
	Door             string            `json:"door"`
	Description      string            `json:"description"`
	Observation      string            `json:"observation"`
	CustomAttributes map[string]string `json:"customAttributes"`
	Amount           *float64          `json:"amount"`
	Unit             string            `json:"unit"`
}

type UpdateAssetRequest struct {
	Asset  AssetInput `json:"asset" binding:"required"`
	Reason string     `json:"reason"`
}

func (in AssetInput) validate(cfg models.AppConfig, creating bool) error {
	var missing []string
	for field, v := range map[string]string{"name": in.Name, "category": in.Category, "location": in.Location} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if creating && strings.TrimSpace(in.AcquisitionYear) == "" {
		missing = append(missing, "acquisitionYear")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !cfg.HasCategory(in.Category) {
		return fmt.Errorf("unknown category %q", in.Category)
	}
	if in.State != "" && len(cfg.States) > 0 && !slices.Contains(cfg.States, in.State) {
		return fmt.Errorf("unknown state %q", in.State)
	}
	return nil
}

// apply copies the input onto a. Blank state, holder presence, acquisition
// year and registration date keep the value already on a, falling back to
// the configured defaults for a new asset.
func (in AssetInput) apply(a *models.Asset, cfg models.AppConfig, today string) {
	a.Name = strings.TrimSpace(in.Name)
	a.Category = in.Category
	a.Location = in.Location
	a.AcquisitionYear = keep(strings.TrimSpace(in.AcquisitionYear), a.AcquisitionYear, "")
	a.RegistrationDate = keep(in.RegistrationDate, a.RegistrationDate, today)
	a.State = keep(in.State, a.State, cfg.DefaultState())
	a.Holder = in.Holder
	a.HolderPresence = keep(in.HolderPresence, a.HolderPresence, cfg.DefaultHolderPresence())
	a.Door = in.Door
	a.Description = in.Description
	a.Observation = in.Observation
	a.CustomAttributes = in.CustomAttributes
	if a.CustomAttributes == nil {
		a.CustomAttributes = map[string]string{}
	}
	a.Amount = in.Amount
	a.Unit = in.Unit
}

func keep(v, current, def string) string {
	switch {
	case v != "":
		return v
	case current != "":
		return current
	}
	return def
}

func codesOf(assets []models.Asset) []string {
	codes := make([]string, len(assets))
	for i, a := range assets {
		codes[i] = a.Code
	}
	return codes
}

// ListAssets returns one page of live assets matching the query.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	var q inventory.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assets, err := h.Store.ListAssets(c.Request.Context())
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	c.JSON(http.StatusOK, inventory.Paginate(inventory.Filter(assets, q), q.Page))
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	asset, err := h.Store.GetAsset(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, "Failed to load asset", err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// NextCode previews the code a new asset would receive.
func (h *AssetHandler) NextCode(c *gin.Context) {
	assets, err := h.Store.ListAssets(c.Request.Context())
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	code, err := inventory.NextCode(c.Query("year"), c.Query("location"), c.Query("category"), codesOf(assets))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// CreateAsset generates the code server-side and records a CREATE log.
// Two concurrent creations can compute the same code; the unique index
// rejects the second one with 409.
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var in AssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cfg, err := loadAppConfig(ctx, h.Store)
	if err != nil {
		respondStoreError(c, "Failed to load configuration", err)
		return
	}
	if err := in.validate(cfg, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.Store.ListAssets(ctx)
	if err != nil {
		respondStoreError(c, "Failed to list assets", err)
		return
	}
	code, err := inventory.NextCode(in.AcquisitionYear, in.Location, in.Category, codesOf(existing))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset := models.Asset{Code: code}
	in.apply(&asset, cfg, time.Now().Format(time.DateOnly))
	if err := h.Store.InsertAsset(ctx, &asset); err != nil {
		respondStoreError(c, "Failed to create asset", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	auditor{h.Store, h.Hub}.record(c, models.ActionCreate, "Création par "+actorName(user), asset.Code, nil)
	c.JSON(http.StatusCreated, asset)
}

// UpdateAsset applies an edit. A change to a critical field needs a reason,
// which becomes the log description.
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateAssetRequest
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
	if err := req.Asset.validate(cfg, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	before, err := h.Store.GetAsset(ctx, id)
	if err != nil {
		respondStoreError(c, "Failed to load asset", err)
		return
	}
	after := before
	req.Asset.apply(&after, cfg, time.Now().Format(time.DateOnly))

	reason := strings.TrimSpace(req.Reason)
	if inventory.RequiresJustification(before, after) && reason == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "A justification is required for this change",
			"criticalFields": inventory.ChangedCriticalFields(before, after),
		})
		return
	}

	changes := inventory.Diff(before, after)
	if err := h.Store.UpdateAsset(ctx, after); err != nil {
		respondStoreError(c, "Failed to update asset", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if reason == "" {
		reason = "Modification par " + actorName(user)
	}
	h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	auditor{h.Store, h.Hub}.record(c, models.ActionUpdate, reason, after.Code, changes)
	c.JSON(http.StatusOK, after)
}

// ArchiveAsset soft deletes an asset: it leaves the live list and becomes Retiré.
func (h *AssetHandler) ArchiveAsset(c *gin.Context) {
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
	if err := h.Store.SetArchived(ctx, id, true, models.StateRetired); err != nil {
		respondStoreError(c, "Failed to archive asset", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	auditor{h.Store, h.Hub}.record(c, models.ActionDelete, "Archivage par "+actorName(user), asset.Code, nil)
	c.JSON(http.StatusOK, gin.H{"status": "success", "code": asset.Code})
}

// UploadPhoto stores the multipart "photo" file and links it to the asset.
func (h *AssetHandler) UploadPhoto(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	ctx := c.Request.Context()
	asset, err := h.Store.GetAsset(ctx, id)
	if err != nil {
		respondStoreError(c, "Failed to load asset", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo"})
		return
	}
	defer file.Close()

	url, err := h.Uploader.UploadPhoto(ctx, asset.ID.Hex(), file)
	switch {
	case errors.Is(err, s3.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case errors.Is(err, s3.ErrNotImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	case err != nil:
		respondStoreError(c, "Failed to upload photo", err)
		return
	}

	change := models.FieldChange{Field: "photoUrl", Before: asset.PhotoURL, After: url}
	asset.PhotoURL = url
	if err := h.Store.UpdateAsset(ctx, asset); err != nil {
		respondStoreError(c, "Failed to update asset", err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	h.Hub.Broadcast(socket.EventAssetsChanged, database.AssetsCollection)
	auditor{h.Store, h.Hub}.record(c, models.ActionUpdate, "Photo mise à jour par "+actorName(user), asset.Code, []models.FieldChange{change})
	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}

// ExportAssets streams the filtered live assets as an xlsx workbook.
func (h *AssetHandler) ExportAssets(c *gin.Context) {
	var q inventory.Query
	if err := c.ShouldBindQuery(&q); err != nil {
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

	var buf bytes.Buffer
	if err := spreadsheet.WriteAssets(&buf, inventory.Filter(assets, q), cfg); err != nil {
		respondStoreError(c, "Failed to build workbook", err)
		return
	}
	filename := fmt.Sprintf("Inventaire_EDC_%s.xlsx", time.Now().Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
