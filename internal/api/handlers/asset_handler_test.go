package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"edc-panorama-api-server/internal/inventory"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/s3"
	"edc-panorama-api-server/internal/socket"
	"edc-panorama-api-server/internal/spreadsheet"
)

func newAssetEnv(t *testing.T) (*testEnv, *AssetHandler) {
	t.Helper()
	env := newEnv(t, adminUser)
	h := &AssetHandler{Store: env.store, Hub: env.hub}
	env.router.GET("/assets", h.ListAssets)
	env.router.GET("/assets/next-code", h.NextCode)
	env.router.GET("/assets/export", h.ExportAssets)
	env.router.GET("/assets/:id", h.GetAsset)
	env.router.POST("/assets", h.CreateAsset)
	env.router.PUT("/assets/:id", h.UpdateAsset)
	env.router.DELETE("/assets/:id", h.ArchiveAsset)
	env.router.POST("/assets/:id/photo", h.UploadPhoto)
	return env, h
}

func baseAsset() models.Asset {
	return models.Asset{
		Code: "2024-EDC-IT-0001", Name: "Ordinateur portable", Category: "IT",
		Location: "EDC", AcquisitionYear: "2024", State: models.StateGood,
		HolderPresence: "Présent", Description: "HP",
	}
}

func TestCreateAsset_GeneratesSequentialCodes(t *testing.T) {
	env, _ := newAssetEnv(t)
	input := AssetInput{Name: "Ordinateur portable", Category: "IT", Location: "EDC", AcquisitionYear: "2024"}

	first := env.do(http.MethodPost, "/assets", input)
	if first.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", first.Code, first.Body.String())
	}
	second := env.do(http.MethodPost, "/assets", input)

	a1 := decode[models.Asset](t, first)
	a2 := decode[models.Asset](t, second)
	if a1.Code != "2024-EDC-IT-0001" || a2.Code != "2024-EDC-IT-0002" {
		t.Fatalf("codes = %s, %s", a1.Code, a2.Code)
	}
	if a1.State != models.StateGood || a1.HolderPresence != "Présent" || a1.RegistrationDate == "" {
		t.Errorf("defaults not applied: %+v", a1)
	}

	logs := env.logs(t)
	if len(logs) != 2 || logs[0].Action != models.ActionCreate || logs[0].Description != "Création par Awa Ngono" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if !env.hub.has(socket.EventAssetsChanged) || !env.hub.has(socket.EventLogsChanged) {
		t.Errorf("missing broadcasts: %v", env.hub.events)
	}
}

func TestCreateAsset_Validation(t *testing.T) {
	env, _ := newAssetEnv(t)
	tests := []struct {
		name  string
		input AssetInput
	}{
		{"missing name", AssetInput{Category: "IT", Location: "EDC", AcquisitionYear: "2024"}},
		{"missing year", AssetInput{Name: "PC", Category: "IT", Location: "EDC"}},
		{"unknown category", AssetInput{Name: "PC", Category: "ZZ", Location: "EDC", AcquisitionYear: "2024"}},
		{"unknown state", AssetInput{Name: "PC", Category: "IT", Location: "EDC", AcquisitionYear: "2024", State: "Cassé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do(http.MethodPost, "/assets", tt.input); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
	if len(env.logs(t)) != 0 {
		t.Error("rejected creations must not be logged")
	}
}

func inputFrom(a models.Asset) AssetInput {
	return AssetInput{
		Name: a.Name, Category: a.Category, Location: a.Location,
		AcquisitionYear: a.AcquisitionYear, RegistrationDate: a.RegistrationDate,
		State: a.State, Holder: a.Holder, HolderPresence: a.HolderPresence,
		Door: a.Door, Description: a.Description, Observation: a.Observation,
	}
}

func TestUpdateAsset_CriticalChangeNeedsReason(t *testing.T) {
	env, _ := newAssetEnv(t)
	asset := env.seedAsset(t, baseAsset())

	in := inputFrom(asset)
	in.Location = "DG"
	w := env.do(http.MethodPut, "/assets/"+asset.ID.Hex(), UpdateAssetRequest{Asset: in})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := decode[map[string]any](t, w)
	fields, _ := body["criticalFields"].([]any)
	if len(fields) != 1 || fields[0] != "location" {
		t.Errorf("criticalFields = %v", body["criticalFields"])
	}

	w = env.do(http.MethodPut, "/assets/"+asset.ID.Hex(), UpdateAssetRequest{Asset: in, Reason: "Déménagement"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	logs := env.logs(t)
	if len(logs) != 1 || logs[0].Description != "Déménagement" || logs[0].TargetCode != asset.Code {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if len(logs[0].Changes) != 1 || logs[0].Changes[0].Field != "location" {
		t.Errorf("changes = %+v", logs[0].Changes)
	}
}

func TestUpdateAsset_NonCriticalChange(t *testing.T) {
	env, _ := newAssetEnv(t)
	asset := env.seedAsset(t, baseAsset())

	in := inputFrom(asset)
	in.Description = "HP EliteBook"
	w := env.do(http.MethodPut, "/assets/"+asset.ID.Hex(), UpdateAssetRequest{Asset: in})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode[models.Asset](t, w)
	if got.Code != asset.Code || got.Description != "HP EliteBook" {
		t.Errorf("unexpected asset: %+v", got)
	}
	if logs := env.logs(t); len(logs) != 1 || logs[0].Description != "Modification par Awa Ngono" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}

func TestUpdateAsset_OmittedFieldsAreKept(t *testing.T) {
	env, _ := newAssetEnv(t)
	seed := baseAsset()
	seed.State = models.StateDefective
	seed.HolderPresence = "Absent"
	seed.RegistrationDate = "2024-03-05"
	asset := env.seedAsset(t, seed)

	in := AssetInput{Name: asset.Name, Category: asset.Category, Location: asset.Location, Description: "Écran fissuré"}
	w := env.do(http.MethodPut, "/assets/"+asset.ID.Hex(), UpdateAssetRequest{Asset: in})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	stored, _ := env.store.GetAsset(context.Background(), asset.ID)
	if stored.State != models.StateDefective || stored.HolderPresence != "Absent" ||
		stored.AcquisitionYear != "2024" || stored.RegistrationDate != "2024-03-05" {
		t.Fatalf("omitted fields were overwritten: %+v", stored)
	}
	if logs := env.logs(t); len(logs) != 1 || len(logs[0].Changes) != 1 || logs[0].Changes[0].Field != "description" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}

func TestArchiveAsset_HidesFromListing(t *testing.T) {
	env, _ := newAssetEnv(t)
	asset := env.seedAsset(t, baseAsset())
	other := baseAsset()
	other.Code = "2024-EDC-IT-0002"
	env.seedAsset(t, other)

	if w := env.do(http.MethodDelete, "/assets/"+asset.ID.Hex(), nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	stored, _ := env.store.GetAsset(context.Background(), asset.ID)
	if !stored.IsArchived || stored.State != models.StateRetired {
		t.Fatalf("archive not applied: %+v", stored)
	}

	page := decode[inventory.Page](t, env.do(http.MethodGet, "/assets", nil))
	if page.Total != 1 || page.Items[0].Code != other.Code {
		t.Fatalf("unexpected listing: %+v", page)
	}
	if logs := env.logs(t); logs[0].Action != models.ActionDelete || logs[0].Description != "Archivage par Awa Ngono" {
		t.Fatalf("unexpected log: %+v", logs[0])
	}
}

func TestListAssets_SearchAndFilters(t *testing.T) {
	env, _ := newAssetEnv(t)
	a := baseAsset()
	a.Holder = "Jean Dupont"
	env.seedAsset(t, a)
	b := baseAsset()
	b.Code, b.Name, b.Location = "2024-DG-MB-0001", "Chaise", "DG"
	env.seedAsset(t, b)

	page := decode[inventory.Page](t, env.do(http.MethodGet, "/assets?search=dupont", nil))
	if page.Total != 1 || page.Items[0].Code != a.Code {
		t.Errorf("search: %+v", page)
	}
	page = decode[inventory.Page](t, env.do(http.MethodGet, "/assets?location=DG", nil))
	if page.Total != 1 || page.Items[0].Code != b.Code {
		t.Errorf("location filter: %+v", page)
	}
}

func TestNextCode(t *testing.T) {
	env, _ := newAssetEnv(t)
	env.seedAsset(t, baseAsset())

	w := env.do(http.MethodGet, "/assets/next-code?year=2024&location=EDC&category=IT", nil)
	if got := decode[map[string]string](t, w)["code"]; got != "2024-EDC-IT-0002" {
		t.Errorf("code = %q", got)
	}
	if w := env.do(http.MethodGet, "/assets/next-code?year=2024", nil); w.Code != http.StatusBadRequest {
		t.Errorf("incomplete prefix: status = %d", w.Code)
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	env, _ := newAssetEnv(t)
	if w := env.do(http.MethodGet, "/assets/65a000000000000000000000", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := env.do(http.MethodGet, "/assets/not-an-id", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExportAssets(t *testing.T) {
	env, _ := newAssetEnv(t)
	env.seedAsset(t, baseAsset())

	w := env.do(http.MethodGet, "/assets/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "Inventaire_EDC_") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
	sheet, err := spreadsheet.Read(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(sheet.Rows) != 1 || sheet.Rows[0][inventory.ColCode] != "2024-EDC-IT-0001" {
		t.Fatalf("unexpected rows: %+v", sheet.Rows)
	}
}

type fakeUploader struct {
	err error
}

func (f fakeUploader) UploadPhoto(ctx context.Context, assetID string, file io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.edc.cm/assets/" + assetID + "/photo.png", nil
}

func TestUploadPhoto(t *testing.T) {
	env, h := newAssetEnv(t)
	asset := env.seedAsset(t, baseAsset())

	if w := env.upload("/assets/"+asset.ID.Hex()+"/photo", "photo", "p.png", []byte("x")); w.Code != http.StatusServiceUnavailable {
		t.Errorf("without storage: status = %d", w.Code)
	}

	h.Uploader = fakeUploader{}
	w := env.upload("/assets/"+asset.ID.Hex()+"/photo", "photo", "p.png", []byte("x"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	stored, _ := env.store.GetAsset(context.Background(), asset.ID)
	if !strings.HasSuffix(stored.PhotoURL, "/photo.png") {
		t.Errorf("photo url = %q", stored.PhotoURL)
	}

	h.Uploader = fakeUploader{err: s3.ErrNotImage}
	if w := env.upload("/assets/"+asset.ID.Hex()+"/photo", "photo", "p.txt", []byte("x")); w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("non image: status = %d", w.Code)
	}
}
