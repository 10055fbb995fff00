package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

type recordingHub struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingHub) Broadcast(event, collection string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingHub) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

var adminUser = models.User{
	FirstName:   "Awa",
	LastName:    "Ngono",
	Email:       "admin@edc.cm",
	Permissions: models.AllPermissions(),
}

type testEnv struct {
	store  *database.MemoryStore
	hub    *recordingHub
	router *gin.Engine
	user   models.User
}

// newEnv builds a router whose requests run as user. Routes are registered
// by the caller on env.router.
func newEnv(t *testing.T, user models.User) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := database.NewMemoryStore()
	if err := store.InsertUser(context.Background(), &user); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveConfig(context.Background(), models.DefaultAppConfig()); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
		c.Next()
	})
	return &testEnv{store: store, hub: &recordingHub{}, router: r, user: user}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(path, field, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile(field, filename)
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedAsset(t *testing.T, a models.Asset) models.Asset {
	t.Helper()
	if err := e.store.InsertAsset(context.Background(), &a); err != nil {
		t.Fatal(err)
	}
	return a
}

func (e *testEnv) logs(t *testing.T) []models.Log {
	t.Helper()
	logs, err := e.store.RecentLogs(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	return logs
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}
