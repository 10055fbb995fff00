package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"edc-panorama-api-server/internal/assistant"
	"edc-panorama-api-server/internal/models"
)

type fakeAsker struct {
	err      error
	question string
	assets   []models.Asset
}

func (f *fakeAsker) Ask(_ context.Context, question string, assets []models.Asset, _ string) (assistant.Message, error) {
	f.question, f.assets = question, assets
	if f.err != nil {
		return assistant.Message{}, f.err
	}
	return assistant.Message{ID: "1", Role: assistant.RoleAI, Text: "Deux actifs."}, nil
}

func newAssistantEnv(t *testing.T, asker *fakeAsker) *testEnv {
	t.Helper()
	env := newEnv(t, adminUser)
	h := &AssistantHandler{Store: env.store, Assistant: asker}
	env.router.GET("/assistant/greeting", h.Greeting)
	env.router.POST("/assistant/ask", h.Ask)
	return env
}

func TestAsk_UsesLiveAssets(t *testing.T) {
	asker := &fakeAsker{}
	env := newAssistantEnv(t, asker)
	env.seedAsset(t, baseAsset2("2024-EDC-IT-0001"))
	gone := baseAsset2("2024-EDC-IT-0002")
	gone.IsArchived = true
	env.seedAsset(t, gone)

	w := env.do(http.MethodPost, "/assistant/ask", AskRequest{Question: "Combien ?"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if asker.question != "Combien ?" || len(asker.assets) != 1 {
		t.Errorf("asked %q with %d assets", asker.question, len(asker.assets))
	}
	if msg := decode[assistant.Message](t, w); msg.Text != "Deux actifs." {
		t.Errorf("message = %+v", msg)
	}
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing key", assistant.ErrMissingKey, http.StatusServiceUnavailable},
		{"rate limited", fmt.Errorf("%w: 429", assistant.ErrRateLimited), http.StatusTooManyRequests},
		{"upstream", fmt.Errorf("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAssistantEnv(t, &fakeAsker{err: tt.err})
			w := env.do(http.MethodPost, "/assistant/ask", AskRequest{Question: "?"})
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if body := decode[map[string]string](t, w); body["error"] != assistant.ErrorMessage(tt.err) {
				t.Errorf("error = %q", body["error"])
			}
		})
	}
}

func TestGreeting(t *testing.T) {
	env := newAssistantEnv(t, &fakeAsker{})
	msg := decode[assistant.Message](t, env.do(http.MethodGet, "/assistant/greeting", nil))
	if msg.Role != assistant.RoleAI || msg.Text == "" {
		t.Errorf("greeting = %+v", msg)
	}
}
