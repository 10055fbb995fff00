// Package assistant answers natural-language questions about the inventory
// through an OpenAI-compatible chat completion endpoint.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"edc-panorama-api-server/internal/models"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults target Gemini's OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.5-flash"
)

// Message roles.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

var (
	ErrMissingKey  = errors.New("assistant API key is not configured")
	ErrRateLimited = errors.New("assistant rate limited")
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Message is one chat bubble.
type Message struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Text     string `json:"text"`
	IsReport bool   `json:"isReport,omitempty"`
}

type Assistant struct {
	client  openai.Client
	model   string
	timeout time.Duration
	enabled bool
}

func New(cfg Config) *Assistant {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	key := strings.TrimSpace(cfg.APIKey)
	return &Assistant{
		client: openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		enabled: key != "" && !strings.Contains(key, "PLACEHOLDER"),
	}
}

// Greeting is the first message shown in the chat.
func Greeting(companyName string) Message {
	return Message{
		ID:   "greeting",
		Role: RoleAI,
		Text: fmt.Sprintf("Bonjour ! Je suis %s, l'intelligence artificielle de %s. Je suis là pour analyser votre inventaire. Que puis-je faire pour vous ?", Name, companyName),
	}
}

// Ask sends one question with the whole inventory as context. There is no
// conversation memory and no retry.
func (a *Assistant) Ask(ctx context.Context, question string, assets []models.Asset, companyName string) (Message, error) {
	if !a.enabled {
		return Message{}, ErrMissingKey
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(question, assets, companyName)),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return Message{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return Message{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Message{}, errors.New("chat completion returned no choices")
	}

	text := resp.Choices[0].Message.Content
	return Message{
		ID:       uuid.NewString(),
		Role:     RoleAI,
		Text:     text,
		IsReport: IsReport(text),
	}, nil
}

// ErrorMessage maps an Ask failure to the French text shown to the user.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingKey):
		return "Clé API introuvable."
	case errors.Is(err, ErrRateLimited):
		return "Trop de demandes. Veuillez patienter une minute."
	default:
		return "Une erreur est survenue."
	}
}
