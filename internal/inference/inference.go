// Package inference provides the model clients the form stages call.
// Two backends are available: go-agents (ollama, azure, openai providers)
// and a direct Gemini REST client.
package inference

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Image is an inline image sent with a vision prompt.
type Image struct {
	Data        []byte
	ContentType string
}

// MediaType returns the image content type, sniffing Data when unset.
func (i Image) MediaType() string {
	ct := strings.TrimSpace(i.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(i.Data)
	}
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

// Client sends prompts to a model and returns the text of its reply.
type Client interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Vision(ctx context.Context, prompt string, images []Image) (string, error)
}

// New returns the client for cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (Client, error) {
	if cfg.Provider == ProviderGemini {
		return NewGemini(cfg, logger)
	}
	return NewAgent(cfg, logger)
}
