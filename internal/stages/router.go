package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
)

// Router suggests the handling department for a classified form.
type Router struct {
	client       inference.Client
	instructions string
	logger       *slog.Logger
}

// NewRouter returns the routing stage.
func NewRouter(client inference.Client, cfg *Config, logger *slog.Logger) *Router {
	return &Router{
		client:       client,
		instructions: cfg.RouterInstructions,
		logger:       logger.With("system", "stages", "stage", pipeline.AgentRouter),
	}
}

func (r *Router) Name() string { return pipeline.AgentRouter }

func (r *Router) Route(ctx context.Context, text, formType string) (string, error) {
	resp, err := r.client.Chat(ctx, composeRouter(r.instructions, formType, text))
	if err != nil {
		return "", err
	}

	route := strings.TrimSpace(resp)
	if route == "" {
		return "", fmt.Errorf("%w: empty route", ErrMalformedResponse)
	}
	return route, nil
}
