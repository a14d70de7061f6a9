package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

type agentClient struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAgent returns a Client backed by go-agents. An agent is created per
// call so concurrent runs never share one.
func NewAgent(cfg *Config, logger *slog.Logger) (Client, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("%w: provider required", ErrMissingConfig)
	}

	ac := buildAgentConfig(cfg)
	if _, err := agent.New(&ac); err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrMissingConfig, err)
	}

	return &agentClient{
		cfg:    ac,
		logger: logger.With("system", "inference", "provider", cfg.Provider),
	}, nil
}

func buildAgentConfig(cfg *Config) gaconfig.AgentConfig {
	ac := gaconfig.DefaultAgentConfig()

	opts := make(map[string]any)
	setOption := func(key, value string) {
		if value != "" {
			opts[key] = value
		}
	}
	setOption("token", cfg.Token)
	setOption("deployment", cfg.Deployment)
	setOption("api_version", cfg.APIVersion)
	setOption("auth_type", cfg.AuthType)

	ac.Merge(&gaconfig.AgentConfig{
		Name: "intake",
		Provider: &gaconfig.ProviderConfig{
			Name:    cfg.Provider,
			BaseURL: cfg.BaseURL,
			Options: opts,
		},
		Model: &gaconfig.ModelConfig{
			Name: cfg.Model,
		},
	})

	return ac
}

func (c *agentClient) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrMissingConfig, err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: chat call: %w", ErrTransport, err)
	}

	return content(resp.Content())
}

func (c *agentClient) Vision(ctx context.Context, prompt string, images []Image) (string, error) {
	uris := make([]string, 0, len(images))
	for i, img := range images {
		uri, err := dataURI(img)
		if err != nil {
			return "", fmt.Errorf("image %d: %w", i+1, err)
		}
		uris = append(uris, uri)
	}

	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrMissingConfig, err)
	}

	resp, err := a.Vision(ctx, prompt, uris)
	if err != nil {
		return "", fmt.Errorf("%w: vision call: %w", ErrTransport, err)
	}

	c.logger.DebugContext(ctx, "vision call complete", "images", len(uris))
	return content(resp.Content())
}

func dataURI(img Image) (string, error) {
	switch img.MediaType() {
	case "image/png":
		return encoding.EncodeImageDataURI(img.Data, document.PNG)
	case "image/jpeg":
		return encoding.EncodeImageDataURI(img.Data, document.JPEG)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, img.MediaType())
	}
}

func content(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyResponse
	}
	return s, nil
}
