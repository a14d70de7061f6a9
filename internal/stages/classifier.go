package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
)

// Classifier picks a form type from the configured categories.
type Classifier struct {
	client       inference.Client
	instructions string
	categories   []string
	logger       *slog.Logger
}

// NewClassifier returns the classification stage.
func NewClassifier(client inference.Client, cfg *Config, logger *slog.Logger) *Classifier {
	return &Classifier{
		client:       client,
		instructions: cfg.ClassifierInstructions,
		categories:   cfg.Categories,
		logger:       logger.With("system", "stages", "stage", pipeline.AgentClassifier),
	}
}

func (c *Classifier) Name() string { return pipeline.AgentClassifier }

// Classify returns the configured spelling of the category the model names.
// Replies outside the category list are returned trimmed and unchanged.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat(ctx, composeClassifier(c.instructions, c.categories, text))
	if err != nil {
		return "", err
	}

	formType := strings.TrimSpace(resp)
	if formType == "" {
		return "", fmt.Errorf("%w: empty classification", ErrMalformedResponse)
	}

	if category, ok := c.match(formType); ok {
		return category, nil
	}

	c.logger.WarnContext(ctx, "form type outside configured categories", "form_type", formType)
	return formType, nil
}

func (c *Classifier) match(reply string) (string, bool) {
	cleaned := strings.Trim(reply, " \t\n\"'`*.")
	for _, cat := range c.categories {
		if strings.EqualFold(cleaned, cat) {
			return cat, true
		}
	}
	return "", false
}
