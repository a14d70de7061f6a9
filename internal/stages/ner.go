package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/pkg/formatting"
)

// FieldExtractedText holds the raw model reply when it carries no
// recognizable structure.
const FieldExtractedText = "extracted_text"

// NER extracts named form fields with a chat model.
type NER struct {
	client       inference.Client
	instructions string
	logger       *slog.Logger
}

// NewNER returns the entity-extraction stage.
func NewNER(client inference.Client, cfg *Config, logger *slog.Logger) *NER {
	return &NER{
		client:       client,
		instructions: cfg.NERInstructions,
		logger:       logger.With("system", "stages", "stage", pipeline.AgentNER),
	}
}

func (n *NER) Name() string { return pipeline.AgentNER }

func (n *NER) ExtractEntities(ctx context.Context, text string) (pipeline.Fields, error) {
	resp, err := n.client.Chat(ctx, composeNER(n.instructions, text))
	if err != nil {
		return pipeline.Fields{}, err
	}

	if strings.TrimSpace(resp) == "" {
		return pipeline.Fields{}, fmt.Errorf("%w: empty entity response", ErrMalformedResponse)
	}

	return n.parse(ctx, resp), nil
}

// parse reads resp as a JSON object, then as key/value lines, and finally
// keeps the raw reply under FieldExtractedText.
func (n *NER) parse(ctx context.Context, resp string) pipeline.Fields {
	if fields, err := formatting.Parse[pipeline.Fields](resp); err == nil && fields.Len() > 0 {
		return fields
	}

	if pairs := formatting.ParsePairs(resp); len(pairs) > 0 {
		var fields pipeline.Fields
		for _, p := range pairs {
			fields.Set(p.Key, p.Value)
		}
		n.logger.DebugContext(ctx, "entity response parsed as key/value lines", "fields", fields.Len())
		return fields
	}

	n.logger.WarnContext(ctx, "entity response has no structure, keeping raw text")
	return pipeline.FieldsOf(FieldExtractedText, resp)
}
