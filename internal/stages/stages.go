// Package stages implements the form pipeline stages on top of an
// inference client: OCR, entity extraction, classification, and routing.
package stages

import (
	"log/slog"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
)

// New returns the full stage set backed by client.
func New(client inference.Client, cfg *Config, logger *slog.Logger, opts ...OCROption) pipeline.Stages {
	return pipeline.Stages{
		Extractor:  NewOCR(client, cfg, logger, opts...),
		Entities:   NewNER(client, cfg, logger),
		Classifier: NewClassifier(client, cfg, logger),
		Router:     NewRouter(client, cfg, logger),
	}
}
