package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
)

const mediaTypePDF = "application/pdf"

// OCR extracts form text with a vision model. PDF scans are rendered to
// page images first and sent in a single call.
type OCR struct {
	client       inference.Client
	renderer     PageRenderer
	instructions string
	maxPages     int
	logger       *slog.Logger
}

// OCROption configures an OCR stage.
type OCROption func(*OCR)

// WithRenderer replaces the PDF page renderer.
func WithRenderer(r PageRenderer) OCROption {
	return func(o *OCR) {
		o.renderer = r
	}
}

// NewOCR returns the text-extraction stage.
func NewOCR(client inference.Client, cfg *Config, logger *slog.Logger, opts ...OCROption) *OCR {
	o := &OCR{
		client:       client,
		renderer:     MagickRenderer{},
		instructions: cfg.OCRInstructions,
		maxPages:     cfg.MaxPages,
		logger:       logger.With("system", "stages", "stage", pipeline.AgentOCR),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OCR) Name() string { return pipeline.AgentOCR }

func (o *OCR) ExtractText(ctx context.Context, img pipeline.Image) (string, error) {
	images, err := o.images(ctx, img)
	if err != nil {
		return "", err
	}

	resp, err := o.client.Vision(ctx, o.instructions, images)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("%w: no text extracted", ErrMalformedResponse)
	}
	return text, nil
}

func (o *OCR) images(ctx context.Context, img pipeline.Image) ([]inference.Image, error) {
	src := inference.Image{Data: img.Data, ContentType: img.ContentType}
	if src.MediaType() != mediaTypePDF {
		return []inference.Image{src}, nil
	}

	pages, err := o.renderer.Render(ctx, img.Data, o.maxPages)
	if err != nil {
		return nil, err
	}

	o.logger.DebugContext(ctx, "pdf scan rendered", "pages", len(pages))

	images := make([]inference.Image, len(pages))
	for i, p := range pages {
		images[i] = inference.Image{Data: p, ContentType: "image/png"}
	}
	return images, nil
}
