package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type gemini struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewGemini returns a Client calling the Gemini generateContent API.
// cfg.Token carries the API key.
func NewGemini(cfg *Config, logger *slog.Logger) (Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: gemini API key required", ErrMissingConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: gemini model required", ErrMissingConfig)
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultGeminiBaseURL
	}

	return &gemini{
		apiKey:   cfg.Token,
		model:    cfg.Model,
		endpoint: fmt.Sprintf("%s/%s:generateContent", base, cfg.Model),
		client:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:   logger.With("system", "inference", "provider", ProviderGemini),
	}, nil
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (g *gemini) Chat(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, []geminiPart{{Text: prompt}})
}

func (g *gemini) Vision(ctx context.Context, prompt string, images []Image) (string, error) {
	parts := []geminiPart{{Text: prompt}}
	for i, img := range images {
		mime := img.MediaType()
		if !strings.HasPrefix(mime, "image/") && mime != "application/pdf" {
			return "", fmt.Errorf("image %d: %w: %s", i+1, ErrUnsupportedImage, mime)
		}
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: mime,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	return g.generate(ctx, parts)
}

func (g *gemini) generate(ctx context.Context, parts []geminiPart) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: ProviderGemini, Code: resp.StatusCode, Body: string(respBody)}
	}

	text, err := parseGemini(respBody)
	if err != nil {
		return "", err
	}

	g.logger.DebugContext(ctx, "generate complete", "model", g.model, "parts", len(parts))
	return text, nil
}

func parseGemini(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no parts", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return content(sb.String())
}
