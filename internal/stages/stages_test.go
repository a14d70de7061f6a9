package stages_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/stages"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeClient struct {
	mu       sync.Mutex
	prompts  []string
	images   [][]inference.Image
	chatFn   func(prompt string) (string, error)
	visionFn func(prompt string, images []inference.Image) (string, error)
}

func (f *fakeClient) Chat(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.chatFn(prompt)
}

func (f *fakeClient) Vision(_ context.Context, prompt string, images []inference.Image) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, images)
	f.mu.Unlock()
	return f.visionFn(prompt, images)
}

func reply(s string) func(string) (string, error) {
	return func(string) (string, error) { return s, nil }
}

type fakeRenderer struct {
	pages    [][]byte
	err      error
	maxPages int
}

func (r *fakeRenderer) Render(_ context.Context, _ []byte, maxPages int) ([][]byte, error) {
	r.maxPages = maxPages
	return r.pages, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultConfig(t *testing.T) *stages.Config {
	t.Helper()
	cfg := &stages.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func TestOCRImage(t *testing.T) {
	client := &fakeClient{
		visionFn: func(string, []inference.Image) (string, error) {
			return "  FIRST INFORMATION REPORT\nComplainant: Asha  \n", nil
		},
	}
	ocr := stages.NewOCR(client, defaultConfig(t), discardLogger())

	text, err := ocr.ExtractText(context.Background(), pipeline.Image{Data: pngHeader})
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "FIRST INFORMATION REPORT\nComplainant: Asha" {
		t.Errorf("text = %q", text)
	}
	if ocr.Name() != pipeline.AgentOCR {
		t.Errorf("Name() = %q, want %q", ocr.Name(), pipeline.AgentOCR)
	}
	if client.prompts[0] != "Extract all text from this document." {
		t.Errorf("prompt = %q", client.prompts[0])
	}
	if len(client.images[0]) != 1 {
		t.Errorf("images sent = %d, want 1", len(client.images[0]))
	}
}

func TestOCRRendersPDF(t *testing.T) {
	renderer := &fakeRenderer{pages: [][]byte{[]byte("page-1"), []byte("page-2")}}
	client := &fakeClient{visionFn: func(string, []inference.Image) (string, error) { return "two pages", nil }}

	cfg := defaultConfig(t)
	cfg.MaxPages = 4
	ocr := stages.NewOCR(client, cfg, discardLogger(), stages.WithRenderer(renderer))

	pdf := []byte("%PDF-1.7\n1 0 obj\n")
	if _, err := ocr.ExtractText(context.Background(), pipeline.Image{Data: pdf}); err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	if renderer.maxPages != 4 {
		t.Errorf("maxPages = %d, want 4", renderer.maxPages)
	}

	want := []inference.Image{
		{Data: []byte("page-1"), ContentType: "image/png"},
		{Data: []byte("page-2"), ContentType: "image/png"},
	}
	if diff := cmp.Diff(want, client.images[0]); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestOCRErrors(t *testing.T) {
	transport := errors.New("connection refused")

	tests := []struct {
		name     string
		visionFn func(string, []inference.Image) (string, error)
		renderer *fakeRenderer
		image    []byte
		wantErr  error
	}{
		{
			name:     "transport",
			visionFn: func(string, []inference.Image) (string, error) { return "", transport },
			image:    pngHeader,
			wantErr:  transport,
		},
		{
			name:     "blank reply",
			visionFn: func(string, []inference.Image) (string, error) { return " \n", nil },
			image:    pngHeader,
			wantErr:  stages.ErrMalformedResponse,
		},
		{
			name:     "render failure",
			visionFn: func(string, []inference.Image) (string, error) { return "unused", nil },
			renderer: &fakeRenderer{err: stages.ErrRenderFailed},
			image:    []byte("%PDF-1.4"),
			wantErr:  stages.ErrRenderFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []stages.OCROption
			if tt.renderer != nil {
				opts = append(opts, stages.WithRenderer(tt.renderer))
			}
			ocr := stages.NewOCR(&fakeClient{visionFn: tt.visionFn}, defaultConfig(t), discardLogger(), opts...)

			_, err := ocr.ExtractText(context.Background(), pipeline.Image{Data: tt.image})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNERParsing(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantKeys  []string
		wantPairs map[string]string
	}{
		{
			name:      "json object",
			reply:     `{"name":"Asha Patil","age":34,"district":"Pune"}`,
			wantKeys:  []string{"name", "age", "district"},
			wantPairs: map[string]string{"name": "Asha Patil", "age": "34", "district": "Pune"},
		},
		{
			name:      "fenced json",
			reply:     "```json\n{\"complainant\": \"R. Kumar\", \"item\": \"bicycle\"}\n```",
			wantKeys:  []string{"complainant", "item"},
			wantPairs: map[string]string{"complainant": "R. Kumar", "item": "bicycle"},
		},
		{
			name:      "key value lines",
			reply:     "Name: Asha Patil\nDistrict = Pune",
			wantKeys:  []string{"Name", "District"},
			wantPairs: map[string]string{"Name": "Asha Patil", "District": "Pune"},
		},
		{
			name:      "unstructured",
			reply:     "I could not find any fields",
			wantKeys:  []string{stages.FieldExtractedText},
			wantPairs: map[string]string{stages.FieldExtractedText: "I could not find any fields"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{chatFn: reply(tt.reply)}
			ner := stages.NewNER(client, defaultConfig(t), discardLogger())

			fields, err := ner.ExtractEntities(context.Background(), "form text")
			if err != nil {
				t.Fatalf("ExtractEntities() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantKeys, fields.Keys()); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantPairs, fields.Map()); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			if !strings.HasSuffix(client.prompts[0], "Text:\nform text") {
				t.Errorf("prompt does not end with the form text: %q", client.prompts[0])
			}
		})
	}
}

func TestNEREmptyReply(t *testing.T) {
	ner := stages.NewNER(&fakeClient{chatFn: reply("   ")}, defaultConfig(t), discardLogger())

	_, err := ner.ExtractEntities(context.Background(), "form text")
	if !errors.Is(err, stages.ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestClassifier(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"FIR", "FIR"},
		{"  pension\n", "Pension"},
		{`"Ration Card".`, "Ration Card"},
		{"**birth certificate**", "Birth Certificate"},
		{"Land Records", "Land Records"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			client := &fakeClient{chatFn: reply(tt.reply)}
			c := stages.NewClassifier(client, defaultConfig(t), discardLogger())

			got, err := c.Classify(context.Background(), "text")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifierPromptListsCategories(t *testing.T) {
	client := &fakeClient{chatFn: reply("FIR")}
	cfg := defaultConfig(t)
	cfg.Categories = []string{"FIR", "Pension"}
	c := stages.NewClassifier(client, cfg, discardLogger())

	if _, err := c.Classify(context.Background(), "bike stolen"); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !strings.Contains(client.prompts[0], "Categories: FIR, Pension") {
		t.Errorf("prompt missing categories: %q", client.prompts[0])
	}
}

func TestRouter(t *testing.T) {
	client := &fakeClient{chatFn: reply(" Police Department \n")}
	r := stages.NewRouter(client, defaultConfig(t), discardLogger())

	got, err := r.Route(context.Background(), "bike stolen", "FIR")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if got != "Police Department" {
		t.Errorf("Route() = %q", got)
	}
	if !strings.Contains(client.prompts[0], "Form type: FIR") {
		t.Errorf("prompt missing form type: %q", client.prompts[0])
	}
}

func TestRouterEmptyReply(t *testing.T) {
	r := stages.NewRouter(&fakeClient{chatFn: reply("")}, defaultConfig(t), discardLogger())

	if _, err := r.Route(context.Background(), "text", "FIR"); !errors.Is(err, stages.ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestPipelineWithStages(t *testing.T) {
	client := &fakeClient{
		visionFn: func(string, []inference.Image) (string, error) {
			return "Complaint: my bicycle was stolen", nil
		},
		chatFn: func(prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "Categories:"):
				return "fir", nil
			case strings.Contains(prompt, "Form type:"):
				return "Police Department", nil
			default:
				return `{"item": "bicycle"}`, nil
			}
		},
	}

	exec, err := pipeline.New(stages.New(client, defaultConfig(t), discardLogger()))
	if err != nil {
		t.Fatalf("pipeline.New() error = %v", err)
	}

	got, err := exec.Process(context.Background(), pipeline.Image{Data: pngHeader}, "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got.FormType != "FIR" || got.SuggestedRoute != "Police Department" {
		t.Errorf("result = %+v", got)
	}
	want := []string{"Orchestrator", "OCRAgent", "NERAgent", "ClassifierAgent", "RouterAgent"}
	if diff := cmp.Diff(want, got.AgentWorkflow); diff != "" {
		t.Errorf("workflow mismatch (-want +got):\n%s", diff)
	}
}
