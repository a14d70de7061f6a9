package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/intake/internal/api"
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/inference"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/database"
	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

type stubClient struct{}

func (stubClient) Chat(context.Context, string) (string, error) { return "", errors.New("offline") }

func (stubClient) Vision(context.Context, string, []inference.Image) (string, error) {
	return "", errors.New("offline")
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, raw string) (*auth.Claims, error) {
	if raw != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Claims{Subject: "clerk", Roles: []string{"reviewer"}}, nil
}

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Database: database.Config{Name: "intake", User: "intake", Port: 1},
		Storage:  storage.Config{ConnectionString: azuriteConnString},
		Agent:    inference.Config{Provider: inference.ProviderGemini, Token: "k"},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	cfg.Auth.Roles = []string{"reviewer"}
	return cfg
}

func setupInfra(t *testing.T, cfg *config.Config, verifier auth.Verifier) *infrastructure.Infrastructure {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		t.Fatal(err)
	}

	return &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Inference: stubClient{},
		Verifier:  verifier,
	}
}

func TestNewModule(t *testing.T) {
	cfg := validConfig(t)
	m, err := api.NewModule(cfg, setupInfra(t, cfg, nil))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix = %s, want /api", m.Prefix())
	}
}

func TestFormsRoutes(t *testing.T) {
	cfg := validConfig(t)
	m, err := api.NewModule(cfg, setupInfra(t, cfg, nil))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"blank text", `{"text":""}`, http.StatusBadRequest},
		{"model unavailable", `{"text":"Name: A"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, httptest.NewRequest("POST", "/api/forms/text", strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestReviewRoutesRequireToken(t *testing.T) {
	cfg := validConfig(t)
	m, err := api.NewModule(cfg, setupInfra(t, cfg, stubVerifier{}))
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{
		"/api/submissions",
		"/api/departments/stats",
		"/api/citizens/submissions",
		"/api/submissions/550e8400-e29b-41d4-a716-446655440000/comments",
	} {
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, rec.Code)
		}

		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec = httptest.NewRecorder()
		m.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: status = %d, want 401", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("POST", "/api/forms/text", strings.NewReader(`{"text":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("forms should stay public: status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/forms/text", strings.NewReader(`{"text":""}`))
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forms with bad token: status = %d, want 401", rec.Code)
	}
}

func TestCitizenRoutesWithoutAuth(t *testing.T) {
	cfg := validConfig(t)
	m, err := api.NewModule(cfg, setupInfra(t, cfg, nil))
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/api/citizens/submissions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without an identity", rec.Code)
	}
}
