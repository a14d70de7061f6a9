package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/intake/pkg/auth"
)

type stubVerifier struct {
	tokens map[string]*auth.Claims
}

func (s stubVerifier) Verify(_ context.Context, raw string) (*auth.Claims, error) {
	if c, ok := s.tokens[raw]; ok {
		return c, nil
	}
	return nil, errors.New("unknown token")
}

func TestMiddleware(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]*auth.Claims{
		"clerk":   {Subject: "u-1", Email: "clerk@district.gov.in", Roles: []string{"clerk"}},
		"visitor": {Subject: "u-2", Roles: []string{"viewer"}},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen string
	h := auth.Middleware(verifier, []string{"clerk", "admin"}, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, _ := auth.FromContext(r.Context())
			seen = c.Identity()
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"missing role", "Bearer visitor", http.StatusForbidden},
		{"valid", "bearer clerk", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/submissions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if seen != "clerk@district.gov.in" {
		t.Errorf("identity = %q", seen)
	}
}

func TestOptional(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]*auth.Claims{
		"citizen": {Subject: "c-9", PreferredUsername: "meera"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var (
		called bool
		seen   string
	)
	h := auth.Optional(verifier, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			seen = ""
			if c, ok := auth.FromContext(r.Context()); ok {
				seen = c.Identity()
			}
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	tests := []struct {
		name     string
		header   string
		want     int
		identity string
	}{
		{"anonymous", "", http.StatusNoContent, ""},
		{"valid token", "Bearer citizen", http.StatusNoContent, "meera"},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest("POST", "/forms/text", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if called != (tt.want == http.StatusNoContent) {
				t.Errorf("next called = %v", called)
			}
			if called && seen != tt.identity {
				t.Errorf("identity = %q, want %q", seen, tt.identity)
			}
		})
	}
}

func TestClaimsIdentity(t *testing.T) {
	tests := []struct {
		claims auth.Claims
		want   string
	}{
		{auth.Claims{Subject: "s", Email: "e@x", PreferredUsername: "p"}, "e@x"},
		{auth.Claims{Subject: "s", PreferredUsername: "p"}, "p"},
		{auth.Claims{Subject: "s"}, "s"},
	}
	for _, tt := range tests {
		if got := tt.claims.Identity(); got != tt.want {
			t.Errorf("Identity() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auth.Config
		wantErr bool
	}{
		{"disabled", auth.Config{}, false},
		{"enabled complete", auth.Config{Enabled: true, IssuerURL: "https://login.example.gov", ClientID: "intake"}, false},
		{"enabled without issuer", auth.Config{Enabled: true, ClientID: "intake"}, true},
		{"enabled without client", auth.Config{Enabled: true, IssuerURL: "https://login.example.gov"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); (err != nil) != tt.wantErr {
				t.Errorf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_AUTH_ENABLED", "true")
	t.Setenv("TEST_AUTH_ISSUER_URL", "https://login.example.gov")
	t.Setenv("TEST_AUTH_CLIENT_ID", "intake")
	t.Setenv("TEST_AUTH_ROLES", "clerk, admin")

	cfg := &auth.Config{}
	err := cfg.Finalize(&auth.Env{
		Enabled:   "TEST_AUTH_ENABLED",
		IssuerURL: "TEST_AUTH_ISSUER_URL",
		ClientID:  "TEST_AUTH_CLIENT_ID",
		Roles:     "TEST_AUTH_ROLES",
	})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if !cfg.Enabled || len(cfg.Roles) != 2 || cfg.Roles[1] != "admin" {
		t.Errorf("config = %+v", cfg)
	}
}
