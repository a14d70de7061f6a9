package routes_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/intake/pkg/routes"
)

func tag(name string) routes.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix:     "/submissions",
		Middleware: []routes.Middleware{tag("auth")},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix:     "/stats",
				Middleware: []routes.Middleware{tag("stats")},
				Routes:     []routes.Route{{Method: "GET", Pattern: "", Handler: ok}},
			},
		},
	}, routes.Group{
		Prefix: "/forms",
		Routes: []routes.Route{{Method: "POST", Pattern: "/text", Handler: ok}},
	})

	tests := []struct {
		method    string
		path      string
		wantCode  int
		wantChain string
	}{
		{"GET", "/submissions", http.StatusOK, "auth"},
		{"GET", "/submissions/abc", http.StatusOK, "auth"},
		{"GET", "/submissions/stats", http.StatusOK, "auth,stats"},
		{"POST", "/forms/text", http.StatusOK, ""},
		{"GET", "/forms/text", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := strings.Join(rec.Header().Values("X-Chain"), ","); got != tt.wantChain {
				t.Errorf("chain = %q, want %q", got, tt.wantChain)
			}
		})
	}
}
