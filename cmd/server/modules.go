package main

import (
	"net/http"

	"github.com/JaimeStill/intake/internal/api"
	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/infrastructure"
	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/module"
)

// Modules holds the sub-applications mounted on the root router.
type Modules struct {
	API *module.Module
}

// NewModules builds every module from the shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) error {
	return router.Mount(m.API)
}

type readiness struct {
	Status     string          `json:"status"`
	Version    string          `json:"version"`
	Subsystems map[string]bool `json:"subsystems"`
}

func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", readyHandler(infra.Lifecycle, version))

	return router
}

func readyHandler(lc *lifecycle.Coordinator, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := readiness{
			Status:     "ready",
			Version:    version,
			Subsystems: lc.Status(),
		}
		status := http.StatusOK
		if !lc.Ready() {
			body.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, status, body)
	}
}
