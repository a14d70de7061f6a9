package api

import (
	"net/http"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/routes"
)

// registerRoutes mounts the form endpoints, the citizen endpoints, and the
// review endpoints. When auth is enabled, form endpoints accept an optional
// bearer token that attributes the submission to its caller, citizen
// endpoints require any verified token, and review endpoints require a
// token carrying one of the configured roles.
func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	handler := domain.Submissions.Handler()

	forms := domain.Forms.Routes()
	citizen := handler.CitizenRoutes()
	review := handler.Routes()

	if runtime.Verifier != nil {
		forms.Middleware = append(
			forms.Middleware,
			auth.Optional(runtime.Verifier, runtime.Logger),
		)
		citizen.Middleware = append(
			citizen.Middleware,
			auth.Middleware(runtime.Verifier, nil, runtime.Logger),
		)
		review.Middleware = append(
			review.Middleware,
			auth.Middleware(runtime.Verifier, cfg.Auth.Roles, runtime.Logger),
		)
	}

	routes.Register(
		mux,
		forms,
		citizen,
		review,
	)
}
