package submissions

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/routes"
)

// CitizenRoutes returns the endpoints through which a signed-in citizen
// follows their own submissions. Every handler requires claims on the
// request context; submissions owned by someone else answer 404.
func (h *Handler) CitizenRoutes() routes.Group {
	return routes.Group{
		Prefix: "/citizens/submissions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.OwnList},
			{Method: "GET", Pattern: "/{id}", Handler: h.OwnFind},
			{Method: "GET", Pattern: "/{id}/comments", Handler: h.OwnComments},
			{Method: "POST", Pattern: "/{id}/comments", Handler: h.OwnAddComment},
		},
	}
}

// OwnList returns a page of the caller's submissions. Any submitted_by
// query parameter is replaced with the caller's identity.
func (h *Handler) OwnList(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())
	filters.SubmittedBy = &identity

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// OwnFind returns one of the caller's submissions.
func (h *Handler) OwnFind(w http.ResponseWriter, r *http.Request) {
	s, ok := h.owned(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// OwnComments returns the review thread of one of the caller's submissions.
func (h *Handler) OwnComments(w http.ResponseWriter, r *http.Request) {
	s, ok := h.owned(w, r)
	if !ok {
		return
	}
	h.respondComments(w, r, s.ID)
}

// OwnAddComment posts a citizen reply on one of the caller's submissions.
func (h *Handler) OwnAddComment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.owned(w, r)
	if !ok {
		return
	}
	h.addComment(w, r, s.ID, *s.SubmittedBy, RoleCitizen)
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok || claims.Identity() == "" {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return "", false
	}
	return claims.Identity(), true
}

func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (*Submission, bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return nil, false
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	if s.SubmittedBy == nil || *s.SubmittedBy != identity {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return nil, false
	}
	return s, true
}
