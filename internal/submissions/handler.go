package submissions

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/routes"
)

// Handler provides HTTP endpoints for reviewing submissions.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "submissions"),
		pagination: pagination,
	}
}

// Routes returns the review endpoints. Callers attach authorization
// middleware to the returned group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/submissions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List},
					{Method: "POST", Pattern: "/search", Handler: h.Search},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find},
					{Method: "GET", Pattern: "/{id}/history", Handler: h.History},
					{Method: "PUT", Pattern: "/{id}/status", Handler: h.UpdateStatus},
					{Method: "GET", Pattern: "/{id}/scan", Handler: h.Scan},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
					{Method: "GET", Pattern: "/{id}/comments", Handler: h.Comments},
					{Method: "POST", Pattern: "/{id}/comments", Handler: h.AddComment},
				},
			},
			{
				Prefix: "/departments",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/stats", Handler: h.DepartmentStats},
				},
			},
		},
	}
}

// List returns a page of submissions filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts pagination and filter criteria as a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := handlers.DecodeJSON(r.Body, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns one submission.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// History returns the status changes of a submission, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	changes, err := h.sys.History(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, changes)
}

// UpdateStatus records a review decision. The caller identity comes from
// the verified bearer token when auth is enabled.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd UpdateStatusCommand
	if err := handlers.DecodeJSON(r.Body, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if cmd.Status == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	if claims, ok := auth.FromContext(r.Context()); ok {
		cmd.UpdatedBy = claims.Identity()
	}

	s, err := h.sys.UpdateStatus(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Scan streams the stored source scan of an image submission.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	scan, err := h.sys.OpenScan(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer scan.Body.Close()

	w.Header().Set("Content-Type", scan.ContentType)
	w.Header().Set(
		"Content-Disposition",
		mime.FormatMediaType("inline", map[string]string{"filename": scan.Filename}),
	)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, scan.Body); err != nil {
		h.logger.Warn("scan stream interrupted", "id", id, "error", err)
	}
}

// Delete removes a submission and its stored scan.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Comments returns the review thread of a submission, oldest first.
func (h *Handler) Comments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respondComments(w, r, id)
}

// AddComment posts a reviewer comment.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	author := ""
	if claims, ok := auth.FromContext(r.Context()); ok {
		author = claims.Identity()
	}
	h.addComment(w, r, id, author, RoleReviewer)
}

// DepartmentStats returns submission counts per routed department.
func (h *Handler) DepartmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.DepartmentStats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

type commentsResponse struct {
	Comments []Comment `json:"comments"`
}

func (h *Handler) respondComments(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	comments, err := h.sys.Comments(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if comments == nil {
		comments = []Comment{}
	}

	handlers.RespondJSON(w, http.StatusOK, commentsResponse{Comments: comments})
}

func (h *Handler) addComment(
	w http.ResponseWriter,
	r *http.Request,
	id uuid.UUID,
	author string,
	role CommentRole,
) {
	var cmd AddCommentCommand
	if err := handlers.DecodeJSON(r.Body, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(cmd.Text) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyComment)
		return
	}
	cmd.Author, cmd.Role = author, role

	if _, err := h.sys.AddComment(r.Context(), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	comments, err := h.sys.Comments(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if comments == nil {
		comments = []Comment{}
	}

	handlers.RespondJSON(w, http.StatusCreated, commentsResponse{Comments: comments})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
