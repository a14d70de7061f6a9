package forms

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/submissions"
	"github.com/JaimeStill/intake/pkg/auth"
	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/routes"
)

// Handler runs submitted forms through the pipeline.
type Handler struct {
	proc          Processor
	recorder      Recorder
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler. A nil recorder disables persistence.
func NewHandler(proc Processor, recorder Recorder, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		proc:          proc,
		recorder:      recorder,
		logger:        logger.With("handler", "forms"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for form processing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/forms",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/process", Handler: h.ProcessScan},
			{Method: "POST", Pattern: "/text", Handler: h.ProcessText},
		},
	}
}

// ProcessScan runs an uploaded scan (multipart field "file") through the
// pipeline. PDF page counts are recorded with pdfcpu.
func (h *Handler) ProcessScan(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadSize {
		h.fail(w, ErrFileTooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.fail(w, ErrFileTooLarge)
			return
		}
		h.fail(w, errors.Join(ErrMissingFile, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, ErrMissingFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, err)
		return
	}

	img := pipeline.Image{
		Data:        data,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
	}

	h.process(w, r, img, "", submissions.CreateCommand{
		Image:       data,
		Filename:    header.Filename,
		ContentType: img.ContentType,
		PageCount:   pdfPageCount(h.logger, data, img.ContentType),
	})
}

// ProcessText runs raw form text (JSON body {"text": "..."}) through the
// pipeline.
func (h *Handler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := handlers.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.process(w, r, pipeline.Image{}, req.Text, submissions.CreateCommand{
		InputText: req.Text,
	})
}

func (h *Handler) process(
	w http.ResponseWriter,
	r *http.Request,
	img pipeline.Image,
	text string,
	cmd submissions.CreateCommand,
) {
	ctx := r.Context()
	start := time.Now()

	form, err := h.proc.Process(ctx, img, text)
	if err != nil {
		h.fail(w, err)
		return
	}
	elapsed := time.Since(start).Milliseconds()

	var sub *submissions.Submission
	if h.recorder != nil {
		cmd.Modality = pipeline.ModalityText
		if len(img.Data) > 0 {
			cmd.Modality = pipeline.ModalityImage
		}
		cmd.Result = *form
		cmd.ProcessingMS = elapsed
		if claims, ok := auth.FromContext(ctx); ok {
			cmd.SubmittedBy = claims.Identity()
		}

		sub, err = h.recorder.Create(ctx, cmd)
		if err != nil {
			h.fail(w, err)
			return
		}
	}

	h.logger.Info(
		"form processed",
		"form_type", form.FormType,
		"department", form.SuggestedRoute,
		"fields", form.ExtractedFields.Len(),
		"duration_ms", elapsed,
	)

	handlers.RespondJSON(w, http.StatusOK, newResponse(form, sub, elapsed))
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if stage, ok := pipeline.FailedStage(err); ok {
		h.logger.Warn("pipeline stage failed", "stage", stage, "error", err)
		handlers.RespondJSON(w, status, map[string]string{
			"error": err.Error(),
			"stage": stage,
		})
		return
	}
	handlers.RespondError(w, h.logger, status, err)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func pdfPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to read PDF page count", "error", err)
		return nil
	}
	return &count
}
