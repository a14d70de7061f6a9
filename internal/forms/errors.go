package forms

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/pkg/handlers"
)

// StatusClientClosedRequest reports a run abandoned by the caller.
const StatusClientClosedRequest = 499

// Domain errors for form processing requests.
var (
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrMissingFile  = errors.New("multipart field \"file\" is required")
)

// MapHTTPStatus maps form processing errors to HTTP status codes. Stage
// failures are upstream model failures and map to 502 unless the run was
// cancelled.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, pipeline.ErrStageFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
