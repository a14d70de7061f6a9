package submissions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/intake/pkg/handlers"
	"github.com/JaimeStill/intake/pkg/repository"
	"github.com/JaimeStill/intake/pkg/storage"
)

// Domain errors for submission operations.
var (
	ErrNotFound      = errors.New("submission not found")
	ErrDuplicate     = errors.New("submission already exists")
	ErrInvalidID     = errors.New("invalid submission id")
	ErrInvalidStatus = errors.New("invalid submission status")
	ErrNoScan        = errors.New("submission has no stored scan")
	ErrEmptyComment  = errors.New("comment text is required")
)

// MapHTTPStatus maps submission domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoScan):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrEmptyComment),
		errors.Is(err, handlers.ErrInvalidBody),
		errors.Is(err, repository.ErrConstraint):
		return http.StatusBadRequest
	default:
		return storage.MapHTTPStatus(err)
	}
}
