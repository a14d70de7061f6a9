package inference

import (
	"errors"
	"fmt"
)

// Sentinel errors for inference calls.
var (
	ErrMissingConfig    = errors.New("inference not configured")
	ErrEmptyResponse    = errors.New("empty model response")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrTransport        = errors.New("inference transport failed")
)

// StatusError reports a non-success HTTP response from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Code, truncate(e.Body, 500))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
