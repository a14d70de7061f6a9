package stages

import "errors"

var (
	ErrMalformedResponse = errors.New("malformed model response")
	ErrRenderFailed      = errors.New("render failed")
)
