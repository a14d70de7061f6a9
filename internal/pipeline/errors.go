package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	ErrInvalidInput = errors.New("invalid form input")
	ErrStageFailed  = errors.New("stage failed")
	ErrMissingStage = errors.New("stage not configured")
)

// InvalidInputError reports a payload that carries neither an image nor text.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// StageError identifies the stage that terminated a run. Err is the
// underlying failure (transport, malformed response, missing configuration,
// or context cancellation) and is returned unmodified by Unwrap.
type StageError struct {
	Stage string
	Agent string
	Cause string
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", ErrStageFailed, e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s %q: %s: %v", ErrStageFailed, e.Stage, e.Cause, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	return target == ErrStageFailed
}

// FailedStage returns the stage identity carried by err, if any.
func FailedStage(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func newStageError(stage, agent string, err error) *StageError {
	return &StageError{
		Stage: stage,
		Agent: agent,
		Cause: causeOf(stage),
		Err:   err,
	}
}

func causeOf(stage string) string {
	switch stage {
	case StageTextExtraction:
		return "extract text from image"
	case StageEntityExtraction:
		return "extract entities from text"
	case StageClassification:
		return "classify form type"
	case StageRouting:
		return "suggest routing department"
	default:
		return "run stage"
	}
}

func missingStage(stage string) error {
	return fmt.Errorf("%w: %s", ErrMissingStage, stage)
}
