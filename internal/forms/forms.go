// Package forms exposes the processing pipeline over HTTP: callers submit
// a scanned form or raw text and receive the structured record, which is
// also recorded for clerk review.
package forms

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/submissions"
)

// RouteMethod labels how the department on a response was chosen.
const RouteMethod = "ai_suggested"

// RunCompleted is the Status of every successful response. It describes the
// pipeline run, not the review state of the recorded submission.
const RunCompleted = "completed"

// Processor runs a payload through the pipeline.
type Processor interface {
	Process(ctx context.Context, img pipeline.Image, text string) (*pipeline.ProcessedForm, error)
}

// Recorder persists completed runs.
type Recorder interface {
	Create(ctx context.Context, cmd submissions.CreateCommand) (*submissions.Submission, error)
}

// TextRequest is the body of a text submission.
type TextRequest struct {
	Text string `json:"text"`
}

// Department is the suggested handling department of a form.
type Department struct {
	ID     string `json:"department_id"`
	Name   string `json:"department_name"`
	Method string `json:"method"`
}

// Response is returned for every successful run. Status reports that the
// run finished; ReviewStatus carries the review state of the recorded
// submission, which starts out pending.
type Response struct {
	pipeline.ProcessedForm
	SubmissionID *uuid.UUID          `json:"submission_id,omitempty"`
	Department   Department          `json:"department"`
	Status       string              `json:"status"`
	ReviewStatus *submissions.Status `json:"review_status,omitempty"`
	ProcessingMS int64               `json:"processing_ms"`
}

func newResponse(form *pipeline.ProcessedForm, sub *submissions.Submission, elapsedMS int64) Response {
	resp := Response{
		ProcessedForm: *form,
		Department: Department{
			ID:     departmentID(form.SuggestedRoute),
			Name:   form.SuggestedRoute,
			Method: RouteMethod,
		},
		Status:       RunCompleted,
		ProcessingMS: elapsedMS,
	}
	if sub != nil {
		resp.SubmissionID = &sub.ID
		resp.ReviewStatus = &sub.Status
	}
	return resp
}

// departmentID derives a stable slug from a department name.
func departmentID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
