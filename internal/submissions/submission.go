// Package submissions persists processed forms, their source scans, and
// the review status history that clerks maintain afterwards.
package submissions

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/pipeline"
)

// Status is the review state of a submission.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

var statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusRejected}

// ParseStatus validates s as a known status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}

// UnmarshalJSON rejects unknown status values.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Submission is a processed form and its review state. Image submissions
// carry the blob reference of the original scan; text submissions carry
// the submitted text.
type Submission struct {
	ID              uuid.UUID         `json:"id"`
	Modality        pipeline.Modality `json:"modality"`
	Filename        *string           `json:"filename,omitempty"`
	ContentType     *string           `json:"content_type,omitempty"`
	SizeBytes       *int64            `json:"size_bytes,omitempty"`
	PageCount       *int              `json:"page_count,omitempty"`
	StorageKey      *string           `json:"storage_key,omitempty"`
	InputText       *string           `json:"input_text,omitempty"`
	OCRText         string            `json:"ocr_text"`
	FormType        string            `json:"form_type"`
	Department      string            `json:"department"`
	ExtractedFields pipeline.Fields   `json:"extracted_fields"`
	AgentWorkflow   []string          `json:"agent_workflow"`
	Status          Status            `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	ProcessingMS    int64             `json:"processing_ms"`
	SubmittedBy     *string           `json:"submitted_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CreateCommand records a completed pipeline run. Image is nil for text
// submissions. SubmittedBy is empty for anonymous callers.
type CreateCommand struct {
	Image        []byte
	Filename     string
	ContentType  string
	PageCount    *int
	InputText    string
	Modality     pipeline.Modality
	Result       pipeline.ProcessedForm
	ProcessingMS int64
	SubmittedBy  string
}

// UpdateStatusCommand moves a submission to a new review status.
type UpdateStatusCommand struct {
	Status    Status  `json:"status"`
	Notes     *string `json:"notes,omitempty"`
	UpdatedBy string  `json:"-"`
}

// StatusChange is one entry of a submission's status history.
type StatusChange struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Status       Status    `json:"status"`
	Notes        *string   `json:"notes,omitempty"`
	UpdatedBy    string    `json:"updated_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommentRole distinguishes reviewer comments from citizen replies.
type CommentRole string

const (
	RoleReviewer CommentRole = "reviewer"
	RoleCitizen  CommentRole = "citizen"
)

// Comment is one message on a submission's review thread.
type Comment struct {
	ID           uuid.UUID   `json:"id"`
	SubmissionID uuid.UUID   `json:"submission_id"`
	Author       string      `json:"user_name"`
	Role         CommentRole `json:"user_role"`
	Text         string      `json:"text"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AddCommentCommand appends a comment to a submission. Author and Role
// come from the caller's identity, never from the request body.
type AddCommentCommand struct {
	Text   string      `json:"comment"`
	Author string      `json:"-"`
	Role   CommentRole `json:"-"`
}

// DepartmentStat counts submissions routed to one department by status.
type DepartmentStat struct {
	Department string `json:"department"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Completed  int    `json:"completed"`
	Rejected   int    `json:"rejected"`
}

// Scan is a stored source scan opened for reading.
type Scan struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}
