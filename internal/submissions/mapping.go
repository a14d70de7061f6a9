package submissions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "submissions", "s").
	Project("id", "id").
	Project("modality", "modality").
	Project("filename", "filename").
	Project("content_type", "content_type").
	Project("size_bytes", "size_bytes").
	Project("page_count", "page_count").
	Project("storage_key", "storage_key").
	Project("input_text", "input_text").
	Project("ocr_text", "ocr_text").
	Project("form_type", "form_type").
	Project("department", "department").
	Project("extracted_fields", "extracted_fields").
	Project("agent_workflow", "agent_workflow").
	Project("status", "status").
	Project("notes", "notes").
	Project("processing_ms", "processing_ms").
	Project("submitted_by", "submitted_by").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at")

const returningColumns = `id, modality, filename, content_type, size_bytes, page_count, storage_key,
	input_text, ocr_text, form_type, department, extracted_fields, agent_workflow,
	status, notes, processing_ms, submitted_by, created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "created_at",
	Descending: true,
}

// Filters narrows submission queries. Nil fields are ignored. Status,
// Modality, FormType, and SubmittedBy match exactly; Department matches
// case-insensitively as a substring.
type Filters struct {
	Status      *string    `json:"status,omitempty"`
	FormType    *string    `json:"form_type,omitempty"`
	Department  *string    `json:"department,omitempty"`
	Modality    *string    `json:"modality,omitempty"`
	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`
	SubmittedBy *string    `json:"submitted_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("status", f.Status).
		WhereEquals("form_type", f.FormType).
		WhereContains("department", f.Department).
		WhereEquals("modality", f.Modality).
		WhereSince("created_at", f.CreatedFrom).
		WhereBefore("created_at", f.CreatedTo).
		WhereEquals("submitted_by", f.SubmittedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Dates use RFC 3339 or YYYY-MM-DD; unparsable dates are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	str := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}

	f.Status = str("status")
	f.FormType = str("form_type")
	f.Department = str("department")
	f.Modality = str("modality")
	f.CreatedFrom = parseDate(values.Get("created_from"))
	f.CreatedTo = parseDate(values.Get("created_to"))
	f.SubmittedBy = str("submitted_by")

	return f
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub      Submission
		fields   []byte
		workflow []byte
	)

	err := s.Scan(
		&sub.ID,
		&sub.Modality,
		&sub.Filename,
		&sub.ContentType,
		&sub.SizeBytes,
		&sub.PageCount,
		&sub.StorageKey,
		&sub.InputText,
		&sub.OCRText,
		&sub.FormType,
		&sub.Department,
		&fields,
		&workflow,
		&sub.Status,
		&sub.Notes,
		&sub.ProcessingMS,
		&sub.SubmittedBy,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return sub, err
	}

	if err := json.Unmarshal(fields, &sub.ExtractedFields); err != nil {
		return sub, fmt.Errorf("decode extracted_fields: %w", err)
	}
	if err := json.Unmarshal(workflow, &sub.AgentWorkflow); err != nil {
		return sub, fmt.Errorf("decode agent_workflow: %w", err)
	}

	return sub, nil
}

func scanStatusChange(s repository.Scanner) (StatusChange, error) {
	var c StatusChange
	err := s.Scan(
		&c.ID,
		&c.SubmissionID,
		&c.Status,
		&c.Notes,
		&c.UpdatedBy,
		&c.CreatedAt,
	)
	return c, err
}

func scanComment(s repository.Scanner) (Comment, error) {
	var c Comment
	err := s.Scan(
		&c.ID,
		&c.SubmissionID,
		&c.Author,
		&c.Role,
		&c.Text,
		&c.CreatedAt,
	)
	return c, err
}

func scanDepartmentStat(s repository.Scanner) (DepartmentStat, error) {
	var d DepartmentStat
	err := s.Scan(
		&d.Department,
		&d.Total,
		&d.Pending,
		&d.Processing,
		&d.Completed,
		&d.Rejected,
	)
	return d, err
}
