package submissions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/query"
	"github.com/JaimeStill/intake/pkg/repository"
	"github.com/JaimeStill/intake/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a submission repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "submissions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "form_type", "department", "filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	id := uuid.New()

	fields, err := json.Marshal(cmd.Result.ExtractedFields)
	if err != nil {
		return nil, fmt.Errorf("encode extracted fields: %w", err)
	}
	workflow, err := json.Marshal(workflowOrEmpty(cmd.Result.AgentWorkflow))
	if err != nil {
		return nil, fmt.Errorf("encode agent workflow: %w", err)
	}

	var (
		key         *string
		filename    *string
		contentType *string
		size        *int64
		inputText   *string
		submittedBy *string
	)

	if cmd.SubmittedBy != "" {
		submittedBy = &cmd.SubmittedBy
	}

	if cmd.Modality == pipeline.ModalityImage {
		name := sanitizeFilename(cmd.Filename)
		k := buildStorageKey(id, name)
		n := int64(len(cmd.Image))
		key, filename, contentType, size = &k, &cmd.Filename, &cmd.ContentType, &n

		if err := r.storage.Upload(ctx, k, bytes.NewReader(cmd.Image), cmd.ContentType); err != nil {
			return nil, fmt.Errorf("upload submission scan: %w", err)
		}
	} else {
		inputText = &cmd.InputText
	}

	insert := `
		INSERT INTO submissions(
			id, modality, filename, content_type, size_bytes, page_count, storage_key,
			input_text, ocr_text, form_type, department, extracted_fields, agent_workflow,
			status, processing_ms, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + returningColumns

	insertArgs := []any{
		id,
		cmd.Modality,
		filename,
		contentType,
		size,
		cmd.PageCount,
		key,
		inputText,
		cmd.Result.OCRText,
		cmd.Result.FormType,
		cmd.Result.SuggestedRoute,
		string(fields),
		string(workflow),
		StatusPending,
		cmd.ProcessingMS,
		submittedBy,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		s, err := repository.QueryOne(ctx, tx, insert, insertArgs, scanSubmission)
		if err != nil {
			return s, err
		}
		if err := recordStatus(ctx, tx, s.ID, s.Status, nil, submitter(cmd.SubmittedBy)); err != nil {
			return s, err
		}
		return s, nil
	})

	if err != nil {
		if key != nil {
			r.discardBlob(ctx, *key, "compensating blob delete failed")
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"submission created",
		"id", s.ID,
		"modality", s.Modality,
		"form_type", s.FormType,
		"department", s.Department,
	)
	return &s, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id uuid.UUID, cmd UpdateStatusCommand) (*Submission, error) {
	if _, err := ParseStatus(string(cmd.Status)); err != nil {
		return nil, err
	}

	update := `
		UPDATE submissions
		SET status = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + returningColumns

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Submission, error) {
		s, err := repository.QueryOne(ctx, tx, update, []any{id, cmd.Status, cmd.Notes}, scanSubmission)
		if err != nil {
			return s, err
		}
		if err := recordStatus(ctx, tx, id, cmd.Status, cmd.Notes, submitter(cmd.UpdatedBy)); err != nil {
			return s, err
		}
		return s, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("submission status updated", "id", id, "status", s.Status, "updated_by", submitter(cmd.UpdatedBy))
	return &s, nil
}

func (r *repo) History(ctx context.Context, id uuid.UUID) ([]StatusChange, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	q := `
		SELECT id, submission_id, status, notes, updated_by, created_at
		FROM submission_status_history
		WHERE submission_id = $1
		ORDER BY created_at, id`

	changes, err := repository.QueryMany(ctx, r.db, q, []any{id}, scanStatusChange)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	return changes, nil
}

func (r *repo) DepartmentStats(ctx context.Context) ([]DepartmentStat, error) {
	q := `
		SELECT
			department,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM submissions
		GROUP BY department
		ORDER BY COUNT(*) DESC, department`

	stats, err := repository.QueryMany(ctx, r.db, q, nil, scanDepartmentStat)
	if err != nil {
		return nil, fmt.Errorf("query department stats: %w", err)
	}
	return stats, nil
}

func (r *repo) OpenScan(ctx context.Context, id uuid.UUID) (*Scan, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.StorageKey == nil {
		return nil, ErrNoScan
	}

	body, err := r.storage.Download(ctx, *s.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download submission scan: %w", err)
	}

	scan := &Scan{
		Body:        body,
		Filename:    path.Base(*s.StorageKey),
		ContentType: "application/octet-stream",
	}
	if s.Filename != nil {
		scan.Filename = *s.Filename
	}
	if s.ContentType != nil && *s.ContentType != "" {
		scan.ContentType = *s.ContentType
	}
	return scan, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM submissions WHERE id = $1",
			id,
		)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if s.StorageKey != nil {
		r.discardBlob(ctx, *s.StorageKey, "blob delete failed after DB delete")
	}

	r.logger.Info("submission deleted", "id", id)
	return nil
}

func (r *repo) Comments(ctx context.Context, id uuid.UUID) ([]Comment, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	q := `
		SELECT id, submission_id, author, author_role, body, created_at
		FROM submission_comments
		WHERE submission_id = $1
		ORDER BY created_at, id`

	comments, err := repository.QueryMany(ctx, r.db, q, []any{id}, scanComment)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	return comments, nil
}

func (r *repo) AddComment(ctx context.Context, id uuid.UUID, cmd AddCommentCommand) (*Comment, error) {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if cmd.Role != RoleReviewer && cmd.Role != RoleCitizen {
		return nil, fmt.Errorf("unknown comment role %q", cmd.Role)
	}
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO submission_comments(id, submission_id, author, author_role, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, submission_id, author, author_role, body, created_at`

	args := []any{uuid.New(), id, submitter(cmd.Author), cmd.Role, text}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Comment, error) {
		return repository.QueryOne(ctx, tx, insert, args, scanComment)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("comment added", "id", id, "role", c.Role, "author", c.Author)
	return &c, nil
}

// discardBlob removes a stored scan after the database side of an
// operation has already settled. It runs detached from ctx cancellation so
// a client disconnect cannot leave the blob orphaned.
func (r *repo) discardBlob(ctx context.Context, key, msg string) {
	if err := r.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		r.logger.Warn(msg, "key", key, "error", err)
	}
}

func recordStatus(
	ctx context.Context,
	e repository.Executor,
	id uuid.UUID,
	status Status,
	notes *string,
	by string,
) error {
	return repository.ExecExpectOne(
		ctx, e,
		`INSERT INTO submission_status_history(id, submission_id, status, notes, updated_by)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), id, status, notes, by,
	)
}

func submitter(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

func workflowOrEmpty(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("submissions/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" || name == "" {
		name = "scan"
	}
	return url.PathEscape(name)
}
