package submissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/intake/pkg/pagination"
)

// System defines the public contract for submission operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Submission], error)

	Find(ctx context.Context, id uuid.UUID) (*Submission, error)
	Create(ctx context.Context, cmd CreateCommand) (*Submission, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, cmd UpdateStatusCommand) (*Submission, error)
	History(ctx context.Context, id uuid.UUID) ([]StatusChange, error)
	DepartmentStats(ctx context.Context) ([]DepartmentStat, error)
	OpenScan(ctx context.Context, id uuid.UUID) (*Scan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Comments(ctx context.Context, id uuid.UUID) ([]Comment, error)
	AddComment(ctx context.Context, id uuid.UUID, cmd AddCommentCommand) (*Comment, error)
}
