package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event describes a stage boundary within a run. Elapsed and Err are set
// only on completion and failure events.
type Event struct {
	RunID   uuid.UUID
	Stage   string
	Agent   string
	Elapsed time.Duration
	Err     error
}

// Observer receives stage boundary events. Implementations must be safe for
// concurrent use since one Executor serves many runs.
type Observer interface {
	StageStarted(ctx context.Context, e Event)
	StageCompleted(ctx context.Context, e Event)
	StageFailed(ctx context.Context, e Event)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) StageStarted(context.Context, Event)   {}
func (NopObserver) StageCompleted(context.Context, Event) {}
func (NopObserver) StageFailed(context.Context, Event)    {}

// LogObserver writes stage events as structured log records.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns an Observer logging through logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{Logger: logger.With("system", "pipeline")}
}

func (o *LogObserver) StageStarted(ctx context.Context, e Event) {
	o.Logger.DebugContext(
		ctx, "stage started",
		"run_id", e.RunID,
		"stage", e.Stage,
		"agent", e.Agent,
	)
}

func (o *LogObserver) StageCompleted(ctx context.Context, e Event) {
	o.Logger.InfoContext(
		ctx, "stage completed",
		"run_id", e.RunID,
		"stage", e.Stage,
		"agent", e.Agent,
		"elapsed", e.Elapsed,
	)
}

func (o *LogObserver) StageFailed(ctx context.Context, e Event) {
	o.Logger.ErrorContext(
		ctx, "stage failed",
		"run_id", e.RunID,
		"stage", e.Stage,
		"agent", e.Agent,
		"elapsed", e.Elapsed,
		"error", e.Err,
	)
}
