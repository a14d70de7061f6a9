package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Executor drives the fixed stage sequence. It holds no per-run state and is
// safe for concurrent use by multiple runs.
type Executor struct {
	stages   Stages
	observer Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver installs an Observer notified at every stage boundary.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// New creates an Executor over the given stages. Every stage is required.
func New(stages Stages, opts ...Option) (*Executor, error) {
	if err := stages.validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		stages:   stages,
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Process resolves the caller payload and runs it to completion. It is the
// single entry point for callers: an image takes precedence over text, and a
// payload with neither fails with ErrInvalidInput.
func (e *Executor) Process(ctx context.Context, img Image, text string) (*ProcessedForm, error) {
	in, err := Select(img, text)
	if err != nil {
		return nil, err
	}

	run, err := e.Execute(ctx, in)
	if err != nil {
		return nil, err
	}

	form := Assemble(run)
	return &form, nil
}

// Execute runs every stage against in, strictly in order. The first failing
// stage terminates the run; later stages are not invoked.
func (e *Executor) Execute(ctx context.Context, in FormInput) (*Run, error) {
	run := &Run{
		ID:    uuid.New(),
		Input: in,
		Trace: NewTrace(AgentOrchestrator),
	}

	switch in.Modality() {
	case ModalityImage:
		x := e.stages.Extractor
		text, err := invoke(ctx, e, run, StageTextExtraction, agentName(x, AgentOCR),
			func(ctx context.Context) (string, error) {
				return x.ExtractText(ctx, in.Image())
			})
		if err != nil {
			return nil, err
		}
		run.Text = text
	case ModalityText:
		run.Text = in.Text()
	default:
		return nil, &InvalidInputError{Reason: fmt.Sprintf("unknown modality %q", in.Modality())}
	}

	ner := e.stages.Entities
	entities, err := invoke(ctx, e, run, StageEntityExtraction, agentName(ner, AgentNER),
		func(ctx context.Context) (Fields, error) {
			return ner.ExtractEntities(ctx, run.Text)
		})
	if err != nil {
		return nil, err
	}
	run.Entities = entities

	cls := e.stages.Classifier
	formType, err := invoke(ctx, e, run, StageClassification, agentName(cls, AgentClassifier),
		func(ctx context.Context) (string, error) {
			return cls.Classify(ctx, run.Text)
		})
	if err != nil {
		return nil, err
	}
	run.FormType = formType

	rt := e.stages.Router
	route, err := invoke(ctx, e, run, StageRouting, agentName(rt, AgentRouter),
		func(ctx context.Context) (string, error) {
			return rt.Route(ctx, run.Text, run.FormType)
		})
	if err != nil {
		return nil, err
	}
	run.Route = route

	return run, nil
}

// invoke calls one stage, reports its boundaries to the observer, and appends
// the agent to the trace only when the call succeeds.
func invoke[T any](
	ctx context.Context,
	e *Executor,
	run *Run,
	stage, agent string,
	call func(context.Context) (T, error),
) (T, error) {
	var zero T
	event := Event{RunID: run.ID, Stage: stage, Agent: agent}

	if err := ctx.Err(); err != nil {
		event.Err = err
		e.observer.StageFailed(ctx, event)
		return zero, newStageError(stage, agent, err)
	}

	e.observer.StageStarted(ctx, event)
	start := time.Now()

	result, err := call(ctx)
	event.Elapsed = time.Since(start)

	if err != nil {
		event.Err = err
		e.observer.StageFailed(ctx, event)
		return zero, newStageError(stage, agent, err)
	}

	e.observer.StageCompleted(ctx, event)
	run.Trace.Append(agent)
	return result, nil
}

func agentName(stage interface{ Name() string }, fallback string) string {
	if name := stage.Name(); name != "" {
		return name
	}
	return fallback
}
