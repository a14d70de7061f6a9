package api

import (
	"fmt"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/internal/forms"
	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/stages"
	"github.com/JaimeStill/intake/internal/submissions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Pipeline    *pipeline.Executor
	Submissions submissions.System
	Forms       *forms.Handler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	executor, err := pipeline.New(
		stages.New(runtime.Inference, &cfg.Stages, runtime.Logger),
		pipeline.WithObserver(pipeline.NewLogObserver(runtime.Logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	subs := submissions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Pipeline:    executor,
		Submissions: subs,
		Forms:       forms.NewHandler(executor, subs, runtime.Logger, runtime.MaxUploadSize),
	}, nil
}
