package api

import (
	"github.com/example/bomflow/internal/config"
	"github.com/example/bomflow/internal/knowledge"
	"github.com/example/bomflow/internal/workflows"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Workflows workflows.System
	Knowledge knowledge.System
	Runner    *workflows.Runner
}

// NewDomain creates all domain systems from the API runtime. The pipeline
// runner is bound to the lifecycle context so in-flight runs stop with the
// process rather than with the triggering request.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	knowledgeSystem := knowledge.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination.DefaultPageSize,
		runtime.Pagination.MaxPageSize,
	)

	workflowsSystem := workflows.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	runner := workflows.NewRunner(
		runtime.Lifecycle.Context(),
		workflowsSystem,
		runtime.Extractor,
		knowledgeSystem,
		runtime.Logger,
		cfg.Workflows.MaxConcurrent,
	)

	return &Domain{
		Workflows: workflowsSystem,
		Knowledge: knowledgeSystem,
		Runner:    runner,
	}
}
