package workflows

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/bomflow/pkg/pagination"
)

// System defines the public contract for workflow domain operations.
type System interface {
	Store

	Handler(maxUploadSize int64, runner *Runner) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Workflow], error)

	Find(ctx context.Context, id uuid.UUID) (*Workflow, error)
	Create(ctx context.Context, cmd CreateCommand) (*Workflow, error)
	Results(ctx context.Context, id uuid.UUID) (*Results, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store is the persistence contract the pipeline runner drives workflow
// state through. Implementations must keep progress monotone and guard
// the created -> parsing transition so a workflow processes at most once.
type Store interface {
	// Begin transitions a workflow from created to parsing. Returns
	// ErrAlreadyStarted if the workflow is in any other state.
	Begin(ctx context.Context, id uuid.UUID) error

	// Advance moves a workflow to the given stage, raising progress to the
	// stage checkpoint. Progress never decreases.
	Advance(ctx context.Context, id uuid.UUID, status Status) error

	// Fail transitions a workflow to the terminal error state with a
	// human-readable message. Progress is preserved for diagnostics.
	Fail(ctx context.Context, id uuid.UUID, message string) error

	// Complete persists the result set and transitions the workflow to
	// completed with progress 100 and has_results set, atomically.
	Complete(ctx context.Context, id uuid.UUID, results *Results) error
}
