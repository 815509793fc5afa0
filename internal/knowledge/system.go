package knowledge

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/example/bomflow/internal/matching"
)

// System defines the public contract for knowledge base domain operations.
type System interface {
	Store

	Handler() *Handler

	// List returns items matching the search term (substring over material
	// name and part number) up to limit, plus aggregate stats.
	List(ctx context.Context, search string, limit int) (*Listing, error)

	// Pending returns pending approvals, optionally scoped to one workflow.
	Pending(ctx context.Context, workflowID *uuid.UUID) ([]PendingApproval, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// MatchCandidates returns all registered items as matching candidates.
	MatchCandidates(ctx context.Context) ([]matching.Candidate, error)

	// RenderContext renders recent registered items as plain text context
	// for extraction prompts.
	RenderContext(ctx context.Context) (string, error)

	// CreatePending records one extracted-item snapshot for human decision.
	CreatePending(ctx context.Context, workflowID uuid.UUID, parsed json.RawMessage) error
}

// Store is the persistence contract the approval gate drives decisions
// through. Both transitions are atomic check-and-sets on the pending
// status: concurrent calls for the same item yield exactly one winner.
type Store interface {
	// ApprovePending flips one pending approval to approved and inserts
	// the corresponding KnowledgeBaseItem in the same transaction.
	// Returns ErrNotFound for unknown ids and ErrAlreadyDecided when the
	// item was decided previously.
	ApprovePending(ctx context.Context, workflowID, itemID uuid.UUID) error

	// RejectPending flips one pending approval to rejected. It never
	// creates a KnowledgeBaseItem. Error semantics match ApprovePending.
	RejectPending(ctx context.Context, workflowID, itemID uuid.UUID) error
}
