package knowledge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Gate applies batch approve/reject decisions. Each item id is processed
// independently: unknown or already-decided ids are skipped without
// aborting the batch, and the returned count covers only items actually
// decided by this call.
type Gate struct {
	store  Store
	logger *slog.Logger
}

// NewGate creates an approval gate over the given store.
func NewGate(store Store, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		logger: logger.With("system", "approval-gate"),
	}
}

// Approve decides the given pending items as approved, registering one
// knowledge base item per success. Returns the number approved.
func (g *Gate) Approve(ctx context.Context, workflowID uuid.UUID, itemIDs []uuid.UUID) (int, error) {
	return g.decide(ctx, workflowID, itemIDs, g.store.ApprovePending)
}

// Reject decides the given pending items as rejected. Returns the number
// rejected. No knowledge base items are created.
func (g *Gate) Reject(ctx context.Context, workflowID uuid.UUID, itemIDs []uuid.UUID) (int, error) {
	return g.decide(ctx, workflowID, itemIDs, g.store.RejectPending)
}

func (g *Gate) decide(
	ctx context.Context,
	workflowID uuid.UUID,
	itemIDs []uuid.UUID,
	fn func(ctx context.Context, workflowID, itemID uuid.UUID) error,
) (int, error) {
	count := 0
	for _, itemID := range itemIDs {
		err := fn(ctx, workflowID, itemID)
		if err == nil {
			count++
			continue
		}

		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyDecided) {
			g.logger.Info(
				"pending item skipped",
				"workflow", workflowID,
				"item", itemID,
				"reason", err,
			)
			continue
		}

		return count, err
	}
	return count, nil
}
