package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/bomflow/internal/matching"
	"github.com/example/bomflow/pkg/query"
	"github.com/example/bomflow/pkg/repository"
)

// contextItemLimit caps how many registered items are rendered into
// extraction prompt context.
const contextItemLimit = 50

type repo struct {
	db           *sql.DB
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// New creates a knowledge base repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, defaultLimit, maxLimit int) System {
	return &repo{
		db:           db,
		logger:       logger.With("system", "knowledge"),
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, NewGate(r, r.logger), r.logger)
}

func (r *repo) List(ctx context.Context, search string, limit int) (*Listing, error) {
	if limit < 1 {
		limit = r.defaultLimit
	}
	if limit > r.maxLimit {
		limit = r.maxLimit
	}

	qb := query.NewBuilder(projection, defaultSort)
	if search != "" {
		qb.WhereSearch(&search, "MaterialName", "PartNumber")
	}
	pageSQL, pageArgs := qb.BuildPage(1, limit)

	var (
		items []KnowledgeBaseItem
		stats *Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = repository.QueryMany(gctx, r.db, pageSQL, pageArgs, scanItem)
		if err != nil {
			return fmt.Errorf("query knowledge base: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = r.stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Listing{Items: items, Stats: *stats}, nil
}

func (r *repo) stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(
		ctx,
		`SELECT
			count(*),
			count(DISTINCT workflow_id) FILTER (WHERE workflow_id IS NOT NULL),
			count(*) FILTER (WHERE confidence_level = 'high')
		 FROM knowledge_base`,
	).Scan(&s.TotalItems, &s.TotalWorkflows, &s.TotalMatches)
	if err != nil {
		return nil, fmt.Errorf("knowledge base stats: %w", err)
	}

	if s.TotalItems > 0 {
		s.MatchRate = 100 * float64(s.TotalMatches) / float64(s.TotalItems)
	}
	return &s, nil
}

func (r *repo) Pending(ctx context.Context, workflowID *uuid.UUID) ([]PendingApproval, error) {
	q := `
		SELECT id, workflow_id, parsed_data, status, created_at, decided_at
		FROM pending_approvals
		WHERE status = 'pending'`
	args := []any{}

	if workflowID != nil {
		q += " AND workflow_id = $1"
		args = append(args, *workflowID)
	}
	q += " ORDER BY created_at"

	pendings, err := repository.QueryMany(ctx, r.db, q, args, scanPending)
	if err != nil {
		return nil, fmt.Errorf("query pending approvals: %w", err)
	}
	return pendings, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM knowledge_base WHERE id = $1",
		id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("knowledge base item deleted", "id", id)
	return nil
}

func (r *repo) MatchCandidates(ctx context.Context) ([]matching.Candidate, error) {
	rows, err := repository.QueryMany(
		ctx, r.db,
		"SELECT material_name, part_number FROM knowledge_base",
		nil,
		func(s repository.Scanner) (matching.Candidate, error) {
			var c matching.Candidate
			err := s.Scan(&c.MaterialName, &c.PartNumber)
			return c, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("query match candidates: %w", err)
	}
	return rows, nil
}

func (r *repo) RenderContext(ctx context.Context) (string, error) {
	listing, err := r.List(ctx, "", contextItemLimit)
	if err != nil {
		return "", err
	}
	if len(listing.Items) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("material_name\tpart_number\tlabel\n")
	for _, item := range listing.Items {
		fmt.Fprintf(&sb, "%s\t%s\t%d\n", item.MaterialName, item.PartNumber, item.Label)
	}
	return sb.String(), nil
}

func (r *repo) CreatePending(ctx context.Context, workflowID uuid.UUID, parsed json.RawMessage) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO pending_approvals(id, workflow_id, parsed_data) VALUES ($1, $2, $3)",
		uuid.New(), workflowID, []byte(parsed),
	)
	if err != nil {
		return fmt.Errorf("create pending approval: %w", err)
	}
	return nil
}

// ApprovePending flips one pending approval to approved and registers the
// knowledge base item in the same transaction. The status predicate on the
// UPDATE makes the transition a compare-and-set: of two concurrent calls,
// exactly one sees a row and commits the insert.
func (r *repo) ApprovePending(ctx context.Context, workflowID, itemID uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var parsed []byte
		err := tx.QueryRowContext(
			ctx,
			`UPDATE pending_approvals
			 SET status = $3, decided_at = now()
			 WHERE id = $1 AND workflow_id = $2 AND status = $4
			 RETURNING parsed_data`,
			itemID, workflowID, StatusApproved, StatusPending,
		).Scan(&parsed)
		if err != nil {
			return struct{}{}, err
		}

		var item parsedItem
		if err := json.Unmarshal(parsed, &item); err != nil {
			return struct{}{}, fmt.Errorf("decode pending snapshot: %w", err)
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO knowledge_base(id, material_name, part_number, classification_label, confidence_level, description, workflow_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), item.MaterialName, item.PartNumber, item.Label, item.Level, item.Reasoning, workflowID,
		)
		return struct{}{}, err
	})

	if err != nil {
		return r.mapDecisionError(ctx, itemID, err)
	}

	r.logger.Info("pending approval approved", "workflow", workflowID, "item", itemID)
	return nil
}

func (r *repo) RejectPending(ctx context.Context, workflowID, itemID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE pending_approvals
		 SET status = $3, decided_at = now()
		 WHERE id = $1 AND workflow_id = $2 AND status = $4`,
		itemID, workflowID, StatusRejected, StatusPending,
	)
	if err != nil {
		return r.mapDecisionError(ctx, itemID, err)
	}

	r.logger.Info("pending approval rejected", "workflow", workflowID, "item", itemID)
	return nil
}

// mapDecisionError distinguishes an unknown pending id from one that was
// already decided, so the gate can report skips accurately.
func (r *repo) mapDecisionError(ctx context.Context, itemID uuid.UUID, err error) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var status string
	lookupErr := r.db.QueryRowContext(
		ctx,
		"SELECT status FROM pending_approvals WHERE id = $1",
		itemID,
	).Scan(&status)

	if errors.Is(lookupErr, sql.ErrNoRows) {
		return ErrNotFound
	}
	if lookupErr != nil {
		return lookupErr
	}
	return ErrAlreadyDecided
}
