package workflows

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/example/bomflow/pkg/pagination"
	"github.com/example/bomflow/pkg/query"
	"github.com/example/bomflow/pkg/repository"
	"github.com/example/bomflow/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a workflow repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "workflows"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64, runner *Runner) *Handler {
	return NewHandler(r, runner, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Workflow], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DocumentFilename", "Message")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count workflows: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	flows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanWorkflow)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}

	result := pagination.NewPageResult(flows, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Workflow, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	w, err := repository.QueryOne(ctx, r.db, q, args, scanWorkflow)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &w, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Workflow, error) {
	id := uuid.New()
	docKey := buildUploadKey(id, sanitizeFilename(cmd.DocumentFilename))

	if err := r.storage.Upload(ctx, docKey, bytes.NewReader(cmd.DocumentData), "application/octet-stream"); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	var masterFilename, masterKey *string
	if cmd.ItemMasterFilename != "" {
		key := buildUploadKey(id, sanitizeFilename(cmd.ItemMasterFilename))
		if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.ItemMasterData), "application/octet-stream"); err != nil {
			return nil, fmt.Errorf("upload item master blob: %w", err)
		}
		masterFilename = &cmd.ItemMasterFilename
		masterKey = &key
	}

	q := `
		INSERT INTO workflows(id, comparison_mode, document_filename, document_key, page_count, item_master_filename, item_master_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, comparison_mode, progress, message, document_filename, document_key, page_count, item_master_filename, item_master_key, has_results, created_at, updated_at`

	insertArgs := []any{
		id,
		cmd.ComparisonMode,
		cmd.DocumentFilename,
		docKey,
		cmd.PageCount,
		masterFilename,
		masterKey,
	}

	w, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Workflow, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanWorkflow)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, docKey); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", docKey, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("workflow created", "id", w.ID, "mode", w.ComparisonMode)
	return &w, nil
}

func (r *repo) Results(ctx context.Context, id uuid.UUID) (*Results, error) {
	w, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != StatusCompleted || !w.HasResults {
		return nil, ErrResultsUnavailable
	}

	var payload []byte
	err = r.db.QueryRowContext(
		ctx,
		"SELECT payload FROM workflow_results WHERE workflow_id = $1",
		id,
	).Scan(&payload)
	if err != nil {
		return nil, repository.MapError(err, ErrResultsUnavailable, ErrDuplicate)
	}

	var results Results
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &results, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	w, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM workflows WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.deleteBlobs(ctx, w)

	r.logger.Info("workflow deleted", "id", id)
	return nil
}

func (r *repo) deleteBlobs(ctx context.Context, w *Workflow) {
	keys := []string{w.DocumentKey, buildResultsKey(w.ID)}
	if w.ItemMasterKey != nil {
		keys = append(keys, *w.ItemMasterKey)
	}

	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", key, "error", err)
		}
	}
}

// Begin guards the created -> parsing transition so a workflow processes
// at most once. The status predicate makes the transition a compare-and-set.
func (r *repo) Begin(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE workflows
		 SET status = $2, progress = GREATEST(progress, $3), updated_at = now()
		 WHERE id = $1 AND status = $4`,
		id, StatusParsing, Checkpoints[StatusParsing], StatusCreated,
	)
	if err != nil {
		return fmt.Errorf("begin workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("begin workflow: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyStarted
	}
	return nil
}

func (r *repo) Advance(ctx context.Context, id uuid.UUID, status Status) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE workflows
		 SET status = $2, progress = GREATEST(progress, $3), updated_at = now()
		 WHERE id = $1 AND status NOT IN ($4, $5)`,
		id, status, Checkpoints[status], StatusCompleted, StatusError,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Fail(ctx context.Context, id uuid.UUID, message string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE workflows
		 SET status = $2, message = $3, updated_at = now()
		 WHERE id = $1 AND status NOT IN ($2, $4)`,
		id, StatusError, message, StatusCompleted,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, results *Results) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(
			ctx,
			"INSERT INTO workflow_results(workflow_id, payload) VALUES ($1, $2)",
			id, payload,
		); err != nil {
			return struct{}{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			`UPDATE workflows
			 SET status = $2, progress = $3, message = $4, has_results = true, updated_at = now()
			 WHERE id = $1 AND status NOT IN ($2, $5)`,
			id, StatusCompleted, Checkpoints[StatusCompleted], "processing complete", StatusError,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// best-effort blob copy of the result payload for external consumers
	if upErr := r.storage.Upload(
		ctx,
		buildResultsKey(id),
		bytes.NewReader(payload),
		"application/json",
	); upErr != nil {
		r.logger.Warn("results blob upload failed", "id", id, "error", upErr)
	}

	return nil
}

func buildUploadKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("uploads/%s/%s", id, filename)
}

func buildResultsKey(id uuid.UUID) string {
	return fmt.Sprintf("results/%s.json", id)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
