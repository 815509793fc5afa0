package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/example/bomflow/internal/decision"
	"github.com/example/bomflow/internal/extraction"
	"github.com/example/bomflow/internal/ingest"
	"github.com/example/bomflow/internal/matching"
)

// KnowledgeSource is the knowledge base surface the runner consults.
// Matching reads are point-in-time; CreatePending records items that
// require a human decision after a workflow completes.
type KnowledgeSource interface {
	MatchCandidates(ctx context.Context) ([]matching.Candidate, error)
	RenderContext(ctx context.Context) (string, error)
	CreatePending(ctx context.Context, workflowID uuid.UUID, parsed json.RawMessage) error
}

// RunInput carries the raw uploaded file content for one pipeline run.
type RunInput struct {
	DocumentFilename   string
	DocumentData       []byte
	ItemMasterFilename string
	ItemMasterData     []byte
}

// Runner executes workflow pipeline runs asynchronously, bounded by a
// concurrent-run limit. Within a run, stages execute strictly sequentially.
// The base context is the process lifecycle context: runs outlive the
// triggering request but not the process.
type Runner struct {
	base       context.Context
	store      Store
	capability extraction.Capability
	matcher    *matching.Matcher
	knowledge  KnowledgeSource
	logger     *slog.Logger
	sem        chan struct{}
}

// NewRunner creates a pipeline runner with the given concurrent-run limit.
func NewRunner(
	base context.Context,
	store Store,
	capability extraction.Capability,
	knowledge KnowledgeSource,
	logger *slog.Logger,
	maxConcurrent int,
) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		base:       base,
		store:      store,
		capability: capability,
		matcher:    matching.New(),
		knowledge:  knowledge,
		logger:     logger.With("system", "runner"),
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// Launch queues a pipeline run for the workflow. The run executes on a
// background goroutine once a concurrency slot is available; additional
// uploads queue rather than spawn unbounded work.
func (r *Runner) Launch(w *Workflow, input RunInput) {
	go func() {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-r.base.Done():
			return
		}

		r.Run(r.base, w, input)
	}()
}

// Run executes the full pipeline for one workflow synchronously. Any stage
// failure transitions the workflow to the terminal error state with the
// causing message.
func (r *Runner) Run(ctx context.Context, w *Workflow, input RunInput) {
	if err := r.store.Begin(ctx, w.ID); err != nil {
		r.logger.Warn("workflow run not started", "id", w.ID, "error", err)
		return
	}

	results, err := r.process(ctx, w, input)
	if err != nil {
		r.fail(ctx, w.ID, err)
		return
	}

	if err := r.store.Complete(ctx, w.ID, results); err != nil {
		r.fail(ctx, w.ID, fmt.Errorf("persist results: %w", err))
		return
	}

	r.createPendings(ctx, w.ID, results.Matches)

	r.logger.Info(
		"workflow completed",
		"id", w.ID,
		"total", results.Summary.Total,
		"match_rate", results.Summary.MatchRate,
	)
}

func (r *Runner) process(ctx context.Context, w *Workflow, input RunInput) (*Results, error) {
	// parsing stage was entered by Begin
	text, err := ingest.ExtractText(input.DocumentFilename, input.DocumentData)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var rows []ingest.Row
	if w.ComparisonMode == extraction.ModeFull {
		rows, err = ingest.ParseItemMaster(input.ItemMasterFilename, input.ItemMasterData)
		if err != nil {
			return nil, fmt.Errorf("parse item master: %w", err)
		}
	}

	if err := r.store.Advance(ctx, w.ID, StatusExtracting); err != nil {
		return nil, err
	}

	kbContext, err := r.knowledge.RenderContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base context: %w", err)
	}

	var itemMaster string
	if len(rows) > 0 {
		itemMaster = ingest.RenderRows(rows)
	}

	extracted, err := r.capability.Extract(ctx, extraction.Input{
		DocumentText:   text,
		ItemMaster:     itemMaster,
		KnowledgeBase:  kbContext,
		ComparisonMode: w.ComparisonMode,
	})
	if err != nil {
		return nil, fmt.Errorf("extract items: %w", err)
	}

	if err := r.store.Advance(ctx, w.ID, StatusClassifying); err != nil {
		return nil, err
	}

	deduped := dedupe(extracted)

	if err := r.store.Advance(ctx, w.ID, StatusMatching); err != nil {
		return nil, err
	}

	kbCandidates, err := r.knowledge.MatchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base candidates: %w", err)
	}

	var supplier []matching.Candidate
	if w.ComparisonMode == extraction.ModeFull {
		supplier = supplierCandidates(rows)
	}

	matches := make([]ResultItem, 0, len(deduped))
	for i, item := range deduped {
		matches = append(matches, r.resolve(i+1, item, kbCandidates, supplier))
	}

	return &Results{
		Matches: matches,
		Summary: Summarize(matches),
	}, nil
}

// resolve matches one classified item and derives its result row. IDs are
// 1-based and stable within the workflow.
func (r *Runner) resolve(
	id int,
	item extraction.Item,
	kb, supplier []matching.Candidate,
) ResultItem {
	result := r.matcher.Match(item.PartNumber, item.MaterialName, kb, supplier)
	qty, uom := matching.Backfill(item.Quantity, item.UOM, result)

	level := extraction.LevelFor(item.Score)
	action := decision.Decide(item.Label, level, result.Source, item.Consumable())

	return ResultItem{
		ID:           id,
		MaterialName: item.MaterialName,
		PartNumber:   item.PartNumber,
		Quantity:     qty,
		UOM:          uom,
		Step:         item.Step,
		Vendor:       item.Vendor,
		ItemType:     item.ItemType,
		Label:        item.Label,
		Score:        item.Score,
		Level:        string(level),
		Source:       string(result.Source),
		ActionPath:   string(action),
		Reasoning:    item.Reasoning,
	}
}

func (r *Runner) fail(ctx context.Context, id uuid.UUID, cause error) {
	r.logger.Error("workflow failed", "id", id, "error", cause)
	if err := r.store.Fail(ctx, id, cause.Error()); err != nil {
		r.logger.Error("failed to record workflow error", "id", id, "error", err)
	}
}

// createPendings hands unmatched and low-confidence items to the approval
// gate. Failures are logged but never fail a completed workflow.
func (r *Runner) createPendings(ctx context.Context, workflowID uuid.UUID, matches []ResultItem) {
	for _, m := range matches {
		if m.Source != string(matching.SourceNoMatch) && m.Level != string(extraction.LevelLow) {
			continue
		}

		parsed, err := json.Marshal(m)
		if err != nil {
			r.logger.Error("encode pending item failed", "workflow", workflowID, "item", m.ID, "error", err)
			continue
		}
		if err := r.knowledge.CreatePending(ctx, workflowID, parsed); err != nil {
			r.logger.Error("create pending approval failed", "workflow", workflowID, "item", m.ID, "error", err)
		}
	}
}

// dedupe collapses items sharing a material name and part number key,
// keeping the highest confidence score and filling blank fields from
// later duplicates.
func dedupe(items []extraction.Item) []extraction.Item {
	seen := make(map[string]int, len(items))
	out := make([]extraction.Item, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.MaterialName)) + "|" +
			matching.NormalizePartNumber(item.PartNumber)

		idx, ok := seen[key]
		if !ok {
			seen[key] = len(out)
			out = append(out, item)
			continue
		}

		kept := &out[idx]
		if item.Score > kept.Score {
			kept.Score = item.Score
			kept.Label = item.Label
			kept.Reasoning = item.Reasoning
		}
		if kept.Quantity == "" {
			kept.Quantity = item.Quantity
		}
		if kept.UOM == "" {
			kept.UOM = item.UOM
		}
		if kept.Step == "" {
			kept.Step = item.Step
		}
		if kept.Vendor == "" {
			kept.Vendor = item.Vendor
		}
	}

	return out
}

func supplierCandidates(rows []ingest.Row) []matching.Candidate {
	candidates := make([]matching.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, matching.Candidate{
			PartNumber:   row.PartNumber,
			MaterialName: row.MaterialName,
			Quantity:     row.Quantity,
			UOM:          row.UOM,
		})
	}
	return candidates
}
