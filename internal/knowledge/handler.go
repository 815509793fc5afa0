package knowledge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/example/bomflow/pkg/handlers"
	"github.com/example/bomflow/pkg/routes"
)

// Handler provides HTTP endpoints for knowledge base operations.
type Handler struct {
	sys    System
	gate   *Gate
	logger *slog.Logger
}

// DecisionRequest identifies the pending items to approve or reject.
type DecisionRequest struct {
	WorkflowID uuid.UUID   `json:"workflow_id"`
	ItemIDs    []uuid.UUID `json:"item_ids"`
}

// NewHandler creates a Handler with the given system, gate, and logger.
func NewHandler(sys System, gate *Gate, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		gate:   gate,
		logger: logger.With("handler", "knowledge"),
	}
}

// Routes returns the route group definition for knowledge base endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/knowledge-base",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/pending", Handler: h.Pending},
			{Method: "POST", Pattern: "/approve", Handler: h.Approve},
			{Method: "POST", Pattern: "/reject", Handler: h.Reject},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns knowledge base items filtered by the search query parameter,
// capped by limit, together with aggregate stats.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		limit = parsed
	}

	listing, err := h.sys.List(r.Context(), search, limit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, listing)
}

// Pending returns pending approvals, optionally scoped by the workflow_id
// query parameter.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	var workflowID *uuid.UUID
	if wf := r.URL.Query().Get("workflow_id"); wf != "" {
		id, err := uuid.Parse(wf)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid workflow_id"))
			return
		}
		workflowID = &id
	}

	pendings, err := h.sys.Pending(r.Context(), workflowID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{"items": pendings})
}

// Approve decides the requested pending items as approved and reports the
// count actually approved.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	count, err := h.gate.Approve(r.Context(), req.WorkflowID, req.ItemIDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"approved": count})
}

// Reject decides the requested pending items as rejected and reports the
// count actually rejected.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDecision(w, r)
	if !ok {
		return
	}

	count, err := h.gate.Reject(r.Context(), req.WorkflowID, req.ItemIDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"rejected": count})
}

// Delete removes a knowledge base item by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeDecision(w http.ResponseWriter, r *http.Request) (DecisionRequest, bool) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return req, false
	}
	if req.WorkflowID == uuid.Nil || len(req.ItemIDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("workflow_id and item_ids required"))
		return req, false
	}
	return req, true
}
