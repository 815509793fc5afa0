package workflows

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/example/bomflow/internal/extraction"
	"github.com/example/bomflow/internal/ingest"
	"github.com/example/bomflow/pkg/handlers"
	"github.com/example/bomflow/pkg/pagination"
	"github.com/example/bomflow/pkg/routes"
)

// Handler provides HTTP endpoints for workflow operations.
type Handler struct {
	sys           System
	runner        *Runner
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StatusResponse is the polling snapshot for a workflow.
type StatusResponse struct {
	ID         uuid.UUID `json:"id"`
	Status     Status    `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message"`
	HasResults bool      `json:"has_results"`
}

// NewHandler creates a Handler with the given system, runner, logger,
// pagination config, and upload size limit.
func NewHandler(
	sys System,
	runner *Runner,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		runner:        runner,
		logger:        logger.With("handler", "workflows"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for workflow endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/workflows",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/status", Handler: h.Status},
			{Method: "GET", Pattern: "/{id}/results", Handler: h.Results},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of workflows with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single workflow by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	flow, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, flow)
}

// Status returns the processing snapshot for a workflow: status, progress,
// message, and whether results exist.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	flow, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, StatusResponse{
		ID:         flow.ID,
		Status:     flow.Status,
		Progress:   flow.Progress,
		Message:    flow.Message,
		HasResults: flow.HasResults,
	})
}

// Results returns the persisted result set for a completed workflow.
// Responds with a conflict until the workflow reaches completed.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	results, err := h.sys.Results(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching workflows.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload accepts a multipart form with a work instruction document, an
// optional item master spreadsheet, and a comparison mode. Validation
// failures reject the request before any workflow is created; on success
// the workflow is registered and async processing begins.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	mode := r.FormValue("comparison_mode")
	if mode == "" {
		mode = extraction.ModeFull
	}
	if mode != extraction.ModeFull && mode != extraction.ModeKBOnly {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidMode)
		return
	}

	docName, docData, err := readFormFile(r, "wi_document")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingDocument)
		return
	}
	if !ingest.SupportedDocument(docName) {
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(ingest.ErrUnsupportedFormat), ingest.ErrUnsupportedFormat)
		return
	}

	masterName, masterData, err := readFormFile(r, "item_master")
	if err != nil {
		if mode == extraction.ModeFull {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingItemMaster)
			return
		}
		masterName, masterData = "", nil
	}
	if masterName != "" && !ingest.SupportedItemMaster(masterName) {
		handlers.RespondError(w, h.logger, ingest.MapHTTPStatus(ingest.ErrUnsupportedFormat), ingest.ErrUnsupportedFormat)
		return
	}

	flow, err := h.sys.Create(r.Context(), CreateCommand{
		ComparisonMode:     mode,
		DocumentFilename:   docName,
		DocumentData:       docData,
		PageCount:          extractPDFPageCount(h.logger, docName, docData),
		ItemMasterFilename: masterName,
		ItemMasterData:     masterData,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.runner.Launch(flow, RunInput{
		DocumentFilename:   docName,
		DocumentData:       docData,
		ItemMasterFilename: masterName,
		ItemMasterData:     masterData,
	})

	handlers.RespondJSON(w, http.StatusAccepted, flow)
}

// Delete removes a workflow, its results, and its uploaded blobs.
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

func extractPDFPageCount(logger *slog.Logger, filename string, data []byte) *int {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}

// readFormFile reads one multipart file field fully into memory.
func readFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}
