package workflows

import (
	"net/url"

	"github.com/example/bomflow/pkg/query"
	"github.com/example/bomflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "workflows", "w").
	Project("id", "ID").
	Project("status", "Status").
	Project("comparison_mode", "ComparisonMode").
	Project("progress", "Progress").
	Project("message", "Message").
	Project("document_filename", "DocumentFilename").
	Project("document_key", "DocumentKey").
	Project("page_count", "PageCount").
	Project("item_master_filename", "ItemMasterFilename").
	Project("item_master_key", "ItemMasterKey").
	Project("has_results", "HasResults").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for workflow queries.
// Nil fields are ignored. Status and ComparisonMode use exact matching;
// DocumentFilename uses case-insensitive contains matching.
type Filters struct {
	Status           *string `json:"status,omitempty"`
	ComparisonMode   *string `json:"comparison_mode,omitempty"`
	DocumentFilename *string `json:"document_filename,omitempty"`
	HasResults       *bool   `json:"has_results,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("ComparisonMode", f.ComparisonMode).
		WhereContains("DocumentFilename", f.DocumentFilename).
		WhereEquals("HasResults", f.HasResults)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if m := values.Get("comparison_mode"); m != "" {
		f.ComparisonMode = &m
	}

	if fn := values.Get("document_filename"); fn != "" {
		f.DocumentFilename = &fn
	}

	if hr := values.Get("has_results"); hr == "true" || hr == "false" {
		v := hr == "true"
		f.HasResults = &v
	}

	return f
}

func scanWorkflow(s repository.Scanner) (Workflow, error) {
	var w Workflow
	err := s.Scan(
		&w.ID,
		&w.Status,
		&w.ComparisonMode,
		&w.Progress,
		&w.Message,
		&w.DocumentFilename,
		&w.DocumentKey,
		&w.PageCount,
		&w.ItemMasterFilename,
		&w.ItemMasterKey,
		&w.HasResults,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	return w, err
}
