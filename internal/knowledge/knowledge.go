// Package knowledge implements the knowledge base domain: durable
// registered items, pending approvals produced by completed workflows,
// and the approval gate that decides them.
package knowledge

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// KnowledgeBaseItem is a durable, cross-workflow registered item.
// Items are created only through the approval gate (or manual entry)
// and never mutated afterward.
type KnowledgeBaseItem struct {
	ID              uuid.UUID  `json:"id"`
	MaterialName    string     `json:"material_name"`
	PartNumber      string     `json:"part_number"`
	Label           int        `json:"classification_label"`
	ConfidenceLevel string     `json:"confidence_level"`
	Description     string     `json:"description"`
	WorkflowID      *uuid.UUID `json:"workflow_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Approval statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// PendingApproval is an item awaiting a human decision. ParsedData is an
// immutable snapshot of the extracted item as the workflow produced it.
// Status transitions exactly once, from pending to approved or rejected.
type PendingApproval struct {
	ID         uuid.UUID       `json:"id"`
	WorkflowID uuid.UUID       `json:"workflow_id"`
	ParsedData json.RawMessage `json:"parsed_data"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	DecidedAt  *time.Time      `json:"decided_at"`
}

// Stats aggregates the knowledge base for listing responses. TotalMatches
// counts high-confidence items; MatchRate is their share of all items.
type Stats struct {
	TotalItems     int     `json:"total_items"`
	TotalWorkflows int     `json:"total_workflows"`
	TotalMatches   int     `json:"total_matches"`
	MatchRate      float64 `json:"match_rate"`
}

// Listing is the knowledge base listing response.
type Listing struct {
	Items []KnowledgeBaseItem `json:"items"`
	Stats Stats               `json:"stats"`
}

// parsedItem extracts the fields the approval gate copies into a
// KnowledgeBaseItem from a pending approval's snapshot.
type parsedItem struct {
	MaterialName string `json:"material_name"`
	PartNumber   string `json:"part_number"`
	Label        int    `json:"classification_label"`
	Level        string `json:"confidence_level"`
	Reasoning    string `json:"reasoning"`
}
