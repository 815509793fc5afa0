// Package workflows implements the workflow domain: the processing
// lifecycle for uploaded documents, persisted results, and the
// asynchronous pipeline runner that sequences ingest, extraction,
// matching, and decisioning.
package workflows

import (
	"time"

	"github.com/google/uuid"
)

// Status is a workflow lifecycle state.
type Status string

const (
	StatusCreated     Status = "created"
	StatusParsing     Status = "parsing"
	StatusExtracting  Status = "extracting"
	StatusClassifying Status = "classifying"
	StatusMatching    Status = "matching"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

// Checkpoints fixes the progress percentage reached when a workflow
// enters each stage. Progress never decreases; completed is the only
// state that reaches 100.
var Checkpoints = map[Status]int{
	StatusCreated:     0,
	StatusParsing:     10,
	StatusExtracting:  30,
	StatusClassifying: 60,
	StatusMatching:    90,
	StatusCompleted:   100,
}

// Terminal reports whether a status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Workflow is one processing run over an uploaded document set.
type Workflow struct {
	ID                 uuid.UUID `json:"id"`
	Status             Status    `json:"status"`
	ComparisonMode     string    `json:"comparison_mode"`
	Progress           int       `json:"progress"`
	Message            string    `json:"message"`
	DocumentFilename   string    `json:"document_filename"`
	DocumentKey        string    `json:"document_key"`
	PageCount          *int      `json:"page_count"`
	ItemMasterFilename *string   `json:"item_master_filename"`
	ItemMasterKey      *string   `json:"item_master_key"`
	HasResults         bool      `json:"has_results"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ResultItem is one extracted, classified, and matched line item within a
// workflow's result set. ID is stable within the workflow and is used to
// address the item in approval operations.
type ResultItem struct {
	ID           int     `json:"id"`
	MaterialName string  `json:"material_name"`
	PartNumber   string  `json:"part_number"`
	Quantity     string  `json:"qty"`
	UOM          string  `json:"uom"`
	Step         string  `json:"qc_process_or_wi_step"`
	Vendor       string  `json:"vendor,omitempty"`
	ItemType     string  `json:"item_type"`
	Label        int     `json:"classification_label"`
	Score        float64 `json:"confidence_score"`
	Level        string  `json:"confidence_level"`
	Source       string  `json:"match_source"`
	ActionPath   string  `json:"action_path"`
	Reasoning    string  `json:"reasoning"`
}

// Summary aggregates a completed workflow's result set.
type Summary struct {
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	NoMatch   int     `json:"no_match"`
	MatchRate float64 `json:"match_rate"`
}

// Results is the persisted outcome of a completed workflow.
type Results struct {
	Matches []ResultItem `json:"matches"`
	Summary Summary      `json:"summary"`
}

// Summarize computes the summary for a set of matches. MatchRate is the
// percentage of items with a match source other than no_match.
func Summarize(matches []ResultItem) Summary {
	s := Summary{Total: len(matches)}
	for _, m := range matches {
		if m.Source == "no_match" {
			s.NoMatch++
		} else {
			s.Matched++
		}
	}
	if s.Total > 0 {
		s.MatchRate = 100 * float64(s.Matched) / float64(s.Total)
	}
	return s
}

// CreateCommand carries the data needed to register a new workflow and its
// uploaded files. ItemMaster fields are empty in kb_only mode.
type CreateCommand struct {
	ComparisonMode     string
	DocumentFilename   string
	DocumentData       []byte
	PageCount          *int
	ItemMasterFilename string
	ItemMasterData     []byte
}
