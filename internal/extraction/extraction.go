// Package extraction implements LLM-backed item extraction and
// classification for work instruction and quality control documents.
package extraction

import (
	"context"
)

// Capability is the contract for the extraction and classification step.
// Implementations take parsed document content and return classified items.
type Capability interface {
	Extract(ctx context.Context, input Input) ([]Item, error)
}

// Input carries the parsed document content for one extraction call.
type Input struct {
	// DocumentText is the plain text of the work instruction or QC document.
	DocumentText string
	// ItemMaster is the rendered item master table, empty when none was uploaded.
	ItemMaster string
	// KnowledgeBase is rendered registered-item context for grounding, may be empty.
	KnowledgeBase string
	// ComparisonMode selects between full comparison against the item
	// master and standalone extraction.
	ComparisonMode string
}

// Item is a single extracted and classified subsidiary material.
type Item struct {
	MaterialName string  `json:"material_name"`
	PartNumber   string  `json:"part_number"`
	Quantity     string  `json:"quantity"`
	UOM          string  `json:"uom"`
	Step         string  `json:"step"`
	Vendor       string  `json:"vendor"`
	ItemType     string  `json:"item_type"`
	Label        int     `json:"label"`
	Score        float64 `json:"confidence_score"`
	Reasoning    string  `json:"reasoning"`
}

// Consumable reports whether the item was classified as a consumable material.
func (i Item) Consumable() bool {
	return i.ItemType == ItemTypeConsumable
}

// Item type classifications.
const (
	ItemTypeConsumable = "Consumable"
	ItemTypeJig        = "Jig"
	ItemTypeTool       = "Tool"
	ItemTypeOther      = "Other"
)

// Comparison modes. Full comparison consults the item master and the
// knowledge base; kb_only consults the knowledge base alone.
const (
	ModeFull   = "full"
	ModeKBOnly = "kb_only"
)
