// Package matching implements fuzzy matching of extracted items against
// the knowledge base and supplier item master.
package matching

// Source identifies where a match was found.
type Source string

const (
	SourceKnowledgeBase Source = "knowledge_base"
	SourceSupplierBOM   Source = "supplier_bom"
	SourceHybrid        Source = "hybrid"
	SourceNoMatch       Source = "no_match"
)

// DefaultThreshold is the minimum material name similarity for a fuzzy match.
const DefaultThreshold = 0.8

// Candidate is an entry an extracted item can be matched against.
type Candidate struct {
	PartNumber   string
	MaterialName string
	Quantity     string
	UOM          string
}

// Result reports the outcome of matching one extracted item.
// Candidate is nil when Source is SourceNoMatch. When both the knowledge
// base and the supplier item master match, Source is SourceHybrid and
// Candidate carries the knowledge base entry.
type Result struct {
	Source     Source
	Candidate  *Candidate
	Similarity float64
}

// Matcher matches extracted items against candidate sets.
type Matcher struct {
	threshold float64
}

// New creates a Matcher with the default similarity threshold.
func New() *Matcher {
	return &Matcher{threshold: DefaultThreshold}
}

// NewWithThreshold creates a Matcher with a custom similarity threshold.
func NewWithThreshold(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Match compares an extracted item's part number and material name against
// knowledge base and supplier candidates. A normalized part number match
// always wins; otherwise the best material name similarity at or above the
// threshold is used.
func (m *Matcher) Match(partNumber, materialName string, knowledgeBase, supplier []Candidate) Result {
	kb, kbSim := m.best(partNumber, materialName, knowledgeBase)
	sup, supSim := m.best(partNumber, materialName, supplier)

	switch {
	case kb != nil && sup != nil:
		return Result{Source: SourceHybrid, Candidate: kb, Similarity: max(kbSim, supSim)}
	case kb != nil:
		return Result{Source: SourceKnowledgeBase, Candidate: kb, Similarity: kbSim}
	case sup != nil:
		return Result{Source: SourceSupplierBOM, Candidate: sup, Similarity: supSim}
	default:
		return Result{Source: SourceNoMatch}
	}
}

func (m *Matcher) best(partNumber, materialName string, candidates []Candidate) (*Candidate, float64) {
	normalized := NormalizePartNumber(partNumber)

	var bestCandidate *Candidate
	var bestSim float64

	for i := range candidates {
		c := &candidates[i]

		if normalized != "" && NormalizePartNumber(c.PartNumber) == normalized {
			return c, 1.0
		}

		sim := Similarity(materialName, c.MaterialName)
		if sim >= m.threshold && sim > bestSim {
			bestCandidate = c
			bestSim = sim
		}
	}

	return bestCandidate, bestSim
}

// Backfill fills empty quantity and UOM values from the matched candidate.
// Existing values are never overwritten.
func Backfill(quantity, uom string, result Result) (string, string) {
	if result.Candidate == nil {
		return quantity, uom
	}
	if quantity == "" {
		quantity = result.Candidate.Quantity
	}
	if uom == "" {
		uom = result.Candidate.UOM
	}
	return quantity, uom
}
