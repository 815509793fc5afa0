package knowledge

import (
	"github.com/example/bomflow/pkg/query"
	"github.com/example/bomflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "knowledge_base", "k").
	Project("id", "ID").
	Project("material_name", "MaterialName").
	Project("part_number", "PartNumber").
	Project("classification_label", "Label").
	Project("confidence_level", "ConfidenceLevel").
	Project("description", "Description").
	Project("workflow_id", "WorkflowID").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanItem(s repository.Scanner) (KnowledgeBaseItem, error) {
	var k KnowledgeBaseItem
	err := s.Scan(
		&k.ID,
		&k.MaterialName,
		&k.PartNumber,
		&k.Label,
		&k.ConfidenceLevel,
		&k.Description,
		&k.WorkflowID,
		&k.CreatedAt,
	)
	return k, err
}

func scanPending(s repository.Scanner) (PendingApproval, error) {
	var p PendingApproval
	err := s.Scan(
		&p.ID,
		&p.WorkflowID,
		&p.ParsedData,
		&p.Status,
		&p.CreatedAt,
		&p.DecidedAt,
	)
	return p, err
}
