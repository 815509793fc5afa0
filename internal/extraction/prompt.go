package extraction

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a manufacturing engineering assistant. Extract every subsidiary material, consumable, jig, and tool referenced in the provided work instruction or quality control document.

For each item, classify it:
- item_type: one of "Consumable", "Jig", "Tool", "Other"
- label: an integer 1-5 where 1 = exact catalog item, 2 = equivalent catalog item, 3 = probable catalog item, 4 = generic material, 5 = unidentifiable
- confidence_score: a number between 0 and 1

Respond with a JSON object of the form:
{"items": [{"material_name": "", "part_number": "", "quantity": "", "uom": "", "step": "", "vendor": "", "item_type": "", "label": 1, "confidence_score": 0.0, "reasoning": ""}]}

Leave unknown fields empty. Do not invent part numbers. Output JSON only.`

func buildUserPrompt(input Input) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Document:\n%s\n", input.DocumentText)

	if input.ItemMaster != "" {
		fmt.Fprintf(&sb, "\nItem master (supplier BOM):\n%s\n", input.ItemMaster)
		if input.ComparisonMode == ModeFull {
			sb.WriteString("\nCompare extracted items against the item master and prefer its part numbers and names when they refer to the same item.\n")
		}
	}

	if input.KnowledgeBase != "" {
		fmt.Fprintf(&sb, "\nPreviously registered items for reference:\n%s\n", input.KnowledgeBase)
	}

	sb.WriteString("\nExtracted items:")
	return sb.String()
}
