package extraction_test

import (
	"errors"
	"testing"

	"github.com/example/bomflow/internal/extraction"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  extraction.Level
	}{
		{"exact high boundary", 0.8, extraction.LevelHigh},
		{"above high", 0.95, extraction.LevelHigh},
		{"just below high", 0.79, extraction.LevelMedium},
		{"exact medium boundary", 0.5, extraction.LevelMedium},
		{"just below medium", 0.49, extraction.LevelLow},
		{"zero", 0, extraction.LevelLow},
		{"one", 1, extraction.LevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extraction.LevelFor(tt.score); got != tt.want {
				t.Errorf("LevelFor(%v) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestDecodeItems_RawJSON(t *testing.T) {
	content := `{"items": [{"material_name": "Epoxy Resin", "part_number": "EP-100", "item_type": "Consumable", "label": 1, "confidence_score": 0.92}]}`

	items, err := extraction.DecodeItems(content)
	if err != nil {
		t.Fatalf("DecodeItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].MaterialName != "Epoxy Resin" || items[0].Label != 1 {
		t.Errorf("unexpected item: %+v", items[0])
	}
	if !items[0].Consumable() {
		t.Error("expected consumable item")
	}
}

func TestDecodeItems_MarkdownFence(t *testing.T) {
	content := "Here are the items:\n```json\n{\"items\": [{\"material_name\": \"Gasket\", \"label\": 3, \"confidence_score\": 0.6}]}\n```"

	items, err := extraction.DecodeItems(content)
	if err != nil {
		t.Fatalf("DecodeItems failed: %v", err)
	}
	if len(items) != 1 || items[0].MaterialName != "Gasket" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestDecodeItems_ClampsLabelAndScore(t *testing.T) {
	content := `{"items": [
		{"material_name": "A", "label": 0, "confidence_score": 1.4},
		{"material_name": "B", "label": 9, "confidence_score": -0.2}
	]}`

	items, err := extraction.DecodeItems(content)
	if err != nil {
		t.Fatalf("DecodeItems failed: %v", err)
	}
	if items[0].Label != 5 || items[0].Score != 1 {
		t.Errorf("first item not clamped: %+v", items[0])
	}
	if items[1].Label != 5 || items[1].Score != 0 {
		t.Errorf("second item not clamped: %+v", items[1])
	}
}

func TestDecodeItems_Malformed(t *testing.T) {
	_, err := extraction.DecodeItems("the model refused to answer")
	if !errors.Is(err, extraction.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}
