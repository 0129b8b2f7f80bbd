package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/layoutkit/pkg/catalog"
	"github.com/aretw0/layoutkit/pkg/domain"
)

func parse(t *testing.T, raw string) []domain.ExportGroup {
	t.Helper()
	var layout []domain.ExportGroup
	if err := json.Unmarshal([]byte(raw), &layout); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return layout
}

func TestValidateLayout(t *testing.T) {
	cat := catalog.Default()

	// 1. Scenario A: Valid Layout
	valid := parse(t, `[
		{"name": "Personal", "itemType": "group", "colCount": 2, "items": [
			{"dataField": "first_name"}, {"dataField": "last_name"}
		]},
		{"name": "Contact", "itemType": "group", "colCount": 1, "items": [{"dataField": "email"}]}
	]`)
	if err := ValidateLayout(valid, cat); err != nil {
		t.Errorf("Scenario A (Valid) failed: %v", err)
	}
	if err := ValidateLayout(nil, cat); err != nil {
		t.Errorf("Empty layout should be valid, got: %v", err)
	}

	// 2. Scenario B: Every kind of problem at once
	broken := parse(t, `[
		{"name": "Main", "colCount": 0, "items": [
			{"dataField": "email"}, {"label": {"text": "orphan"}}, {"dataField": "ghost"}
		]},
		{"name": " main ", "colCount": 1, "items": [{"dataField": "email"}]},
		{"name": "", "colCount": 1, "items": []}
	]`)

	err := ValidateLayout(broken, cat)
	if err == nil {
		t.Fatal("Scenario B (Broken) should have failed, but got nil")
	}

	expected := []string{
		"found 6 errors",
		"Group 'Main' has invalid colCount 0",
		"Group 'Main' item #2 has no dataField",
		"Unknown field: 'ghost' in group 'Main'",
		"Duplicate group name: ' main ' (already used by 'Main')",
		"Field 'email' placed more than once (groups 'Main' and ' main ')",
		"Group #3 has no name",
	}
	for _, want := range expected {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in error, got:\n%v", want, err)
		}
	}
}

func TestValidateLayout_WithoutCatalog(t *testing.T) {
	layout := parse(t, `[{"name": "A", "colCount": 1, "items": [{"dataField": "anything"}, {"dataField": "spacer"}, {"dataField": "spacer"}]}]`)
	if err := ValidateLayout(layout, nil); err != nil {
		t.Errorf("Unknown fields are only checked against a catalog, got: %v", err)
	}
}
