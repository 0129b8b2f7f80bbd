package tui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutMarkdown(t *testing.T) {
	var layout []domain.ExportGroup
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name": "Personal Info", "itemType": "group", "colCount": 2, "items": [
			{"dataField": "first_name", "editorType": "dxTextBox", "label": {"text": "First Name"}, "isRequired": true},
			{"dataField": "notes", "editorType": "dxTextArea", "label": {"text": "A | B"}}
		]},
		{"name": "Empty", "itemType": "group", "colCount": 1, "items": []}
	]`), &layout))

	got := LayoutMarkdown(&domain.LayoutDocument{Filename: "customer.json", Layout: layout})

	assert.Contains(t, got, "# customer\n")
	assert.Contains(t, got, "_customer.json: 2 group(s), 2 field(s)_")
	assert.Contains(t, got, "## Personal Info\n\nColumns: 2\n")
	assert.Contains(t, got, "| first_name | First Name | dxTextBox | isRequired=true |\n")
	assert.Contains(t, got, "| notes | A \\| B | dxTextArea |  |\n")
	assert.Contains(t, got, "## Empty\n\nColumns: 1\n\n_No fields._\n")

	assert.Empty(t, LayoutMarkdown(nil))
}

func TestLayoutListMarkdown(t *testing.T) {
	assert.Equal(t, "_No saved layouts._\n", LayoutListMarkdown(nil))

	got := LayoutListMarkdown([]domain.LayoutSummary{{
		Filename:   "a.json",
		Name:       "a",
		Size:       42,
		ModifiedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}})
	assert.Contains(t, got, "| a.json | a | 42 | 2024-05-01 10:00:00 |")
}

func TestDiffMarkdown(t *testing.T) {
	assert.Equal(t, "_No changes._\n", DiffMarkdown(nil))

	got := DiffMarkdown(&domain.LayoutDiff{
		GroupsAdded:   []string{"B"},
		FieldsRemoved: []string{"x"},
		FieldsMoved:   map[string]string{"z": "B", "y": "B"},
		ColumnChanges: map[string]domain.ColumnChange{"A": {From: 1, To: 3}},
	})
	assert.Equal(t, "- group added: `B`\n"+
		"- field removed: `x`\n"+
		"- field moved: `y` to `B`\n"+
		"- field moved: `z` to `B`\n"+
		"- columns: `A` 1 to 3\n", got)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "|____")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "body")
}
