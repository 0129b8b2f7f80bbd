package tui

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/transform"
)

// LayoutMarkdown describes a stored layout as a markdown document: one
// section per group, one table row per field.
func LayoutMarkdown(doc *domain.LayoutDocument) string {
	var sb strings.Builder
	if doc == nil {
		return ""
	}

	fmt.Fprintf(&sb, "# %s\n\n", domain.NameFromFilename(doc.Filename))
	fmt.Fprintf(&sb, "_%s: %d group(s), %d field(s)_\n", doc.Filename, len(doc.Layout), countFields(doc.Layout))

	for _, g := range doc.Layout {
		fmt.Fprintf(&sb, "\n## %s\n\n", g.Name)
		fmt.Fprintf(&sb, "Columns: %d\n\n", g.ColCount)
		if len(g.Items) == 0 {
			sb.WriteString("_No fields._\n")
			continue
		}

		sb.WriteString("| Field | Label | Editor | Attributes |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, item := range g.Items {
			dataField, _ := domain.AttrString(item, domain.KeyDataField)
			editorType, _ := domain.AttrString(item, domain.KeyEditorType)
			labelValue, _ := item.Get(domain.KeyLabel)
			label, _ := transform.ResolveLabelText(labelValue)
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				cell(dataField), cell(label), cell(editorType), cell(extraAttributes(item)))
		}
	}
	return sb.String()
}

// LayoutListMarkdown renders the summaries as a table.
func LayoutListMarkdown(list []domain.LayoutSummary) string {
	if len(list) == 0 {
		return "_No saved layouts._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Filename | Name | Size | Modified |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, s := range list {
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n",
			cell(s.Filename), cell(s.Name), s.Size, s.ModifiedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}

// DiffMarkdown renders a layout diff as a bullet list.
func DiffMarkdown(diff *domain.LayoutDiff) string {
	if diff == nil || diff.IsEmpty() {
		return "_No changes._\n"
	}
	var sb strings.Builder
	bullets := func(prefix string, items []string) {
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s `%s`\n", prefix, item)
		}
	}
	bullets("group added:", diff.GroupsAdded)
	bullets("group removed:", diff.GroupsRemoved)
	bullets("field added:", diff.FieldsAdded)
	bullets("field removed:", diff.FieldsRemoved)
	for _, field := range slices.Sorted(maps.Keys(diff.FieldsMoved)) {
		fmt.Fprintf(&sb, "- field moved: `%s` to `%s`\n", field, diff.FieldsMoved[field])
	}
	for _, group := range slices.Sorted(maps.Keys(diff.ColumnChanges)) {
		change := diff.ColumnChanges[group]
		fmt.Fprintf(&sb, "- columns: `%s` %d to %d\n", group, change.From, change.To)
	}
	return sb.String()
}

func countFields(layout []domain.ExportGroup) int {
	n := 0
	for _, g := range layout {
		n += len(g.Items)
	}
	return n
}

// extraAttributes lists every key besides the three shown in their own columns.
func extraAttributes(item *domain.Attributes) string {
	var parts []string
	for pair := item.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case domain.KeyDataField, domain.KeyEditorType, domain.KeyLabel:
			continue
		}
		v, err := json.Marshal(pair.Value)
		if err != nil {
			v = []byte(fmt.Sprint(pair.Value))
		}
		parts = append(parts, pair.Key+"="+string(v))
	}
	return strings.Join(parts, ", ")
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
