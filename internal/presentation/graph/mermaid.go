package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/transform"
)

// LayoutOverlay marks fields to highlight on the diagram, e.g. the fields a save added.
type LayoutOverlay struct {
	Added   []string // dataFields
	Changed []string // group names
}

// GenerateMermaid produces a Mermaid flowchart of a layout: the document at
// the root, one node per group, one node per field.
// Field shapes follow the editor:
// - Choice editors (select, tag, lookup, radio): [/Parallelogram/]
// - Toggles (check box, switch): {{Hexagon}}
// - Default: [Rectangle]
func GenerateMermaid(doc *domain.LayoutDocument, overlay *LayoutOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if doc == nil {
		return sb.String()
	}

	root := "layout"
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", root, escapeLabel(doc.Filename)))

	for gi, g := range doc.Layout {
		groupID := fmt.Sprintf("g%d", gi)
		sb.WriteString(fmt.Sprintf("    %s[\"%s <br/> %d col\"]\n", groupID, escapeLabel(g.Name), g.ColCount))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", root, groupID))

		for ii, item := range g.Items {
			dataField, _ := domain.AttrString(item, domain.KeyDataField)
			editorType, _ := domain.AttrString(item, domain.KeyEditorType)
			labelValue, _ := item.Get(domain.KeyLabel)
			label, ok := transform.ResolveLabelText(labelValue)
			if !ok {
				label = dataField
			}

			itemID := fmt.Sprintf("%s_%d_%s", groupID, ii, sanitizeMermaidID(dataField))
			opener, closer := shapeFor(editorType)
			sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", itemID, opener, escapeLabel(label), closer))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", groupID, itemID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef added fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef changed fill:#fff8e1,stroke:#f9a825,stroke-width:2px,color:#000;\n")

		added := make(map[string]bool, len(overlay.Added))
		for _, f := range overlay.Added {
			added[f] = true
		}
		changed := make(map[string]bool, len(overlay.Changed))
		for _, g := range overlay.Changed {
			changed[g] = true
		}

		for gi, g := range doc.Layout {
			groupID := fmt.Sprintf("g%d", gi)
			if changed[g.Name] {
				sb.WriteString(fmt.Sprintf("    class %s changed;\n", groupID))
			}
			for ii, item := range g.Items {
				dataField, _ := domain.AttrString(item, domain.KeyDataField)
				if added[dataField] {
					sb.WriteString(fmt.Sprintf("    class %s_%d_%s added;\n", groupID, ii, sanitizeMermaidID(dataField)))
				}
			}
		}
	}

	return sb.String()
}

// OverlayFromDiff highlights what diff added to the new layout.
func OverlayFromDiff(diff *domain.LayoutDiff) *LayoutOverlay {
	if diff == nil {
		return nil
	}
	overlay := &LayoutOverlay{Added: diff.FieldsAdded}
	overlay.Changed = append(overlay.Changed, diff.GroupsAdded...)
	for group := range diff.ColumnChanges {
		overlay.Changed = append(overlay.Changed, group)
	}
	for field, group := range diff.FieldsMoved {
		overlay.Added = append(overlay.Added, field)
		overlay.Changed = append(overlay.Changed, group)
	}
	return overlay
}

func shapeFor(editorType string) (string, string) {
	switch editorType {
	case "dxSelectBox", "dxTagBox", "dxLookup", "dxRadioGroup":
		return "[/", "/]"
	case "dxCheckBox", "dxSwitch":
		return "{{", "}}"
	default:
		return "[", "]"
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
