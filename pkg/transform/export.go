package transform

import "github.com/aretw0/layoutkit/pkg/domain"

// ExportWorkspace renders containers into the stored layout format.
// Groups follow container order and items follow node order; spacers are skipped.
func ExportWorkspace(containers []domain.Container, catalog *domain.Catalog) []domain.ExportGroup {
	groups := make([]domain.ExportGroup, 0, len(containers))
	for _, c := range containers {
		items := make([]*domain.Attributes, 0, len(c.Nodes))
		for _, node := range c.Nodes {
			if domain.IsSpacer(node) {
				continue
			}
			items = append(items, exportNode(node, catalog))
		}
		groups = append(groups, domain.ExportGroup{
			Name:     c.Name,
			ItemType: domain.GroupItemType,
			ColCount: c.NumCol,
			Items:    items,
		})
	}
	return groups
}

func exportNode(node domain.Node, catalog *domain.Catalog) *domain.Attributes {
	// Base definition: catalog entry first, then the node's own metadata.
	base, ok := catalog.Get(node.DataField)
	if !ok {
		base = node.Metadata
	}
	combined := domain.MergeAttributes(base, node.Metadata)

	labelValue, _ := combined.Get(domain.KeyLabel)
	text, ok := ResolveLabelText(labelValue)
	if !ok {
		text = node.Label
	}

	editorType := node.EditorType
	if editorType == "" {
		editorType, _ = domain.AttrString(combined, domain.KeyEditorType)
	}
	if editorType == "" {
		editorType = domain.DefaultEditorType
	}

	item := domain.NewAttributes()
	item.Set(domain.KeyDataField, node.DataField)
	item.Set(domain.KeyEditorType, editorType)
	item.Set(domain.KeyLabel, labelObject(text))
	// Combined attributes overwrite dataField and editorType in place; only label is dropped.
	for pair := combined.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == domain.KeyLabel {
			continue
		}
		item.Set(pair.Key, pair.Value)
	}
	return item
}
