package transform

import "github.com/aretw0/layoutkit/pkg/domain"

// ImportLayout rebuilds workspace containers from a stored layout.
// Every container and node gets an id from newID; ids in the document are never reused.
// dataField is copied verbatim since it is what ties a node back to the catalog.
func ImportLayout(groups []domain.ExportGroup, newID func() string) []domain.Container {
	containers := make([]domain.Container, 0, len(groups))
	for _, g := range groups {
		name := g.Name
		if name == "" {
			name = domain.UntitledContainer
		}
		nodes := make([]domain.Node, 0, len(g.Items))
		for _, item := range g.Items {
			nodes = append(nodes, importItem(item, newID))
		}
		containers = append(containers, domain.Container{
			ID:     newID(),
			Name:   name,
			NumCol: domain.ClampColumns(g.ColCount),
			Nodes:  nodes,
		})
	}
	return containers
}

func importItem(item *domain.Attributes, newID func() string) domain.Node {
	if item == nil {
		item = domain.NewAttributes()
	}
	labelValue, _ := item.Get(domain.KeyLabel)
	labelText, hasLabel := ResolveLabelText(labelValue)
	dataField, _ := domain.AttrString(item, domain.KeyDataField)
	editorType, _ := domain.AttrString(item, domain.KeyEditorType)

	// Not the same test as domain.IsSpacer: stored items carry no node id, and
	// a labelled item only counts as a spacer when it has no dataField at all.
	if dataField == domain.SpacerDataField || (dataField == "" && labelText == domain.SpacerLabel) {
		spacer := domain.NewSpacerNode(newID(), item)
		spacer.EditorType = editorType
		return spacer
	}

	label := labelText
	if !hasLabel {
		label = dataField
	}
	if label == "" {
		label = domain.UnknownFieldLabel
	}
	return domain.NewFieldNode(newID(), label, dataField, editorType, item)
}
