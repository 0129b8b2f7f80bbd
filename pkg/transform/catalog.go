package transform

import "github.com/aretw0/layoutkit/pkg/domain"

// ImportCatalog turns the catalog into UI nodes, in catalog order, followed by
// exactly one spacer. A nil or empty catalog yields just the spacer.
func ImportCatalog(catalog *domain.Catalog) []domain.Node {
	nodes := make([]domain.Node, 0, catalog.Len()+1)

	catalog.Each(func(fieldID string, def *domain.FieldDefinition) {
		label, ok := domain.AttrString(def, domain.KeyLabel)
		if !ok || label == "" {
			label = fieldID
		}
		editorType, _ := domain.AttrString(def, domain.KeyEditorType)
		nodes = append(nodes, domain.NewFieldNode(fieldID, label, fieldID, editorType, domain.CloneAttributes(def)))
	})

	return append(nodes, domain.NewSpacerNode(domain.SpacerID, nil))
}

// IsSpacer reports whether node is a spacer: id "spacer" OR label "[ || ]".
func IsSpacer(node domain.Node) bool {
	return domain.IsSpacer(node)
}
