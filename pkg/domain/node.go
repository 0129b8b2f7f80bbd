package domain

// NodeKind tags a node as a catalog field or the layout-only spacer.
type NodeKind int

const (
	// KindField is a node backed by a catalog field.
	KindField NodeKind = iota
	// KindSpacer is the reserved placeholder node. It is never exported.
	KindSpacer
)

func (k NodeKind) String() string {
	if k == KindSpacer {
		return "spacer"
	}
	return "field"
}

// Node is the editable unit placed into containers.
type Node struct {
	// ID is unique within a node list. Catalog nodes reuse the field id;
	// nodes imported from a saved layout get a fresh UUID.
	ID    string `json:"id"`
	Label string `json:"label"`
	// DataField is the backend key the node exports under. It survives
	// import/export even when ID is regenerated.
	DataField  string      `json:"dataField"`
	EditorType string      `json:"editorType,omitempty"`
	Metadata   *Attributes `json:"metadata,omitempty"`

	Kind NodeKind `json:"-"`
}

// NewFieldNode creates a node for a catalog field.
func NewFieldNode(id, label, dataField, editorType string, metadata *Attributes) Node {
	return Node{
		ID:         id,
		Label:      label,
		DataField:  dataField,
		EditorType: editorType,
		Metadata:   metadata,
		Kind:       KindField,
	}
}

// NewSpacerNode creates a spacer with the given id.
func NewSpacerNode(id string, metadata *Attributes) Node {
	if metadata == nil {
		metadata = NewAttributes()
	}
	return Node{
		ID:        id,
		Label:     SpacerLabel,
		DataField: SpacerDataField,
		Metadata:  metadata,
		Kind:      KindSpacer,
	}
}

// IsSpacer reports whether node looks like a spacer: its id is "spacer" OR its
// label is "[ || ]". Either condition alone is enough. This is the predicate
// used for node data that did not come from a constructor.
func IsSpacer(node Node) bool {
	return node.ID == SpacerID || node.Label == SpacerLabel
}

// IsSpacer reports whether n was built as a spacer or matches the spacer predicate.
func (n Node) IsSpacer() bool {
	return n.Kind == KindSpacer || IsSpacer(n)
}

// Clone returns a copy of n with its own top-level metadata.
func (n Node) Clone() Node {
	out := n
	if n.Metadata != nil {
		out.Metadata = CloneAttributes(n.Metadata)
	}
	return out
}

// Classify fills in Kind for nodes decoded from external data.
func (n Node) Classify() Node {
	if IsSpacer(n) {
		n.Kind = KindSpacer
	} else {
		n.Kind = KindField
	}
	return n
}
