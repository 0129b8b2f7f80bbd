package domain

const (
	// SpacerID is the id of the catalog spacer node.
	SpacerID = "spacer"
	// SpacerLabel is the display label every spacer carries.
	SpacerLabel = "[ || ]"
	// SpacerDataField is the dataField every spacer carries. It is never
	// counted as a placed or available field.
	SpacerDataField = "spacer"

	// DefaultEditorType is exported when neither node nor definition name one.
	DefaultEditorType = "dxTextBox"
	// GroupItemType is the itemType of every exported group.
	GroupItemType = "group"
	// UntitledContainer names imported groups that have no name.
	UntitledContainer = "Untitled Container"
	// UnknownFieldLabel labels imported items with neither label nor dataField.
	UnknownFieldLabel = "Unknown Field"
)

// Attribute keys with a meaning in the export format.
const (
	KeyLabel      = "label"
	KeyText       = "text"
	KeyEditorType = "editorType"
	KeyDataField  = "dataField"
)
