package domain

// LayoutDiff summarises what changed between two versions of a layout.
// Groups are matched by name and fields by dataField.
type LayoutDiff struct {
	GroupsAdded   []string `json:"groups_added,omitempty"`
	GroupsRemoved []string `json:"groups_removed,omitempty"`

	// FieldsAdded and FieldsRemoved are dataFields that appear in only one side,
	// regardless of which group holds them.
	FieldsAdded   []string `json:"fields_added,omitempty"`
	FieldsRemoved []string `json:"fields_removed,omitempty"`

	// FieldsMoved maps a dataField to the group it moved into.
	FieldsMoved map[string]string `json:"fields_moved,omitempty"`

	// ColumnChanges holds groups present on both sides whose colCount differs.
	ColumnChanges map[string]ColumnChange `json:"column_changes,omitempty"`
}

// ColumnChange records a colCount update.
type ColumnChange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// DiffLayouts compares two layouts. It returns nil when they hold the same
// groups, columns and field placement.
func DiffLayouts(oldLayout, newLayout []ExportGroup) *LayoutDiff {
	diff := &LayoutDiff{}

	oldGroups := indexGroups(oldLayout)
	newGroups := indexGroups(newLayout)

	// 1. Groups
	for _, g := range newLayout {
		prev, ok := oldGroups[g.Name]
		if !ok {
			diff.GroupsAdded = append(diff.GroupsAdded, g.Name)
			continue
		}
		if prev.ColCount != g.ColCount {
			if diff.ColumnChanges == nil {
				diff.ColumnChanges = make(map[string]ColumnChange)
			}
			diff.ColumnChanges[g.Name] = ColumnChange{From: prev.ColCount, To: g.ColCount}
		}
	}
	for _, g := range oldLayout {
		if _, ok := newGroups[g.Name]; !ok {
			diff.GroupsRemoved = append(diff.GroupsRemoved, g.Name)
		}
	}

	// 2. Fields
	oldFields := placement(oldLayout)
	newFields := placement(newLayout)
	for _, field := range orderedFields(newLayout) {
		prevGroup, ok := oldFields[field]
		if !ok {
			diff.FieldsAdded = append(diff.FieldsAdded, field)
			continue
		}
		if prevGroup != newFields[field] {
			if diff.FieldsMoved == nil {
				diff.FieldsMoved = make(map[string]string)
			}
			diff.FieldsMoved[field] = newFields[field]
		}
	}
	for _, field := range orderedFields(oldLayout) {
		if _, ok := newFields[field]; !ok {
			diff.FieldsRemoved = append(diff.FieldsRemoved, field)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any change.
func (d *LayoutDiff) IsEmpty() bool {
	return len(d.GroupsAdded) == 0 &&
		len(d.GroupsRemoved) == 0 &&
		len(d.FieldsAdded) == 0 &&
		len(d.FieldsRemoved) == 0 &&
		len(d.FieldsMoved) == 0 &&
		len(d.ColumnChanges) == 0
}

func indexGroups(layout []ExportGroup) map[string]ExportGroup {
	idx := make(map[string]ExportGroup, len(layout))
	for _, g := range layout {
		if _, dup := idx[g.Name]; !dup {
			idx[g.Name] = g
		}
	}
	return idx
}

// placement maps each dataField to the first group holding it.
func placement(layout []ExportGroup) map[string]string {
	out := make(map[string]string)
	for _, g := range layout {
		for _, item := range g.Items {
			field, ok := AttrString(item, KeyDataField)
			if !ok || field == "" {
				continue
			}
			if _, seen := out[field]; !seen {
				out[field] = g.Name
			}
		}
	}
	return out
}

func orderedFields(layout []ExportGroup) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, g := range layout {
		for _, item := range g.Items {
			field, ok := AttrString(item, KeyDataField)
			if !ok || field == "" || seen[field] {
				continue
			}
			seen[field] = true
			fields = append(fields, field)
		}
	}
	return fields
}
