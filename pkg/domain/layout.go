package domain

import (
	"sort"
	"time"
)

// ExportGroup is one container in the persisted layout format.
type ExportGroup struct {
	Name     string        `json:"name"`
	ItemType string        `json:"itemType"`
	ColCount int           `json:"colCount"`
	Items    []*Attributes `json:"items"`
}

// LayoutSummary describes a stored layout without its content.
type LayoutSummary struct {
	Filename   string    `json:"filename"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// SavedLayout is the receipt returned after a save.
type SavedLayout struct {
	Filename        string `json:"filename"`
	StorageLocation string `json:"path"`
}

// LayoutDocument is a stored layout with its content.
type LayoutDocument struct {
	Filename string        `json:"filename"`
	Layout   []ExportGroup `json:"layout"`
}

// ValidateLayout rejects a missing layout. An empty, non-nil slice is a valid
// (empty) layout.
func ValidateLayout(layout []ExportGroup) error {
	if layout == nil {
		return NewValidationError("layout", "The layout field is required.")
	}
	return nil
}

// PrepareSave validates a save request and returns the filename it writes to.
func PrepareSave(name string, layout []ExportGroup, now time.Time) (string, error) {
	if err := ValidateLayout(layout); err != nil {
		return "", err
	}
	return FilenameFor(name, now)
}

// SortSummaries orders summaries most recently modified first.
// Ties fall back to filename so listings are stable.
func SortSummaries(list []LayoutSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].ModifiedAt.Equal(list[j].ModifiedAt) {
			return list[i].ModifiedAt.After(list[j].ModifiedAt)
		}
		return list[i].Filename < list[j].Filename
	})
}
