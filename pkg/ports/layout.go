package ports

import (
	"context"

	"github.com/aretw0/layoutkit/pkg/domain"
)

// LayoutRepository persists named layout documents.
// Implementations must be safe for concurrent use.
type LayoutRepository interface {
	// Save stores layout under the filename derived from name (see domain.FilenameFor),
	// overwriting any previous document with that filename.
	// Returns a *domain.ValidationError when layout is nil or name is unusable.
	Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error)

	// List returns summaries of every stored layout, most recently modified first.
	List(ctx context.Context) ([]domain.LayoutSummary, error)

	// Latest returns the most recently modified layout, or nil (and no error) when none exist.
	Latest(ctx context.Context) (*domain.LayoutDocument, error)

	// Get returns the layout stored under filename.
	// Returns domain.ErrLayoutNotFound if it does not exist.
	Get(ctx context.Context, filename string) (*domain.LayoutDocument, error)

	// Delete removes the layout stored under filename.
	// Returns domain.ErrLayoutNotFound if it does not exist.
	Delete(ctx context.Context, filename string) error
}

// CatalogLoader retrieves the field catalog the workspace is built from.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)
}
