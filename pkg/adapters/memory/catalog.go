package memory

import (
	"context"
	"sort"

	"github.com/aretw0/layoutkit/pkg/domain"
)

// CatalogLoader implements ports.CatalogLoader over a fixed catalog.
type CatalogLoader struct {
	catalog *domain.Catalog
}

// NewCatalogLoader creates a loader that always returns catalog.
func NewCatalogLoader(catalog *domain.Catalog) *CatalogLoader {
	if catalog == nil {
		catalog = domain.NewCatalog()
	}
	return &CatalogLoader{catalog: catalog}
}

// NewCatalogFromMap creates a loader from plain definitions. Field ids are
// ordered by key since Go maps carry no order; this is meant for tests.
func NewCatalogFromMap(defs map[string]map[string]any) *CatalogLoader {
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	catalog := domain.NewCatalog()
	for _, id := range ids {
		catalog.Set(id, domain.AttributesFromMap(defs[id]))
	}
	return &CatalogLoader{catalog: catalog}
}

// LoadCatalog returns the configured catalog.
func (l *CatalogLoader) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	return l.catalog, nil
}
