package layoutkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/adapters/file"
	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	"github.com/aretw0/layoutkit/pkg/catalog"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/aretw0/layoutkit/pkg/workspace"
)

// Kit is the high-level entry point for the LayoutKit library.
// It pairs a layout repository with a field catalog and hands out workspaces
// bound to both.
type Kit struct {
	repo    ports.LayoutRepository
	catalog ports.CatalogLoader
	logger  *slog.Logger
	newID   func() string
}

// Option defines a functional option for configuring the Kit.
type Option func(*Kit)

// WithRepository injects a custom repository, bypassing the default file storage.
func WithRepository(repo ports.LayoutRepository) Option {
	return func(k *Kit) {
		k.repo = repo
	}
}

// WithCatalogLoader injects the source of field definitions.
func WithCatalogLoader(loader ports.CatalogLoader) Option {
	return func(k *Kit) {
		k.catalog = loader
	}
}

// WithLogger sets a custom structured logger, passed down to every workspace.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kit) {
		k.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator of the workspaces.
func WithIDGenerator(fn func() string) Option {
	return func(k *Kit) {
		k.newID = fn
	}
}

// New creates a Kit storing layouts under dir.
// An empty dir keeps layouts in memory. The embedded default catalog is used
// unless WithCatalogLoader is given.
func New(dir string, opts ...Option) *Kit {
	k := &Kit{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}

	if k.repo == nil {
		if dir == "" {
			k.repo = memory.NewRepository()
		} else {
			k.repo = file.New(dir)
		}
	}
	if k.catalog == nil {
		k.catalog = catalog.NewFileLoader("")
	}
	return k
}

// Repository returns the layout repository.
func (k *Kit) Repository() ports.LayoutRepository {
	return k.repo
}

// Catalog loads the field catalog.
func (k *Kit) Catalog(ctx context.Context) (*domain.Catalog, error) {
	cat, err := k.catalog.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// Workspace creates an empty workspace over the current catalog.
func (k *Kit) Workspace(ctx context.Context) (*workspace.Workspace, error) {
	cat, err := k.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	opts := []workspace.Option{
		workspace.WithRepository(k.repo),
		workspace.WithLogger(k.logger),
	}
	if k.newID != nil {
		opts = append(opts, workspace.WithIDGenerator(k.newID))
	}
	return workspace.New(cat, opts...), nil
}

// Open creates a workspace and loads a layout into it: the one stored under
// filename, or the most recent one when filename is empty.
func (k *Kit) Open(ctx context.Context, filename string) (*workspace.Workspace, error) {
	ws, err := k.Workspace(ctx)
	if err != nil {
		return nil, err
	}

	if filename != "" {
		if err := ws.LoadSpecificLayout(ctx, filename); err != nil {
			return nil, err
		}
		return ws, nil
	}

	if err := ws.LoadLatestLayout(ctx); err != nil {
		return nil, err
	}
	if msg := ws.LoadError(); msg != "" {
		return ws, errors.New(msg)
	}
	return ws, nil
}
