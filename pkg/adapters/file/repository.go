package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
)

// DefaultDir is where layouts are stored when no directory is configured.
var DefaultDir = filepath.Join("storage", "layouts")

// Repository implements ports.LayoutRepository on the local filesystem.
// Every layout is a pretty-printed JSON file in BasePath; its mtime is the
// layout's modification time.
type Repository struct {
	BasePath string
	now      func() time.Time
}

// Option configures the Repository.
type Option func(*Repository)

// WithClock overrides the clock used to stamp file modification times.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New creates a new Repository rooted at basePath.
// If basePath is empty, it defaults to DefaultDir.
func New(basePath string, opts ...Option) *Repository {
	if basePath == "" {
		basePath = DefaultDir
	}
	r := &Repository{BasePath: basePath, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save writes the layout atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (r *Repository) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	now := r.now()
	filename, err := domain.PrepareSave(name, layout, now)
	if err != nil {
		return domain.SavedLayout{}, err
	}

	if err := os.MkdirAll(r.BasePath, 0755); err != nil {
		return domain.SavedLayout{}, fmt.Errorf("failed to ensure layout directory: %w", err)
	}

	data, err := json.MarshalIndent(layout, "", "    ")
	if err != nil {
		return domain.SavedLayout{}, fmt.Errorf("failed to marshal layout: %w", err)
	}

	destPath := filepath.Join(r.BasePath, filename)
	if err := writeAtomic(r.BasePath, destPath, data); err != nil {
		return domain.SavedLayout{}, err
	}
	if err := os.Chtimes(destPath, now, now); err != nil {
		return domain.SavedLayout{}, fmt.Errorf("failed to stamp layout file: %w", err)
	}

	location, err := filepath.Abs(destPath)
	if err != nil {
		location = destPath
	}
	return domain.SavedLayout{Filename: filename, StorageLocation: location}, nil
}

// writeAtomic writes data next to destPath and renames it into place, so
// readers never observe a partially written layout.
func writeAtomic(dir, destPath string, data []byte) error {
	// Same directory keeps the rename on one filesystem. The dot prefix hides
	// the temp file from List and cannot collide with a valid layout filename.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing layout file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// List returns every *.json layout in the directory, most recent first.
// A missing directory is an empty repository.
func (r *Repository) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	entries, err := os.ReadDir(r.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.LayoutSummary{}, nil
		}
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	list := make([]domain.LayoutSummary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != domain.LayoutExt || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // deleted while listing
			}
			return nil, fmt.Errorf("failed to stat layout %s: %w", name, err)
		}
		list = append(list, domain.LayoutSummary{
			Filename:   name,
			Name:       domain.NameFromFilename(name),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	domain.SortSummaries(list)
	return list, nil
}

// Latest returns the most recently modified layout, or nil when there is none.
func (r *Repository) Latest(ctx context.Context) (*domain.LayoutDocument, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return r.Get(ctx, list[0].Filename)
}

// Get reads and decodes the layout stored under filename.
func (r *Repository) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(r.BasePath, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	var layout []domain.ExportGroup
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout %s: %w", filename, err)
	}
	return &domain.LayoutDocument{Filename: filename, Layout: layout}, nil
}

// Delete removes the layout file.
func (r *Repository) Delete(ctx context.Context, filename string) error {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(r.BasePath, filename)); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrLayoutNotFound
		}
		return fmt.Errorf("failed to delete layout file: %w", err)
	}
	return nil
}
