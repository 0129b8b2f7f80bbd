package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
)

type entry struct {
	data     []byte
	modified time.Time
}

// Repository implements ports.LayoutRepository in memory.
// Documents are kept serialised so callers never share state with the store.
// Safe for concurrent use.
type Repository struct {
	data map[string]entry
	mu   sync.RWMutex
	now  func() time.Time
}

// Option configures the Repository.
type Option func(*Repository)

// WithClock overrides the clock used to stamp modification times.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository creates a new in-memory repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save stores the layout under the filename derived from name.
func (r *Repository) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	now := r.now()
	filename, err := domain.PrepareSave(name, layout, now)
	if err != nil {
		return domain.SavedLayout{}, err
	}
	data, err := json.Marshal(layout)
	if err != nil {
		return domain.SavedLayout{}, fmt.Errorf("failed to marshal layout: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[filename] = entry{data: data, modified: now}
	return domain.SavedLayout{Filename: filename, StorageLocation: "memory://" + filename}, nil
}

// List returns the stored layouts, most recent first.
func (r *Repository) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	r.mu.RLock()
	list := make([]domain.LayoutSummary, 0, len(r.data))
	for filename, e := range r.data {
		list = append(list, domain.LayoutSummary{
			Filename:   filename,
			Name:       domain.NameFromFilename(filename),
			Size:       int64(len(e.data)),
			ModifiedAt: e.modified,
		})
	}
	r.mu.RUnlock()

	domain.SortSummaries(list)
	return list, nil
}

// Latest returns the most recently saved layout, or nil when the repository is empty.
func (r *Repository) Latest(ctx context.Context) (*domain.LayoutDocument, error) {
	list, _ := r.List(ctx)
	if len(list) == 0 {
		return nil, nil
	}
	return r.Get(ctx, list[0].Filename)
}

// Get returns a copy of the layout stored under filename.
func (r *Repository) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	e, ok := r.data[filename]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrLayoutNotFound
	}

	var layout []domain.ExportGroup
	if err := json.Unmarshal(e.data, &layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout %s: %w", filename, err)
	}
	return &domain.LayoutDocument{Filename: filename, Layout: layout}, nil
}

// Delete removes the layout stored under filename.
func (r *Repository) Delete(ctx context.Context, filename string) error {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[filename]; !ok {
		return domain.ErrLayoutNotFound
	}
	delete(r.data, filename)
	return nil
}
