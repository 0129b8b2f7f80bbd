package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces layout keys.
const DefaultPrefix = "layoutkit:layout:"

// Repository implements ports.LayoutRepository using Redis.
// Each layout is a JSON string under prefix+filename; a sorted set under
// prefix+"index" scores filenames by modification time (unix millis).
type Repository struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures the Repository.
type Option func(*Repository)

// WithTTL sets the expiration for stored layouts. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix for layouts.
func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// WithClock overrides the clock used for modification times.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New creates a new Redis repository with options.
func New(address, password string, db int, opts ...Option) *Repository {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis repository from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Repository {
	r := &Repository{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (r *Repository) Client() *backend.Client {
	return r.client
}

func (r *Repository) key(filename string) string {
	return r.prefix + filename
}

func (r *Repository) indexKey() string {
	return r.prefix + "index"
}

// Save stores the layout JSON and indexes it in one pipeline.
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

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(filename), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{
		Score:  float64(now.UnixMilli()),
		Member: filename,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.SavedLayout{}, fmt.Errorf("failed to save to redis: %w", err)
	}

	return domain.SavedLayout{Filename: filename, StorageLocation: "redis://" + r.key(filename)}, nil
}

// List returns indexed layouts, most recent first.
// Index entries whose key has expired are pruned lazily.
func (r *Repository) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	members, err := r.client.ZRevRangeWithScores(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	if len(members) == 0 {
		return []domain.LayoutSummary{}, nil
	}

	pipe := r.client.Pipeline()
	sizes := make([]*backend.IntCmd, len(members))
	for i, m := range members {
		sizes[i] = pipe.StrLen(ctx, r.key(m.Member.(string)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read layout sizes: %w", err)
	}

	list := make([]domain.LayoutSummary, 0, len(members))
	var stale []any
	for i, m := range members {
		filename := m.Member.(string)
		size := sizes[i].Val()
		if size == 0 {
			stale = append(stale, filename)
			continue
		}
		list = append(list, domain.LayoutSummary{
			Filename:   filename,
			Name:       domain.NameFromFilename(filename),
			Size:       size,
			ModifiedAt: time.UnixMilli(int64(m.Score)).UTC(),
		})
	}

	if len(stale) > 0 {
		if err := r.client.ZRem(ctx, r.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired layouts: %w", err)
		}
	}

	domain.SortSummaries(list)
	return list, nil
}

// Latest returns the most recently saved layout, or nil when there is none.
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

// Get retrieves the layout stored under filename.
func (r *Repository) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return nil, err
	}

	val, err := r.client.Get(ctx, r.key(filename)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var layout []domain.ExportGroup
	if err := json.Unmarshal([]byte(val), &layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout %s: %w", filename, err)
	}
	return &domain.LayoutDocument{Filename: filename, Layout: layout}, nil
}

// Delete removes the layout and its index entry.
func (r *Repository) Delete(ctx context.Context, filename string) error {
	filename, err := domain.NormalizeFilename(filename)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(filename))
	pipe.ZRem(ctx, r.indexKey(), filename)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrLayoutNotFound
	}
	return nil
}

// Close closes the redis client.
func (r *Repository) Close() error {
	return r.client.Close()
}
