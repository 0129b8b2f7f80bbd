package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Locker serialises Save and Delete per filename.
// It uses reference counting to garbage collect unused locks.
type Locker struct {
	next ports.LayoutRepository

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active locks by filename

	distributed ports.DistributedLocker
	ttl         time.Duration
	logger      *slog.Logger
}

// LockOption configures the locking middleware.
type LockOption func(*Locker)

// WithDistributedLocker adds a cross-replica lock taken after the local one.
func WithDistributedLocker(locker ports.DistributedLocker) LockOption {
	return func(l *Locker) {
		l.distributed = locker
	}
}

// WithLockTTL sets the TTL passed to the distributed locker.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithLockLogger configures a logger for release failures.
func WithLockLogger(logger *slog.Logger) LockOption {
	return func(l *Locker) {
		l.logger = logger
	}
}

// NewLockingMiddleware creates a middleware that serialises writes to the same layout.
func NewLockingMiddleware(opts ...LockOption) Middleware {
	return func(next ports.LayoutRepository) ports.LayoutRepository {
		return newLocker(next, opts...)
	}
}

func newLocker(next ports.LayoutRepository, opts ...LockOption) *Locker {
	l := &Locker{
		next:   next,
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultLockTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// activeLocks reports how many keys currently hold a lock entry.
func (l *Locker) activeLocks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// WithLock executes fn while holding the lock for key.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.release(key)
	}()

	if l.distributed != nil {
		unlock, err := l.distributed.Lock(ctx, key, l.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				l.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"filename", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Save stores the layout while holding the lock for its filename.
func (l *Locker) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	key, err := domain.FilenameFor(name, time.Now())
	if err != nil {
		return domain.SavedLayout{}, err
	}

	var saved domain.SavedLayout
	err = l.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		saved, err = l.next.Save(ctx, name, layout)
		return err
	})
	return saved, err
}

// Delete removes the layout while holding the lock for its filename.
func (l *Locker) Delete(ctx context.Context, filename string) error {
	key, err := domain.NormalizeFilename(filename)
	if err != nil {
		return err
	}
	return l.WithLock(ctx, key, func(ctx context.Context) error {
		return l.next.Delete(ctx, filename)
	})
}

// List delegates to the wrapped repository.
func (l *Locker) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	return l.next.List(ctx)
}

// Latest delegates to the wrapped repository.
func (l *Locker) Latest(ctx context.Context) (*domain.LayoutDocument, error) {
	return l.next.Latest(ctx)
}

// Get delegates to the wrapped repository.
func (l *Locker) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	return l.next.Get(ctx, filename)
}
