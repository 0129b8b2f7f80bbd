package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
	err      error
}

func (r *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return func(ctx context.Context) error {
		r.mu.Lock()
		r.released++
		r.mu.Unlock()
		return nil
	}, nil
}

func TestLocker_SerialisesSavesPerFilename(t *testing.T) {
	inner := newSlowRepo()
	repo := NewLockingMiddleware()(inner)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.Save(ctx, "Shared Form", []domain.ExportGroup{})
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(ctx, fmt.Sprintf("other-%d", i), []domain.ExportGroup{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, inner.max("shared-form.json"), "saves to one filename must never overlap")
	assert.EqualValues(t, 20, inner.calls.Load())
}

func TestLocker_LockLifecycle(t *testing.T) {
	l := newLocker(newSlowRepo())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("layout-%d", i)
		_, err := l.Save(ctx, name, []domain.ExportGroup{})
		require.NoError(t, err)
		require.NoError(t, l.Delete(ctx, name))
	}

	assert.Zero(t, l.activeLocks(), "lock entries must be released once unused")
}

func TestLocker_Distributed(t *testing.T) {
	ctx := context.Background()

	t.Run("Locks By Filename", func(t *testing.T) {
		dist := &recordingLocker{}
		repo := NewLockingMiddleware(WithDistributedLocker(dist), WithLockTTL(time.Minute))(newSlowRepo())

		_, err := repo.Save(ctx, "Customer Form", []domain.ExportGroup{})
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, "customer-form"))

		assert.Equal(t, []string{"customer-form.json", "customer-form.json"}, dist.keys)
		assert.Equal(t, 2, dist.released)
	})

	t.Run("Acquire Failure Aborts", func(t *testing.T) {
		inner := newSlowRepo()
		dist := &recordingLocker{err: errors.New("redis down")}
		repo := NewLockingMiddleware(WithDistributedLocker(dist))(inner)

		_, err := repo.Save(ctx, "form", []domain.ExportGroup{})
		assert.ErrorContains(t, err, "redis down")
		assert.Zero(t, inner.calls.Load())
	})

	t.Run("Invalid Input Skips Locking", func(t *testing.T) {
		dist := &recordingLocker{}
		repo := NewLockingMiddleware(WithDistributedLocker(dist))(newSlowRepo())

		err := repo.Delete(ctx, "../etc/passwd")
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, dist.keys)
	})
}
