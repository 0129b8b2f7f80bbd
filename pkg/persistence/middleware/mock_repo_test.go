package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	"github.com/aretw0/layoutkit/pkg/domain"
)

// slowRepo records the highest number of concurrent writers per filename.
type slowRepo struct {
	*memory.Repository

	mu      sync.Mutex
	active  map[string]int
	maxSeen map[string]int
	calls   atomic.Int32
}

func newSlowRepo() *slowRepo {
	return &slowRepo{
		Repository: memory.NewRepository(),
		active:     make(map[string]int),
		maxSeen:    make(map[string]int),
	}
}

func (s *slowRepo) enter(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[key]++
	if s.active[key] > s.maxSeen[key] {
		s.maxSeen[key] = s.active[key]
	}
}

func (s *slowRepo) leave(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[key]--
}

func (s *slowRepo) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	key, _ := domain.FilenameFor(name, time.Now())
	s.enter(key)
	defer s.leave(key)
	s.calls.Add(1)
	time.Sleep(5 * time.Millisecond) // simulate IO
	return s.Repository.Save(ctx, name, layout)
}

func (s *slowRepo) max(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSeen[key]
}
