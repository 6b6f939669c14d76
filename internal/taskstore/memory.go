package taskstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	task       Task
	finishedAt time.Time
}

// MemoryStore is the single-process task registry: a mutex-guarded map with
// a janitor that evicts finished tasks after the TTL.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]memoryEntry
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		tasks: make(map[string]memoryEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Put(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{task: task}
	if task.Finished() {
		entry.finishedAt = time.Now()
	}
	s.tasks[task.ID] = entry

	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.tasks[id]
	return entry.task, ok, nil
}

// Close stops the janitor.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) janitor() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evict(time.Now())
		}
	}
}

func (s *MemoryStore) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.tasks {
		if !entry.finishedAt.IsZero() && now.Sub(entry.finishedAt) > s.ttl {
			delete(s.tasks, id)
		}
	}
}
