package verdict

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps verdicts in process memory. It exists for tests and
// for ephemeral deployments where the export document is the only
// durability guarantee.
type InMemoryStore struct {
	mu        sync.RWMutex
	reviewers map[string]map[int]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reviewers: make(map[string]map[int]Entry)}
}

func (s *InMemoryStore) Init(_ context.Context, reviewer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviewers[reviewer]; !ok {
		s.reviewers[reviewer] = make(map[int]Entry)
	}
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, reviewer string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table(reviewer)[entry.ReviewID] = entry
	return nil
}

func (s *InMemoryStore) SaveAll(_ context.Context, reviewer string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.table(reviewer)
	for _, e := range entries {
		table[e.ReviewID] = e
	}
	return nil
}

func (s *InMemoryStore) LoadAll(_ context.Context, reviewer string) (map[int]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]Entry, len(s.reviewers[reviewer]))
	for id, e := range s.reviewers[reviewer] {
		out[id] = e
	}
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, reviewer string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.reviewers[reviewer]))
	for _, e := range s.reviewers[reviewer] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ReviewID < entries[j].ReviewID })
	return entries, nil
}

func (s *InMemoryStore) ListReviewers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reviewers := make([]string, 0, len(s.reviewers))
	for r := range s.reviewers {
		reviewers = append(reviewers, r)
	}
	sort.Strings(reviewers)
	return reviewers, nil
}

func (s *InMemoryStore) Durable() bool { return false }

// table returns the reviewer's map, creating it if Init was skipped.
// Callers must hold the write lock.
func (s *InMemoryStore) table(reviewer string) map[int]Entry {
	t, ok := s.reviewers[reviewer]
	if !ok {
		t = make(map[int]Entry)
		s.reviewers[reviewer] = t
	}
	return t
}
