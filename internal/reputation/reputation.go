// Package reputation holds per-actor reputation scores, the scoring policies applied
// at settlement and the admission policy consulted at join time.
package reputation

import (
	"context"
	"sort"
	"sync"
)

// Delta is a change applied to one actor's score.
type Delta struct {
	Actor  string `json:"actor"`
	Change int64  `json:"change"`
}

// Entry is an actor's current score.
type Entry struct {
	Actor string `json:"actor"`
	Score int64  `json:"score"`
}

// Store persists reputation scores. Unknown actors score zero. Apply must be
// all-or-nothing: either every delta is applied or none is.
type Store interface {
	Get(ctx context.Context, actor string) (int64, error)
	Apply(ctx context.Context, deltas []Delta) error
	List(ctx context.Context) ([]Entry, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scores: make(map[string]int64)}
}

// Set overwrites an actor's score. It is meant for seeding fixtures.
func (s *MemoryStore) Set(actor string, score int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[actor] = score
}

func (s *MemoryStore) Get(ctx context.Context, actor string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[actor], nil
}

func (s *MemoryStore) Apply(ctx context.Context, deltas []Delta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range deltas {
		if d.Change == 0 {
			continue
		}
		s.scores[d.Actor] += d.Change
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.scores))
	for actor, score := range s.scores {
		entries = append(entries, Entry{Actor: actor, Score: score})
	}
	s.mu.RUnlock()
	SortEntries(entries)
	return entries, nil
}

// SortEntries orders entries by descending score, then by actor.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Actor < entries[j].Actor
	})
}
