// Package subscribers tracks the set of users who have opted into the daily
// broadcast.
package subscribers

import (
	"fmt"
	"sort"
	"sync"
)

// Repository optionally persists the subscriber set across restarts.
type Repository interface {
	LoadAll() ([]int64, error)
	Add(userID int64) error
}

// Registry is a concurrency-safe set of subscriber user IDs. Membership is
// idempotent and there is no removal path.
type Registry struct {
	mu      sync.RWMutex
	members map[int64]struct{}
	repo    Repository
}

// NewRegistry creates a registry, preloading members from repo when one is
// given. A nil repo keeps the set purely in memory.
func NewRegistry(repo Repository) (*Registry, error) {
	r := &Registry{members: make(map[int64]struct{}), repo: repo}
	if repo != nil {
		ids, err := repo.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("load subscribers: %w", err)
		}
		for _, id := range ids {
			r.members[id] = struct{}{}
		}
	}
	return r, nil
}

// Subscribe inserts the user into the set. Re-subscribing is a no-op; added
// reports whether this call changed membership. A persistence failure still
// leaves the user subscribed in memory.
func (r *Registry) Subscribe(userID int64) (added bool, err error) {
	r.mu.Lock()
	if _, ok := r.members[userID]; ok {
		r.mu.Unlock()
		return false, nil
	}
	r.members[userID] = struct{}{}
	r.mu.Unlock()

	if r.repo != nil {
		if err := r.repo.Add(userID); err != nil {
			return true, fmt.Errorf("persist subscriber %d: %w", userID, err)
		}
	}
	return true, nil
}

// Snapshot returns a sorted copy of the current membership, safe to iterate
// while the registry keeps mutating.
func (r *Registry) Snapshot() []int64 {
	r.mu.RLock()
	out := make([]int64, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) Contains(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[userID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
