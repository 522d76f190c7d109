package workspace

import (
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/seed"
)

// Registry maps session tokens to their workspaces. Workspaces expire with
// the same TTL as sessions and are recreated from seed data on demand.
type Registry struct {
	items *cache.LRUCache[*Workspace]
	seed  *seed.Data
	clock func() time.Time
}

// NewRegistry creates a registry holding at most max workspaces.
func NewRegistry(data *seed.Data, max int, ttl time.Duration, clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		items: cache.NewLRUCache[*Workspace](max, ttl, cache.WithClock[*Workspace](clock)),
		seed:  data,
		clock: clock,
	}
}

// Get returns the workspace for token, creating a seeded one if needed.
func (r *Registry) Get(token, owner string) *Workspace {
	if ws, ok := r.items.Get(token); ok {
		r.items.Touch(token)
		return ws
	}
	ws := New(owner, r.seed, r.clock)
	r.items.Set(token, ws)
	return ws
}

// Drop discards the workspace of a session that ended.
func (r *Registry) Drop(token string) {
	r.items.Delete(token)
}

// Each calls fn for every live workspace.
func (r *Registry) Each(fn func(ws *Workspace)) {
	r.items.Range(func(_ string, ws *Workspace) bool {
		fn(ws)
		return true
	})
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	return r.items.Size()
}

// Cache exposes the backing cache so it can join the periodic sweep.
func (r *Registry) Cache() cache.Cleaner {
	return r.items
}
