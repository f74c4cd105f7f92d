// Package optimistic applies speculative local state transitions ahead
// of the durable call and deterministically reconciles or rolls back.
// The true correctness guard is the compare-and-set at the store; the
// speculative layer is a responsiveness accelerant only.
package optimistic

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ViewCache holds read projections shared by all readers. Views are
// stored as marshaled JSON so snapshots and rollbacks are byte-exact.
// Only the Coordinator writes to it during a mutation window.
type ViewCache struct {
	mu    sync.RWMutex
	views map[string]json.RawMessage
}

func NewViewCache() *ViewCache {
	return &ViewCache{views: make(map[string]json.RawMessage)}
}

// Get unmarshals the cached view for key into out. Returns false on a
// cache miss.
func (vc *ViewCache) Get(key string, out interface{}) bool {
	vc.mu.RLock()
	raw, ok := vc.views[key]
	vc.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Set stores a view under key
func (vc *ViewCache) Set(key string, view interface{}) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal view %q: %w", key, err)
	}
	vc.mu.Lock()
	vc.views[key] = raw
	vc.mu.Unlock()
	return nil
}

// Invalidate drops a view so the next read re-fetches
func (vc *ViewCache) Invalidate(key string) {
	vc.mu.Lock()
	delete(vc.views, key)
	vc.mu.Unlock()
}

// snapshot captures the exact bytes of each key. A nil entry records
// that the key was absent, so restore can delete it again.
func (vc *ViewCache) snapshot(keys []string) map[string]json.RawMessage {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	snap := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		if raw, ok := vc.views[key]; ok {
			cp := make(json.RawMessage, len(raw))
			copy(cp, raw)
			snap[key] = cp
		} else {
			snap[key] = nil
		}
	}
	return snap
}

// restore puts every snapshotted key back verbatim. Keys outside the
// snapshot are never touched.
func (vc *ViewCache) restore(snap map[string]json.RawMessage) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	for key, raw := range snap {
		if raw == nil {
			delete(vc.views, key)
		} else {
			vc.views[key] = raw
		}
	}
}

// Mutation describes one client action flowing through the coordinator.
type Mutation struct {
	// EntityKey serializes mutations: two mutations with the same key
	// queue rather than interleave their snapshot/restore windows.
	EntityKey string

	// Affects lists every cache key the mutation could touch. Snapshot
	// and rollback cover exactly this set.
	Affects []string

	// Speculate transforms the affected cached views in place using the
	// same pure logic as the state machines. It receives copies of the
	// present views keyed by cache key and returns the replacements.
	// Optional.
	Speculate func(views map[string]json.RawMessage) (map[string]json.RawMessage, error)

	// Durable issues the authoritative call.
	Durable func(ctx context.Context) (interface{}, error)

	// Invalidates lists additional cache keys dropped after a
	// successful durable call.
	Invalidates []string
}

// Coordinator owns the view cache and serializes mutations per entity.
type Coordinator struct {
	cache *ViewCache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(cache *ViewCache) *Coordinator {
	return &Coordinator{
		cache: cache,
		locks: make(map[string]*sync.Mutex),
	}
}

// Cache returns the shared view cache for read paths.
func (c *Coordinator) Cache() *ViewCache {
	return c.cache
}

// Apply runs the strict sequence snapshot -> speculative-apply ->
// durable-call -> commit-or-rollback. On failure every snapshotted view
// is restored verbatim before the error is surfaced; no error is
// swallowed here.
func (c *Coordinator) Apply(ctx context.Context, m Mutation) (interface{}, error) {
	if m.Durable == nil {
		return nil, fmt.Errorf("mutation has no durable call")
	}

	lock := c.entityLock(m.EntityKey)
	lock.Lock()
	defer lock.Unlock()

	snap := c.cache.snapshot(m.Affects)

	if m.Speculate != nil {
		current := make(map[string]json.RawMessage, len(snap))
		for key, raw := range snap {
			if raw == nil {
				continue
			}
			cp := make(json.RawMessage, len(raw))
			copy(cp, raw)
			current[key] = cp
		}
		updated, err := m.Speculate(current)
		if err != nil {
			// A failed speculation is a failed precondition; nothing
			// was written, surface it without touching the cache
			return nil, err
		}
		c.cache.mu.Lock()
		for key, raw := range updated {
			// A key outside the snapshot could not be rolled back
			if _, captured := snap[key]; !captured {
				continue
			}
			c.cache.views[key] = raw
		}
		c.cache.mu.Unlock()
	}

	result, err := m.Durable(ctx)
	if err != nil {
		c.cache.restore(snap)
		return nil, err
	}

	// Authoritative state wins: drop affected views so reads re-fetch
	for _, key := range m.Affects {
		c.cache.Invalidate(key)
	}
	for _, key := range m.Invalidates {
		c.cache.Invalidate(key)
	}

	return result, nil
}

// entityLock returns the lock that serializes mutations for one entity
func (c *Coordinator) entityLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lock, ok := c.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	c.locks[key] = lock
	return lock
}
