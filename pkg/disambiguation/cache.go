// Package disambiguation maps settlement keys found in GRAO tables to EKATTE
// codes and keeps the mapping in a persistent, resumable cache.
//
// The cache holds three collections: key to code, code to the source triple
// the code was first resolved from, and the keys that matched nothing. A key
// counts as resolved only when both mapping directions are present; resolved
// keys are never sent to the register again, so an interrupted run can be
// restarted at the cost of at most the key that was in flight.
package disambiguation

import (
	"context"
	"sort"
	"sync"

	"github.com/db-afk/GRAO-tables-processing/pkg/ekatte"
)

// Origin is the settlement triple as printed in the source table.
type Origin struct {
	Region       string `yaml:"region" json:"region"`
	Municipality string `yaml:"municipality" json:"municipality"`
	Settlement   string `yaml:"settlement" json:"settlement"`
}

// Snapshot is the full persisted state of the cache.
type Snapshot struct {
	Forward  map[ekatte.Key]ekatte.Code
	Reverse  map[ekatte.Code]Origin
	Failures []ekatte.Key
}

// Store persists cache snapshots. Every save replaces the stored collection
// as a whole.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	SaveMappings(ctx context.Context, forward map[ekatte.Key]ekatte.Code, reverse map[ekatte.Code]Origin) error
	SaveFailures(ctx context.Context, failures []ekatte.Key) error
	Close() error
}

// Cache is the in-memory view of a Store.
type Cache struct {
	mu       sync.RWMutex
	store    Store
	forward  map[ekatte.Key]ekatte.Code
	reverse  map[ekatte.Code]Origin
	failures map[ekatte.Key]struct{}
}

// Load reads the whole cache from store.
func Load(ctx context.Context, store Store) (*Cache, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		store:    store,
		forward:  make(map[ekatte.Key]ekatte.Code),
		reverse:  make(map[ekatte.Code]Origin),
		failures: make(map[ekatte.Key]struct{}),
	}
	if snap != nil {
		for k, v := range snap.Forward {
			c.forward[k] = v
		}
		for k, v := range snap.Reverse {
			c.reverse[k] = v
		}
		for _, k := range snap.Failures {
			c.failures[k] = struct{}{}
		}
	}
	return c, nil
}

// Resolved reports whether key has a code whose reverse entry exists too.
func (c *Cache) Resolved(key ekatte.Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	code, ok := c.forward[key]
	if !ok {
		return false
	}
	_, ok = c.reverse[code]
	return ok
}

// Code returns the code of a resolved key.
func (c *Cache) Code(key ekatte.Key) (ekatte.Code, bool) {
	if !c.Resolved(key) {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.forward[key], true
}

// Origin returns the source triple a code was resolved from.
func (c *Cache) Origin(code ekatte.Code) (Origin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.reverse[code]
	return o, ok
}

// Put records a resolution in both directions and persists both mappings
// before returning.
func (c *Cache) Put(ctx context.Context, key ekatte.Key, origin Origin, code ekatte.Code) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forward[key] = code
	c.reverse[code] = origin
	delete(c.failures, key)
	return c.store.SaveMappings(ctx, c.forward, c.reverse)
}

// ReplaceFailures overwrites the stored failure set.
func (c *Cache) ReplaceFailures(ctx context.Context, failures []ekatte.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = make(map[ekatte.Key]struct{}, len(failures))
	for _, k := range failures {
		c.failures[k] = struct{}{}
	}
	return c.store.SaveFailures(ctx, SortedKeys(c.failures))
}

// Failures returns the current failure set in key order.
func (c *Cache) Failures() []ekatte.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SortedKeys(c.failures)
}

// Len returns the number of forward entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.forward)
}

// SortedKeys returns the keys of a key set in ascending order.
func SortedKeys[V any](set map[ekatte.Key]V) []ekatte.Key {
	keys := make([]ekatte.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
