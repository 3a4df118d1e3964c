// Package cache implements a capacity-bounded, policy-driven cache with
// optional hierarchical spill to a parent cache. Values are externalized
// through a pluggable Store, which decides what "size" means for a given
// payload (count-based, byte-based, or anything else).
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is a pluggable adapter the cache uses to externalize payload
// representation. Implementations may transform the value on the way in
// (compress, encode) and must be able to reverse that transformation on the
// way out.
type Store interface {
	// StoreValue transforms value into its stored representation and
	// reports its size in the store's unit (e.g. bytes, or 1 for a
	// count-based store).
	StoreValue(key string, value any) (stored any, size int64, err error)

	// RestoreValue is the inverse of StoreValue. It must be pure and
	// idempotent.
	RestoreValue(key string, stored any) (any, error)

	// DiscardValue releases any resources owned by the stored
	// representation. It must tolerate repeated calls for the same key.
	DiscardValue(key string, stored any)
}

// MemoryStore is the default in-memory store: it returns the value
// unchanged and reports a size of 1, making the cache's capacity a plain
// item count.
type MemoryStore struct{}

func (MemoryStore) StoreValue(_ string, value any) (any, int64, error) { return value, 1, nil }
func (MemoryStore) RestoreValue(_ string, stored any) (any, error)     { return stored, nil }
func (MemoryStore) DiscardValue(_ string, _ any)                       {}

// Policy is the total ordering used to pick eviction victims. Victims are
// selected by sorting resident items by the policy's key, ascending, and
// sweeping from the front until the projected size fits.
type Policy int

const (
	// PolicyLRU discards the Least Recently Used items first.
	PolicyLRU Policy = iota
	// PolicyMRU discards the Most Recently Used items first.
	PolicyMRU
	// PolicyLFU discards the Least Frequently Used items first.
	PolicyLFU
	// PolicyRR discards items by an arbitrary-looking partition of access
	// counts — a cheap pseudo-random replacement.
	PolicyRR
)

func (p Policy) String() string {
	switch p {
	case PolicyLRU:
		return "LRU"
	case PolicyMRU:
		return "MRU"
	case PolicyLFU:
		return "LFU"
	case PolicyRR:
		return "RR"
	default:
		return "unknown"
	}
}

// item is the cache-private record for a resident key.
type item struct {
	key          string
	storedValue  any
	storedSize   int64
	creationTime time.Time
	accessTime   time.Time
	accessCount  uint64
}

func (it *item) touch() {
	it.accessTime = time.Now()
	it.accessCount++
}

func (it *item) policyKey(p Policy) float64 {
	switch p {
	case PolicyMRU:
		return -float64(it.accessTime.UnixNano())
	case PolicyLFU:
		return float64(it.accessCount)
	case PolicyRR:
		return float64(it.accessCount % 2)
	default: // PolicyLRU
		return float64(it.accessTime.UnixNano())
	}
}

// Cache is a capacity-bounded key/value store with pluggable eviction
// policy and an optional parent tier. A parent cache, if present, never
// holds a key that is also resident in the child: promoted victims move
// from child to parent, and puts/removes on the child always clear the key
// from the parent first.
type Cache struct {
	store     Store
	capacity  int64
	threshold float64
	maxSize   int64
	policy    Policy
	parent    *Cache

	mu    sync.Mutex
	items map[string]*item
	order []*item // insertion order, used for deterministic tie-breaks
	size  int64
}

// New creates a cache with the given store, capacity and threshold
// (max_size = capacity * threshold), eviction policy, and optional parent
// tier. A nil store defaults to MemoryStore.
func New(store Store, capacity int64, threshold float64, policy Policy, parent *Cache) *Cache {
	if store == nil {
		store = MemoryStore{}
	}
	return &Cache{
		store:     store,
		capacity:  capacity,
		threshold: threshold,
		maxSize:   int64(float64(capacity) * threshold),
		policy:    policy,
		parent:    parent,
		items:     make(map[string]*item),
	}
}

// Policy returns the cache's eviction policy.
func (c *Cache) Policy() Policy { return c.policy }

// Capacity returns the configured capacity.
func (c *Cache) Capacity() int64 { return c.capacity }

// Threshold returns the configured threshold.
func (c *Cache) Threshold() float64 { return c.threshold }

// MaxSize returns capacity * threshold.
func (c *Cache) MaxSize() int64 { return c.maxSize }

// Size returns the sum of stored sizes of all locally resident items.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Parent returns the parent cache, or nil.
func (c *Cache) Parent() *Cache { return c.parent }

// GetValue looks up key. If resident locally, its access bookkeeping is
// refreshed and the restored value is returned. Otherwise, if a parent
// cache is present, the lookup is delegated to it (the parent observes its
// own access bookkeeping); the value is returned but never promoted into
// this tier. Returns (nil, false) if absent everywhere.
func (c *Cache) GetValue(key string) (any, bool) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok {
		it.touch()
		stored := it.storedValue
		c.mu.Unlock()
		value, err := c.store.RestoreValue(key, stored)
		if err != nil {
			return nil, false
		}
		return value, true
	}
	parent := c.parent
	c.mu.Unlock()

	if parent != nil {
		return parent.GetValue(key)
	}
	return nil, false
}

// PutValue stores value under key. If a parent cache is present, key is
// removed from it first (the child takes ownership). Any existing local
// item under key is evicted before the new value is stored. If admitting
// the new item would exceed MaxSize, Trim runs first to make room.
func (c *Cache) PutValue(key string, value any) error {
	if c.parent != nil {
		c.parent.RemoveValue(key)
	}

	c.mu.Lock()
	if old, ok := c.items[key]; ok {
		c.removeItemLocked(old)
		c.size -= old.storedSize
		c.mu.Unlock()
		c.store.DiscardValue(key, old.storedValue)
		c.mu.Lock()
	}

	stored, size, err := c.store.StoreValue(key, value)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("cache: put %q: %w", key, err)
	}
	needsTrim := c.size+size > c.maxSize
	c.mu.Unlock()

	if needsTrim {
		c.Trim(size)
	}

	c.mu.Lock()
	newItem := &item{
		key:          key,
		storedValue:  stored,
		storedSize:   size,
		creationTime: time.Now(),
	}
	newItem.touch()
	c.items[key] = newItem
	c.order = append(c.order, newItem)
	c.size += size
	c.mu.Unlock()
	return nil
}

// RemoveValue removes key from the parent (if any) then locally, discarding
// its stored representation. A no-op if key is absent.
func (c *Cache) RemoveValue(key string) {
	if c.parent != nil {
		c.parent.RemoveValue(key)
	}
	c.mu.Lock()
	it, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.removeItemLocked(it)
	c.size -= it.storedSize
	c.mu.Unlock()
	c.store.DiscardValue(key, it.storedValue)
}

// Clear empties the cache. If clearParent is true, the parent is cleared
// recursively too. Otherwise, every locally resident value is copied up to
// the parent via PutValue before being removed locally.
func (c *Cache) Clear(clearParent bool) {
	if clearParent && c.parent != nil {
		c.parent.Clear(clearParent)
	}

	c.mu.Lock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, key := range keys {
		if c.parent != nil && !clearParent {
			if value, ok := c.valueForPromotion(key); ok {
				c.parent.PutValue(key, value)
			}
			// Local-only removal: RemoveValue would also drop the copy just
			// handed to the parent.
			c.mu.Lock()
			it, ok := c.items[key]
			if ok {
				c.removeItemLocked(it)
				c.size -= it.storedSize
			}
			c.mu.Unlock()
			if ok {
				c.store.DiscardValue(key, it.storedValue)
			}
			continue
		}
		c.RemoveValue(key)
	}
}

// Trim selects victims whose removal brings the projected size (current
// size plus extraSize) under MaxSize, then evicts them. Victims are chosen
// by sorting all resident items by the policy key ascending and sweeping in
// that order while the running projected size still exceeds
// MaxSize - extraSize.
//
// Selection happens under the lock; eviction happens after releasing it, so
// another thread may run between selection and eviction. A selected key
// that another thread already removed is tolerated as a no-op; a key newly
// inserted after selection is left for the next Trim. This makes the
// capacity bound "eventually under MaxSize after quiescence" rather than a
// hard real-time guarantee.
func (c *Cache) Trim(extraSize int64) {
	c.mu.Lock()
	snapshot := make([]*item, len(c.order))
	copy(snapshot, c.order)
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].policyKey(c.policy) < snapshot[j].policyKey(c.policy)
	})

	limit := c.maxSize - extraSize
	size := c.size
	var victims []string
	for _, it := range snapshot {
		if size <= limit {
			break
		}
		victims = append(victims, it.key)
		size -= it.storedSize
	}
	c.mu.Unlock()

	for _, key := range victims {
		var (
			value    any
			hasValue bool
		)
		if c.parent != nil {
			value, hasValue = c.valueForPromotion(key)
		}
		c.RemoveValue(key)
		if c.parent != nil && hasValue {
			c.parent.PutValue(key, value)
		}
	}
}

// valueForPromotion restores the value for a still-locally-resident key
// without delegating to the parent, refreshing its access bookkeeping. Used
// by Trim/Clear to fetch a value immediately before it is removed and
// handed to the parent.
func (c *Cache) valueForPromotion(key string) (any, bool) {
	c.mu.Lock()
	it, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	it.touch()
	stored := it.storedValue
	c.mu.Unlock()

	value, err := c.store.RestoreValue(key, stored)
	if err != nil {
		return nil, false
	}
	return value, true
}

// removeItemLocked removes it from the map and the order slice. Must be
// called with c.mu held.
func (c *Cache) removeItemLocked(it *item) {
	delete(c.items, it.key)
	for i, other := range c.order {
		if other == it {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
