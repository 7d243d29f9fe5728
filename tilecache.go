package mapengine

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/simplelru"
)

// cacheKey scopes a resident tile by its owning DataSource's name in
// addition to its TileKey (which already carries the horizontal wrap
// offset): two DataSources producing a tile at the same TileKey must not
// collide in the same cache slot.
type cacheKey struct {
	source string
	key    TileKey
}

// TileCache is a bounded, budget-driven store of resident Tiles, keyed by
// (DataSource name, TileKey). It never evicts a tile marked pinned
// (currently visible, or a fallback substitute for a visible tile) even
// when it is the least-recently-used entry — a rule the backing
// simplelru.LRU's own count-based eviction cannot express, so TileCache
// disables that and drives eviction itself against a budget measured in
// costOf units (with the default unit cost, a tile count).
type TileCache struct {
	budget    int64 // total costOf units the cache may hold
	used      int64
	costOf    func(*Tile) int64
	backing   *lru.LRU
	tick      uint64
	evictions int64
}

// defaultTileCost is used when NewTileCache is given a nil cost function;
// it treats every tile as a fixed unit cost, turning the budget into a
// simple tile-count cap.
func defaultTileCost(*Tile) int64 { return 1 }

// NewTileCache returns a cache that evicts least-recently-used, unpinned
// tiles once the sum of costOf(tile) across resident tiles would exceed
// budget. costOf may be nil to fall back to a per-tile unit cost.
func NewTileCache(budget int64, costOf func(*Tile) int64) (*TileCache, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("mapengine: budget %d: %w", budget, ErrCacheBudgetTooSmall)
	}
	if costOf == nil {
		costOf = defaultTileCost
	}
	tc := &TileCache{budget: budget, costOf: costOf}
	// The library's own size limit is set absurdly high; eviction is
	// driven entirely by Put's budget check below, via Remove of the
	// oldest unpinned tile that oldestUnpinned finds.
	backing, err := lru.NewWithEvict(1<<31-1, tc.onEvict)
	if err != nil {
		return nil, fmt.Errorf("mapengine: creating tile cache: %w", err)
	}
	tc.backing = backing
	return tc, nil
}

// onEvict is invoked by the backing LRU whenever a key is removed, whether
// by our own Remove during budget eviction or an explicit Remove, Clear or
// ClearAll.
func (c *TileCache) onEvict(key, value interface{}) {
	tile := value.(*Tile)
	tile.State = TileEvicted
	if tile.Content != nil {
		tile.Content.Release()
	}
	c.used -= c.costOf(tile)
	c.evictions++
}

// Get returns the tile for (source, key) and bumps its recency, or
// ok=false on miss.
func (c *TileCache) Get(source string, key TileKey) (*Tile, bool) {
	v, ok := c.backing.Get(cacheKey{source: source, key: key})
	if !ok {
		return nil, false
	}
	tile := v.(*Tile)
	c.tick++
	tile.lastTouch = c.tick
	return tile, true
}

// Put inserts or replaces tile under (tile.Source, tile.Key), then evicts
// least-recently-used unpinned tiles (oldest first) until the cache is back
// within budget. If every resident tile is pinned and the budget is still
// exceeded, Put leaves the cache over budget rather than evicting a visible
// tile — TileCache.OverBudget reports this so callers can log it once per
// frame per the resource-exhaustion error-handling rule, instead of once
// per tile.
func (c *TileCache) Put(tile *Tile) {
	ck := cacheKey{source: tile.Source, key: tile.Key}
	if existing, ok := c.backing.Get(ck); ok {
		c.used -= c.costOf(existing.(*Tile))
	}
	c.backing.Add(ck, tile)
	c.used += c.costOf(tile)
	c.tick++
	tile.lastTouch = c.tick

	c.evictUntilWithinBudget()
}

// evictUntilWithinBudget removes least-recently-used unpinned tiles until
// total cost fits the budget or no unpinned tile remains.
func (c *TileCache) evictUntilWithinBudget() {
	for c.used > c.budget {
		victim, ok := c.oldestUnpinned()
		if !ok {
			return
		}
		c.backing.Remove(victim)
	}
}

// oldestUnpinned scans resident keys for the lowest lastTouch among unpinned
// tiles. The backing LRU's own RemoveOldest would remove the globally
// oldest entry regardless of pin state, so the pin rule requires this
// explicit scan instead.
func (c *TileCache) oldestUnpinned() (cacheKey, bool) {
	var (
		found    bool
		bestKey  cacheKey
		bestTick uint64
	)
	for _, k := range c.backing.Keys() {
		ck := k.(cacheKey)
		v, ok := c.backing.Peek(ck)
		if !ok {
			continue
		}
		tile := v.(*Tile)
		if tile.pinned {
			continue
		}
		if !found || tile.lastTouch < bestTick {
			found = true
			bestKey = ck
			bestTick = tile.lastTouch
		}
	}
	return bestKey, found
}

// Pin marks (source, key)'s tile as ineligible for eviction (it is visible,
// or a fallback substitute for a visible tile this frame).
func (c *TileCache) Pin(source string, key TileKey) {
	if v, ok := c.backing.Peek(cacheKey{source: source, key: key}); ok {
		v.(*Tile).pinned = true
	}
}

// UnpinAll clears the pinned flag on every resident tile; callers call this
// once per frame before re-pinning the new visible set.
func (c *TileCache) UnpinAll() {
	for _, k := range c.backing.Keys() {
		if v, ok := c.backing.Peek(k.(cacheKey)); ok {
			v.(*Tile).pinned = false
		}
	}
}

// Remove evicts (source, key)'s tile immediately regardless of pin state,
// releasing its GPUResource.
func (c *TileCache) Remove(source string, key TileKey) {
	c.backing.Remove(cacheKey{source: source, key: key})
}

// Clear purges every resident tile belonging to source, disposing each.
// Used when a DataSource is unregistered (spec §4.4's clear(data_source?)).
func (c *TileCache) Clear(source string) {
	for _, k := range c.backing.Keys() {
		ck := k.(cacheKey)
		if ck.source == source {
			c.backing.Remove(ck)
		}
	}
}

// ClearAll purges every resident tile from every DataSource.
func (c *TileCache) ClearAll() {
	c.backing.Purge()
}

// Len returns the number of resident tiles.
func (c *TileCache) Len() int {
	return c.backing.Len()
}

// Used returns the total cost currently resident.
func (c *TileCache) Used() int64 {
	return c.used
}

// OverBudget reports whether the cache currently exceeds its budget (which
// can only happen when every resident tile is pinned).
func (c *TileCache) OverBudget() bool {
	return c.used > c.budget
}

// Evictions returns the lifetime count of tiles evicted from the cache.
func (c *TileCache) Evictions() int64 {
	return c.evictions
}
