package meta

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/melowntech/vtscore/internal/tileid"
)

// cacheKey addresses one decoded meta-tile: its origin and grid size.
type cacheKey struct {
	origin tileid.ID
	k      int
}

// Cache is an in-memory LRU of decoded Tiles, shaped like the teacher's
// internal/cog.TileCache for re-decoded COG source tiles. It is standalone:
// neither internal/resource nor internal/traverse uses it. It is backed by a maintained
// LRU library (the pack's sibling repo noisetorch-NoiseTorch already
// depends on hashicorp/golang-lru) instead of a hand-rolled mutex+slice.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[cacheKey, Tile]
}

// NewCache creates a meta-tile cache holding at most maxEntries decoded
// tiles.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	l, _ := lru.New[cacheKey, Tile](maxEntries)
	return &Cache{lru: l}
}

// Get returns a cached decoded Tile for the meta-tile with the given origin
// and grid size K, if present.
func (c *Cache) Get(origin tileid.ID, k int) (Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(cacheKey{origin, k})
}

// Put stores a decoded Tile, evicting the least recently used entry if the
// cache is full.
func (c *Cache) Put(t Tile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(cacheKey{t.Origin, t.K}, t)
}

// Len returns the number of decoded tiles currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops all cached entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
