package resource

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// TickRender runs on the render worker: swaps the per-frame touch set into
// the data worker's working set, flushes newly failed availability tests to
// the sidecar file, and performs eviction once every 31 ticks (spec §4.1).
func (c *Cache) TickRender() {
	tick := c.tick.Add(1)

	c.touchSwapMu.Lock()
	pending := c.touchPending
	c.touchPending = roaring.New()
	c.touchLocked.Or(pending)
	c.touchSwapMu.Unlock()

	c.flushFailedAvail()

	if tick%evictionInterval == 0 {
		c.evict(tick)
	}
}

func (c *Cache) flushFailedAvail() {
	c.failedSwapMu.Lock()
	if len(c.failedPending) == 0 {
		c.failedSwapMu.Unlock()
		return
	}
	newlyFailed := c.failedPending
	c.failedPending = make(map[string]bool)
	c.failedSwapMu.Unlock()

	names := make([]string, 0, len(newlyFailed))
	for name := range newlyFailed {
		names = append(names, name)
	}
	if c.disk != nil {
		if err := c.disk.appendFailedAvailList(names); err != nil {
			c.log.Warnw("persisting failedAvailTestUrls.txt", "err", err)
		}
	}
}

// evict implements §4.1's two-phase eviction: resources untouched for
// untouchedEvictionThreshold ticks move Ready -> Finalizing (sorted
// ascending by lastAccessTick); resources already Finalizing and still
// untouched are fully evicted. Resources currently Downloading are never
// evicted.
func (c *Cache) evict(tick int64) {
	if c.ramUse.Load()+c.gpuUse.Load() <= c.cfg.MaxResourcesMemory {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	type candidate struct {
		name string
		r    *Resource
	}
	var toFinalize, toEvict []candidate

	for name, r := range c.resources {
		if r.State() == Downloading {
			continue
		}
		if tick-r.LastAccessTick() < untouchedEvictionThreshold {
			continue
		}
		switch r.State() {
		case Ready:
			toFinalize = append(toFinalize, candidate{name, r})
		case Finalizing:
			toEvict = append(toEvict, candidate{name, r})
		}
	}

	sort.Slice(toFinalize, func(i, j int) bool {
		return toFinalize[i].r.LastAccessTick() < toFinalize[j].r.LastAccessTick()
	})
	for _, cd := range toFinalize {
		cd.r.setState(Finalizing)
	}

	for _, cd := range toEvict {
		ram, gpu := cd.r.MemoryCost()
		c.ramUse.Add(-ram)
		c.gpuUse.Add(-gpu)
		delete(c.resources, cd.name)
		if ord, ok := c.ordinals[cd.name]; ok {
			delete(c.ordinals, cd.name)
			delete(c.names, ord)
		}
		c.evicted.Add(1)
	}
}
