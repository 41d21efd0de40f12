package resource

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// TickData runs on the data worker: drains the touch set swapped in by the
// most recent TickRender, then advances at most
// cfg.MaxResourceProcessesPerTick resources by one state-machine step,
// highest priority first (spec §4.1).
func (c *Cache) TickData() {
	tick := c.currentTick()
	c.drainTouches(tick)

	candidates := c.gatherActionable()
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Priority() > candidates[j].Priority()
	})

	quota := c.cfg.MaxResourceProcessesPerTick
	if quota <= 0 || quota > len(candidates) {
		quota = len(candidates)
	}
	for _, r := range candidates[:quota] {
		c.advance(r)
	}
}

// drainTouches applies the render-worker's touch set: refreshes
// lastAccessTick and re-queues Finalizing resources back to Initializing
// (spec §4.1 "touch(name) ... re-queues Finalizing resources back into
// Initializing").
func (c *Cache) drainTouches(tick int64) {
	c.touchSwapMu.Lock()
	touched := c.touchLocked
	c.touchLocked = roaring.New()
	c.touchSwapMu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()
	it := touched.Iterator()
	for it.HasNext() {
		ord := it.Next()
		name, ok := c.names[ord]
		if !ok {
			continue
		}
		r, ok := c.resources[name]
		if !ok {
			continue
		}
		r.lastAccessTick.Store(tick)
		if r.State() == Finalizing {
			r.setState(Initializing)
		}
	}
}

func (c *Cache) gatherActionable() []*Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Resource, 0, len(c.resources))
	for _, r := range c.resources {
		switch r.State() {
		case Initializing, Downloaded:
			out = append(out, r)
		case Downloading:
			r.resMu.Lock()
			pending := r.pendingTask != nil
			r.resMu.Unlock()
			if pending {
				out = append(out, r)
			}
		}
	}
	return out
}

func (c *Cache) advance(r *Resource) {
	switch r.State() {
	case Initializing:
		c.advanceInitializing(r)
	case Downloading:
		c.advanceDownloading(r)
	case Downloaded:
		c.advanceDownloaded(r)
	}
}

func (c *Cache) advanceInitializing(r *Resource) {
	host, hasScheme := hostOf(r.Name)
	if hasScheme && !c.allowedHost(host) {
		r.resMu.Lock()
		r.loadErr = fmt.Errorf("resource: host %q not in auth allow-list", host)
		r.resMu.Unlock()
		r.setState(ErrorFatal)
		return
	}

	if !hasScheme {
		if c.memorySource == nil {
			r.resMu.Lock()
			r.loadErr = fmt.Errorf("resource: no memory source configured for %q", r.Name)
			r.resMu.Unlock()
			r.setState(ErrorFatal)
			return
		}
		data, err := c.memorySource(r.Name)
		if err != nil {
			r.resMu.Lock()
			r.loadErr = err
			r.resMu.Unlock()
			r.setState(ErrorFatal)
			return
		}
		r.resMu.Lock()
		r.rawData = data
		r.resMu.Unlock()
		r.setState(Downloaded)
		return
	}

	if c.disk != nil {
		if data, ok := c.disk.read(r.Name); ok {
			r.resMu.Lock()
			r.rawData = data
			r.resMu.Unlock()
			r.setState(Downloaded)
			return
		}
	}

	if c.fetcher == nil {
		return // nothing can dispatch a real fetch; stays Initializing
	}
	if c.downloads.Load() >= int32(c.cfg.MaxConcurrentDownloads) {
		return // budget unavailable, retry next tick
	}

	c.downloads.Add(1)
	r.setState(Downloading)

	r.resMu.Lock()
	url := r.currentURL
	r.resMu.Unlock()

	task := &Task{QueryUrl: url}
	c.fetcher.Start(task, func(done *Task) {
		r.resMu.Lock()
		r.pendingTask = done
		r.resMu.Unlock()
	})
}

func (c *Cache) advanceDownloading(r *Resource) {
	r.resMu.Lock()
	task := r.pendingTask
	r.pendingTask = nil
	avail := r.avail
	r.resMu.Unlock()
	if task == nil {
		return
	}
	c.downloads.Add(-1)

	if avail.Evaluate(task) {
		r.resMu.Lock()
		r.loadErr = fmt.Errorf("resource: availability test failed (code=%d type=%q size=%d)",
			task.ReplyCode, task.ContentType, len(task.ContentData))
		r.resMu.Unlock()
		r.setState(ErrorFatal)
		c.recordFailedAvail(r.Name)
		return
	}

	switch {
	case task.ReplyCode >= 300 && task.ReplyCode < 400:
		r.resMu.Lock()
		if r.redirects >= maxRedirects {
			r.resMu.Unlock()
			r.setErr(fmt.Errorf("resource: exceeded %d redirects", maxRedirects))
			r.setState(ErrorFatal)
			if avail != nil {
				c.recordFailedAvail(r.Name)
			}
			return
		}
		r.redirects++
		r.currentURL = task.ReplyRedirectUrl
		r.resMu.Unlock()
		r.setState(Initializing)

	case task.ReplyCode >= 400 || task.ReplyCode == 0:
		r.setErr(fmt.Errorf("resource: fetch failed with code %d", task.ReplyCode))
		r.setState(ErrorFatal)
		if avail != nil {
			c.recordFailedAvail(r.Name)
		}

	default: // 2xx
		if c.disk != nil {
			c.disk.write(r.Name, task.ContentData)
		}
		r.resMu.Lock()
		r.rawData = task.ContentData
		r.resMu.Unlock()
		r.setState(Downloaded)
	}
}

// setErr records the error that failed this resource.
func (r *Resource) setErr(err error) {
	r.resMu.Lock()
	r.loadErr = err
	r.resMu.Unlock()
}

func (c *Cache) advanceDownloaded(r *Resource) {
	r.resMu.Lock()
	data := r.rawData
	r.rawData = nil
	origin, k := r.metaOrigin, r.metaK
	r.resMu.Unlock()

	payload := NewPayload(r.Kind)
	ctx := DecodeContext{Decoders: &c.decoders, MetaOrigin: origin, MetaK: k}
	if err := payload.Load(data, ctx); err != nil {
		r.resMu.Lock()
		r.loadErr = &DecodeError{Kind: r.Kind, Name: r.Name, Err: err}
		r.resMu.Unlock()
		r.setState(ErrorFatal)
		c.log.Warnw("decode failed", "name", r.Name, "kind", r.Kind, "err", err)
		return
	}

	ram, gpu := payload.MemoryCost()
	r.resMu.Lock()
	r.payload = payload
	r.resMu.Unlock()
	r.ramCost.Store(ram)
	r.gpuCost.Store(gpu)
	c.ramUse.Add(ram)
	c.gpuUse.Add(gpu)
	r.setState(Ready)

	if r.Kind == KindAuthConfig {
		if auth, ok := payload.(*AuthConfigPayload); ok {
			c.setAuthHosts(auth.Hosts)
		}
	}
}

func (c *Cache) recordFailedAvail(name string) {
	c.failedSwapMu.Lock()
	c.failedPending[name] = true
	c.failedSwapMu.Unlock()
}
