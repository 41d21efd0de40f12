package resource

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/melowntech/vtscore/internal/obs"
)

// Config holds the cache's tunables (spec §6 config surface).
type Config struct {
	MaxConcurrentDownloads      int
	MaxResourceProcessesPerTick int
	MaxResourcesMemory          int64
	CachePath                   string // "" disables disk tiering
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentDownloads:      8,
		MaxResourceProcessesPerTick: 16,
		MaxResourcesMemory:          512 * 1024 * 1024,
	}
}

// evictionInterval is how often (in render ticks) tick_render considers
// eviction (spec §4.1: "once every 31 ticks").
const evictionInterval = 31

// untouchedEvictionThreshold is how many ticks a resource must go
// unaccessed to become an eviction candidate (spec §4.1).
const untouchedEvictionThreshold = 100

// Cache is the uniform store for every externally fetched blob and its
// decoded form (spec §4.1). Grounded on the teacher's DiskTileStore
// (internal/tile/diskstore.go): atomic counters for hot fields, a mutex
// for the resource table, and a dedicated background tier (here the
// Fetcher + disk cache) kept off the access hot path.
type Cache struct {
	cfg Config
	log *zap.SugaredLogger

	fetcher  Fetcher
	decoders Decoders

	mu        sync.RWMutex
	resources map[string]*Resource
	ordinals  map[string]uint32
	names     map[uint32]string
	nextOrd   atomic.Uint32

	memorySource func(name string) ([]byte, error)

	// Render-worker-owned touch set (spec §5): Touch() adds to this bitmap
	// without taking touchSwapMu (only c.mu's read lock, for the ordinal
	// lookup). tick_render swaps it
	// into touchLocked under touchSwapMu once per render tick.
	touchPending *roaring.Bitmap
	touchLocked  *roaring.Bitmap
	touchSwapMu  sync.Mutex

	// Failed-availability set, double-buffered the same way (spec §4.1).
	failedPending map[string]bool
	failedLocked  map[string]bool
	failedSwapMu  sync.Mutex
	failedAll     map[string]bool // every name ever recorded, for persistence + re-check

	downloads atomic.Int32

	tick atomic.Int64

	ramUse  atomic.Int64
	gpuUse  atomic.Int64
	evicted atomic.Int64

	authMu    sync.RWMutex
	authHosts map[string]bool // nil = no restriction configured yet
	auth      *Resource       // the AuthConfig resource, once requested

	disk *diskCache
}

// New constructs a Cache. fetcher and decoders may be nil for tests that
// only exercise local/in-memory resources.
func New(cfg Config, fetcher Fetcher, decoders Decoders, log *zap.SugaredLogger) *Cache {
	if log == nil {
		log = obs.Nop()
	}
	c := &Cache{
		cfg:           cfg,
		log:           obs.With(log, "resource-cache"),
		fetcher:       fetcher,
		decoders:      decoders,
		resources:     make(map[string]*Resource),
		ordinals:      make(map[string]uint32),
		names:         make(map[uint32]string),
		touchPending:  roaring.New(),
		touchLocked:   roaring.New(),
		failedPending: make(map[string]bool),
		failedLocked:  make(map[string]bool),
		failedAll:     make(map[string]bool),
	}
	if cfg.CachePath != "" {
		c.disk = newDiskCache(cfg.CachePath)
		if failed, err := c.disk.loadFailedAvailList(); err == nil {
			for _, name := range failed {
				c.failedAll[name] = true
			}
		} else {
			c.log.Warnw("loading failedAvailTestUrls.txt", "err", err)
		}
	}
	return c
}

// SetMemorySource registers the loader used for scheme-less resource names
// (spec §4.1: "if name has no scheme -> load from internal memory").
func (c *Cache) SetMemorySource(f func(name string) ([]byte, error)) {
	c.memorySource = f
}

// Get returns the resource named name, creating it in state Initializing if
// absent. Always succeeds synchronously (spec §4.1).
func (c *Cache) Get(name string, kind Kind) *Resource {
	c.mu.RLock()
	r, ok := c.resources[name]
	c.mu.RUnlock()
	if ok {
		return r
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.resources[name]; ok {
		return r
	}
	r = newResource(name, kind)
	if kind == KindAuthConfig || kind == KindMapConfig {
		r.pinned = true
	}
	if c.failedAll[name] {
		r.setState(ErrorFatal)
	}
	ord := c.nextOrd.Add(1) - 1
	c.ordinals[name] = ord
	c.names[ord] = name
	c.resources[name] = r
	if kind == KindAuthConfig {
		c.auth = r
	}
	return r
}

// Touch marks a resource used this tick and raises its priority to
// max(existing, new). Called from the render worker; it takes the
// per-resource priority mutex and the cache's read lock for the ordinal
// lookup (spec §4.1, §5).
func (c *Cache) Touch(r *Resource, priority float64) {
	r.resMu.Lock()
	if priority > r.priority {
		r.priority = priority
	}
	r.resMu.Unlock()

	c.mu.RLock()
	ord, ok := c.ordinals[r.Name]
	c.mu.RUnlock()
	if ok {
		c.touchPending.Add(ord)
	}
}

// Validity maps a resource's state to the coarse health callers see
// (spec §4.1).
func (c *Cache) Validity(name string) Validity {
	c.mu.RLock()
	r, ok := c.resources[name]
	c.mu.RUnlock()
	if !ok {
		return Invalid
	}
	switch r.State() {
	case Ready:
		return Valid
	case ErrorFatal:
		return Invalid
	default:
		return Indeterminate
	}
}

// currentTick returns the render-tick counter (advanced by TickRender).
func (c *Cache) currentTick() int64 { return c.tick.Load() }

// allowedHost reports whether host is permitted by the current auth
// allow-list, or true if no allow-list has been established yet
// (original_source resourceAuth.cpp: hostnames is empty/absent until the
// auth config resource is Ready).
func (c *Cache) allowedHost(host string) bool {
	c.authMu.RLock()
	defer c.authMu.RUnlock()
	if c.authHosts == nil {
		return true
	}
	return c.authHosts[host]
}

func (c *Cache) setAuthHosts(hosts map[string]bool) {
	c.authMu.Lock()
	c.authHosts = hosts
	c.authMu.Unlock()
}

// Stats is a snapshot of cache-wide counters, useful for tests and the demo
// harness's per-tick printout.
type Stats struct {
	Count           int
	Downloading     int32
	RamUse, GpuUse  int64
	ResourcesEvicted int64
}

func (c *Cache) resourcesEvicted() int64 { return c.evicted.Load() }

// Stat returns a snapshot of cache-wide counters.
func (c *Cache) Stat() Stats {
	c.mu.RLock()
	n := len(c.resources)
	c.mu.RUnlock()
	return Stats{
		Count:            n,
		Downloading:      c.downloads.Load(),
		RamUse:           c.ramUse.Load(),
		GpuUse:           c.gpuUse.Load(),
		ResourcesEvicted: c.evicted.Load(),
	}
}
