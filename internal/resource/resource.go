package resource

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/melowntech/vtscore/internal/tileid"
)

// Resource is the cache's uniform element (spec §3). Exported fields that
// can be read without taking resMu are atomics; everything else goes
// through resMu to keep decode/fetch bookkeeping internally consistent
// without per-access locking (Validity reads only the atomic state; Touch
// takes resMu just to raise the priority).
type Resource struct {
	Name string
	Kind Kind

	state          atomic.Int32
	lastAccessTick atomic.Int64
	ramCost        atomic.Int64
	gpuCost        atomic.Int64

	pinned bool // map-config/auth: priority forced to +Inf (spec §4.1)

	resMu       sync.Mutex
	priority    float64
	payload     Payload
	avail       *AvailabilityTest
	currentURL  string
	redirects   int
	pendingTask *Task // set once a fetch completion has arrived, awaiting processing
	rawData     []byte
	loadErr     error

	// Decode hints for kinds whose Load needs out-of-band context.
	metaOrigin tileid.ID
	metaK      int
}

// SetMetaHint records the meta-tile grid origin/size this resource should
// decode against (used only for Kind == KindMetaTile).
func (r *Resource) SetMetaHint(origin tileid.ID, k int) {
	r.resMu.Lock()
	r.metaOrigin, r.metaK = origin, k
	r.resMu.Unlock()
}

func newResource(name string, kind Kind) *Resource {
	r := &Resource{Name: name, Kind: kind}
	r.state.Store(int32(Initializing))
	r.currentURL = name
	return r
}

// State returns the resource's current lifecycle stage.
func (r *Resource) State() State {
	return State(r.state.Load())
}

func (r *Resource) setState(s State) {
	r.state.Store(int32(s))
}

// LastAccessTick returns the tick this resource was last touched on.
func (r *Resource) LastAccessTick() int64 {
	return r.lastAccessTick.Load()
}

// Priority returns the resource's current dispatch priority.
func (r *Resource) Priority() float64 {
	if r.pinned {
		return math.Inf(1)
	}
	r.resMu.Lock()
	defer r.resMu.Unlock()
	return r.priority
}

// MemoryCost returns the resource's last-known RAM/GPU footprint (0 before
// Ready).
func (r *Resource) MemoryCost() (ram, gpu int64) {
	return r.ramCost.Load(), r.gpuCost.Load()
}

// Payload returns the decoded payload, or nil if not yet Ready. Callers
// must not mutate the returned value.
func (r *Resource) Payload() Payload {
	r.resMu.Lock()
	defer r.resMu.Unlock()
	return r.payload
}

// Err returns the error that moved this resource to ErrorFatal/ErrorRetry,
// if any.
func (r *Resource) Err() error {
	r.resMu.Lock()
	defer r.resMu.Unlock()
	return r.loadErr
}

// SetAvailabilityTest configures the negative availability test evaluated
// on fetch completion (spec §4.5). Must be called before the resource
// leaves Initializing.
func (r *Resource) SetAvailabilityTest(a *AvailabilityTest) {
	r.resMu.Lock()
	defer r.resMu.Unlock()
	r.avail = a
}

func (r *Resource) currentURLLocked() string { return r.currentURL }
