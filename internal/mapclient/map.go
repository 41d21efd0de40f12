// Package mapclient wires the resource cache, the traversal engine, the
// camera, and the credits accumulator into the two-worker tick contract a
// host application drives (spec §5, original_source mapApi.cpp/renderer.cpp).
package mapclient

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/melowntech/vtscore/internal/camera"
	"github.com/melowntech/vtscore/internal/coord"
	"github.com/melowntech/vtscore/internal/credits"
	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/traverse"
)

// Callbacks mirrors the host-facing notifications of spec §6 (original's
// MapCallbacks::mapconfigReady / mapconfigAvailable).
type Callbacks struct {
	OnConfigReady  func()
	OnConfigFailed func(error)
}

// Map is the facade a host application drives every frame (spec §3 "Map").
// The resource cache is constructed (and wired with its decoders) by the
// caller; Map only consumes it.
type Map struct {
	cache      *resource.Cache
	manip      coord.Manipulator
	creditYear int
	log        *zap.SugaredLogger

	callbacks Callbacks

	mapConfigPath, authPath string
	mapConfigRes            *resource.Resource
	authRes                 *resource.Resource

	Config       *mapconfig.MapConfig
	Camera       *camera.State
	Engine       *traverse.Engine
	Credits      *credits.Accumulator
	geographic   camera.Geographic
	configLoaded bool
}

// New returns a Map with no active map-config; call SetMapConfigPath to
// begin loading one.
func New(cache *resource.Cache, manip coord.Manipulator, creditYear int, log *zap.SugaredLogger) *Map {
	return &Map{
		cache:      cache,
		manip:      manip,
		creditYear: creditYear,
		log:        log,
		Credits:    credits.New(creditYear),
	}
}

// Callbacks exposes the host notification hooks for assignment.
func (m *Map) Callbacks() *Callbacks { return &m.callbacks }

// IsConfigReady reports whether a map config has been parsed and the
// traversal engine is live (original's Map::isMapConfigReady).
func (m *Map) IsConfigReady() bool { return m.configLoaded }

// SetMapConfigPath begins loading a new world description, discarding any
// previously loaded one (original's Map::setMapConfigPath -> purgeHard).
func (m *Map) SetMapConfigPath(mapConfigPath, authPath string) {
	if m.log != nil {
		m.log.Infow("changing map config path", "path", mapConfigPath, "auth", authPath != "")
	}
	m.mapConfigPath = mapConfigPath
	m.authPath = authPath
	m.PurgeTraverseCache(true)
}

// PurgeTraverseCache drops the traversal tree (soft) or additionally
// discards the map-config/auth resources and the camera state (hard),
// matching original_source renderer.cpp's purgeSoft/purgeHard split.
func (m *Map) PurgeTraverseCache(hard bool) {
	m.Engine = nil
	m.configLoaded = false
	m.Credits.Reset()

	if hard {
		m.mapConfigRes = nil
		m.authRes = nil
		m.Config = nil
		m.Camera = nil
	}
}

// TickData drives the cache's data-worker tick and, once a requested
// map-config resource reaches Ready, parses it into a live Engine/Camera
// (original's Map::dataTick feeding into MapImpl's config-ready checks).
func (m *Map) TickData() {
	m.cache.TickData()
	if m.configLoaded || m.mapConfigPath == "" {
		return
	}

	if m.authPath != "" && m.authRes == nil {
		m.authRes = m.cache.Get(m.authPath, resource.KindAuthConfig)
	}
	if m.authPath != "" {
		m.cache.Touch(m.authRes, 0)
		if m.authRes.State() != resource.Ready {
			if m.authRes.State() == resource.ErrorFatal {
				m.fail(fmt.Errorf("mapclient: auth config: %w", m.authRes.Err()))
			}
			return
		}
	}

	if m.mapConfigRes == nil {
		m.mapConfigRes = m.cache.Get(m.mapConfigPath, resource.KindMapConfig)
	}
	m.cache.Touch(m.mapConfigRes, 0)
	switch m.mapConfigRes.State() {
	case resource.ErrorFatal:
		m.fail(fmt.Errorf("mapclient: map config: %w", m.mapConfigRes.Err()))
		return
	case resource.Ready:
	default:
		return
	}

	payload, ok := m.mapConfigRes.Payload().(*resource.MapConfigPayload)
	if !ok {
		m.fail(fmt.Errorf("mapclient: map config resource has no payload"))
		return
	}
	mc, err := mapconfig.Load(payload.Raw)
	if err != nil {
		m.fail(fmt.Errorf("mapclient: %w", err))
		return
	}

	m.Config = mc
	m.geographic = camera.Geographic(strings.Contains(mc.ReferenceFrame.NavigationSrs, "4326"))
	if m.Camera == nil {
		m.Camera = camera.New(mc.Position)
	}
	m.Engine = traverse.New(m.cache, mc, m.Credits, nil)
	m.configLoaded = true
	if m.callbacks.OnConfigReady != nil {
		m.callbacks.OnConfigReady()
	}
}

func (m *Map) fail(err error) {
	if m.log != nil {
		m.log.Errorw("map config load failed", "error", err)
	}
	if m.callbacks.OnConfigFailed != nil {
		m.callbacks.OnConfigFailed(err)
	}
}

// TickRender advances the camera, runs one traversal pass against the
// resulting frustum, and runs the cache's render-worker tick (original's
// Map::renderTick: resourceRenderTick + MapImpl::renderTick).
func (m *Map) TickRender(windowWidth, windowHeight uint32) error {
	if !m.configLoaded {
		m.cache.TickRender()
		return nil
	}
	aspect := 1.0
	if windowHeight > 0 {
		aspect = float64(windowWidth) / float64(windowHeight)
	}
	if err := m.Camera.Tick(m.Config.Options, m.geographic, m.Config.Options.NavigationMode, m.Engine.Root, m.manip, float64(windowHeight), aspect); err != nil {
		return fmt.Errorf("mapclient: camera tick: %w", err)
	}
	m.Engine.Traverse(m.Camera.Frustum, false)
	m.cache.TickRender()
	return nil
}

// Pan and Rotate forward to the camera, no-op before a config is loaded
// (original's Map::pan/Map::rotate early-return on !isMapConfigReady()).
func (m *Map) Pan(dx, dy, dz float64) {
	if !m.configLoaded {
		return
	}
	m.Camera.Pan(dx, dy, dz, m.Config.Options)
}

func (m *Map) Rotate(dyaw, dpitch, droll float64) {
	if !m.configLoaded {
		return
	}
	m.Camera.Rotate(dyaw, dpitch, droll, m.Config.Options)
}

// ResolvedCredits returns the current tick's credit notices, sorted by hit
// count, ready for on-screen display (spec §4.6).
func (m *Map) ResolvedCredits() []credits.Credit {
	if m.Config == nil {
		return nil
	}
	return m.Credits.Resolve(m.Config.Credits)
}

// Stats combines the cache's and engine's per-tick counters for the demo
// harness's status line.
type Stats struct {
	Cache    resource.Stats
	Traverse traverse.Stats
}

func (m *Map) Stats() Stats {
	s := Stats{Cache: m.cache.Stat()}
	if m.Engine != nil {
		s.Traverse = m.Engine.Stats()
	}
	return s
}

// PositionURL round-trips the current camera placement through spec §6's
// comma-separated position format.
func (m *Map) PositionURL() string {
	if m.Camera == nil || m.Config == nil {
		return ""
	}
	return m.Camera.FormatPositionURL(m.Config.Position.Type, m.Config.Position.Fixed)
}

// SetPositionURL parses and applies a position string produced by
// PositionURL (or authored by a host application).
func (m *Map) SetPositionURL(s string) error {
	pos, err := camera.ParsePositionURL(s)
	if err != nil {
		return err
	}
	m.Camera = camera.New(pos)
	return nil
}
