package mapconfig

import "encoding/json"

// NavigationMode selects how navigation behaves near the poles (spec §4.4).
type NavigationMode int

const (
	NavigationAzimuthal NavigationMode = iota
	NavigationFree
	NavigationDynamic
)

func (m NavigationMode) String() string {
	switch m {
	case NavigationAzimuthal:
		return "azimuthal"
	case NavigationFree:
		return "free"
	case NavigationDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

func parseNavigationMode(s string) (NavigationMode, bool) {
	switch s {
	case "", "azimuthal":
		return NavigationAzimuthal, true
	case "free":
		return NavigationFree, true
	case "dynamic":
		return NavigationDynamic, true
	default:
		return NavigationAzimuthal, false
	}
}

// TraverseMode selects which of the three descent strategies the traversal
// engine uses (spec §4.2).
type TraverseMode int

const (
	TraverseHierarchical TraverseMode = iota
	TraverseFlat
	TraverseBalanced
)

func (m TraverseMode) String() string {
	switch m {
	case TraverseHierarchical:
		return "hierarchical"
	case TraverseFlat:
		return "flat"
	case TraverseBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

func parseTraverseMode(s string) (TraverseMode, bool) {
	switch s {
	case "", "hierarchical":
		return TraverseHierarchical, true
	case "flat":
		return TraverseFlat, true
	case "balanced":
		return TraverseBalanced, true
	default:
		return TraverseHierarchical, false
	}
}

// Options is the recognized configuration surface of spec §6. It is parsed
// from the same flat JSON blob the original calls "mapConfig options" (see
// original_source's options.cpp), the way the teacher parses a GeoTIFF's
// tfw sidecar into a typed struct instead of a generic map.
type Options struct {
	MaxTexelToPixelScale       float64 `json:"maxTexelToPixelScale"`
	MaxBalancedCoarsenessScale float64 `json:"maxBalancedCoarsenessScale"`

	MaxConcurrentDownloads      int   `json:"maxConcurrentDownloads"`
	MaxResourceProcessesPerTick int   `json:"maxResourceProcessesPerTick"`
	MaxNodeUpdatesPerTick       int   `json:"maxNodeUpdatesPerTick"`
	MaxResourcesMemory          int64 `json:"maxResourcesMemory"`

	CameraInertiaPan      float64 `json:"cameraInertiaPan"`
	CameraInertiaZoom     float64 `json:"cameraInertiaZoom"`
	CameraInertiaRotate   float64 `json:"cameraInertiaRotate"`
	CameraInertiaAltitude float64 `json:"cameraInertiaAltitude"`

	CameraSensitivityPan    float64 `json:"cameraSensitivityPan"`
	CameraSensitivityZoom   float64 `json:"cameraSensitivityZoom"`
	CameraSensitivityRotate float64 `json:"cameraSensitivityRotate"`

	NavigationLatitudeThreshold     float64        `json:"navigationLatitudeThreshold"`
	NavigationSamplesPerViewExtent  float64        `json:"navigationSamplesPerViewExtent"`
	NavigationModeRaw               string         `json:"navigationMode"`
	NavigationMode                  NavigationMode `json:"-"`
	TraverseModeRaw                 string         `json:"traverseMode"`
	TraverseMode                    TraverseMode   `json:"-"`

	RenderSurrogates       bool `json:"renderSurrogates"`
	RenderMeshBoxes        bool `json:"renderMeshBoxes"`
	RenderTileBoxes        bool `json:"renderTileBoxes"`
	RenderObjectPosition   bool `json:"renderObjectPosition"`
	RenderTargetPosition   bool `json:"renderTargetPosition"`

	DebugDetachedCamera         bool `json:"debugDetachedCamera"`
	DebugDisableMeta5           bool `json:"debugDisableMeta5"`
	DebugDisableVirtualSurfaces bool `json:"debugDisableVirtualSurfaces"`
}

// DefaultOptions mirrors the original client's built-in defaults
// (original_source mapConfig.cpp / options.cpp constants).
func DefaultOptions() Options {
	return Options{
		MaxTexelToPixelScale:       1.0,
		MaxBalancedCoarsenessScale: 1.2,

		MaxConcurrentDownloads:      10,
		MaxResourceProcessesPerTick: 16,
		MaxNodeUpdatesPerTick:       1000,
		MaxResourcesMemory:          512 * 1024 * 1024,

		CameraInertiaPan:      0.7,
		CameraInertiaZoom:     0.7,
		CameraInertiaRotate:   0.7,
		CameraInertiaAltitude: 0.7,

		CameraSensitivityPan:    1.0,
		CameraSensitivityZoom:   1.0,
		CameraSensitivityRotate: 1.0,

		NavigationLatitudeThreshold:    85.0,
		NavigationSamplesPerViewExtent: 8,
		NavigationMode:                 NavigationAzimuthal,
		TraverseMode:                   TraverseHierarchical,
	}
}

// ParseOptions decodes a JSON options blob over DefaultOptions, so an
// omitted key keeps its default rather than zeroing out (spec §6: "recognized
// keys" are an overlay, not a replacement).
func ParseOptions(data []byte) (Options, error) {
	opt := DefaultOptions()
	if len(data) == 0 {
		return opt, nil
	}
	if err := json.Unmarshal(data, &opt); err != nil {
		return Options{}, err
	}
	if mode, ok := parseNavigationMode(opt.NavigationModeRaw); ok {
		opt.NavigationMode = mode
	}
	if mode, ok := parseTraverseMode(opt.TraverseModeRaw); ok {
		opt.TraverseMode = mode
	}
	return opt, nil
}
