// Package camera implements navigation/camera state (spec §4.4): inertial
// pan/zoom/rotate integration, SRS-aware position normalization, altitude
// pinning against the traversal tree, and view/projection construction.
package camera

import (
	"math"

	"github.com/melowntech/vtscore/internal/coord"
	"github.com/melowntech/vtscore/internal/drawtask"
	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/traverse"
)

// navEpsilon is the margin Dynamic mode subtracts from the latitude
// threshold before switching from Azimuthal to Free behavior (spec §4.4
// "switches ... when |latitude| >= threshold - ε").
const navEpsilon = 0.5

// State is the live navigation/camera state (spec §3 CameraState).
type State struct {
	// Position is in the reference frame's navigation SRS: (lon,lat,height)
	// for a geographic SRS, (x,y,height) for a projected one.
	Position [3]float64
	Yaw, Pitch, Roll float64
	ViewExtent       float64
	VerticalFov      float64

	inertiaXY  [2]float64
	inertiaZ   float64
	inertiaRot [3]float64
	// inertiaZoomLog is the pending log-space zoom factor (spec §4.4's
	// exponential zoom, damped the same multiplicative way pan/rotate are
	// damped additively — see DESIGN.md for why this is log-space, not
	// linear, since ViewExtent is a scale rather than an offset).
	inertiaZoomLog float64

	heights heightQueue

	// Derived, recomputed each Tick.
	ViewProj drawtask.Mat4
	Forward  [3]float64
	Right    [3]float64
	EyePhys  [3]float64
	Frustum  traverse.Frustum
}

// Geographic reports whether the reference frame's navigation SRS is
// geographic (longitude/latitude) rather than projected (planar x/y). The
// core has no SRS-name registry of its own (spec §9: "coordinate math is an
// external capability"), so geographic-ness is supplied by the caller
// rather than inferred from the SRS string.
type Geographic bool

// New returns a State at the given initial position (spec §6 Position).
func New(pos mapconfig.Position) *State {
	return &State{
		Position:    [3]float64{pos.Lon, pos.Lat, 0},
		Yaw:         pos.Yaw,
		Pitch:       pos.Pitch,
		Roll:        pos.Roll,
		ViewExtent:  pos.ViewExtent,
		VerticalFov: pos.VerticalFov,
	}
}

// Pan accumulates a pan/zoom input (spec §4.4 "Inputs"): dx/dy move the
// target position, dz is an exponential zoom applied to ViewExtent.
func (s *State) Pan(dx, dy, dz float64, opt mapconfig.Options) {
	s.inertiaXY[0] += dx * opt.CameraSensitivityPan
	s.inertiaXY[1] += dy * opt.CameraSensitivityPan
	s.inertiaZoomLog += math.Log(math.Pow(1.001, -dz*opt.CameraSensitivityZoom))
}

// Rotate accumulates a rotation input.
func (s *State) Rotate(dyaw, dpitch, droll float64, opt mapconfig.Options) {
	s.inertiaRot[0] += dyaw * opt.CameraSensitivityRotate
	s.inertiaRot[1] += dpitch * opt.CameraSensitivityRotate
	s.inertiaRot[2] += droll * opt.CameraSensitivityRotate
}

// Tick integrates one tick of inertial motion, normalizes the result,
// pins altitude against the traversal tree, and rebuilds the camera's
// view/projection matrices and frustum (spec §4.4 steps in order).
func (s *State) Tick(opt mapconfig.Options, geo Geographic, mode mapconfig.NavigationMode, root *traverse.TraverseNode, manip coord.Manipulator, windowHeight, aspect float64) error {
	s.integrate(opt)
	s.normalize(opt, geo, mode)
	s.pinAltitude(opt, root)
	return s.build(geo, manip, windowHeight, aspect)
}

// integrate applies spec §4.4's per-tick damping to every inertial
// quantity: `value += (1-c)*inertia; inertia *= c`.
func (s *State) integrate(opt mapconfig.Options) {
	cip, cia, cir, ciz := opt.CameraInertiaPan, opt.CameraInertiaAltitude, opt.CameraInertiaRotate, opt.CameraInertiaZoom

	s.Position[0] += (1 - cip) * s.inertiaXY[0]
	s.Position[1] += (1 - cip) * s.inertiaXY[1]
	s.inertiaXY[0] *= cip
	s.inertiaXY[1] *= cip

	s.Position[2] += (1 - cia) * s.inertiaZ
	s.inertiaZ *= cia

	s.Yaw += (1 - cir) * s.inertiaRot[0]
	s.Pitch += (1 - cir) * s.inertiaRot[1]
	s.Roll += (1 - cir) * s.inertiaRot[2]
	s.inertiaRot = [3]float64{s.inertiaRot[0] * cir, s.inertiaRot[1] * cir, s.inertiaRot[2] * cir}

	appliedLog := (1 - ciz) * s.inertiaZoomLog
	s.ViewExtent *= math.Exp(appliedLog)
	s.inertiaZoomLog *= ciz
}

// normalize applies spec §4.4's post-integration wrap/clamp rules.
func (s *State) normalize(opt mapconfig.Options, geo Geographic, mode mapconfig.NavigationMode) {
	if geo {
		s.Position[0] = wrapLon(s.Position[0])
		free := mode == mapconfig.NavigationFree ||
			(mode == mapconfig.NavigationDynamic && math.Abs(s.Position[1]) >= opt.NavigationLatitudeThreshold-navEpsilon)
		if !free {
			t := opt.NavigationLatitudeThreshold
			s.Position[1] = math.Max(-t, math.Min(t, s.Position[1]))
		}
	}

	s.Yaw = math.Mod(math.Mod(s.Yaw, 360)+360, 360)
	s.Roll = math.Mod(math.Mod(s.Roll, 360)+360, 360)
	pitch := math.Mod(math.Mod(s.Pitch, 360)+360, 360)
	if pitch < 270 {
		pitch = 270
	} else if pitch > 350 {
		pitch = 350
	}
	s.Pitch = pitch
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}
	return lon - 180
}
