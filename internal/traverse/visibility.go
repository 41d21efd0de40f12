package traverse

import "github.com/melowntech/vtscore/internal/drawtask"

// Plane is A*x+B*y+C*z+D=0 with the normal (A,B,C) pointing into the
// half-space the frustum considers "inside".
type Plane struct {
	A, B, C, D float64
}

// Distance is the signed distance of pt from the plane along its normal;
// negative means pt is outside.
func (p Plane) Distance(pt [3]float64) float64 {
	return p.A*pt[0] + p.B*pt[1] + p.C*pt[2] + p.D
}

// Frustum is the camera-derived visibility context a traversal tick is run
// against (spec §4.2 "AABB-vs-frustum"). Built by package camera; kept as
// a narrow, dependency-free struct here so traverse never imports camera.
type Frustum struct {
	Planes       [6]Plane
	ViewProj     drawtask.Mat4
	WindowHeight float64
	EyePhys      [3]float64
}

// aabbVisible runs the P-vertex test against each plane: for an AABB, the
// vertex most in the direction of the plane's normal is the one most
// likely to be inside; if even that vertex is outside, the whole box is
// outside (spec §4.2).
func aabbVisible(min, max [3]float64, f Frustum) bool {
	for _, p := range f.Planes {
		var v [3]float64
		if p.A >= 0 {
			v[0] = max[0]
		} else {
			v[0] = min[0]
		}
		if p.B >= 0 {
			v[1] = max[1]
		} else {
			v[1] = min[1]
		}
		if p.C >= 0 {
			v[2] = max[2]
		} else {
			v[2] = min[2]
		}
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// obbVisible tests the OBB's 8 world-space corners against each plane:
// the box is rejected only once every corner falls outside a single plane
// simultaneously (spec §4.2 "test its 8 corners... Reject on first
// failure").
func obbVisible(o OrientedBox, f Frustum) bool {
	corners := o.Corners()
	for _, p := range f.Planes {
		allOutside := true
		for _, c := range corners {
			if p.Distance(c) >= 0 {
				allOutside = false
				break
			}
		}
		if allOutside {
			return false
		}
	}
	return true
}

// Visible runs the node's visibility test: AABB first (if computed),
// then the OBB refinement (if computed), rejecting on the first failure.
// A node with no Meta yet is treated as visible so the caller can still
// resolve it (spec: visibility only gates rendering, not resolution).
func Visible(n *TraverseNode, f Frustum) bool {
	if n.Meta == nil {
		return true
	}
	if n.Meta.HasAABB && !aabbVisible(n.Meta.AabbPhys[0], n.Meta.AabbPhys[1], f) {
		return false
	}
	if n.Meta.HasOBB && !obbVisible(n.Meta.OBB, f) {
		return false
	}
	return true
}
