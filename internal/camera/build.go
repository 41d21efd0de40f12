package camera

import (
	"math"

	"github.com/melowntech/vtscore/internal/coord"
	"github.com/melowntech/vtscore/internal/drawtask"
	"github.com/melowntech/vtscore/internal/traverse"
)

// nedProbeDistance is the short offset used to build a local
// north-east-down basis around the camera (spec §4.4: "navGeodesic(center,
// az=0/90, 100 m)").
const nedProbeDistance = 100.0

// build derives eye/target/up, the view-projection matrix, and the
// frustum from the current normalized state (spec §4.4 "Camera
// construction" + "Projection").
func (s *State) build(geo Geographic, manip coord.Manipulator, windowHeight, aspect float64) error {
	center := coord.Vec3{X: s.Position[0], Y: s.Position[1], Z: s.Position[2]}
	centerPhys, err := manip.Convert(center, coord.Navigation, coord.Physical)
	if err != nil {
		return err
	}
	eyePhys := [3]float64{centerPhys.X, centerPhys.Y, centerPhys.Z}

	dir, up := s.orientationVectors()

	if geo {
		north := manip.NavGeodesicDirect(center, 0, nedProbeDistance)
		east := manip.NavGeodesicDirect(center, 90, nedProbeDistance)
		northPhys, err := manip.Convert(north, coord.Navigation, coord.Physical)
		if err != nil {
			return err
		}
		eastPhys, err := manip.Convert(east, coord.Navigation, coord.Physical)
		if err != nil {
			return err
		}

		n := normalize(sub(vec(northPhys), eyePhys))
		e := normalize(sub(vec(eastPhys), eyePhys))
		d := normalize(cross(n, e)) // down: completes the right-handed NED frame

		dir = rotateByBasis(dir, e, n, scale(d, -1))
		up = rotateByBasis(up, e, n, scale(d, -1))
	} else {
		// Projected SRS: spec's "swap XY of (dir,up), invert Z" maps the
		// navigation-frame basis directly onto the physical frame's axes.
		dir = [3]float64{dir[1], dir[0], -dir[2]}
		up = [3]float64{up[1], up[0], -up[2]}
	}

	target := add(eyePhys, dir)
	view := drawtask.LookAt4(eyePhys, target, up)

	// dist is the camera's height above terrain, tracked by altitude
	// pinning into Position.Z; terrainRadius approximates the terrain
	// surface's distance from the physical origin below the camera (spec
	// §4.4 "R = distance of terrain-under-camera from origin").
	dist := math.Max(0, s.Position[2])
	terrainRadius := math.Max(0, length(eyePhys)-s.Position[2])
	near := math.Max(2.0, dist*0.1)
	cameraToHorizon := math.Sqrt(math.Max(0, length(eyePhys)*length(eyePhys)-terrainRadius*terrainRadius))
	far := cameraToHorizon + math.Sqrt(math.Max(0, (terrainRadius+5000)*(terrainRadius+5000)-terrainRadius*terrainRadius))
	if far <= near {
		far = near + 1
	}

	proj := drawtask.Perspective4(s.VerticalFov*math.Pi/180, aspect, near, far)
	vp := proj.Mul(view)

	s.ViewProj = vp
	s.Forward = dir
	s.Right = normalize(cross(dir, up))
	s.EyePhys = eyePhys
	s.Frustum = traverse.Frustum{
		Planes:       frustumPlanes(vp),
		ViewProj:     vp,
		WindowHeight: windowHeight,
		EyePhys:      eyePhys,
	}
	return nil
}

// orientationVectors derives the navigation-frame forward/up vectors from
// yaw/pitch/roll, before any SRS-specific re-basing in build.
func (s *State) orientationVectors() (dir, up [3]float64) {
	yaw := s.Yaw * math.Pi / 180
	pitch := s.Pitch * math.Pi / 180

	dir = [3]float64{
		math.Sin(yaw) * math.Sin(pitch),
		math.Cos(yaw) * math.Sin(pitch),
		math.Cos(pitch),
	}
	up = [3]float64{
		math.Sin(yaw) * math.Sin(pitch+math.Pi/2),
		math.Cos(yaw) * math.Sin(pitch+math.Pi/2),
		math.Cos(pitch + math.Pi/2),
	}
	return
}

// rotateByBasis re-expresses a navigation-frame vector v=(x,y,z) in a
// target orthonormal basis (bx,by,bz), matching the original's "rotate
// (dir,up) by NED" step.
func rotateByBasis(v, bx, by, bz [3]float64) [3]float64 {
	return add(add(scale(bx, v[0]), scale(by, v[1])), scale(bz, v[2]))
}

// frustumPlanes extracts the 6 clip-space planes from a view-projection
// matrix (standard Gribb/Hartmann extraction, column-major layout).
func frustumPlanes(vp drawtask.Mat4) [6]traverse.Plane {
	row := func(r int) [4]float64 {
		return [4]float64{vp[0*4+r], vp[1*4+r], vp[2*4+r], vp[3*4+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	comb := func(a, b [4]float64, sign float64) traverse.Plane {
		return traverse.Plane{
			A: a[0] + sign*b[0],
			B: a[1] + sign*b[1],
			C: a[2] + sign*b[2],
			D: a[3] + sign*b[3],
		}
	}

	return [6]traverse.Plane{
		comb(r3, r0, 1),  // left
		comb(r3, r0, -1), // right
		comb(r3, r1, 1),  // bottom
		comb(r3, r1, -1), // top
		comb(r3, r2, 1),  // near
		comb(r3, r2, -1), // far
	}
}

func vec(v coord.Vec3) [3]float64        { return [3]float64{v.X, v.Y, v.Z} }
func add(a, b [3]float64) [3]float64     { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b [3]float64) [3]float64     { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func length(a [3]float64) float64 { return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2]) }
func normalize(a [3]float64) [3]float64 {
	l := length(a)
	if l == 0 {
		return a
	}
	return scale(a, 1/l)
}
