// Package drawtask holds the flat draw-task type emitted to the external
// renderer, and the small matrix helpers shared by traverse/camera/boundlayer.
package drawtask

import "math"

// Mat4 is a column-major 4x4 matrix, stored flat (m[col*4+row]), matching
// the layout GPU APIs expect at the upload boundary.
type Mat4 [16]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies two column-major 4x4 matrices, a*b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// MulVec4 applies the matrix to a homogeneous 4-vector.
func (a Mat4) MulVec4(v [4]float64) [4]float64 {
	var out [4]float64
	for row := 0; row < 4; row++ {
		var sum float64
		for k := 0; k < 4; k++ {
			sum += a[k*4+row] * v[k]
		}
		out[row] = sum
	}
	return out
}

// Translation4 returns a translation matrix.
func Translation4(x, y, z float64) Mat4 {
	m := Identity4()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Perspective4 builds a right-handed perspective projection matrix,
// fovY in radians, mapping view-space z in [-near,-far] to clip z in [-1,1].
func Perspective4(fovY, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovY/2)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = (2 * far * near) / (near - far)
	return m
}

// LookAt4 builds a right-handed view matrix from an eye position, a target
// point, and an approximate up vector.
func LookAt4(eye, target, up [3]float64) Mat4 {
	f := normalize3(sub3(target, eye))
	s := normalize3(cross3(f, up))
	u := cross3(s, f)

	return Mat4{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		-dot3(s, eye), -dot3(u, eye), dot3(f, eye), 1,
	}
}

func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func normalize3(v [3]float64) [3]float64 {
	l := math.Sqrt(dot3(v, v))
	if l == 0 {
		return v
	}
	return [3]float64{v[0] / l, v[1] / l, v[2] / l}
}

// Mat3 is a column-major 3x3 matrix (the UV matrix type, spec §4.3).
type Mat3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mul multiplies two column-major 3x3 matrices, a*b.
func (a Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[k*3+row] * b[col*3+k]
			}
			out[col*3+row] = sum
		}
	}
	return out
}

// RGBA is a plain color, 0..1 per channel.
type RGBA struct{ R, G, B, A float64 }

// White is the default, fully opaque color.
var White = RGBA{1, 1, 1, 1}

// ResourceHandle is an opaque reference into the resource cache's GPU-side
// handle (populated by the host's upload callback, spec §6).
type ResourceHandle = any

// Task is one emitted draw call (spec §3 DrawTask).
type Task struct {
	Mesh     ResourceHandle
	TexColor ResourceHandle
	TexMask  ResourceHandle // nil if no mask

	ModelViewProj Mat4
	UV            Mat3
	Color         RGBA

	// ExternalUV is true when UV addresses a bound layer's own UV space
	// rather than the mesh's built-in UVs.
	ExternalUV bool
}
