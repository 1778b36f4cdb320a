// camera.go - Orbit camera and projection conventions

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
camera.go - World -> clip transform chain

The orbit camera produces a column-major world->camera matrix in the
OpenGL convention (camera looks down -z). The rendering layer then
flips the y and z rows of that view matrix and pairs it with a
projection whose x scale is negated and whose y scale is positive, so
a point in front of the camera ends up at cam.z > 0 with
clip.z in [0, clip.w]. Those composite signs are what the covariance
Jacobian and the depth sort assume; changing either side alone breaks
the blend order.
*/

package main

import "math"

// OrbitCamera orbits a target point at a distance, driven by mouse
// drag (yaw/pitch), wheel (distance) and pan (target).
type OrbitCamera struct {
	Yaw      float64 // radians around +y
	Pitch    float64 // radians, clamped short of the poles
	Distance float64
	Target   [3]float64
}

// NewOrbitCamera positions the camera at a comfortable default.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{Distance: 5}
}

// Orbit applies a drag delta in radians.
func (c *OrbitCamera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch += dPitch
	limit := math.Pi/2 - 0.01
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// Zoom scales the orbit distance; positive steps move closer.
func (c *OrbitCamera) Zoom(steps float64) {
	c.Distance *= math.Exp(-steps * 0.1)
	if c.Distance < 0.05 {
		c.Distance = 0.05
	}
	if c.Distance > 1000 {
		c.Distance = 1000
	}
}

// Pan moves the target in the camera's screen plane.
func (c *OrbitCamera) Pan(dx, dy float64) {
	right, up := c.basis()
	scale := c.Distance * 0.002
	for i := 0; i < 3; i++ {
		c.Target[i] += (right[i]*dx + up[i]*dy) * scale
	}
}

// Eye returns the camera position in world space.
func (c *OrbitCamera) Eye() [3]float64 {
	cp := math.Cos(c.Pitch)
	return [3]float64{
		c.Target[0] + c.Distance*cp*math.Sin(c.Yaw),
		c.Target[1] + c.Distance*math.Sin(c.Pitch),
		c.Target[2] + c.Distance*cp*math.Cos(c.Yaw),
	}
}

func (c *OrbitCamera) basis() (right, up [3]float64) {
	eye := c.Eye()
	var fwd [3]float64
	var n float64
	for i := 0; i < 3; i++ {
		fwd[i] = c.Target[i] - eye[i]
		n += fwd[i] * fwd[i]
	}
	n = math.Sqrt(n)
	for i := 0; i < 3; i++ {
		fwd[i] /= n
	}
	worldUp := [3]float64{0, 1, 0}
	right = cross(fwd, worldUp)
	normalize3(&right)
	up = cross(right, fwd)
	normalize3(&up)
	return
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3(v *[3]float64) {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n > 0 {
		v[0] /= n
		v[1] /= n
		v[2] /= n
	}
}

// ViewMatrix returns the column-major world->camera matrix in the
// OpenGL look-down-minus-z convention.
func (c *OrbitCamera) ViewMatrix() Mat4 {
	eye := c.Eye()
	right, up := c.basis()
	var fwd [3]float64
	for i := 0; i < 3; i++ {
		fwd[i] = c.Target[i] - eye[i]
	}
	normalize3(&fwd)

	var m Mat4
	// Rows: right, up, -forward; translation = -R*eye.
	for i := 0; i < 3; i++ {
		m[i*4+0] = float32(right[i])
		m[i*4+1] = float32(up[i])
		m[i*4+2] = float32(-fwd[i])
	}
	m[12] = float32(-(right[0]*eye[0] + right[1]*eye[1] + right[2]*eye[2]))
	m[13] = float32(-(up[0]*eye[0] + up[1]*eye[1] + up[2]*eye[2]))
	m[14] = float32(fwd[0]*eye[0] + fwd[1]*eye[1] + fwd[2]*eye[2])
	m[15] = 1
	return m
}

// renderViewMatrix flips the y and z rows of an OpenGL view matrix,
// putting visible points at positive cam.z for the splat pipeline.
func renderViewMatrix(view Mat4) Mat4 {
	out := view
	for c := 0; c < 4; c++ {
		out[c*4+1] = -out[c*4+1]
		out[c*4+2] = -out[c*4+2]
	}
	return out
}

// focalLength returns the pinhole focal in pixels for a vertical
// field of view over a canvas height.
func focalLength(fovDegrees float64, height int) float32 {
	fov := fovDegrees * math.Pi / 180
	return float32(float64(height) / 2 / math.Tan(fov/2))
}

// projectionMatrix builds the column-major projection used by the
// splat pipeline: x scale negated, y scale positive, depth row
// mapping cam.z in [znear, zfar] to clip.z in [0, clip.w].
func projectionMatrix(fx, fy float32, width, height int, znear, zfar float32) Mat4 {
	var m Mat4
	m[0] = -2 * fx / float32(width)
	m[5] = 2 * fy / float32(height)
	m[10] = zfar / (zfar - znear)
	m[11] = 1
	m[14] = -zfar * znear / (zfar - znear)
	return m
}
