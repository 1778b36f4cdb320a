// gs_math.go - Small linear algebra kit for the splat pipeline

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
gs_math.go - Vectors, matrices and Gaussian covariance math

Matrices are column-major float32 arrays, matching both the GLSL
shader conventions and the 16-float wire format the worker receives:
element (row r, col c) of a Mat4 lives at m[c*4+r]. The covariance
helpers mirror the shader math exactly so the software backend and the
tests see bit-for-bit the same numbers the GPU path consumes.
*/

package main

import "math"

// Mat4 is a 4x4 column-major matrix.
type Mat4 [16]float32

// Mat3 is a 3x3 column-major matrix.
type Mat3 [9]float32

// Vec4 is a column vector.
type Vec4 [4]float32

func mat4Identity() Mat4 {
	return Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// mat4Mul returns a*b.
func mat4Mul(a, b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// mat4MulVec returns m*v.
func mat4MulVec(m Mat4, v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		out[r] = m[r]*v[0] + m[4+r]*v[1] + m[8+r]*v[2] + m[12+r]*v[3]
	}
	return out
}

// mat3FromMat4 extracts the upper-left 3x3 block.
func mat3FromMat4(m Mat4) Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// mat3Mul returns a*b.
func mat3Mul(a, b Mat3) Mat3 {
	var out Mat3
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			out[c*3+r] = a[r]*b[c*3] + a[3+r]*b[c*3+1] + a[6+r]*b[c*3+2]
		}
	}
	return out
}

func mat3Transpose(m Mat3) Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// rotationFromQuat builds the rotation matrix for a (w,x,y,z)
// quaternion. The caller is responsible for normalization; quantized
// quaternions from the packed buffer are used as decoded.
func rotationFromQuat(w, x, y, z float32) Mat3 {
	var m Mat3
	// Row r, col c at m[c*3+r].
	m[0] = 1 - 2*(y*y+z*z)
	m[3] = 2 * (x*y + w*z)
	m[6] = 2 * (x*z - w*y)
	m[1] = 2 * (x*y - w*z)
	m[4] = 1 - 2*(x*x+z*z)
	m[7] = 2 * (y*z + w*x)
	m[2] = 2 * (x*z + w*y)
	m[5] = 2 * (y*z - w*x)
	m[8] = 1 - 2*(x*x+y*y)
	return m
}

// covarianceFromQuatScale computes the six unique entries of
// Sigma = M^T M where M is R(q) with row j scaled by s_j. Returned in
// the wire order (s00, s01, s02, s11, s12, s22), unscaled.
func covarianceFromQuatScale(w, x, y, z float32, sx, sy, sz float32) [6]float32 {
	r := rotationFromQuat(w, x, y, z)
	// M row j = s_j * R row j. Element (j,k) = s_j * R[j][k].
	var m [3][3]float32
	s := [3]float32{sx, sy, sz}
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			m[j][k] = s[j] * r[k*3+j]
		}
	}
	// Sigma[a][b] = sum_j M[j][a]*M[j][b]
	sigma := func(a, b int) float32 {
		return m[0][a]*m[0][b] + m[1][a]*m[1][b] + m[2][a]*m[2][b]
	}
	return [6]float32{sigma(0, 0), sigma(0, 1), sigma(0, 2), sigma(1, 1), sigma(1, 2), sigma(2, 2)}
}

// eigen2x2 decomposes the symmetric matrix [[a, b], [b, c]].
// Returns the eigenvalues (lambda1 >= lambda2) and the unit
// eigenvector of lambda1.
func eigen2x2(a, b, c float32) (lambda1, lambda2 float32, dx, dy float32) {
	mid := (a + c) / 2
	r := float32(math.Hypot(float64((a-c)/2), float64(b)))
	lambda1 = mid + r
	lambda2 = mid - r
	dx, dy = b, lambda1-a
	n := float32(math.Hypot(float64(dx), float64(dy)))
	if n > 0 {
		dx /= n
		dy /= n
	} else {
		dx, dy = 1, 0
	}
	return
}

// sigmoid is the logistic activation used on opacity logits.
func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// shDCToRGB converts a DC spherical-harmonic coefficient to a color
// channel in [0,1].
func shDCToRGB(dc float32) float32 {
	return clamp1(0.5 + 0.28209479*dc)
}

func clamp1(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampf32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
