// gs_math_test.go - Linear algebra and covariance math tests

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"math"
	"math/rand"
	"testing"
)

// =============================================================================
// Matrix plumbing
// =============================================================================

func TestMat4_MulIdentity(t *testing.T) {
	m := Mat4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	if got := mat4Mul(m, mat4Identity()); got != m {
		t.Errorf("m*I = %v, want %v", got, m)
	}
	if got := mat4Mul(mat4Identity(), m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
}

func TestMat4_MulVec(t *testing.T) {
	// Column-major translation by (1,2,3).
	m := mat4Identity()
	m[12], m[13], m[14] = 1, 2, 3
	got := mat4MulVec(m, Vec4{5, 6, 7, 1})
	want := Vec4{6, 8, 10, 1}
	if got != want {
		t.Errorf("translate(5,6,7) = %v, want %v", got, want)
	}
}

func TestMat3_TransposeMul(t *testing.T) {
	a := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	at := mat3Transpose(a)
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			if at[c*3+r] != a[r*3+c] {
				t.Fatalf("transpose mismatch at (%d,%d)", r, c)
			}
		}
	}
	// (A^T A) must be symmetric.
	s := mat3Mul(at, a)
	if s[1] != s[3] || s[2] != s[6] || s[5] != s[7] {
		t.Errorf("A^T A not symmetric: %v", s)
	}
}

// =============================================================================
// Quaternions and covariance
// =============================================================================

func randomUnitQuat(rng *rand.Rand) (w, x, y, z float32) {
	for {
		w = float32(rng.NormFloat64())
		x = float32(rng.NormFloat64())
		y = float32(rng.NormFloat64())
		z = float32(rng.NormFloat64())
		n := float32(math.Sqrt(float64(w*w + x*x + y*y + z*z)))
		if n > 1e-3 {
			return w / n, x / n, y / n, z / n
		}
	}
}

func TestRotationFromQuat_Identity(t *testing.T) {
	r := rotationFromQuat(1, 0, 0, 0)
	want := Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if r != want {
		t.Errorf("R(1,0,0,0) = %v, want identity", r)
	}
}

func TestRotationFromQuat_KnownAxes(t *testing.T) {
	s := float32(math.Sqrt(0.5))
	// The wire convention's R for a 90-degree z quaternion maps
	// x to -y (it is the transpose of the usual body rotation).
	r := rotationFromQuat(s, 0, 0, s)
	// Column 0 is R * (1,0,0).
	gx, gy, gz := r[0], r[1], r[2]
	if math.Abs(float64(gx)) > 1e-6 || math.Abs(float64(gy+1)) > 1e-6 || math.Abs(float64(gz)) > 1e-6 {
		t.Errorf("R*x = (%g,%g,%g), want (0,-1,0)", gx, gy, gz)
	}
}

func TestRotationFromQuat_Orthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		w, x, y, z := randomUnitQuat(rng)
		r := rotationFromQuat(w, x, y, z)
		rtr := mat3Mul(mat3Transpose(r), r)
		for k := 0; k < 9; k++ {
			want := float32(0)
			if k%4 == 0 {
				want = 1
			}
			if math.Abs(float64(rtr[k]-want)) > 1e-5 {
				t.Fatalf("R^T R[%d] = %g, want %g (quat %g,%g,%g,%g)", k, rtr[k], want, w, x, y, z)
			}
		}
	}
}

// Byte quantization of a unit quaternion must not move the rotation
// matrix by more than 0.02 in Frobenius norm.
func TestRotationFromQuat_QuantizationRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 1000; i++ {
		w, x, y, z := randomUnitQuat(rng)
		dw := (float32(quantizeSigned(w)) - 128) / 128
		dx := (float32(quantizeSigned(x)) - 128) / 128
		dy := (float32(quantizeSigned(y)) - 128) / 128
		dz := (float32(quantizeSigned(z)) - 128) / 128

		r0 := rotationFromQuat(w, x, y, z)
		r1 := rotationFromQuat(dw, dx, dy, dz)
		var frob float64
		for k := 0; k < 9; k++ {
			d := float64(r1[k] - r0[k])
			frob += d * d
		}
		if frob = math.Sqrt(frob); frob >= 0.02 {
			t.Fatalf("quantized rotation moved by %g (quat %g,%g,%g,%g)", frob, w, x, y, z)
		}
	}
}

func TestCovariance_IsotropicIsDiagonal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		w, x, y, z := randomUnitQuat(rng)
		// Equal scales: rotation cancels and Sigma = s^2 I.
		cov := covarianceFromQuatScale(w, x, y, z, 2, 2, 2)
		for k, want := range []float32{4, 0, 0, 4, 0, 4} {
			if math.Abs(float64(cov[k]-want)) > 1e-4 {
				t.Fatalf("isotropic cov[%d] = %g, want %g", k, cov[k], want)
			}
		}
	}
}

func TestCovariance_MatchesRDiagRT(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for i := 0; i < 200; i++ {
		w, x, y, z := randomUnitQuat(rng)
		sx := float32(math.Exp(rng.Float64()*2 - 1))
		sy := float32(math.Exp(rng.Float64()*2 - 1))
		sz := float32(math.Exp(rng.Float64()*2 - 1))

		cov := covarianceFromQuatScale(w, x, y, z, sx, sy, sz)

		// Reference: Sigma = R^T diag(s^2) R in terms of the wire
		// rotation matrix (whose transpose is the body rotation).
		r := rotationFromQuat(w, x, y, z)
		d := Mat3{sx * sx, 0, 0, 0, sy * sy, 0, 0, 0, sz * sz}
		ref := mat3Mul(mat3Mul(mat3Transpose(r), d), r)

		refSix := [6]float32{ref[0], ref[3], ref[6], ref[4], ref[7], ref[8]}
		for k := 0; k < 6; k++ {
			if math.Abs(float64(cov[k]-refSix[k])) > 1e-4*math.Max(1, math.Abs(float64(refSix[k]))) {
				t.Fatalf("cov[%d] = %g, want %g", k, cov[k], refSix[k])
			}
		}
	}
}

// =============================================================================
// Eigendecomposition
// =============================================================================

func TestEigen2x2(t *testing.T) {
	cases := []struct {
		name             string
		a, b, c          float32
		lambda1, lambda2 float32
	}{
		{"identity", 1, 0, 1, 1, 1},
		{"diagonal", 4, 0, 1, 4, 1},
		{"coupled", 2, 1, 2, 3, 1},
	}
	for _, tc := range cases {
		l1, l2, _, _ := eigen2x2(tc.a, tc.b, tc.c)
		if math.Abs(float64(l1-tc.lambda1)) > 1e-5 || math.Abs(float64(l2-tc.lambda2)) > 1e-5 {
			t.Errorf("%s: eigenvalues (%g, %g), want (%g, %g)", tc.name, l1, l2, tc.lambda1, tc.lambda2)
		}
	}
}

func TestEigen2x2_EigenvectorProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for i := 0; i < 100; i++ {
		a := float32(rng.Float64()*4 + 0.1)
		c := float32(rng.Float64()*4 + 0.1)
		b := float32(rng.Float64()*2 - 1)
		l1, _, dx, dy := eigen2x2(a, b, c)
		// A*d must equal lambda1*d.
		ex := a*dx + b*dy - l1*dx
		ey := b*dx + c*dy - l1*dy
		if math.Abs(float64(ex)) > 1e-4 || math.Abs(float64(ey)) > 1e-4 {
			t.Fatalf("A*d - l1*d = (%g, %g) for a=%g b=%g c=%g", ex, ey, a, b, c)
		}
	}
}

// =============================================================================
// Activations
// =============================================================================

func TestActivations(t *testing.T) {
	if got := sigmoid(0); got != 0.5 {
		t.Errorf("sigmoid(0) = %g, want 0.5", got)
	}
	if got := sigmoid(10); got < 0.9999 {
		t.Errorf("sigmoid(10) = %g, want ~1", got)
	}
	if got := shDCToRGB(0); got != 0.5 {
		t.Errorf("shDCToRGB(0) = %g, want 0.5", got)
	}
	if got := shDCToRGB(100); got != 1 {
		t.Errorf("shDCToRGB(100) = %g, want clamp to 1", got)
	}
	if got := shDCToRGB(-100); got != 0 {
		t.Errorf("shDCToRGB(-100) = %g, want clamp to 0", got)
	}
}
