// gs_testutil_test.go - Shared fixtures for the splat pipeline tests

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"math"
	"math/rand"
)

// testCloud builds a deterministic normalized cloud of n splats.
func testCloud(n int, seed int64) *SplatCloud {
	rng := rand.New(rand.NewSource(seed))
	cloud := &SplatCloud{
		Positions: make([]float32, 3*n),
		Scales:    make([]float32, 3*n),
		Rotations: make([]float32, 4*n),
		Opacities: make([]float32, n),
		Colors:    make([]float32, 3*n),
		Count:     n,
	}
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			cloud.Positions[i*3+j] = float32(rng.Float64()*10 - 5)
			cloud.Scales[i*3+j] = float32(math.Exp(rng.Float64()*2 - 1))
			cloud.Colors[i*3+j] = float32(rng.Float64())
		}
		w, x, y, z := randomUnitQuat(rng)
		cloud.Rotations[i*4+0] = w
		cloud.Rotations[i*4+1] = x
		cloud.Rotations[i*4+2] = y
		cloud.Rotations[i*4+3] = z
		cloud.Opacities[i] = float32(rng.Float64())
	}
	return cloud
}

// opaqueSplatAt builds a single opaque splat with identity rotation.
func opaqueSplatAt(x, y, z float32, color [3]float32) *SplatCloud {
	return singleSplatCloud(
		[3]float32{x, y, z},
		[3]float32{1, 1, 1},
		[4]float32{1, 0, 0, 0},
		1,
		color,
	)
}

// appendSplat concatenates two clouds.
func appendSplat(a, b *SplatCloud) *SplatCloud {
	return &SplatCloud{
		Positions: append(append([]float32{}, a.Positions...), b.Positions...),
		Scales:    append(append([]float32{}, a.Scales...), b.Scales...),
		Rotations: append(append([]float32{}, a.Rotations...), b.Rotations...),
		Opacities: append(append([]float32{}, a.Opacities...), b.Opacities...),
		Colors:    append(append([]float32{}, a.Colors...), b.Colors...),
		Count:     a.Count + b.Count,
	}
}

// testUniforms builds the uniform block for a camera at (0,0,dist)
// looking at the origin over a square canvas.
func testUniforms(size int, dist float64) *RenderUniforms {
	camera := NewOrbitCamera()
	camera.Distance = dist
	f := focalLength(SPLAT_DEFAULT_FOV, size)
	return &RenderUniforms{
		Proj:     projectionMatrix(f, f, size, size, SPLAT_DEFAULT_ZNEAR, SPLAT_DEFAULT_ZFAR),
		View:     renderViewMatrix(camera.ViewMatrix()),
		Focal:    [2]float32{f, f},
		Viewport: [2]float32{float32(size), float32(size)},
	}
}
