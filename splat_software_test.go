// splat_software_test.go - End-to-end scenarios on the software backend

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"testing"
)

// renderCloud runs the full pipeline (pack -> texture -> sort ->
// raster) over a square canvas and returns the frame.
func renderCloud(t *testing.T, cloud *SplatCloud, size int, dist float64) []byte {
	t.Helper()
	packed, err := PackSplats(cloud)
	if err != nil {
		t.Fatalf("PackSplats failed: %v", err)
	}
	tex, err := BuildCovarianceTexture(packed, cloud.Count)
	if err != nil {
		t.Fatalf("BuildCovarianceTexture failed: %v", err)
	}

	u := testUniforms(size, dist)
	var scratch sortScratch
	res := sortSplats(&scratch, packed, cloud.Count, mat4Mul(u.Proj, u.View), 1)

	backend := NewSoftwareBackend()
	if err := backend.Init(size, size); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(backend.Destroy)
	if err := backend.UploadTexture(tex); err != nil {
		t.Fatalf("UploadTexture failed: %v", err)
	}
	if err := backend.UpdateIndices(res.Indices, res.VisibleCount); err != nil {
		t.Fatalf("UpdateIndices failed: %v", err)
	}
	if err := backend.Render(u); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return backend.GetFrame()
}

func pixelAt(frame []byte, size, x, y int) [4]byte {
	o := (y*size + x) * 4
	return [4]byte{frame[o], frame[o+1], frame[o+2], frame[o+3]}
}

// Scenario: an empty draw produces a fully transparent frame.
func TestSoftware_EmptyDraw(t *testing.T) {
	backend := NewSoftwareBackend()
	if err := backend.Init(32, 32); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer backend.Destroy()

	if err := backend.Render(testUniforms(32, 5)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i, v := range backend.GetFrame() {
		if v != 0 {
			t.Fatalf("byte %d = %d in an empty frame", i, v)
		}
	}
}

// Scenario: a single opaque red splat at the origin covers the canvas
// center with (255,0,0,255) over the cleared (0,0,0,0).
func TestSoftware_SingleOpaqueSplat(t *testing.T) {
	const size = 64
	cloud := opaqueSplatAt(0, 0, 0, [3]float32{1, 0, 0})
	frame := renderCloud(t, cloud, size, 5)

	center := pixelAt(frame, size, size/2, size/2)
	if center[0] < 250 || center[1] != 0 || center[2] != 0 || center[3] < 250 {
		t.Errorf("center pixel %v, want opaque red", center)
	}

	// The corner is outside the 2-sigma envelope and stays clear.
	corner := pixelAt(frame, size, 0, 0)
	if corner != [4]byte{0, 0, 0, 0} {
		t.Errorf("corner pixel %v, want transparent", corner)
	}
}

// Scenario: two opaque splats on the view axis. The front one owns
// the shared center under the under blend.
func TestSoftware_FrontSplatOccludesBack(t *testing.T) {
	const size = 64
	// Camera sits at z=5 looking down -z: z=2 is in front of z=1.
	front := opaqueSplatAt(0, 0, 2, [3]float32{1, 0, 0}) // red
	back := opaqueSplatAt(0, 0, 1, [3]float32{0, 0, 1})  // blue
	cloud := appendSplat(back, front)                    // file order: back first

	packed, err := PackSplats(cloud)
	if err != nil {
		t.Fatalf("PackSplats failed: %v", err)
	}
	u := testUniforms(size, 5)
	var scratch sortScratch
	res := sortSplats(&scratch, packed, cloud.Count, mat4Mul(u.Proj, u.View), 1)

	// The sort must put the front (red, index 1) splat first.
	if res.VisibleCount != 2 || res.Indices[0] != 1 {
		t.Fatalf("sort order %v, want front splat (1) first", res.Indices)
	}

	frame := renderCloud(t, cloud, size, 5)
	center := pixelAt(frame, size, size/2, size/2)
	if center[0] < 250 || center[2] > 5 {
		t.Errorf("center pixel %v, want red to fully cover blue", center)
	}
}

// A translucent front splat lets the back color through in
// proportion to the remaining alpha.
func TestSoftware_TranslucentUnderBlend(t *testing.T) {
	const size = 64
	front := singleSplatCloud(
		[3]float32{0, 0, 2},
		[3]float32{1, 1, 1},
		[4]float32{1, 0, 0, 0},
		0.5,
		[3]float32{1, 0, 0},
	)
	back := opaqueSplatAt(0, 0, 1, [3]float32{0, 0, 1})
	cloud := appendSplat(front, back)

	frame := renderCloud(t, cloud, size, 5)
	center := pixelAt(frame, size, size/2, size/2)
	if center[0] < 100 || center[2] < 80 {
		t.Errorf("center pixel %v, want a red/blue mix", center)
	}
	if center[3] < 250 {
		t.Errorf("alpha %d, want near-opaque accumulation", center[3])
	}
}

// Splats behind the near plane are culled.
func TestSoftware_NearFrustumCull(t *testing.T) {
	const size = 32
	// Behind the camera at z=6 (camera sits at z=5).
	cloud := opaqueSplatAt(0, 0, 6, [3]float32{1, 1, 1})
	frame := renderCloud(t, cloud, size, 5)
	for i, v := range frame {
		if v != 0 {
			t.Fatalf("byte %d = %d; splat behind the camera leaked", i, v)
		}
	}
}

func TestSoftware_ResizeClearsState(t *testing.T) {
	backend := NewSoftwareBackend()
	if err := backend.Init(16, 16); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer backend.Destroy()
	if err := backend.Resize(24, 24); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if err := backend.Render(testUniforms(24, 5)); err != nil {
		t.Fatalf("Render after resize failed: %v", err)
	}
	if got := len(backend.GetFrame()); got != 24*24*4 {
		t.Errorf("frame size %d, want %d", got, 24*24*4)
	}
}
