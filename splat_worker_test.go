// splat_worker_test.go - Worker message flow and throttle tests

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"math"
	"testing"
	"time"
)

func loadWorker(t *testing.T, cloud *SplatCloud) *SplatWorker {
	t.Helper()
	packed, err := PackSplats(cloud)
	if err != nil {
		t.Fatalf("PackSplats failed: %v", err)
	}
	w := NewSplatWorker()
	t.Cleanup(w.Stop)
	w.Load(packed, cloud.Count)

	reply := mustReply(t, w)
	if reply.Err != nil {
		t.Fatalf("load failed: %v", reply.Err)
	}
	if reply.Texture == nil {
		t.Fatal("load reply carried no texture")
	}
	return w
}

func mustReply(t *testing.T, w *SplatWorker) WorkerReply {
	t.Helper()
	select {
	case reply := <-w.Replies():
		return reply
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not reply")
		return WorkerReply{}
	}
}

// expectSilence asserts no reply arrives within the window.
func expectSilence(t *testing.T, w *SplatWorker) {
	t.Helper()
	select {
	case reply := <-w.Replies():
		t.Fatalf("unexpected worker reply: %+v", reply)
	case <-time.After(100 * time.Millisecond):
	}
}

// viewProjWithDepthRow builds an otherwise-identity matrix whose
// depth row is the given direction.
func viewProjWithDepthRow(x, y, z float32) [16]float32 {
	vp := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	vp[2], vp[6], vp[10] = x, y, z
	return vp
}

func TestWorker_LoadEmitsTextureBeforeSorts(t *testing.T) {
	cloud := testCloud(100, 1)
	w := loadWorker(t, cloud)

	w.RequestSort(viewProjWithDepthRow(0, 0, 1))
	reply := mustReply(t, w)
	if reply.Sort == nil {
		t.Fatalf("expected a sort reply, got %+v", reply)
	}
	if reply.Sort.TotalCount != 100 {
		t.Errorf("total %d, want 100", reply.Sort.TotalCount)
	}
}

func TestWorker_TextureGeometry(t *testing.T) {
	cloud := testCloud(1500, 2)
	packed, err := PackSplats(cloud)
	if err != nil {
		t.Fatalf("PackSplats failed: %v", err)
	}
	w := NewSplatWorker()
	defer w.Stop()
	w.Load(packed, cloud.Count)

	reply := mustReply(t, w)
	if reply.Texture == nil {
		t.Fatalf("no texture: %+v", reply)
	}
	if reply.Texture.Width != SPLAT_TEX_WIDTH {
		t.Errorf("width %d, want %d", reply.Texture.Width, SPLAT_TEX_WIDTH)
	}
	if want := (2*1500 + SPLAT_TEX_WIDTH - 1) / SPLAT_TEX_WIDTH; reply.Texture.Height != want {
		t.Errorf("height %d, want %d", reply.Texture.Height, want)
	}
}

// Two sorts under the same view: the second emits nothing.
func TestWorker_ThrottleIdenticalView(t *testing.T) {
	w := loadWorker(t, testCloud(50, 3))

	vp := viewProjWithDepthRow(0, 0, 1)
	w.RequestSort(vp)
	if reply := mustReply(t, w); reply.Sort == nil {
		t.Fatalf("first sort: %+v", reply)
	}
	w.RequestSort(vp)
	expectSilence(t, w)
}

// A view rotated within the throttle tolerance is skipped; a larger
// rotation sorts again.
func TestWorker_ThrottleSmallVsLargeMotion(t *testing.T) {
	w := loadWorker(t, testCloud(50, 4))

	w.RequestSort(viewProjWithDepthRow(0, 0, 1))
	if reply := mustReply(t, w); reply.Sort == nil {
		t.Fatalf("initial sort: %+v", reply)
	}

	// cos(theta) = 0.999 -> |dot-1| = 0.001 < 0.01: throttled.
	small := float32(0.999)
	sinSmall := float32(math.Sqrt(float64(1 - small*small)))
	w.RequestSort(viewProjWithDepthRow(0, sinSmall, small))
	expectSilence(t, w)

	// cos(theta) = 0.9: emits a new ordering.
	large := float32(0.9)
	sinLarge := float32(math.Sqrt(float64(1 - large*large)))
	w.RequestSort(viewProjWithDepthRow(0, sinLarge, large))
	if reply := mustReply(t, w); reply.Sort == nil {
		t.Fatalf("large motion sort: %+v", reply)
	}
}

// set-alpha invalidates the throttle: the next sort runs even under
// an identical view.
func TestWorker_SetAlphaInvalidatesThrottle(t *testing.T) {
	w := loadWorker(t, testCloud(50, 5))

	vp := viewProjWithDepthRow(0, 0, 1)
	w.RequestSort(vp)
	first := mustReply(t, w)
	if first.Sort == nil {
		t.Fatalf("first sort: %+v", first)
	}

	w.SetAlphaCutoff(128)
	w.RequestSort(vp)
	second := mustReply(t, w)
	if second.Sort == nil {
		t.Fatalf("post-set-alpha sort: %+v", second)
	}
	if second.Sort.VisibleCount >= first.Sort.VisibleCount {
		t.Errorf("raising the cutoff kept %d of %d splats visible",
			second.Sort.VisibleCount, first.Sort.VisibleCount)
	}

	// And exactly one: the next identical sort is throttled again.
	w.RequestSort(vp)
	expectSilence(t, w)
}

func TestWorker_AlphaCutoffClamped(t *testing.T) {
	w := loadWorker(t, testCloud(50, 6))

	// 0 clamps to 1; a sort must still see every nonzero splat.
	w.SetAlphaCutoff(0)
	w.RequestSort(viewProjWithDepthRow(0, 0, 1))
	reply := mustReply(t, w)
	if reply.Sort == nil {
		t.Fatalf("sort after clamp: %+v", reply)
	}
}

func TestWorker_SortBeforeLoadIsIgnored(t *testing.T) {
	w := NewSplatWorker()
	defer w.Stop()
	w.RequestSort(viewProjWithDepthRow(0, 0, 1))
	expectSilence(t, w)
}

func TestWorker_EmptySceneSortsEmpty(t *testing.T) {
	// N=0 is rejected at the engine boundary, but the worker itself
	// answers with an empty texture and empty sorts.
	w := NewSplatWorker()
	defer w.Stop()
	w.Load([]byte{}, 0)

	reply := mustReply(t, w)
	if reply.Err != nil || reply.Texture == nil {
		t.Fatalf("empty load: %+v", reply)
	}
	if reply.Texture.Height != 0 {
		t.Errorf("empty texture height %d, want 0", reply.Texture.Height)
	}

	w.RequestSort(viewProjWithDepthRow(0, 0, 1))
	sorted := mustReply(t, w)
	if sorted.Sort == nil || sorted.Sort.VisibleCount != 0 || sorted.Sort.TotalCount != 0 {
		t.Fatalf("empty sort: %+v", sorted)
	}
}

func TestWorker_BoundedMailboxDropsExcess(t *testing.T) {
	w := loadWorker(t, testCloud(200_000, 8))

	// Flood with distinct views; the bounded mailbox must reject
	// some without blocking this goroutine.
	dropped := false
	for i := 0; i < 64; i++ {
		angle := float64(i) * 0.3
		ok := w.RequestSort(viewProjWithDepthRow(
			float32(math.Sin(angle)), 0, float32(math.Cos(angle))))
		if !ok {
			dropped = true
		}
	}
	if !dropped {
		t.Log("mailbox never filled; worker kept pace")
	}
	// Drain whatever was accepted.
	for {
		select {
		case <-w.Replies():
		case <-time.After(500 * time.Millisecond):
			return
		}
	}
}
