// splat_engine.go - Scene/front-end glue between worker, camera and backend

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
splat_engine.go - The splat engine front end

Owns the per-scene worker, the rendering backend (Vulkan with a
software fallback baked in) and the uniform state. The frame loop is:

  1. drain worker replies in arrival order (the covariance texture of
     a load always precedes that scene's first index array; a stale
     index array is still consistent with some recent view and is
     applied unconditionally),
  2. enqueue a sort request for the current view (non-blocking; the
     worker's throttle decides whether anything happens),
  3. render through the backend.

Scene loads are synchronous: parse, pack, hand the buffer to a fresh
worker and wait for its texture reply. On any failure the previous
scene stays bound.
*/

package main

import (
	"fmt"
	"strings"
	"time"
)

// RenderUniforms is the per-frame uniform block shared by both
// backends. Matrices are column-major.
type RenderUniforms struct {
	Proj     Mat4
	View     Mat4
	Focal    [2]float32
	Viewport [2]float32
}

// SplatBackend is implemented by the Vulkan renderer and the software
// rasterizer.
type SplatBackend interface {
	Init(width, height int) error
	Resize(width, height int) error

	// UploadTexture replaces the scene's covariance texture.
	UploadTexture(tex *TextureData) error

	// UpdateIndices replaces the per-instance draw order.
	UpdateIndices(indices []uint32, visible int) error

	// Render draws the current index buffer into the backend's frame.
	Render(u *RenderUniforms) error

	// GetFrame returns the last rendered premultiplied RGBA frame.
	GetFrame() []byte

	Destroy()
}

// EngineError carries the failing operation and its context.
type EngineError struct {
	Operation string
	Details   string
	Err       error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("splat %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("splat %s failed: %s", e.Operation, e.Details)
}

func (e *EngineError) Unwrap() error { return e.Err }

// SplatEngine drives one scene through the pipeline.
type SplatEngine struct {
	backend     SplatBackend
	backendName string

	width, height int
	fov           float64
	znear, zfar   float32

	worker     *SplatWorker
	splatCount int
	haveScene  bool
	scenePath  string

	alphaCutoff int

	status string
}

// NewSplatEngine wires an engine to a backend. The backend must
// already be initialized.
func NewSplatEngine(backend SplatBackend, backendName string, width, height int) *SplatEngine {
	return &SplatEngine{
		backend:     backend,
		backendName: backendName,
		width:       width,
		height:      height,
		fov:         SPLAT_DEFAULT_FOV,
		znear:       SPLAT_DEFAULT_ZNEAR,
		zfar:        SPLAT_DEFAULT_ZFAR,
		alphaCutoff: SPLAT_DEFAULT_ALPHA,
		status:      "no scene loaded",
	}
}

// SetProjection overrides the default field of view and clip planes.
func (e *SplatEngine) SetProjection(fovDegrees float64, znear, zfar float32) {
	e.fov = fovDegrees
	e.znear = znear
	e.zfar = zfar
}

// LoadScene parses, packs and hands a PLY scene to a new worker.
// The previous scene remains bound if anything fails.
func (e *SplatEngine) LoadScene(path string) error {
	cloud, err := ParsePLYFile(path)
	if err != nil {
		return &EngineError{Operation: "scene load", Details: path, Err: err}
	}
	return e.LoadCloud(cloud, path)
}

// LoadCloud loads an already-normalized splat set.
func (e *SplatEngine) LoadCloud(cloud *SplatCloud, name string) error {
	packed, err := PackSplats(cloud)
	if err != nil {
		return &EngineError{Operation: "scene load", Details: name, Err: err}
	}

	worker := NewSplatWorker()
	worker.Load(packed, cloud.Count)

	// Covariance generation is synchronous with the load message, so
	// the first reply is either the texture or the load error.
	var reply WorkerReply
	select {
	case reply = <-worker.Replies():
	case <-time.After(30 * time.Second):
		worker.Stop()
		return &EngineError{Operation: "scene load", Details: name,
			Err: fmt.Errorf("worker did not answer")}
	}
	if reply.Err != nil {
		worker.Stop()
		return &EngineError{Operation: "scene load", Details: name, Err: reply.Err}
	}

	if err := e.backend.UploadTexture(reply.Texture); err != nil {
		worker.Stop()
		return &EngineError{Operation: "texture upload", Details: name, Err: err}
	}

	// New scene is good; retire the old worker.
	if e.worker != nil {
		e.worker.Stop()
	}
	e.worker = worker
	e.splatCount = cloud.Count
	e.haveScene = true
	e.scenePath = name
	if e.alphaCutoff != SPLAT_DEFAULT_ALPHA {
		worker.SetAlphaCutoff(e.alphaCutoff)
	}
	e.status = fmt.Sprintf("%d splats [%s]", e.splatCount, e.backendName)
	return nil
}

// UnloadScene drops the worker state; GPU resources follow on
// Destroy or the next load.
func (e *SplatEngine) UnloadScene() {
	if e.worker != nil {
		e.worker.Stop()
		e.worker = nil
	}
	e.haveScene = false
	e.splatCount = 0
	e.backend.UpdateIndices(nil, 0)
	e.status = "no scene loaded"
}

// SetAlphaCutoff adjusts the worker's opacity cull threshold.
func (e *SplatEngine) SetAlphaCutoff(a int) {
	if a < SPLAT_ALPHA_CUT_MIN {
		a = SPLAT_ALPHA_CUT_MIN
	}
	if a > SPLAT_ALPHA_CUT_MAX {
		a = SPLAT_ALPHA_CUT_MAX
	}
	e.alphaCutoff = a
	if e.worker != nil {
		e.worker.SetAlphaCutoff(a)
	}
}

// AlphaCutoff returns the current cull threshold.
func (e *SplatEngine) AlphaCutoff() int { return e.alphaCutoff }

// Resize tracks the canvas at device-pixel resolution.
func (e *SplatEngine) Resize(width, height int) error {
	if width == e.width && height == e.height {
		return nil
	}
	if err := e.backend.Resize(width, height); err != nil {
		return &EngineError{Operation: "resize",
			Details: fmt.Sprintf("%dx%d", width, height), Err: err}
	}
	e.width = width
	e.height = height
	return nil
}

// Uniforms computes the per-frame uniform block for a camera view.
func (e *SplatEngine) Uniforms(camera *OrbitCamera) *RenderUniforms {
	f := focalLength(e.fov, e.height)
	view := renderViewMatrix(camera.ViewMatrix())
	proj := projectionMatrix(f, f, e.width, e.height, e.znear, e.zfar)
	return &RenderUniforms{
		Proj:     proj,
		View:     view,
		Focal:    [2]float32{f, f},
		Viewport: [2]float32{float32(e.width), float32(e.height)},
	}
}

// Step runs one frame: drain worker output, request a sort for the
// current view, render.
func (e *SplatEngine) Step(camera *OrbitCamera) error {
	u := e.Uniforms(camera)

	if e.worker != nil {
		e.drainReplies()
		e.worker.RequestSort(mat4Mul(u.Proj, u.View))
	}

	if err := e.backend.Render(u); err != nil {
		return &EngineError{Operation: "render", Details: e.scenePath, Err: err}
	}
	return nil
}

// drainReplies applies pending worker output in arrival order.
func (e *SplatEngine) drainReplies() {
	for {
		select {
		case reply := <-e.worker.Replies():
			switch {
			case reply.Err != nil:
				fmt.Printf("splat worker: %v\n", reply.Err)
			case reply.Texture != nil:
				if err := e.backend.UploadTexture(reply.Texture); err != nil {
					fmt.Printf("splat engine: texture upload: %v\n", err)
				}
			case reply.Sort != nil:
				if err := e.backend.UpdateIndices(reply.Sort.Indices, reply.Sort.VisibleCount); err != nil {
					fmt.Printf("splat engine: index update: %v\n", err)
				}
			}
		default:
			return
		}
	}
}

// Frame returns the backend's last rendered frame.
func (e *SplatEngine) Frame() []byte { return e.backend.GetFrame() }

// Size returns the current canvas dimensions.
func (e *SplatEngine) Size() (int, int) { return e.width, e.height }

// HasScene reports whether a scene is currently bound.
func (e *SplatEngine) HasScene() bool { return e.haveScene }

// Status is the user-visible one-liner: "N splats [backend]" or an
// error/empty-state string.
func (e *SplatEngine) Status() string { return e.status }

// SetStatusError surfaces a failure in the status line.
func (e *SplatEngine) SetStatusError(err error) {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	e.status = msg
}

// Destroy releases the worker and backend resources.
func (e *SplatEngine) Destroy() {
	if e.worker != nil {
		e.worker.Stop()
		e.worker = nil
	}
	e.backend.Destroy()
}
