//go:build !headless

// viewer_ebiten.go - Ebiten presentation window and input handling

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
viewer_ebiten.go - The viewer window

Hosts the engine's frames in an ebiten window and turns input into
camera motion:

  left drag          orbit
  shift + left drag  pan
  wheel              zoom
  [ / ]              alpha cutoff down / up
  F11                fullscreen toggle
  Ctrl+Shift+V       paste a scene path from the clipboard
  drag & drop        load a .ply scene
  Escape             quit

Each Update ticks the engine (drain worker replies, request a sort,
render); Draw copies the premultiplied frame into the window.
*/

package main

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

// runViewer opens the window and blocks until it closes.
func runViewer(engine *SplatEngine, camera *OrbitCamera, conf Config) error {
	return NewViewerWindow(engine, camera, conf).Run()
}

// ViewerWindow is the ebiten.Game driving the splat engine.
type ViewerWindow struct {
	engine *SplatEngine
	camera *OrbitCamera

	width, height int
	fullscreen    bool
	canvas        *ebiten.Image

	dragging   bool
	lastMouseX int
	lastMouseY int

	clipboardOnce sync.Once
	clipboardOK   bool
}

// NewViewerWindow wires the window to an engine and camera.
func NewViewerWindow(engine *SplatEngine, camera *OrbitCamera, conf Config) *ViewerWindow {
	return &ViewerWindow{
		engine:     engine,
		camera:     camera,
		width:      conf.Width,
		height:     conf.Height,
		fullscreen: conf.Fullscreen,
	}
}

// Run enters the ebiten main loop and blocks until the window closes.
func (w *ViewerWindow) Run() error {
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle("Splat Engine (c) 2024 - 2026 Zayn Otley")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if w.fullscreen {
		ebiten.SetFullscreen(true)
	}
	return ebiten.RunGame(w)
}

func (w *ViewerWindow) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		w.fullscreen = !w.fullscreen
		ebiten.SetFullscreen(w.fullscreen)
	}

	w.handleMouse()
	w.handleKeys()
	w.handleDrop()

	if err := w.engine.Step(w.camera); err != nil {
		fmt.Printf("Render error: %v\n", err)
		w.engine.SetStatusError(err)
	}
	return nil
}

func (w *ViewerWindow) handleMouse() {
	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if w.dragging {
			dx := float64(x - w.lastMouseX)
			dy := float64(y - w.lastMouseY)
			shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
			if shift {
				w.camera.Pan(-dx, dy)
			} else {
				w.camera.Orbit(-dx*0.01, -dy*0.01)
			}
		}
		w.dragging = true
	} else {
		w.dragging = false
	}
	w.lastMouseX = x
	w.lastMouseY = y

	if _, wy := ebiten.Wheel(); wy != 0 {
		w.camera.Zoom(wy)
	}
}

func (w *ViewerWindow) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		w.engine.SetAlphaCutoff(w.engine.AlphaCutoff() - 8)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		w.engine.SetAlphaCutoff(w.engine.AlphaCutoff() + 8)
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		w.handleClipboardPaste()
	}
}

func (w *ViewerWindow) handleClipboardPaste() {
	w.clipboardOnce.Do(func() {
		w.clipboardOK = clipboard.Init() == nil
	})
	if !w.clipboardOK {
		return
	}
	path := strings.TrimSpace(string(clipboard.Read(clipboard.FmtText)))
	if path == "" {
		return
	}
	if err := w.engine.LoadScene(path); err != nil {
		fmt.Printf("Scene load error: %v\n", err)
		w.engine.SetStatusError(err)
	}
}

func (w *ViewerWindow) handleDrop() {
	dropped := ebiten.DroppedFiles()
	if dropped == nil {
		return
	}
	entries, err := fs.ReadDir(dropped, ".")
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".ply") {
			continue
		}
		if err := w.loadDropped(dropped, entry.Name()); err != nil {
			fmt.Printf("Scene load error: %v\n", err)
			w.engine.SetStatusError(err)
		}
		return // first .ply wins
	}
}

func (w *ViewerWindow) loadDropped(fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	cloud, err := ParsePLY(f)
	if err != nil {
		return &EngineError{Operation: "scene load", Details: name, Err: err}
	}
	return w.engine.LoadCloud(cloud, name)
}

func (w *ViewerWindow) Draw(screen *ebiten.Image) {
	ew, eh := w.engine.Size()
	frame := w.engine.Frame()
	if frame != nil && len(frame) == ew*eh*4 {
		if w.canvas == nil || w.canvas.Bounds().Dx() != ew || w.canvas.Bounds().Dy() != eh {
			if w.canvas != nil {
				w.canvas.Dispose()
			}
			w.canvas = ebiten.NewImage(ew, eh)
		}
		w.canvas.WritePixels(frame)
		screen.DrawImage(w.canvas, nil)
	}
	ebitenutil.DebugPrint(screen, w.engine.Status())
}

// Layout tracks the canvas at the window's pixel size.
func (w *ViewerWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		if err := w.engine.Resize(outsideWidth, outsideHeight); err != nil {
			fmt.Printf("Resize error: %v\n", err)
		}
	}
	ew, eh := w.engine.Size()
	return ew, eh
}
