// main.go - Splat Engine entry point

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"
)

// compiledFeatures collects build-tag variants for the banner.
var compiledFeatures []string

func boilerPlate() {
	fmt.Println("\nSplat Engine - an interactive 3D Gaussian Splatting viewer.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/SplatEngine")
	fmt.Println("License: GPLv3 or later")
	if len(compiledFeatures) > 0 {
		fmt.Printf("Build: %v\n", compiledFeatures)
	}
}

func main() {
	boilerPlate()

	configPath := flag.String("config", "", "path to config.toml (default: user config dir)")
	backendFlag := flag.String("backend", "", "rendering backend: vulkan or software")
	alphaFlag := flag.Int("alpha", 0, "alpha cutoff in [1,255]")
	widthFlag := flag.Int("width", 0, "window width in pixels")
	heightFlag := flag.Int("height", 0, "window height in pixels")
	snapshotFlag := flag.String("snapshot", "", "render one frame to a PNG and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: splatengine [options] [scene.ply]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	conf, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if *backendFlag != "" {
		conf.Backend = *backendFlag
	}
	if *alphaFlag != 0 {
		conf.AlphaCutoff = *alphaFlag
	}
	if *widthFlag > 0 {
		conf.Width = *widthFlag
	}
	if *heightFlag > 0 {
		conf.Height = *heightFlag
	}
	if err := conf.validate(); err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	backend, name, err := newBackend(conf)
	if err != nil {
		fmt.Printf("Failed to initialize renderer: %v\n", err)
		os.Exit(1)
	}

	engine := NewSplatEngine(backend, name, conf.Width, conf.Height)
	engine.SetProjection(conf.FOV, float32(conf.ZNear), float32(conf.ZFar))
	engine.SetAlphaCutoff(conf.AlphaCutoff)
	defer engine.Destroy()

	if scene := flag.Arg(0); scene != "" {
		fmt.Printf("Loading scene: %s\n", scene)
		if err := engine.LoadScene(scene); err != nil {
			fmt.Printf("Scene load error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(engine.Status())
	}

	camera := NewOrbitCamera()

	if *snapshotFlag != "" {
		if err := renderSnapshot(engine, camera, *snapshotFlag); err != nil {
			fmt.Printf("Snapshot error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *snapshotFlag)
		return
	}

	if err := runViewer(engine, camera, conf); err != nil {
		fmt.Printf("Viewer error: %v\n", err)
		os.Exit(1)
	}
}

// newBackend builds the configured backend. "vulkan" degrades to the
// software rasterizer internally when no device is available.
func newBackend(conf Config) (SplatBackend, string, error) {
	if conf.Backend == "software" {
		backend := NewSoftwareBackend()
		if err := backend.Init(conf.Width, conf.Height); err != nil {
			return nil, "", err
		}
		return backend, "software", nil
	}
	backend := NewVulkanBackend(conf.ShaderDir)
	if err := backend.Init(conf.Width, conf.Height); err != nil {
		return nil, "", err
	}
	return backend, backend.BackendName(), nil
}

// renderSnapshot steps the engine until the first sort has landed,
// then writes the frame as a PNG.
func renderSnapshot(engine *SplatEngine, camera *OrbitCamera, path string) error {
	for i := 0; i < 8; i++ {
		if err := engine.Step(camera); err != nil {
			return err
		}
		// The sort reply arrives asynchronously; give the worker a
		// frame's worth of time before the next drain.
		time.Sleep(16 * time.Millisecond)
	}

	w, h := engine.Size()
	frame := engine.Frame()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, frame)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
