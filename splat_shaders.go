// splat_shaders.go - SPIR-V shader loading for the Vulkan backend

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
splat_shaders.go - Shader assets

The GLSL sources live in shaders/ and are compiled to SPIR-V with
glslc via go:generate. The binaries are looked up at runtime next to
the executable, in the working directory, or in an explicitly
configured shader directory. A missing or corrupt binary is an
initialization error; the engine then runs on the software backend.
*/

package main

//go:generate glslc -fshader-stage=vertex shaders/splat.vert -o shaders/splat.vert.spv
//go:generate glslc -fshader-stage=fragment shaders/splat.frag -o shaders/splat.frag.spv

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

const (
	splatVertexSPV   = "splat.vert.spv"
	splatFragmentSPV = "splat.frag.spv"

	spirvMagic = 0x07230203
)

// shaderSearchDirs lists the places a SPIR-V binary may live, in
// priority order. dir comes from the config file and may be empty.
func shaderSearchDirs(dir string) []string {
	dirs := []string{}
	if dir != "" {
		dirs = append(dirs, dir)
	}
	if env := os.Getenv("SPLATENGINE_SHADER_DIR"); env != "" {
		dirs = append(dirs, env)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "shaders"))
	}
	dirs = append(dirs, "shaders")
	return dirs
}

// loadShaderSPIRV reads and sanity-checks one compiled shader.
func loadShaderSPIRV(dir, name string) ([]byte, error) {
	var firstErr error
	for _, d := range shaderSearchDirs(dir) {
		data, err := os.ReadFile(filepath.Join(d, name))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(data) < 20 || len(data)%4 != 0 {
			return nil, fmt.Errorf("shader %s: not a SPIR-V module (%d bytes)", name, len(data))
		}
		if binary.LittleEndian.Uint32(data) != spirvMagic {
			return nil, fmt.Errorf("shader %s: bad SPIR-V magic", name)
		}
		return data, nil
	}
	return nil, fmt.Errorf("shader %s not found (run go generate to compile): %w", name, firstErr)
}

// loadSplatShaders returns the vertex and fragment SPIR-V binaries.
func loadSplatShaders(dir string) (vert, frag []byte, err error) {
	vert, err = loadShaderSPIRV(dir, splatVertexSPV)
	if err != nil {
		return nil, nil, err
	}
	frag, err = loadShaderSPIRV(dir, splatFragmentSPV)
	if err != nil {
		return nil, nil, err
	}
	return vert, frag, nil
}
