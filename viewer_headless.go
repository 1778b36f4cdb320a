//go:build headless

// viewer_headless.go - Headless builds have no window

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import "fmt"

func init() {
	compiledFeatures = append(compiledFeatures, "viewer:headless")
}

// runViewer cannot open a window in a headless build; -snapshot is
// the only output path.
func runViewer(engine *SplatEngine, camera *OrbitCamera, conf Config) error {
	return fmt.Errorf("built with -tags headless; use -snapshot to render to a file")
}
