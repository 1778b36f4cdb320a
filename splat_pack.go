// splat_pack.go - Packs normalized splat records into the 32-byte wire layout

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SplatCloud holds the normalized per-splat arrays handed over by the
// PLY loader: positions[3N], scales[3N] (already exponentiated),
// rotations[4N] as unit (w,x,y,z) quaternions, opacities[N] in [0,1]
// and colors[3N] in [0,1].
type SplatCloud struct {
	Positions []float32
	Scales    []float32
	Rotations []float32
	Opacities []float32
	Colors    []float32
	Count     int
}

// Validate checks the array shapes against Count.
func (c *SplatCloud) Validate() error {
	n := c.Count
	if n <= 0 {
		return fmt.Errorf("splat cloud is empty")
	}
	if n > SPLAT_MAX_COUNT {
		return fmt.Errorf("splat cloud too large: %d splats", n)
	}
	if len(c.Positions) != 3*n || len(c.Scales) != 3*n ||
		len(c.Rotations) != 4*n || len(c.Opacities) != n || len(c.Colors) != 3*n {
		return fmt.Errorf("splat cloud arrays inconsistent with count %d", n)
	}
	return nil
}

// PackSplats serializes a normalized cloud into the 32-byte-per-splat
// buffer consumed by the worker. Deterministic: identical input yields
// a bit-identical buffer. The returned slice is conceptually moved to
// the worker; the caller must not retain it.
func PackSplats(cloud *SplatCloud) ([]byte, error) {
	if err := cloud.Validate(); err != nil {
		return nil, err
	}
	n := cloud.Count
	buf := make([]byte, n*SPLAT_RECORD_SIZE)
	for i := 0; i < n; i++ {
		rec := buf[i*SPLAT_RECORD_SIZE:]
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(rec[SPLAT_POSITION_OFF+j*4:],
				math.Float32bits(cloud.Positions[i*3+j]))
			binary.LittleEndian.PutUint32(rec[SPLAT_SCALE_OFF+j*4:],
				math.Float32bits(cloud.Scales[i*3+j]))
		}
		rec[SPLAT_RGBA_OFF+0] = quantizeUnit(cloud.Colors[i*3+0])
		rec[SPLAT_RGBA_OFF+1] = quantizeUnit(cloud.Colors[i*3+1])
		rec[SPLAT_RGBA_OFF+2] = quantizeUnit(cloud.Colors[i*3+2])
		rec[SPLAT_RGBA_OFF+3] = quantizeUnit(cloud.Opacities[i])
		for j := 0; j < 4; j++ {
			rec[SPLAT_QUAT_OFF+j] = quantizeSigned(cloud.Rotations[i*4+j])
		}
	}
	return buf, nil
}

// quantizeUnit maps [0,1] to a byte: round(clamp(v,0,1)*255).
func quantizeUnit(v float32) byte {
	return byte(math.Round(float64(clampf32(v, 0, 1)) * 255))
}

// quantizeSigned maps [-1,1] to a byte: round(clamp(v,-1,1)*128+128).
// The decoder applies (b-128)/128.
func quantizeSigned(v float32) byte {
	q := math.Round(float64(clampf32(v, -1, 1))*128 + 128)
	if q > 255 {
		q = 255
	}
	return byte(q)
}
