// splat_texture.go - Covariance texture codec

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
splat_texture.go - Packed buffer -> RGBA32UI covariance texture

Splat i occupies texels (2i, 2i+1) of a 2048-wide unsigned-integer
texture, row floor(i/1024):

  texel 2i:   words 0-2 = IEEE-754 bit patterns of the position,
              word 3    = RGBA bytes (R in the low byte)
  texel 2i+1: words 0-2 = (4*s00,4*s01) (4*s02,4*s11) (4*s12,4*s22)
              as half-float pairs, word 3 spare

The vertex shader reinterprets the position words with
uintBitsToFloat and expands the pairs with unpackHalf2x16; the
software backend uses the mirror helpers below. Out-of-range texels
stay zero.
*/

package main

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TextureData is the one-shot covariance texture emitted by the
// worker after a scene load.
type TextureData struct {
	Data   []uint32
	Width  int
	Height int
}

// BuildCovarianceTexture converts the packed buffer into texture
// words. The splat count n may be zero, yielding a zero-row texture.
func BuildCovarianceTexture(packed []byte, n int) (*TextureData, error) {
	if len(packed) < n*SPLAT_RECORD_SIZE {
		return nil, fmt.Errorf("packed buffer too small: %d bytes for %d splats", len(packed), n)
	}
	height := (2*n + SPLAT_TEX_WIDTH - 1) / SPLAT_TEX_WIDTH
	data := make([]uint32, SPLAT_TEX_WIDTH*height*SPLAT_WORDS_PER_TEXEL)

	for i := 0; i < n; i++ {
		rec := packed[i*SPLAT_RECORD_SIZE : (i+1)*SPLAT_RECORD_SIZE]

		base0 := 2 * i * SPLAT_WORDS_PER_TEXEL
		base1 := (2*i + 1) * SPLAT_WORDS_PER_TEXEL

		// Position bit patterns, verbatim.
		data[base0+0] = binary.LittleEndian.Uint32(rec[SPLAT_POSITION_OFF:])
		data[base0+1] = binary.LittleEndian.Uint32(rec[SPLAT_POSITION_OFF+4:])
		data[base0+2] = binary.LittleEndian.Uint32(rec[SPLAT_POSITION_OFF+8:])
		data[base0+3] = binary.LittleEndian.Uint32(rec[SPLAT_RGBA_OFF:])

		// Quaternion decode: (b-128)/128, no renormalization.
		qw := (float32(rec[SPLAT_QUAT_OFF+0]) - 128) / 128
		qx := (float32(rec[SPLAT_QUAT_OFF+1]) - 128) / 128
		qy := (float32(rec[SPLAT_QUAT_OFF+2]) - 128) / 128
		qz := (float32(rec[SPLAT_QUAT_OFF+3]) - 128) / 128

		sx := math.Float32frombits(binary.LittleEndian.Uint32(rec[SPLAT_SCALE_OFF:]))
		sy := math.Float32frombits(binary.LittleEndian.Uint32(rec[SPLAT_SCALE_OFF+4:]))
		sz := math.Float32frombits(binary.LittleEndian.Uint32(rec[SPLAT_SCALE_OFF+8:]))

		cov := covarianceFromQuatScale(qw, qx, qy, qz, sx, sy, sz)
		data[base1+0] = packHalf2x16(SPLAT_COV_SCALE*cov[0], SPLAT_COV_SCALE*cov[1])
		data[base1+1] = packHalf2x16(SPLAT_COV_SCALE*cov[2], SPLAT_COV_SCALE*cov[3])
		data[base1+2] = packHalf2x16(SPLAT_COV_SCALE*cov[4], SPLAT_COV_SCALE*cov[5])
		// word 3 of texel 2i+1 is spare.
	}

	return &TextureData{Data: data, Width: SPLAT_TEX_WIDTH, Height: height}, nil
}

// texelWords returns the four words of a texel by linear index.
func texelWords(tex *TextureData, texel int) [4]uint32 {
	base := texel * SPLAT_WORDS_PER_TEXEL
	return [4]uint32{tex.Data[base], tex.Data[base+1], tex.Data[base+2], tex.Data[base+3]}
}

// decodeSplatTexels recovers position, RGBA word and the x4-scaled
// covariance for splat i, exactly as the vertex shader does.
func decodeSplatTexels(tex *TextureData, i int) (pos [3]float32, rgba uint32, cov [6]float32) {
	t0 := texelWords(tex, 2*i)
	t1 := texelWords(tex, 2*i+1)
	pos[0] = math.Float32frombits(t0[0])
	pos[1] = math.Float32frombits(t0[1])
	pos[2] = math.Float32frombits(t0[2])
	rgba = t0[3]
	cov[0], cov[1] = unpackHalf2x16(t1[0])
	cov[2], cov[3] = unpackHalf2x16(t1[1])
	cov[4], cov[5] = unpackHalf2x16(t1[2])
	return
}
