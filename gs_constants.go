// gs_constants.go - Shared constants for the Gaussian splat pipeline

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

// Packed record layout. One splat is 32 bytes: position (3 x float32),
// scale (3 x float32), RGBA (4 bytes), quaternion (4 bytes).
const (
	SPLAT_RECORD_SIZE  = 32
	SPLAT_POSITION_OFF = 0
	SPLAT_SCALE_OFF    = 12
	SPLAT_RGBA_OFF     = 24
	SPLAT_QUAT_OFF     = 28
	SPLAT_ALPHA_BYTE   = SPLAT_RGBA_OFF + 3
)

// Covariance texture wire format. Each splat occupies two RGBA32UI
// texels: texel 2i carries the position bit patterns and the RGBA
// word, texel 2i+1 carries the six covariance entries as three
// half-float pairs (word 3 spare).
const (
	SPLAT_TEX_WIDTH       = 2048
	SPLAT_WORDS_PER_TEXEL = 4

	// The six covariance entries are scaled by 4 before half-float
	// packing. The decoder consumes them as-is: the quad corner range
	// of +/-2 combined with the x4 wire scale puts the axis length
	// sqrt(2*lambda) at roughly 4 sigma on screen.
	SPLAT_COV_SCALE = 4.0
)

// Depth sort.
const (
	SPLAT_SORT_BUCKETS  = 65536
	SPLAT_DEPTH_SCALE   = 4096
	SPLAT_THROTTLE_EPS  = 0.01
	SPLAT_ALPHA_CUT_MIN = 1
	SPLAT_ALPHA_CUT_MAX = 255
	SPLAT_DEFAULT_ALPHA = 1
)

// GPU pipeline.
const (
	SPLAT_QUAD_EXTENT    = 2.0    // quad corners at (+/-2, +/-2), Gaussian sigma units
	SPLAT_AXIS_CLAMP     = 1024.0 // pixel cap on either principal axis
	SPLAT_FRUSTUM_SLACK  = 1.2    // near/side cull tolerance in clip units
	SPLAT_FALLOFF_CUTOFF = -4.0   // fragment discard outside the 2 sigma envelope
)

// Viewer defaults.
const (
	SPLAT_DEFAULT_WIDTH  = 1024
	SPLAT_DEFAULT_HEIGHT = 768
	SPLAT_DEFAULT_FOV    = 60.0 // degrees
	SPLAT_DEFAULT_ZNEAR  = 0.2
	SPLAT_DEFAULT_ZFAR   = 200.0
	SPLAT_MAX_COUNT      = 10_000_000
)
