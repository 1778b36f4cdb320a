// splat_software.go - CPU rasterizer fallback for the splat pipeline

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
splat_software.go - Software splat rasterization

A faithful CPU rendition of the GPU pass: it consumes the identical
covariance texture words and sorted index array, runs the same
projection, eigendecomposition and Gaussian falloff per splat, and
under-blends into a premultiplied RGBA buffer. Composition happens in
float and is quantized once per frame, so the output matches the GPU
path up to rounding. Used when Vulkan is unavailable and by the
end-to-end tests.
*/

package main

import (
	"math"
	"sync"
)

// SoftwareBackend rasterizes splats on the CPU.
type SoftwareBackend struct {
	mutex sync.RWMutex

	width, height int

	tex     *TextureData
	indices []uint32
	visible int

	accum []float32 // premultiplied RGBA accumulation, 4 floats per pixel
	frame []byte    // last rendered frame, RGBA bytes
}

// NewSoftwareBackend creates an uninitialized software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

func (b *SoftwareBackend) Init(width, height int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.allocate(width, height)
	return nil
}

func (b *SoftwareBackend) Resize(width, height int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if width != b.width || height != b.height {
		b.allocate(width, height)
	}
	return nil
}

func (b *SoftwareBackend) allocate(width, height int) {
	b.width = width
	b.height = height
	b.accum = make([]float32, width*height*4)
	b.frame = make([]byte, width*height*4)
}

func (b *SoftwareBackend) UploadTexture(tex *TextureData) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.tex = tex
	b.indices = nil
	b.visible = 0
	return nil
}

func (b *SoftwareBackend) UpdateIndices(indices []uint32, visible int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.indices = indices
	b.visible = visible
	return nil
}

func (b *SoftwareBackend) Render(u *RenderUniforms) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i := range b.accum {
		b.accum[i] = 0
	}

	if b.tex != nil {
		for _, idx := range b.indices[:b.visible] {
			b.drawSplat(int(idx), u)
		}
	}

	for i, v := range b.accum {
		b.frame[i] = byte(math.Round(float64(clamp1(v)) * 255))
	}
	return nil
}

// drawSplat mirrors the vertex and fragment stages for one splat.
func (b *SoftwareBackend) drawSplat(idx int, u *RenderUniforms) {
	pos, rgba, cov := decodeSplatTexels(b.tex, idx)

	cam := mat4MulVec(u.View, Vec4{pos[0], pos[1], pos[2], 1})
	clip := mat4MulVec(u.Proj, cam)

	// Near-frustum cull, same slack as the shader.
	if clip[2] < -SPLAT_FRUSTUM_SLACK*clip[3] ||
		float32(math.Abs(float64(clip[0]))) > SPLAT_FRUSTUM_SLACK*clip[3] ||
		float32(math.Abs(float64(clip[1]))) > SPLAT_FRUSTUM_SLACK*clip[3] {
		return
	}

	vrk := Mat3{
		cov[0], cov[1], cov[2],
		cov[1], cov[3], cov[4],
		cov[2], cov[4], cov[5],
	}

	fx, fy := u.Focal[0], u.Focal[1]
	cz2 := cam[2] * cam[2]
	j := Mat3{
		fx / cam[2], 0, -(fx * cam[0]) / cz2,
		0, -fy / cam[2], (fy * cam[1]) / cz2,
		0, 0, 0,
	}

	t := mat3Mul(mat3Transpose(mat3FromMat4(u.View)), j)
	cov2d := mat3Mul(mat3Mul(mat3Transpose(t), vrk), t)

	lambda1, lambda2, dx, dy := eigen2x2(cov2d[0], cov2d[1], cov2d[4])
	if lambda2 < 0 || math.IsNaN(float64(lambda1)) {
		return // ill-conditioned splat, drop silently
	}

	majLen := float32(math.Min(math.Sqrt(2*float64(lambda1)), SPLAT_AXIS_CLAMP))
	minLen := float32(math.Min(math.Sqrt(2*float64(lambda2)), SPLAT_AXIS_CLAMP))
	majX, majY := majLen*dx, majLen*dy
	minX, minY := minLen*dy, -minLen*dx

	fog := clamp1(clip[2]/clip[3] + 1)
	colR := fog * float32(rgba&0xFF) / 255
	colG := fog * float32((rgba>>8)&0xFF) / 255
	colB := fog * float32((rgba>>16)&0xFF) / 255
	colA := fog * float32((rgba>>24)&0xFF) / 255

	// Quad corner (qx,qy) in +/-2 lands at center + (qx*major + qy*minor)/2
	// pixels: the NDC offset qx*major/viewport spans half the canvas
	// per NDC unit.
	cx := (clip[0]/clip[3]*0.5 + 0.5) * float32(b.width)
	cy := (clip[1]/clip[3]*0.5 + 0.5) * float32(b.height)
	ax, ay := majX/2, majY/2
	bx, by := minX/2, minY/2

	det := ax*by - ay*bx
	if det == 0 {
		return
	}

	extX := SPLAT_QUAD_EXTENT * (float32(math.Abs(float64(ax))) + float32(math.Abs(float64(bx))))
	extY := SPLAT_QUAD_EXTENT * (float32(math.Abs(float64(ay))) + float32(math.Abs(float64(by))))
	x0 := int(math.Floor(float64(cx - extX)))
	x1 := int(math.Ceil(float64(cx + extX)))
	y0 := int(math.Floor(float64(cy - extY)))
	y1 := int(math.Ceil(float64(cy + extY)))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > b.width {
		x1 = b.width
	}
	if y1 > b.height {
		y1 = b.height
	}

	invDet := 1 / det
	for y := y0; y < y1; y++ {
		py := float32(y) + 0.5 - cy
		for x := x0; x < x1; x++ {
			px := float32(x) + 0.5 - cx

			qx := (px*by - py*bx) * invDet
			qy := (ax*py - ay*px) * invDet

			a := -(qx*qx + qy*qy)
			if a < SPLAT_FALLOFF_CUTOFF {
				continue
			}
			beta := float32(math.Exp(float64(a))) * colA

			// Under blend: src * (1 - dst.a) + dst, premultiplied.
			o := (y*b.width + x) * 4
			f := (1 - b.accum[o+3]) * beta
			b.accum[o+0] += f * colR
			b.accum[o+1] += f * colG
			b.accum[o+2] += f * colB
			b.accum[o+3] += f
		}
	}
}

func (b *SoftwareBackend) GetFrame() []byte {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.frame
}

func (b *SoftwareBackend) Destroy() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.tex = nil
	b.indices = nil
	b.accum = nil
	b.frame = nil
}
