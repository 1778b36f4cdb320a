//go:build headless

// splat_vulkan_headless.go - Software-only backend for headless builds

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

package main

func init() {
	compiledFeatures = append(compiledFeatures, "renderer:headless")
}

// VulkanBackend wraps SoftwareBackend in headless builds. Same type
// name so the rest of the codebase compiles unchanged.
type VulkanBackend struct {
	software *SoftwareBackend
}

func NewVulkanBackend(shaderDir string) *VulkanBackend {
	return &VulkanBackend{software: NewSoftwareBackend()}
}

func (vb *VulkanBackend) BackendName() string {
	return "software"
}

func (vb *VulkanBackend) Init(width, height int) error {
	return vb.software.Init(width, height)
}

func (vb *VulkanBackend) Resize(width, height int) error {
	return vb.software.Resize(width, height)
}

func (vb *VulkanBackend) UploadTexture(tex *TextureData) error {
	return vb.software.UploadTexture(tex)
}

func (vb *VulkanBackend) UpdateIndices(indices []uint32, visible int) error {
	return vb.software.UpdateIndices(indices, visible)
}

func (vb *VulkanBackend) Render(u *RenderUniforms) error {
	return vb.software.Render(u)
}

func (vb *VulkanBackend) GetFrame() []byte {
	return vb.software.GetFrame()
}

func (vb *VulkanBackend) Destroy() {
	vb.software.Destroy()
}
