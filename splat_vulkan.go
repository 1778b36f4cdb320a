//go:build !headless

// splat_vulkan.go - Vulkan backend for the splat pipeline

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/SplatEngine
License: GPLv3 or later
*/

/*
splat_vulkan.go - Vulkan rendering backend

Offscreen rendering (no window/swapchain needed): one color target,
a single graphics pipeline with the under blend baked in, dynamic
viewport/scissor so window resizes only touch the images, and a
staging buffer readback for the presenter. The covariance texture is
an RGBA32UI image sampled with texelFetch; the per-instance index
buffer advances one uint32 per quad instance.

If Vulkan is unavailable (no loader, no device, missing SPIR-V), the
backend falls through to the software rasterizer and the rest of the
engine is none the wiser.
*/

package main

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// splatUniformBlock mirrors the std140 SplatUniforms block in
// shaders/splat.vert: two mat4s followed by two vec2s.
type splatUniformBlock struct {
	Proj     Mat4
	View     Mat4
	Focal    [2]float32
	Viewport [2]float32
}

// VulkanBackend implements hardware rendering with a software
// fallback inside.
type VulkanBackend struct {
	mutex sync.RWMutex

	shaderDir string

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	graphicsQueue  vk.Queue
	queueFamily    uint32

	width, height    int
	colorImage       vk.Image
	colorImageMemory vk.DeviceMemory
	colorImageView   vk.ImageView

	renderPass  vk.RenderPass
	framebuffer vk.Framebuffer

	descSetLayout vk.DescriptorSetLayout
	descPool      vk.DescriptorPool
	descSet       vk.DescriptorSet
	texSampler    vk.Sampler

	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline

	quadBuffer       vk.Buffer
	quadBufferMemory vk.DeviceMemory

	indexBuffer       vk.Buffer
	indexBufferMemory vk.DeviceMemory
	indexCapacity     int
	visibleCount      int

	uniformBuffer       vk.Buffer
	uniformBufferMemory vk.DeviceMemory

	covImage       vk.Image
	covImageMemory vk.DeviceMemory
	covImageView   vk.ImageView
	haveTexture    bool

	stagingBuffer       vk.Buffer
	stagingBufferMemory vk.DeviceMemory

	commandPool   vk.CommandPool
	commandBuffer vk.CommandBuffer
	fence         vk.Fence

	vertShaderModule vk.ShaderModule
	fragShaderModule vk.ShaderModule

	outputFrame []byte
	initialized bool

	software *SoftwareBackend
}

var vulkanLoaderReady bool
var vulkanLoaderMutex sync.Mutex

// NewVulkanBackend creates a backend; Init decides whether Vulkan or
// the software fallback carries the frames.
func NewVulkanBackend(shaderDir string) *VulkanBackend {
	return &VulkanBackend{
		shaderDir: shaderDir,
		software:  NewSoftwareBackend(),
	}
}

// BackendName reports which path renders.
func (vb *VulkanBackend) BackendName() string {
	if vb.initialized {
		return "vulkan"
	}
	return "software"
}

func (vb *VulkanBackend) Init(width, height int) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	vb.width = width
	vb.height = height
	vb.outputFrame = make([]byte, width*height*4)

	if err := vb.software.Init(width, height); err != nil {
		return err
	}

	if err := vb.initVulkan(); err != nil {
		fmt.Printf("Vulkan initialization failed, using software backend: %v\n", err)
		vb.initialized = false
		return nil
	}

	vb.initialized = true
	return nil
}

func (vb *VulkanBackend) initVulkan() error {
	vulkanLoaderMutex.Lock()
	defer vulkanLoaderMutex.Unlock()

	if !vulkanLoaderReady {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return fmt.Errorf("failed to load Vulkan library: %w", err)
		}
		if err := vk.Init(); err != nil {
			return fmt.Errorf("failed to initialize Vulkan loader: %w", err)
		}
		vulkanLoaderReady = true
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"instance", vb.createInstance},
		{"physical device", vb.selectPhysicalDevice},
		{"device", vb.createDevice},
		{"command pool", vb.createCommandPool},
		{"offscreen image", vb.createOffscreenImage},
		{"render pass", vb.createRenderPass},
		{"framebuffer", vb.createFramebuffer},
		{"descriptors", vb.createDescriptors},
		{"pipeline", vb.createPipeline},
		{"quad buffer", vb.createQuadBuffer},
		{"uniform buffer", vb.createUniformBuffer},
		{"staging buffer", vb.createStagingBuffer},
		{"command buffer", vb.createCommandBuffer},
		{"fence", vb.createFence},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			vb.destroyVulkan()
			return fmt.Errorf("failed to create %s: %w", step.name, err)
		}
	}
	return nil
}

func (vb *VulkanBackend) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeVkString("SplatEngine"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeVkString("SplatEngine"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	vb.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (vb *VulkanBackend) selectPhysicalDevice() error {
	var deviceCount uint32
	vk.EnumeratePhysicalDevices(vb.instance, &deviceCount, nil)
	if deviceCount == 0 {
		return fmt.Errorf("no Vulkan-capable GPUs found")
	}

	devices := make([]vk.PhysicalDevice, deviceCount)
	vk.EnumeratePhysicalDevices(vb.instance, &deviceCount, devices)

	for _, device := range devices {
		var queueFamilyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
		queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

		for i, qf := range queueFamilies {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				vb.physicalDevice = device
				vb.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("no suitable GPU with graphics queue found")
}

func (vb *VulkanBackend) createDevice() error {
	queuePriority := float32(1.0)
	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: vb.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{queuePriority},
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueCreateInfo},
	}

	var device vk.Device
	if res := vk.CreateDevice(vb.physicalDevice, &deviceCreateInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	vb.device = device

	var queue vk.Queue
	vk.GetDeviceQueue(device, vb.queueFamily, 0, &queue)
	vb.graphicsQueue = queue
	return nil
}

func (vb *VulkanBackend) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: vb.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var pool vk.CommandPool
	if res := vk.CreateCommandPool(vb.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed: %d", res)
	}
	vb.commandPool = pool
	return nil
}

func (vb *VulkanBackend) createOffscreenImage() error {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{
			Width:  uint32(vb.width),
			Height: uint32(vb.height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	if res := vk.CreateImage(vb.device, &imageInfo, nil, &image); res != vk.Success {
		return fmt.Errorf("vkCreateImage (color) failed: %d", res)
	}
	vb.colorImage = image

	mem, err := vb.allocateImageMemory(image, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	vb.colorImageMemory = mem

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   vk.FormatR8g8b8a8Unorm,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if res := vk.CreateImageView(vb.device, &viewInfo, nil, &view); res != vk.Success {
		return fmt.Errorf("vkCreateImageView (color) failed: %d", res)
	}
	vb.colorImageView = view
	return nil
}

func (vb *VulkanBackend) allocateImageMemory(image vk.Image, props vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(vb.device, image, &memReqs)
	memReqs.Deref()

	memTypeIndex, err := vb.findMemoryType(memReqs.MemoryTypeBits, props)
	if err != nil {
		return vk.NullDeviceMemory, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(vb.device, &allocInfo, nil, &mem); res != vk.Success {
		return vk.NullDeviceMemory, fmt.Errorf("vkAllocateMemory (image) failed: %d", res)
	}
	vk.BindImageMemory(vb.device, image, mem, 0)
	return mem, nil
}

func (vb *VulkanBackend) createRenderPass() error {
	// Single color attachment, no depth: the under blend needs the
	// draw order, not a z test. Cleared to transparent black.
	colorAttachment := vk.AttachmentDescription{
		Format:         vk.FormatR8g8b8a8Unorm,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutTransferSrcOptimal,
	}

	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorRef},
	}

	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}

	var renderPass vk.RenderPass
	if res := vk.CreateRenderPass(vb.device, &renderPassInfo, nil, &renderPass); res != vk.Success {
		return fmt.Errorf("vkCreateRenderPass failed: %d", res)
	}
	vb.renderPass = renderPass
	return nil
}

func (vb *VulkanBackend) createFramebuffer() error {
	fbInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      vb.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{vb.colorImageView},
		Width:           uint32(vb.width),
		Height:          uint32(vb.height),
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(vb.device, &fbInfo, nil, &framebuffer); res != vk.Success {
		return fmt.Errorf("vkCreateFramebuffer failed: %d", res)
	}
	vb.framebuffer = framebuffer
	return nil
}

func (vb *VulkanBackend) createDescriptors() error {
	samplerInfo := vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterNearest,
		MinFilter:    vk.FilterNearest,
		MipmapMode:   vk.SamplerMipmapModeNearest,
		AddressModeU: vk.SamplerAddressModeClampToEdge,
		AddressModeV: vk.SamplerAddressModeClampToEdge,
		AddressModeW: vk.SamplerAddressModeClampToEdge,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(vb.device, &samplerInfo, nil, &sampler); res != vk.Success {
		return fmt.Errorf("vkCreateSampler failed: %d", res)
	}
	vb.texSampler = sampler

	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(vb.device, &layoutInfo, nil, &layout); res != vk.Success {
		return fmt.Errorf("vkCreateDescriptorSetLayout failed: %d", res)
	}
	vb.descSetLayout = layout

	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 1},
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(vb.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateDescriptorPool failed: %d", res)
	}
	vb.descPool = pool

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}

	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(vb.device, &allocInfo, &sets[0]); res != vk.Success {
		return fmt.Errorf("vkAllocateDescriptorSets failed: %d", res)
	}
	vb.descSet = sets[0]
	return nil
}

func (vb *VulkanBackend) createPipeline() error {
	vertSPV, fragSPV, err := loadSplatShaders(vb.shaderDir)
	if err != nil {
		return err
	}

	vertModule, err := vb.createShaderModule(vertSPV)
	if err != nil {
		return fmt.Errorf("failed to create vertex shader module: %w", err)
	}
	vb.vertShaderModule = vertModule

	fragModule, err := vb.createShaderModule(fragSPV)
	if err != nil {
		return fmt.Errorf("failed to create fragment shader module: %w", err)
	}
	vb.fragShaderModule = fragModule

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{vb.descSetLayout},
	}

	var pipelineLayout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(vb.device, &layoutInfo, nil, &pipelineLayout); res != vk.Success {
		return fmt.Errorf("vkCreatePipelineLayout failed: %d", res)
	}
	vb.pipelineLayout = pipelineLayout

	vertStage := vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vb.vertShaderModule,
		PName:  safeVkString("main"),
	}
	fragStage := vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: vb.fragShaderModule,
		PName:  safeVkString("main"),
	}
	shaderStages := []vk.PipelineShaderStageCreateInfo{vertStage, fragStage}

	// Binding 0: quad corner per vertex. Binding 1: splat index per
	// instance (advance rate 1).
	bindingDescs := []vk.VertexInputBindingDescription{
		{Binding: 0, Stride: 2 * 4, InputRate: vk.VertexInputRateVertex},
		{Binding: 1, Stride: 4, InputRate: vk.VertexInputRateInstance},
	}
	attrDescs := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 0},
		{Location: 1, Binding: 1, Format: vk.FormatR32Uint, Offset: 0},
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindingDescs)),
		PVertexBindingDescriptions:      bindingDescs,
		VertexAttributeDescriptionCount: uint32(len(attrDescs)),
		PVertexAttributeDescriptions:    attrDescs,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleStrip,
		PrimitiveRestartEnable: vk.False,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	// Premultiplied under blend: src*(1-dst.a) + dst on both color
	// and alpha. Depth test is off by construction (no attachment).
	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.True,
		SrcColorBlendFactor: vk.BlendFactorOneMinusDstAlpha,
		DstColorBlendFactor: vk.BlendFactorOne,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOneMinusDstAlpha,
		DstAlphaBlendFactor: vk.BlendFactorOne,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
			vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}

	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              vb.pipelineLayout,
		RenderPass:          vb.renderPass,
		Subpass:             0,
	}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(vb.device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines); res != vk.Success {
		return fmt.Errorf("vkCreateGraphicsPipelines failed: %d", res)
	}
	vb.pipeline = pipelines[0]
	return nil
}

func (vb *VulkanBackend) createShaderModule(code []byte) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    vkSliceUint32(code),
	}

	var shaderModule vk.ShaderModule
	if res := vk.CreateShaderModule(vb.device, &createInfo, nil, &shaderModule); res != vk.Success {
		return vk.NullShaderModule, fmt.Errorf("vkCreateShaderModule failed: %d", res)
	}
	return shaderModule, nil
}

func (vb *VulkanBackend) createBuffer(size int, usage vk.BufferUsageFlagBits) (vk.Buffer, vk.DeviceMemory, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	if res := vk.CreateBuffer(vb.device, &bufferInfo, nil, &buffer); res != vk.Success {
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("vkCreateBuffer failed: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vb.device, buffer, &memReqs)
	memReqs.Deref()

	memTypeIndex, err := vb.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(vb.device, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memTypeIndex,
	}

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(vb.device, &allocInfo, nil, &memory); res != vk.Success {
		vk.DestroyBuffer(vb.device, buffer, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("vkAllocateMemory (buffer) failed: %d", res)
	}
	vk.BindBufferMemory(vb.device, buffer, memory, 0)
	return buffer, memory, nil
}

func (vb *VulkanBackend) writeBuffer(memory vk.DeviceMemory, src []byte) {
	var data unsafe.Pointer
	vk.MapMemory(vb.device, memory, 0, vk.DeviceSize(len(src)), 0, &data)
	vk.Memcopy(data, src)
	vk.UnmapMemory(vb.device, memory)
}

func (vb *VulkanBackend) createQuadBuffer() error {
	// Triangle strip covering the +/-2 quad.
	corners := []float32{-2, -2, 2, -2, -2, 2, 2, 2}
	buf, mem, err := vb.createBuffer(len(corners)*4, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return err
	}
	vb.quadBuffer = buf
	vb.quadBufferMemory = mem
	vb.writeBuffer(mem, float32SliceToBytes(corners))
	return nil
}

func (vb *VulkanBackend) createUniformBuffer() error {
	buf, mem, err := vb.createBuffer(int(unsafe.Sizeof(splatUniformBlock{})), vk.BufferUsageUniformBufferBit)
	if err != nil {
		return err
	}
	vb.uniformBuffer = buf
	vb.uniformBufferMemory = mem

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buf,
		Offset: 0,
		Range:  vk.DeviceSize(unsafe.Sizeof(splatUniformBlock{})),
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          vb.descSet,
		DstBinding:      1,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	vk.UpdateDescriptorSets(vb.device, 1, []vk.WriteDescriptorSet{write}, 0, nil)
	return nil
}

func (vb *VulkanBackend) createStagingBuffer() error {
	buf, mem, err := vb.createBuffer(vb.width*vb.height*4, vk.BufferUsageTransferDstBit)
	if err != nil {
		return err
	}
	vb.stagingBuffer = buf
	vb.stagingBufferMemory = mem
	return nil
}

func (vb *VulkanBackend) createCommandBuffer() error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        vb.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}

	cmdBuffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(vb.device, &allocInfo, cmdBuffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers failed: %d", res)
	}
	vb.commandBuffer = cmdBuffers[0]
	return nil
}

func (vb *VulkanBackend) createFence() error {
	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	var fence vk.Fence
	if res := vk.CreateFence(vb.device, &fenceInfo, nil, &fence); res != vk.Success {
		return fmt.Errorf("vkCreateFence failed: %d", res)
	}
	vb.fence = fence
	return nil
}

func (vb *VulkanBackend) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vb.physicalDevice, &memProps)
	memProps.Deref()

	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memProps.MemoryTypes[i].PropertyFlags&properties) == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("failed to find suitable memory type")
}

// Resize recreates the size-dependent resources. The pipeline
// survives because viewport and scissor are dynamic.
func (vb *VulkanBackend) Resize(width, height int) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	if width == vb.width && height == vb.height {
		return nil
	}
	vb.width = width
	vb.height = height
	vb.outputFrame = make([]byte, width*height*4)

	if err := vb.software.Resize(width, height); err != nil {
		return err
	}
	if !vb.initialized {
		return nil
	}

	vk.DeviceWaitIdle(vb.device)
	vb.destroyFramebuffer()
	vb.destroyOffscreenImage()
	vb.destroyStagingBuffer()

	if err := vb.createOffscreenImage(); err != nil {
		return err
	}
	if err := vb.createFramebuffer(); err != nil {
		return err
	}
	return vb.createStagingBuffer()
}

// UploadTexture replaces the covariance texture. Happens once per
// scene load; the image is read-only afterwards.
func (vb *VulkanBackend) UploadTexture(tex *TextureData) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	// The software fallback always mirrors the scene state so a GPU
	// loss mid-session degrades instead of blanking.
	if err := vb.software.UploadTexture(tex); err != nil {
		return err
	}
	if !vb.initialized {
		return nil
	}

	vk.DeviceWaitIdle(vb.device)
	vb.destroyCovImage()
	vb.haveTexture = false
	vb.visibleCount = 0

	height := tex.Height
	if height == 0 {
		// Empty scene: nothing to sample, nothing to draw.
		return nil
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR32g32b32a32Uint,
		Extent: vk.Extent3D{
			Width:  uint32(tex.Width),
			Height: uint32(height),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	if res := vk.CreateImage(vb.device, &imageInfo, nil, &image); res != vk.Success {
		return fmt.Errorf("vkCreateImage (covariance) failed: %d", res)
	}
	vb.covImage = image

	mem, err := vb.allocateImageMemory(image, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	vb.covImageMemory = mem

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   vk.FormatR32g32b32a32Uint,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if res := vk.CreateImageView(vb.device, &viewInfo, nil, &view); res != vk.Success {
		return fmt.Errorf("vkCreateImageView (covariance) failed: %d", res)
	}
	vb.covImageView = view

	// Stage the texel words and copy them over with layout barriers.
	byteLen := len(tex.Data) * 4
	staging, stagingMem, err := vb.createBuffer(byteLen, vk.BufferUsageTransferSrcBit)
	if err != nil {
		return err
	}
	defer func() {
		vk.DestroyBuffer(vb.device, staging, nil)
		vk.FreeMemory(vb.device, stagingMem, nil)
	}()
	vb.writeBuffer(stagingMem, uint32SliceToBytes(tex.Data))

	if err := vb.oneTimeCommands(func(cmd vk.CommandBuffer) {
		toTransfer := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			DstAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
			OldLayout:           vk.ImageLayoutUndefined,
			NewLayout:           vk.ImageLayoutTransferDstOptimal,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		vk.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toTransfer})

		region := vk.BufferImageCopy{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: uint32(tex.Width), Height: uint32(height), Depth: 1},
		}
		vk.CmdCopyBufferToImage(cmd, staging, image, vk.ImageLayoutTransferDstOptimal,
			1, []vk.BufferImageCopy{region})

		toShader := toTransfer
		toShader.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		toShader.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		toShader.OldLayout = vk.ImageLayoutTransferDstOptimal
		toShader.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
		vk.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toShader})
	}); err != nil {
		return err
	}

	imageDescInfo := vk.DescriptorImageInfo{
		Sampler:     vb.texSampler,
		ImageView:   view,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          vb.descSet,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{imageDescInfo},
	}
	vk.UpdateDescriptorSets(vb.device, 1, []vk.WriteDescriptorSet{write}, 0, nil)

	vb.haveTexture = true
	return nil
}

// oneTimeCommands records and synchronously submits a throwaway
// command buffer.
func (vb *VulkanBackend) oneTimeCommands(record func(vk.CommandBuffer)) error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        vb.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cmdBuffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(vb.device, &allocInfo, cmdBuffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers (one-time) failed: %d", res)
	}
	cmd := cmdBuffers[0]
	defer vk.FreeCommandBuffers(vb.device, vb.commandPool, 1, cmdBuffers)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	vk.BeginCommandBuffer(cmd, &beginInfo)
	record(cmd)
	vk.EndCommandBuffer(cmd)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	if res := vk.QueueSubmit(vb.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.Fence(vk.NullHandle)); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit (one-time) failed: %d", res)
	}
	vk.QueueWaitIdle(vb.graphicsQueue)
	return nil
}

// UpdateIndices replaces the per-instance draw order. The buffer is
// reallocated when the visible set outgrows it (DYNAMIC-style usage).
func (vb *VulkanBackend) UpdateIndices(indices []uint32, visible int) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	if err := vb.software.UpdateIndices(indices, visible); err != nil {
		return err
	}
	if !vb.initialized {
		return nil
	}

	vb.visibleCount = visible
	if visible == 0 {
		return nil
	}

	if visible > vb.indexCapacity {
		vk.DeviceWaitIdle(vb.device)
		vb.destroyIndexBuffer()
		buf, mem, err := vb.createBuffer(visible*4, vk.BufferUsageVertexBufferBit)
		if err != nil {
			return err
		}
		vb.indexBuffer = buf
		vb.indexBufferMemory = mem
		vb.indexCapacity = visible
	}

	vk.WaitForFences(vb.device, 1, []vk.Fence{vb.fence}, vk.True, ^uint64(0))
	vb.writeBuffer(vb.indexBufferMemory, uint32SliceToBytes(indices[:visible]))
	return nil
}

// Render draws the current index buffer and reads the frame back.
func (vb *VulkanBackend) Render(u *RenderUniforms) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	if !vb.initialized {
		return vb.software.Render(u)
	}

	block := splatUniformBlock{
		Proj:     u.Proj,
		View:     u.View,
		Focal:    u.Focal,
		Viewport: u.Viewport,
	}
	vk.WaitForFences(vb.device, 1, []vk.Fence{vb.fence}, vk.True, ^uint64(0))
	vk.ResetFences(vb.device, 1, []vk.Fence{vb.fence})
	vb.writeBuffer(vb.uniformBufferMemory, uniformBlockToBytes(&block))

	vk.ResetCommandBuffer(vb.commandBuffer, 0)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	vk.BeginCommandBuffer(vb.commandBuffer, &beginInfo)

	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 0}),
	}
	renderPassBegin := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vb.renderPass,
		Framebuffer: vb.framebuffer,
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{Width: uint32(vb.width), Height: uint32(vb.height)},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(vb.commandBuffer, &renderPassBegin, vk.SubpassContentsInline)

	if vb.haveTexture && vb.visibleCount > 0 {
		vk.CmdBindPipeline(vb.commandBuffer, vk.PipelineBindPointGraphics, vb.pipeline)

		viewport := vk.Viewport{
			Width:    float32(vb.width),
			Height:   float32(vb.height),
			MaxDepth: 1,
		}
		vk.CmdSetViewport(vb.commandBuffer, 0, 1, []vk.Viewport{viewport})
		scissor := vk.Rect2D{
			Extent: vk.Extent2D{Width: uint32(vb.width), Height: uint32(vb.height)},
		}
		vk.CmdSetScissor(vb.commandBuffer, 0, 1, []vk.Rect2D{scissor})

		vk.CmdBindDescriptorSets(vb.commandBuffer, vk.PipelineBindPointGraphics,
			vb.pipelineLayout, 0, 1, []vk.DescriptorSet{vb.descSet}, 0, nil)

		offsets := []vk.DeviceSize{0, 0}
		vk.CmdBindVertexBuffers(vb.commandBuffer, 0, 2,
			[]vk.Buffer{vb.quadBuffer, vb.indexBuffer}, offsets)
		vk.CmdDraw(vb.commandBuffer, 4, uint32(vb.visibleCount), 0, 0)
	}

	vk.CmdEndRenderPass(vb.commandBuffer)

	// Read the frame back in the same submission; the render pass
	// leaves the color image in transfer-src layout.
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: uint32(vb.width), Height: uint32(vb.height), Depth: 1},
	}
	vk.CmdCopyImageToBuffer(vb.commandBuffer, vb.colorImage,
		vk.ImageLayoutTransferSrcOptimal, vb.stagingBuffer, 1, []vk.BufferImageCopy{region})

	vk.EndCommandBuffer(vb.commandBuffer)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{vb.commandBuffer},
	}
	if res := vk.QueueSubmit(vb.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vb.fence); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed: %d", res)
	}

	vk.WaitForFences(vb.device, 1, []vk.Fence{vb.fence}, vk.True, ^uint64(0))

	var data unsafe.Pointer
	vk.MapMemory(vb.device, vb.stagingBufferMemory, 0, vk.DeviceSize(len(vb.outputFrame)), 0, &data)
	copy(vb.outputFrame, unsafe.Slice((*byte)(data), len(vb.outputFrame)))
	vk.UnmapMemory(vb.device, vb.stagingBufferMemory)
	return nil
}

func (vb *VulkanBackend) GetFrame() []byte {
	vb.mutex.RLock()
	defer vb.mutex.RUnlock()

	if vb.initialized {
		return vb.outputFrame
	}
	return vb.software.GetFrame()
}

func (vb *VulkanBackend) Destroy() {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	if vb.initialized {
		vk.DeviceWaitIdle(vb.device)
		vb.destroyVulkan()
		vb.initialized = false
	}
	if vb.software != nil {
		vb.software.Destroy()
	}
}

// destroyVulkan tears everything down in reverse creation order.
// Safe to call on a partially initialized backend.
func (vb *VulkanBackend) destroyVulkan() {
	if vb.device != nil {
		vb.destroyFence()
		vb.destroyCommandBuffer()
		vb.destroyStagingBuffer()
		vb.destroyCovImage()
		vb.destroyUniformBuffer()
		vb.destroyIndexBuffer()
		vb.destroyQuadBuffer()
		vb.destroyPipeline()
		vb.destroyDescriptors()
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImage()
		vb.destroyCommandPool()
		vk.DestroyDevice(vb.device, nil)
		vb.device = nil
	}
	if vb.instance != nil {
		vk.DestroyInstance(vb.instance, nil)
		vb.instance = nil
	}
}

func (vb *VulkanBackend) destroyCommandPool() {
	if vb.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(vb.device, vb.commandPool, nil)
		vb.commandPool = vk.NullCommandPool
	}
}

func (vb *VulkanBackend) destroyCommandBuffer() {
	vb.commandBuffer = nil
}

func (vb *VulkanBackend) destroyOffscreenImage() {
	if vb.colorImageView != vk.NullImageView {
		vk.DestroyImageView(vb.device, vb.colorImageView, nil)
		vb.colorImageView = vk.NullImageView
	}
	if vb.colorImage != vk.NullImage {
		vk.DestroyImage(vb.device, vb.colorImage, nil)
		vb.colorImage = vk.NullImage
	}
	if vb.colorImageMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.device, vb.colorImageMemory, nil)
		vb.colorImageMemory = vk.NullDeviceMemory
	}
}

func (vb *VulkanBackend) destroyCovImage() {
	if vb.covImageView != vk.NullImageView {
		vk.DestroyImageView(vb.device, vb.covImageView, nil)
		vb.covImageView = vk.NullImageView
	}
	if vb.covImage != vk.NullImage {
		vk.DestroyImage(vb.device, vb.covImage, nil)
		vb.covImage = vk.NullImage
	}
	if vb.covImageMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.device, vb.covImageMemory, nil)
		vb.covImageMemory = vk.NullDeviceMemory
	}
}

func (vb *VulkanBackend) destroyRenderPass() {
	if vb.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(vb.device, vb.renderPass, nil)
		vb.renderPass = vk.NullRenderPass
	}
}

func (vb *VulkanBackend) destroyFramebuffer() {
	if vb.framebuffer != vk.NullFramebuffer {
		vk.DestroyFramebuffer(vb.device, vb.framebuffer, nil)
		vb.framebuffer = vk.NullFramebuffer
	}
}

func (vb *VulkanBackend) destroyDescriptors() {
	if vb.descPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(vb.device, vb.descPool, nil)
		vb.descPool = vk.NullDescriptorPool
	}
	if vb.descSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(vb.device, vb.descSetLayout, nil)
		vb.descSetLayout = vk.NullDescriptorSetLayout
	}
	if vb.texSampler != vk.NullSampler {
		vk.DestroySampler(vb.device, vb.texSampler, nil)
		vb.texSampler = vk.NullSampler
	}
}

func (vb *VulkanBackend) destroyPipeline() {
	if vb.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(vb.device, vb.pipeline, nil)
		vb.pipeline = vk.NullPipeline
	}
	if vb.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(vb.device, vb.pipelineLayout, nil)
		vb.pipelineLayout = vk.NullPipelineLayout
	}
	if vb.vertShaderModule != vk.NullShaderModule {
		vk.DestroyShaderModule(vb.device, vb.vertShaderModule, nil)
		vb.vertShaderModule = vk.NullShaderModule
	}
	if vb.fragShaderModule != vk.NullShaderModule {
		vk.DestroyShaderModule(vb.device, vb.fragShaderModule, nil)
		vb.fragShaderModule = vk.NullShaderModule
	}
}

func (vb *VulkanBackend) destroyQuadBuffer() {
	if vb.quadBuffer != vk.NullBuffer {
		vk.DestroyBuffer(vb.device, vb.quadBuffer, nil)
		vb.quadBuffer = vk.NullBuffer
	}
	if vb.quadBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.device, vb.quadBufferMemory, nil)
		vb.quadBufferMemory = vk.NullDeviceMemory
	}
}

func (vb *VulkanBackend) destroyIndexBuffer() {
	if vb.indexBuffer != vk.NullBuffer {
		vk.DestroyBuffer(vb.device, vb.indexBuffer, nil)
		vb.indexBuffer = vk.NullBuffer
	}
	if vb.indexBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.device, vb.indexBufferMemory, nil)
		vb.indexBufferMemory = vk.NullDeviceMemory
	}
	vb.indexCapacity = 0
}

func (vb *VulkanBackend) destroyUniformBuffer() {
	if vb.uniformBuffer != vk.NullBuffer {
		vk.DestroyBuffer(vb.device, vb.uniformBuffer, nil)
		vb.uniformBuffer = vk.NullBuffer
	}
	if vb.uniformBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.device, vb.uniformBufferMemory, nil)
		vb.uniformBufferMemory = vk.NullDeviceMemory
	}
}

func (vb *VulkanBackend) destroyStagingBuffer() {
	if vb.stagingBuffer != vk.NullBuffer {
		vk.DestroyBuffer(vb.device, vb.stagingBuffer, nil)
		vb.stagingBuffer = vk.NullBuffer
	}
	if vb.stagingBufferMemory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.device, vb.stagingBufferMemory, nil)
		vb.stagingBufferMemory = vk.NullDeviceMemory
	}
}

func (vb *VulkanBackend) destroyFence() {
	if vb.fence != vk.NullFence {
		vk.DestroyFence(vb.device, vb.fence, nil)
		vb.fence = vk.NullFence
	}
}

// safeVkString null-terminates a string for the Vulkan C ABI.
func safeVkString(s string) string {
	return s + "\x00"
}

// vkSliceUint32 reinterprets SPIR-V bytes as words.
func vkSliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

func float32SliceToBytes(v []float32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func uint32SliceToBytes(v []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func uniformBlockToBytes(b *splatUniformBlock) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(b)), unsafe.Sizeof(*b))
}
