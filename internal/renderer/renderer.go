package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// Vertex represents a vertex with position and texture coordinates
type Vertex struct {
	Position [2]float32
	TexCoord [2]float32
}

// FrameTexture holds GPU resources for the composed frame
type FrameTexture struct {
	Texture   *wgpu.Texture
	View      *wgpu.TextureView
	BindGroup *wgpu.BindGroup
	Width     int
	Height    int
}

func (t *FrameTexture) release() {
	t.BindGroup.Release()
	t.View.Release()
	t.Texture.Release()
}

// Renderer presents CPU-composed frames through WebGPU
type Renderer struct {
	device          *wgpu.Device
	queue           *wgpu.Queue
	surface         *wgpu.Surface
	adapter         *wgpu.Adapter
	swapChain       *wgpu.SwapChain
	swapChainFormat wgpu.TextureFormat
	pipeline        *wgpu.RenderPipeline
	sampler         *wgpu.Sampler
	bindGroupLayout *wgpu.BindGroupLayout
	vertexBuffer    *wgpu.Buffer
	indexBuffer     *wgpu.Buffer

	frame *FrameTexture

	width  uint32
	height uint32
}

// NewRenderer creates a new WebGPU renderer
func NewRenderer(adapter *wgpu.Adapter, device *wgpu.Device, queue *wgpu.Queue, surface *wgpu.Surface, width, height uint32) (*Renderer, error) {
	r := &Renderer{
		adapter: adapter,
		device:  device,
		queue:   queue,
		surface: surface,
		width:   width,
		height:  height,
	}

	if err := r.init(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) init() error {
	// Get preferred format
	r.swapChainFormat = r.surface.GetPreferredFormat(r.adapter)

	var err error
	r.swapChain, err = r.createSwapChain(r.width, r.height)
	if err != nil {
		return fmt.Errorf("swap chain creation failed: %w", err)
	}

	shader, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "frame_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: FrameShader},
	})
	if err != nil {
		return fmt.Errorf("shader creation failed: %w", err)
	}
	defer shader.Release()

	// Frames are drawn 1:1, nearest filtering keeps text crisp
	r.sampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:   wgpu.AddressMode_ClampToEdge,
		AddressModeV:   wgpu.AddressMode_ClampToEdge,
		AddressModeW:   wgpu.AddressMode_ClampToEdge,
		MagFilter:      wgpu.FilterMode_Nearest,
		MinFilter:      wgpu.FilterMode_Linear,
		MipmapFilter:   wgpu.MipmapFilterMode_Nearest,
		MaxAnisotrophy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler creation failed: %w", err)
	}

	r.bindGroupLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "frame_bind_group_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStage_Fragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingType_Filtering},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStage_Fragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleType_Float,
					ViewDimension: wgpu.TextureViewDimension_2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("bind group layout creation failed: %w", err)
	}

	pipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "frame_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline layout creation failed: %w", err)
	}
	defer pipelineLayout.Release()

	r.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "frame_pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
				StepMode:    wgpu.VertexStepMode_Vertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormat_Float32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormat_Float32x2, Offset: 8, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.swapChainFormat,
				Blend:     &wgpu.BlendState_Replace,
				WriteMask: wgpu.ColorWriteMask_All,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopology_TriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline creation failed: %w", err)
	}

	// Full-window quad in NDC; texture origin is top-left
	vertices := []Vertex{
		{Position: [2]float32{-1, 1}, TexCoord: [2]float32{0, 0}},
		{Position: [2]float32{1, 1}, TexCoord: [2]float32{1, 0}},
		{Position: [2]float32{1, -1}, TexCoord: [2]float32{1, 1}},
		{Position: [2]float32{-1, -1}, TexCoord: [2]float32{0, 1}},
	}
	r.vertexBuffer, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "vertex_buffer",
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsage_Vertex,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer creation failed: %w", err)
	}

	indices := []uint16{0, 1, 2, 0, 2, 3}
	r.indexBuffer, err = r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "index_buffer",
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsage_Index,
	})
	if err != nil {
		return fmt.Errorf("index buffer creation failed: %w", err)
	}

	return nil
}

func (r *Renderer) createSwapChain(width, height uint32) (*wgpu.SwapChain, error) {
	return r.device.CreateSwapChain(r.surface, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      r.swapChainFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentMode_Fifo,
	})
}

func (r *Renderer) createFrameTexture(width, height int) (*FrameTexture, error) {
	texture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "frame_texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension_2D,
		Format:        wgpu.TextureFormat_RGBA8UnormSrgb,
		Usage:         wgpu.TextureUsage_TextureBinding | wgpu.TextureUsage_CopyDst,
	})
	if err != nil {
		return nil, err
	}

	view, err := texture.CreateView(&wgpu.TextureViewDescriptor{
		Format:          wgpu.TextureFormat_RGBA8UnormSrgb,
		Dimension:       wgpu.TextureViewDimension_2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspect_All,
	})
	if err != nil {
		texture.Release()
		return nil, err
	}

	bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "frame_bind_group",
		Layout: r.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Sampler: r.sampler},
			{Binding: 1, TextureView: view},
		},
	})
	if err != nil {
		view.Release()
		texture.Release()
		return nil, err
	}

	return &FrameTexture{Texture: texture, View: view, BindGroup: bindGroup, Width: width, Height: height}, nil
}

// SetFrame uploads a composed frame, reallocating the texture when its size changes
func (r *Renderer) SetFrame(img *image.RGBA) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}

	if r.frame == nil || r.frame.Width != w || r.frame.Height != h {
		tex, err := r.createFrameTexture(w, h)
		if err != nil {
			return fmt.Errorf("frame texture creation failed: %w", err)
		}
		if r.frame != nil {
			r.frame.release()
		}
		r.frame = tex
	}

	r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: r.frame.Texture, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspect_All},
		img.Pix,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: uint32(img.Stride), RowsPerImage: uint32(h)},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	return nil
}

// Render draws the current frame
func (r *Renderer) Render() error {
	view, err := r.swapChain.GetCurrentTextureView()
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{})
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOp_Clear,
			StoreOp:    wgpu.StoreOp_Store,
			ClearValue: wgpu.Color{R: 0.941, G: 0.941, B: 0.941, A: 1.0},
		}},
	})

	if r.frame != nil {
		pass.SetPipeline(r.pipeline)
		pass.SetVertexBuffer(0, r.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(r.indexBuffer, wgpu.IndexFormat_Uint16, 0, wgpu.WholeSize)
		pass.SetBindGroup(0, r.frame.BindGroup, nil)
		pass.DrawIndexed(6, 1, 0, 0, 0)
	}

	pass.End()

	cmdBuffer, err := encoder.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return err
	}
	defer cmdBuffer.Release()

	r.queue.Submit(cmdBuffer)
	r.swapChain.Present()

	return nil
}

// Resize handles framebuffer resize
func (r *Renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.width = width
	r.height = height

	if r.swapChain != nil {
		r.swapChain.Release()
	}

	var err error
	r.swapChain, err = r.createSwapChain(width, height)
	if err != nil {
		return fmt.Errorf("failed to recreate swap chain: %w", err)
	}
	return nil
}

// Release frees all GPU resources
func (r *Renderer) Release() {
	if r.frame != nil {
		r.frame.release()
		r.frame = nil
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
	}
	if r.indexBuffer != nil {
		r.indexBuffer.Release()
	}
	if r.bindGroupLayout != nil {
		r.bindGroupLayout.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.swapChain != nil {
		r.swapChain.Release()
	}
}
