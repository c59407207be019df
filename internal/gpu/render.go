//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// FacesRenderer owns the face-generation render pass: a vertex-expansion
// pipeline fed by the compacted indirect draw args, rendering the shaded
// isosurface into an offscreen target that is read back into an image.RGBA.
//
// There is no vertex buffer: the vertex shader derives everything from
// vertex_index plus the storage buffers the compute stages filled, so the
// host never learns the vertex count.
type FacesRenderer struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView

	lutTex  hal.Texture
	lutView hal.TextureView
	lutPix  []byte

	width, height uint32
}

// NewFacesRenderer creates a renderer over the same device and queue as the
// dispatcher. Textures and the pipeline are created lazily on first Render.
func NewFacesRenderer(device hal.Device, queue hal.Queue) *FacesRenderer {
	return &FacesRenderer{
		device: device,
		queue:  queue,
		lutPix: defaultAltitudeRamp(),
	}
}

// SetColorRamp replaces the altitude color ramp. Takes effect on the next
// Render; pass nil to restore the built-in terrain ramp.
func (p *FacesRenderer) SetColorRamp(img image.Image) {
	if img == nil {
		p.lutPix = defaultAltitudeRamp()
	} else {
		p.lutPix = buildLUTBytes(img)
	}
	p.destroyLUT()
}

// Destroy releases all GPU resources held by the renderer. Safe to call
// multiple times or on a renderer with no allocated resources.
func (p *FacesRenderer) Destroy() {
	p.destroyPipeline()
	p.destroyTextures()
	p.destroyLUT()
}

// Render draws one extracted frame into dst. The compute stages must have
// been dispatched for the same buffers first.
func (p *FacesRenderer) Render(bufs *FieldBuffers, mvp mgl32.Mat4, eye, light mgl32.Vec3, dst *image.RGBA) error {
	if bufs == nil {
		return fmt.Errorf("surfacenets gpu: buffers must not be nil")
	}
	if dst == nil || dst.Bounds().Empty() {
		return fmt.Errorf("surfacenets gpu: render target must not be empty")
	}

	w := uint32(dst.Bounds().Dx())
	h := uint32(dst.Bounds().Dy())
	if err := p.ensureReady(w, h); err != nil {
		return err
	}

	camBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "snets_camera",
		Size:  cameraUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("surfacenets gpu: create camera buffer: %w", err)
	}
	defer p.device.DestroyBuffer(camBuf)
	p.queue.WriteBuffer(camBuf, 0, cameraToBytes(mvp, eye, light))

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "snets_faces_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.Params.NativeHandle()}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: camBuf.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: bufs.Scalars.NativeHandle()}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: bufs.Verts.NativeHandle()}},
			{Binding: 4, Resource: gputypes.BufferBinding{Buffer: bufs.Active.NativeHandle()}},
			{Binding: 5, Resource: gputypes.TextureViewBinding{TextureView: p.lutView.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("surfacenets gpu: create faces bind group: %w", err)
	}
	defer p.device.DestroyBindGroup(bindGroup)

	return p.encodeAndReadback(w, h, bufs, bindGroup, dst)
}

// ensureReady creates the LUT, textures, and the pipeline if needed.
func (p *FacesRenderer) ensureReady(w, h uint32) error {
	if err := p.ensureLUT(); err != nil {
		return fmt.Errorf("ensure LUT: %w", err)
	}
	if err := p.ensureTextures(w, h); err != nil {
		return fmt.Errorf("ensure textures: %w", err)
	}
	if p.pipeline == nil {
		if err := p.createPipeline(); err != nil {
			return fmt.Errorf("create pipeline: %w", err)
		}
	}
	return nil
}

// ensureLUT uploads the 256x1 altitude ramp texture. The fragment shader
// fetches exact texels with textureLoad, so no sampler is needed.
func (p *FacesRenderer) ensureLUT() error {
	if p.lutTex != nil {
		return nil
	}

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "snets_lut",
		Size:          hal.Extent3D{Width: lutWidth, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create LUT texture: %w", err)
	}
	p.lutTex = tex

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "snets_lut_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyLUT()
		return fmt.Errorf("create LUT view: %w", err)
	}
	p.lutView = view

	p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		p.lutPix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: lutWidth * 4, RowsPerImage: 1},
		&hal.Extent3D{Width: lutWidth, Height: 1, DepthOrArrayLayers: 1},
	)

	return nil
}

func (p *FacesRenderer) destroyLUT() {
	if p.lutView != nil {
		p.device.DestroyTextureView(p.lutView)
		p.lutView = nil
	}
	if p.lutTex != nil {
		p.device.DestroyTexture(p.lutTex)
		p.lutTex = nil
	}
}

// ensureTextures creates or recreates the color and depth targets if the
// requested dimensions differ from the current size.
func (p *FacesRenderer) ensureTextures(w, h uint32) error {
	if p.width == w && p.height == h && p.colorTex != nil {
		return nil
	}
	p.destroyTextures()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "snets_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	p.colorTex = colorTex

	colorView, err := p.device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label:         "snets_color_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create color view: %w", err)
	}
	p.colorView = colorView

	depthTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "snets_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create depth texture: %w", err)
	}
	p.depthTex = depthTex

	depthView, err := p.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label:         "snets_depth_view",
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		p.destroyTextures()
		return fmt.Errorf("create depth view: %w", err)
	}
	p.depthView = depthView

	p.width = w
	p.height = h
	return nil
}

func (p *FacesRenderer) destroyTextures() {
	if p.depthView != nil {
		p.device.DestroyTextureView(p.depthView)
		p.depthView = nil
	}
	if p.depthTex != nil {
		p.device.DestroyTexture(p.depthTex)
		p.depthTex = nil
	}
	if p.colorView != nil {
		p.device.DestroyTextureView(p.colorView)
		p.colorView = nil
	}
	if p.colorTex != nil {
		p.device.DestroyTexture(p.colorTex)
		p.colorTex = nil
	}
	p.width = 0
	p.height = 0
}

// createPipeline compiles faces.wgsl and creates the render pipeline with
// depth testing. There are no vertex buffers: everything derives from
// vertex_index and the bound storage buffers.
func (p *FacesRenderer) createPipeline() error {
	if shaderFaces == "" {
		return fmt.Errorf("faces shader source is empty")
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "snets_faces",
		Source: hal.ShaderSource{WGSL: shaderFaces},
	})
	if err != nil {
		return fmt.Errorf("compile faces shader: %w", err)
	}
	p.shader = shader

	storageRO := func(binding uint32, visibility gputypes.ShaderStage) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: visibility,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "snets_faces_bgl",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			storageRO(2, gputypes.ShaderStageVertex),
			storageRO(3, gputypes.ShaderStageVertex),
			storageRO(4, gputypes.ShaderStageVertex),
			{
				Binding:    5,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create faces bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "snets_faces_pl",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create faces pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "snets_faces_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0x00,
			StencilWriteMask: 0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create faces render pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// destroyPipeline releases all pipeline resources in reverse creation order.
func (p *FacesRenderer) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// encodeAndReadback encodes the face render pass, copies the color target
// to a staging buffer, submits, waits, and reads back pixels into dst.
func (p *FacesRenderer) encodeAndReadback(
	w, h uint32, bufs *FieldBuffers, bindGroup hal.BindGroup, dst *image.RGBA,
) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "snets_faces_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("snets_faces"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "snets_faces_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       p.colorView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              p.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.DrawIndirect(bufs.DrawArgs, 0)
	rp.End()

	// The color attachment must transition to a copy source before the
	// texture-to-buffer copy on Vulkan. No-op on other backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "snets_faces_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(p.colorTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: p.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, fieldFenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("GPU timeout after %v", fieldFenceTimeout)
	}

	readback := make([]byte, pixelBufSize)
	if err := p.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	// RGBA8Unorm matches image.RGBA's layout; copy row by row in case the
	// destination stride differs.
	for row := 0; row < int(h); row++ {
		src := readback[row*int(w)*4 : (row+1)*int(w)*4]
		off := dst.PixOffset(dst.Bounds().Min.X, dst.Bounds().Min.Y+row)
		copy(dst.Pix[off:off+int(w)*4], src)
	}
	return nil
}
