package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// blitShader draws a sampled texture over the bound viewport with a single oversized triangle.
const blitShader = `
struct VSOut {
	@builtin(position) pos: vec4<f32>,
	@location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> VSOut {
	var out: VSOut;
	let uv = vec2<f32>(f32((i << 1u) & 2u), f32(i & 2u));
	out.pos = vec4<f32>(uv * vec2<f32>(2.0, -2.0) + vec2<f32>(-1.0, 1.0), 0.0, 1.0);
	out.uv = uv;
	return out;
}

@group(0) @binding(0) var src_tex: texture_2d<f32>;
@group(0) @binding(1) var src_samp: sampler;

@fragment
fn fs_main(in: VSOut) -> @location(0) vec4<f32> {
	return textureSample(src_tex, src_samp, in.uv);
}
`

// wgpuDeviceCount hands out process-unique ids for NativeDevice handles.
var wgpuDeviceCount atomic.Uint64

type wgpuTexture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

type wgpuCmdState struct {
	encoder  *wgpu.CommandEncoder
	pass     *wgpu.RenderPassEncoder
	target   wgpu.TextureFormat
	viewport Viewport
	depth    int
}

type wgpuCommand func(st *wgpuCmdState) error

type wgpuDevice struct {
	mu *sync.Mutex

	id      uint64
	backend gputypes.Backend
	vsync   bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Optional mirror output.
	surfaceDescriptor *wgpu.SurfaceDescriptor
	surface           *wgpu.Surface
	surfaceFormat     wgpu.TextureFormat
	surfaceWidth      uint32
	surfaceHeight     uint32

	forceFallbackAdapter bool

	blitLayout    *wgpu.BindGroupLayout
	blitPipelines map[wgpu.TextureFormat]*wgpu.RenderPipeline
	blitModule    *wgpu.ShaderModule
	blitPipeline  *wgpu.PipelineLayout
	sampler       *wgpu.Sampler

	textures map[uint64]*wgpuTexture
	nextID   uint64
	lists    [][]wgpuCommand
}

// MirrorDevice is a GraphicsDevice that can additionally present a texture to a window surface.
type MirrorDevice interface {
	GraphicsDevice

	// ConfigureSurface (re)configures the mirror surface. No-op without a surface descriptor.
	//
	// Parameters:
	//   - width, height: surface size in pixels
	ConfigureSurface(width, height int)

	// Present blits tex to the mirror surface and presents it.
	//
	// Parameters:
	//   - tex: the texture to show
	//
	// Returns:
	//   - error: an error if acquiring or presenting the surface failed
	Present(tex Texture) error
}

var _ MirrorDevice = &wgpuDevice{}

// NewWGPUDevice creates a GraphicsDevice on WebGPU.
// The OS thread is locked for the lifetime of the calling goroutine.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - MirrorDevice: the device
//   - error: an error if no adapter or device could be acquired
func NewWGPUDevice(options ...WGPUDeviceOption) (MirrorDevice, error) {
	runtime.LockOSThread()
	d := &wgpuDevice{
		mu:            &sync.Mutex{},
		id:            wgpuDeviceCount.Add(1),
		vsync:         true,
		textures:      make(map[uint64]*wgpuTexture),
		blitPipelines: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline),
		nextID:        1,
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	if d.surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(d.surfaceDescriptor)
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = a
	d.backend = backendFromAdapter(a.GetInfo().BackendType)

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "VR Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	if err := d.initBlit(); err != nil {
		return nil, err
	}
	common.Logger().Info("[Renderer] wgpu device ready", "backend", d.backend.String(), "mirror", d.surface != nil)
	return d, nil
}

// backendFromAdapter maps the backend an adapter runs on to its gputypes tag.
// Backends without a tag report BackendEmpty.
func backendFromAdapter(t wgpu.BackendType) gputypes.Backend {
	switch t {
	case wgpu.BackendTypeVulkan:
		return gputypes.BackendVulkan
	case wgpu.BackendTypeD3D12:
		return gputypes.BackendDX12
	case wgpu.BackendTypeMetal:
		return gputypes.BackendMetal
	case wgpu.BackendTypeOpenGL, wgpu.BackendTypeOpenGLES:
		return gputypes.BackendGL
	case wgpu.BackendTypeWebGPU:
		return gputypes.BackendBrowserWebGPU
	default:
		return gputypes.BackendEmpty
	}
}

func (d *wgpuDevice) initBlit() error {
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Blit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: blitShader,
		},
	})
	if err != nil {
		return fmt.Errorf("blit shader: %w", err)
	}
	d.blitModule = module

	var texEntry, sampEntry wgpu.BindGroupLayoutEntry
	texEntry.Binding = 0
	texEntry.Visibility = wgpu.ShaderStageFragment
	texEntry.Texture.SampleType = wgpu.TextureSampleTypeFloat
	texEntry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	sampEntry.Binding = 1
	sampEntry.Visibility = wgpu.ShaderStageFragment
	sampEntry.Sampler.Type = wgpu.SamplerBindingTypeFiltering

	d.blitLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Blit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{texEntry, sampEntry},
	})
	if err != nil {
		return fmt.Errorf("blit bind group layout: %w", err)
	}

	d.blitPipeline, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{d.blitLayout},
	})
	if err != nil {
		return fmt.Errorf("blit pipeline layout: %w", err)
	}

	d.sampler, err = d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("blit sampler: %w", err)
	}
	return nil
}

// blitPipelineFor returns the blit pipeline for a target format, creating it on first use.
// Caller must hold the mutex.
func (d *wgpuDevice) blitPipelineFor(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if p, ok := d.blitPipelines[format]; ok {
		return p, nil
	}
	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Blit Render Pipeline",
		Layout: d.blitPipeline,
		Vertex: wgpu.VertexState{
			Module:     d.blitModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     d.blitModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	d.blitPipelines[format] = p
	return p, nil
}

func (d *wgpuDevice) Backend() gputypes.Backend {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backend
}

func (d *wgpuDevice) SetVSync(enabled bool) {
	d.mu.Lock()
	d.vsync = enabled
	w, h := d.surfaceWidth, d.surfaceHeight
	d.mu.Unlock()
	if w > 0 && h > 0 {
		d.ConfigureSurface(int(w), int(h))
	}
}

func (d *wgpuDevice) VSync() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vsync
}

func (d *wgpuDevice) ConfigureSurface(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]
	presentMode := wgpu.PresentModeImmediate
	if d.vsync {
		presentMode = wgpu.PresentModeFifo
	}

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.surfaceWidth, d.surfaceHeight = uint32(width), uint32(height)
}

func toWGPUUsage(u gputypes.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gputypes.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gputypes.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gputypes.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func (d *wgpuDevice) CreateTexture(desc TextureDesc, pixels []byte) (Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return Texture{}, fmt.Errorf("texture %q has zero size", desc.Label)
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return Texture{}, fmt.Errorf("unsupported texture format %s", desc.Format)
	}

	usage := toWGPUUsage(desc.Usage)
	if pixels != nil {
		usage |= wgpu.TextureUsageCopyDst
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         usage,
	})
	if err != nil {
		return Texture{}, err
	}

	if pixels != nil {
		d.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  desc.Width * 4,
				RowsPerImage: desc.Height,
			},
			&wgpu.Extent3D{
				Width:              desc.Width,
				Height:             desc.Height,
				DepthOrArrayLayers: 1,
			},
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return Texture{}, err
	}

	id := d.nextID
	d.nextID++
	d.textures[id] = &wgpuTexture{tex: tex, view: view}
	return NewTexture(desc, id), nil
}

func (d *wgpuDevice) ReleaseTexture(t Texture) {
	if !t.Valid() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if wt, ok := d.textures[t.ID()]; ok {
		wt.view.Release()
		wt.tex.Release()
		delete(d.textures, t.ID())
	}
}

func (d *wgpuDevice) CreateRenderPass(desc RenderPassDesc) (RenderPass, error) {
	if len(desc.Attachments) == 0 {
		return RenderPass{}, errors.New("render pass has no attachments")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range desc.Attachments {
		if _, ok := d.textures[a.Texture.ID()]; !ok {
			return RenderPass{}, fmt.Errorf("render pass attachment %d is not a device texture", a.Texture.ID())
		}
	}
	id := d.nextID
	d.nextID++
	p := NewRenderPass(desc, id)
	return p, nil
}

func (d *wgpuDevice) BeginCommandList() CommandList {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists = append(d.lists, nil)
	return CommandList(len(d.lists) - 1)
}

func (d *wgpuDevice) record(cmd CommandList, c wgpuCommand) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(cmd) < len(d.lists) {
		d.lists[cmd] = append(d.lists[cmd], c)
	}
}

func (d *wgpuDevice) EventBegin(name string, cmd CommandList) {
	d.record(cmd, func(st *wgpuCmdState) error {
		st.depth++
		common.Logger().Debug("[Renderer] event begin", "name", name)
		return nil
	})
}

func (d *wgpuDevice) EventEnd(cmd CommandList) {
	d.record(cmd, func(st *wgpuCmdState) error {
		if st.depth == 0 {
			return errors.New("EventEnd without EventBegin")
		}
		st.depth--
		return nil
	})
}

func (d *wgpuDevice) BindViewport(vp Viewport, cmd CommandList) {
	d.record(cmd, func(st *wgpuCmdState) error {
		st.viewport = vp
		return nil
	})
}

func toWGPULoadOp(op gputypes.LoadOp) wgpu.LoadOp {
	if op == gputypes.LoadOpClear {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

func toWGPUStoreOp(op gputypes.StoreOp) wgpu.StoreOp {
	if op == gputypes.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func (d *wgpuDevice) RenderPassBegin(pass RenderPass, cmd CommandList) {
	d.record(cmd, func(st *wgpuCmdState) error {
		if st.pass != nil {
			return errors.New("RenderPassBegin inside a render pass")
		}
		attachments := make([]wgpu.RenderPassColorAttachment, 0, len(pass.Desc.Attachments))
		for _, a := range pass.Desc.Attachments {
			wt, ok := d.textures[a.Texture.ID()]
			if !ok {
				return fmt.Errorf("render pass target %d released", a.Texture.ID())
			}
			attachments = append(attachments, wgpu.RenderPassColorAttachment{
				View:    wt.view,
				LoadOp:  toWGPULoadOp(a.LoadOp),
				StoreOp: toWGPUStoreOp(a.StoreOp),
				ClearValue: wgpu.Color{
					R: a.ClearColor.R, G: a.ClearColor.G, B: a.ClearColor.B, A: a.ClearColor.A,
				},
			})
		}
		st.pass = st.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: attachments,
		})
		st.target = wgpu.TextureFormatRGBA8Unorm
		if st.viewport.Width > 0 && st.viewport.Height > 0 {
			st.pass.SetViewport(st.viewport.X, st.viewport.Y, st.viewport.Width, st.viewport.Height, 0, 1)
		}
		return nil
	})
}

func (d *wgpuDevice) DrawImage(src Texture, params ImageParams, cmd CommandList) {
	d.record(cmd, func(st *wgpuCmdState) error {
		if st.pass == nil {
			return errors.New("DrawImage outside a render pass")
		}
		wt, ok := d.textures[src.ID()]
		if !ok {
			return fmt.Errorf("draw source %d released", src.ID())
		}
		return d.blit(st.pass, st.target, wt.view)
	})
}

// blit draws view over the pass's current viewport. Caller must hold the mutex.
func (d *wgpuDevice) blit(pass *wgpu.RenderPassEncoder, format wgpu.TextureFormat, view *wgpu.TextureView) error {
	pipeline, err := d.blitPipelineFor(format)
	if err != nil {
		return err
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Blit Bind Group",
		Layout: d.blitLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: d.sampler},
		},
	})
	if err != nil {
		return err
	}
	defer bg.Release()

	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)
	return nil
}

func (d *wgpuDevice) RenderPassEnd(cmd CommandList) {
	d.record(cmd, func(st *wgpuCmdState) error {
		if st.pass == nil {
			return errors.New("RenderPassEnd without RenderPassBegin")
		}
		st.pass.End()
		st.pass.Release()
		st.pass = nil
		return nil
	})
}

func (d *wgpuDevice) SubmitCommandLists() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	lists := d.lists
	d.lists = nil

	var firstErr error
	for _, l := range lists {
		encoder, err := d.device.CreateCommandEncoder(nil)
		if err != nil {
			return err
		}
		st := &wgpuCmdState{encoder: encoder}
		for _, c := range l {
			if err := c(st); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if st.pass != nil {
			st.pass.End()
			st.pass.Release()
		}

		commandBuffer, err := encoder.Finish(nil)
		if err != nil {
			encoder.Release()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.queue.Submit(commandBuffer)
		commandBuffer.Release()
		encoder.Release()
	}
	return firstErr
}

func (d *wgpuDevice) Present(tex Texture) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.surface == nil || d.surfaceWidth == 0 {
		return nil
	}
	wt, ok := d.textures[tex.ID()]
	if !ok {
		return fmt.Errorf("present source %d released", tex.ID())
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	blitErr := d.blit(pass, d.surfaceFormat, wt.view)
	pass.End()
	pass.Release()
	if blitErr != nil {
		return blitErr
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	d.surface.Present()
	return nil
}

// TextureInternalResource returns the device-scoped handle of t.
// The WebGPU binding does not expose raw backend handles, so the handle is only
// meaningful to consumers sharing this process.
func (d *wgpuDevice) TextureInternalResource(t Texture) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[t.ID()]; !ok {
		return 0
	}
	return t.ID()
}

func (d *wgpuDevice) NativeDevice() NativeDevice {
	return NativeDevice{
		Instance:       d.id,
		PhysicalDevice: d.id,
		Device:         d.id,
		Queue:          d.id,
	}
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, wt := range d.textures {
		wt.view.Release()
		wt.tex.Release()
		delete(d.textures, id)
	}
	for f, p := range d.blitPipelines {
		p.Release()
		delete(d.blitPipelines, f)
	}
	if d.sampler != nil {
		d.sampler.Release()
	}
	if d.blitPipeline != nil {
		d.blitPipeline.Release()
	}
	if d.blitLayout != nil {
		d.blitLayout.Release()
	}
	if d.blitModule != nil {
		d.blitModule.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}
