package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/gogpu/gputypes"
)

// DrawContext is handed to a Drawer once per Render call.
type DrawContext struct {
	Device           GraphicsDevice
	Scene            scene.Scene
	Camera           camera.Camera
	Width            uint32
	Height           uint32
	OcclusionCulling bool
	ClearColor       gputypes.Color
	Label            string
}

// Drawer produces the final color image of one render path frame.
type Drawer interface {
	// Draw renders the scene from ctx.Camera into a new texture of ctx.Width x ctx.Height.
	//
	// Parameters:
	//   - ctx: the per-frame draw inputs
	//
	// Returns:
	//   - Texture: the rendered image, owned by the caller
	//   - error: an error if rendering failed
	Draw(ctx DrawContext) (Texture, error)
}

// DrawerFunc adapts a function to the Drawer interface.
type DrawerFunc func(ctx DrawContext) (Texture, error)

// Draw calls f(ctx).
func (f DrawerFunc) Draw(ctx DrawContext) (Texture, error) { return f(ctx) }

// RenderPath turns one camera's view of a scene into a final color image.
// A frame runs PreUpdate, Update, PostUpdate and Render in that order; the
// result is then available from LastPostprocessRT until the next Render.
type RenderPath interface {
	// SetScene binds the scene to render.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// Scene returns the bound scene.
	Scene() scene.Scene

	// SetCamera binds the camera to render from.
	//
	// Parameters:
	//   - c: the camera
	SetCamera(c camera.Camera)

	// Camera returns the bound camera.
	Camera() camera.Camera

	// SetSize sets the output size in pixels. Call ResizeBuffers to apply it.
	//
	// Parameters:
	//   - width, height: output size in pixels
	SetSize(width, height uint32)

	// Size returns the output size in pixels.
	Size() (width, height uint32)

	// SetResolutionScale sets the internal render scale relative to the output size.
	// Call ResizeBuffers to apply it.
	//
	// Parameters:
	//   - scale: a factor in (0, 1]
	SetResolutionScale(scale float32)

	// ResolutionScale returns the internal render scale.
	ResolutionScale() float32

	// ResizeBuffers recomputes the internal render size from the output size and
	// resolution scale and releases any buffers sized for the previous configuration.
	ResizeBuffers()

	// InternalSize returns the size the drawer renders at after ResizeBuffers.
	InternalSize() (width, height uint32)

	// SetSceneUpdateEnabled controls whether Update advances the bound scene.
	//
	// Parameters:
	//   - enabled: true to advance the scene in Update
	SetSceneUpdateEnabled(enabled bool)

	// SceneUpdateEnabled reports whether Update advances the bound scene.
	SceneUpdateEnabled() bool

	// SetOcclusionCullingEnabled controls whether the drawer may cull hidden objects.
	//
	// Parameters:
	//   - enabled: true to allow culling
	SetOcclusionCullingEnabled(enabled bool)

	// OcclusionCullingEnabled reports whether the drawer may cull hidden objects.
	OcclusionCullingEnabled() bool

	// PreUpdate prepares per-frame state before Update.
	PreUpdate()

	// Update advances the bound scene by dt when scene update is enabled.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// PostUpdate refreshes camera-derived state after Update.
	PostUpdate()

	// Render draws the frame and replaces LastPostprocessRT.
	Render()

	// LastPostprocessRT returns the final image of the last Render, invalid if none.
	LastPostprocessRT() Texture

	// Release frees the path's textures.
	Release()
}

type renderPath3D struct {
	mu *sync.Mutex

	device GraphicsDevice
	drawer Drawer
	label  string

	scn scene.Scene
	cam camera.Camera

	width, height                 uint32
	internalWidth, internalHeight uint32
	resolutionScale               float32

	sceneUpdate      bool
	occlusionCulling bool
	clearColor       gputypes.Color

	viewProjection [16]float32
	lastRT         Texture
}

var _ RenderPath = &renderPath3D{}

// NewRenderPath3D creates a RenderPath drawing through device.
// Without a Drawer option the path renders a texture cleared to the clear color.
//
// Parameters:
//   - device: the graphics device textures are created on
//   - options: functional options to configure the path
//
// Returns:
//   - RenderPath: the new render path
func NewRenderPath3D(device GraphicsDevice, options ...RenderPathBuilderOption) RenderPath {
	p := &renderPath3D{
		mu:               &sync.Mutex{},
		device:           device,
		label:            "RenderPath3D",
		resolutionScale:  1,
		sceneUpdate:      true,
		occlusionCulling: true,
		clearColor:       gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		viewProjection:   common.IdentityMatrix(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *renderPath3D) SetScene(s scene.Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scn = s
}

func (p *renderPath3D) Scene() scene.Scene {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scn
}

func (p *renderPath3D) SetCamera(c camera.Camera) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cam = c
}

func (p *renderPath3D) Camera() camera.Camera {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cam
}

func (p *renderPath3D) SetSize(width, height uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width = width
	p.height = height
}

func (p *renderPath3D) Size() (uint32, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

func (p *renderPath3D) SetResolutionScale(scale float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	p.resolutionScale = scale
}

func (p *renderPath3D) ResolutionScale() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolutionScale
}

func (p *renderPath3D) ResizeBuffers() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.internalWidth = max(uint32(float32(p.width)*p.resolutionScale), 1)
	p.internalHeight = max(uint32(float32(p.height)*p.resolutionScale), 1)

	if p.lastRT.Valid() {
		p.device.ReleaseTexture(p.lastRT)
		p.lastRT = Texture{}
	}
}

func (p *renderPath3D) InternalSize() (uint32, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.internalWidth, p.internalHeight
}

func (p *renderPath3D) SetSceneUpdateEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sceneUpdate = enabled
}

func (p *renderPath3D) SceneUpdateEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sceneUpdate
}

func (p *renderPath3D) SetOcclusionCullingEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.occlusionCulling = enabled
}

func (p *renderPath3D) OcclusionCullingEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.occlusionCulling
}

func (p *renderPath3D) PreUpdate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.internalWidth == 0 || p.internalHeight == 0 {
		p.internalWidth = max(uint32(float32(p.width)*p.resolutionScale), 1)
		p.internalHeight = max(uint32(float32(p.height)*p.resolutionScale), 1)
	}
}

func (p *renderPath3D) Update(dt float32) {
	p.mu.Lock()
	scn, enabled := p.scn, p.sceneUpdate
	p.mu.Unlock()

	if enabled && scn != nil {
		scn.Update(dt)
	}
}

func (p *renderPath3D) PostUpdate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cam == nil {
		return
	}
	if p.cam.IsDirty() {
		p.viewProjection = p.cam.ViewProjection()
		p.cam.ClearDirty()
	}
}

func (p *renderPath3D) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastRT.Valid() {
		p.device.ReleaseTexture(p.lastRT)
		p.lastRT = Texture{}
	}

	ctx := DrawContext{
		Device:           p.device,
		Scene:            p.scn,
		Camera:           p.cam,
		Width:            p.internalWidth,
		Height:           p.internalHeight,
		OcclusionCulling: p.occlusionCulling,
		ClearColor:       p.clearColor,
		Label:            p.label,
	}

	var (
		rt  Texture
		err error
	)
	if p.drawer != nil {
		rt, err = p.drawer.Draw(ctx)
	} else {
		rt, err = clearTexture(ctx)
	}
	if err != nil {
		common.Logger().Error("[Renderer] render path draw failed", "path", p.label, "err", err)
		return
	}
	p.lastRT = rt
}

func (p *renderPath3D) LastPostprocessRT() Texture {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRT
}

func (p *renderPath3D) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRT.Valid() {
		p.device.ReleaseTexture(p.lastRT)
		p.lastRT = Texture{}
	}
}

// clearTexture creates a texture filled with the clear color.
func clearTexture(ctx DrawContext) (Texture, error) {
	w, h := max(ctx.Width, 1), max(ctx.Height, 1)
	pixels := make([]byte, int(w)*int(h)*4)
	r, g, b, a := toByte(ctx.ClearColor.R), toByte(ctx.ClearColor.G), toByte(ctx.ClearColor.B), toByte(ctx.ClearColor.A)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = r, g, b, a
	}
	return ctx.Device.CreateTexture(TextureDesc{
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		Label:  ctx.Label,
	}, pixels)
}

func toByte(v float64) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return byte(v*255 + 0.5)
	}
}
