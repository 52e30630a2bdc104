package renderer

import (
	"github.com/gogpu/gputypes"
)

// PresentMode controls how mirrored frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
	Usage  gputypes.TextureUsage
	Label  string
}

// Texture is a device-owned image. The zero value is an invalid texture.
type Texture struct {
	Desc TextureDesc
	id   uint64
}

// NewTexture wraps a device-assigned id. Devices call this; an id of 0 yields an invalid texture.
//
// Parameters:
//   - desc: the texture description
//   - id: the device-unique, non-zero identifier
//
// Returns:
//   - Texture: the texture handle
func NewTexture(desc TextureDesc, id uint64) Texture {
	return Texture{Desc: desc, id: id}
}

// Valid reports whether the texture refers to a live device resource.
func (t Texture) Valid() bool { return t.id != 0 }

// ID returns the device-assigned identifier, 0 for an invalid texture.
func (t Texture) ID() uint64 { return t.id }

// Extent returns the texture size as a 2D extent.
func (t Texture) Extent() gputypes.Extent3D {
	return gputypes.NewExtent2D(t.Desc.Width, t.Desc.Height)
}

// RenderPassAttachment binds a texture as a color target.
type RenderPassAttachment struct {
	Texture    Texture
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearColor gputypes.Color
}

// RenderPassDesc lists the color attachments of a render pass.
type RenderPassDesc struct {
	Attachments []RenderPassAttachment
}

// RenderPass is a device-created render pass. The zero value is invalid.
type RenderPass struct {
	Desc RenderPassDesc
	id   uint64
}

// NewRenderPass wraps a device-assigned id.
func NewRenderPass(desc RenderPassDesc, id uint64) RenderPass {
	return RenderPass{Desc: desc, id: id}
}

// Valid reports whether the render pass was created by a device.
func (p RenderPass) Valid() bool { return p.id != 0 }

// ID returns the device-assigned identifier.
func (p RenderPass) ID() uint64 { return p.id }

// CommandList identifies a recording started with BeginCommandList.
type CommandList uint32

// Viewport is the target rectangle for subsequent draws.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// ImageParams controls DrawImage. FullScreen stretches the source over the bound viewport.
type ImageParams struct {
	FullScreen bool
	Opacity    float32
}

// FullScreenImage returns ImageParams for an opaque full-viewport draw.
func FullScreenImage() ImageParams {
	return ImageParams{FullScreen: true, Opacity: 1}
}

// NativeDevice carries the backend handles a VR compositor needs to consume device textures.
// Unused fields are zero.
type NativeDevice struct {
	Instance         uint64
	PhysicalDevice   uint64
	Device           uint64
	Queue            uint64
	QueueFamilyIndex uint32
}

// GraphicsDevice is the minimal device capability surface used to create, fill and
// hand off eye images. Commands recorded on a CommandList run when SubmitCommandLists is called.
type GraphicsDevice interface {
	// Backend returns the graphics API the device runs on.
	//
	// Returns:
	//   - gputypes.Backend: the backend tag
	Backend() gputypes.Backend

	// SetVSync toggles presentation synchronization for any mirror output.
	//
	// Parameters:
	//   - enabled: true to wait for vertical blank
	SetVSync(enabled bool)

	// VSync reports the current presentation synchronization setting.
	VSync() bool

	// CreateTexture allocates a texture, optionally filled with tightly packed RGBA8 pixels.
	//
	// Parameters:
	//   - desc: the texture description
	//   - pixels: initial contents, or nil to leave the texture cleared
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an error if allocation failed
	CreateTexture(desc TextureDesc, pixels []byte) (Texture, error)

	// ReleaseTexture frees a texture. Releasing an invalid texture is a no-op.
	//
	// Parameters:
	//   - t: the texture to release
	ReleaseTexture(t Texture)

	// CreateRenderPass validates and registers a render pass.
	//
	// Parameters:
	//   - desc: the attachments
	//
	// Returns:
	//   - RenderPass: the created render pass
	//   - error: an error if an attachment is invalid
	CreateRenderPass(desc RenderPassDesc) (RenderPass, error)

	// BeginCommandList starts recording a new command list.
	//
	// Returns:
	//   - CommandList: the command list handle
	BeginCommandList() CommandList

	// EventBegin opens a named debug region on cmd.
	EventBegin(name string, cmd CommandList)

	// EventEnd closes the most recent debug region on cmd.
	EventEnd(cmd CommandList)

	// BindViewport sets the viewport used by subsequent draws on cmd.
	BindViewport(vp Viewport, cmd CommandList)

	// RenderPassBegin starts pass on cmd, applying its load ops.
	RenderPassBegin(pass RenderPass, cmd CommandList)

	// DrawImage draws src into the current render pass of cmd.
	DrawImage(src Texture, params ImageParams, cmd CommandList)

	// RenderPassEnd ends the current render pass on cmd.
	RenderPassEnd(cmd CommandList)

	// SubmitCommandLists executes every recorded command list in begin order.
	//
	// Returns:
	//   - error: the first error hit while executing
	SubmitCommandLists() error

	// TextureInternalResource returns the backend resource handle backing t.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - uint64: the native handle, 0 for an invalid texture
	TextureInternalResource(t Texture) uint64

	// NativeDevice returns the backend handles of the device.
	NativeDevice() NativeDevice

	// Release frees every device resource.
	Release()
}
