package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// deviceCount hands out process-unique device ids used as this device's native handles.
var deviceCount atomic.Uint64

// ErrUnknownTexture is returned when a command references a texture the device does not own.
var ErrUnknownTexture = errors.New("software: unknown texture")

type command func(st *cmdState) error

type cmdState struct {
	viewport renderer.Viewport
	pass     *renderer.RenderPass
	events   []string
}

type commandList struct {
	commands []command
}

type deviceImpl struct {
	mu *sync.Mutex

	id      uint64
	backend gputypes.Backend
	vsync   bool
	scaler  xdraw.Scaler

	textures map[uint64]*image.RGBA
	nextID   uint64

	lists    []*commandList
	eventLog []string
}

// Device is a CPU implementation of renderer.GraphicsDevice backed by image.RGBA textures.
type Device interface {
	renderer.GraphicsDevice

	// Image returns a copy of the pixels of a texture owned by this device.
	//
	// Parameters:
	//   - id: the texture id or internal resource handle
	//
	// Returns:
	//   - *image.RGBA: a copy of the texture contents
	//   - bool: false if the device does not own the texture
	Image(id uint64) (*image.RGBA, bool)

	// TextureCount returns the number of live textures.
	TextureCount() int

	// Events returns the debug region names recorded by submitted command lists, in order.
	Events() []string
}

var _ Device = &deviceImpl{}

// NewDevice creates a software graphics device.
// It reports the Vulkan backend unless WithBackend overrides it.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - Device: the new device
func NewDevice(options ...DeviceBuilderOption) Device {
	d := &deviceImpl{
		mu:       &sync.Mutex{},
		id:       deviceCount.Add(1),
		backend:  gputypes.BackendVulkan,
		vsync:    true,
		scaler:   xdraw.ApproxBiLinear,
		textures: make(map[uint64]*image.RGBA),
		nextID:   1,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *deviceImpl) Backend() gputypes.Backend {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backend
}

func (d *deviceImpl) SetVSync(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vsync = enabled
}

func (d *deviceImpl) VSync() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vsync
}

func (d *deviceImpl) CreateTexture(desc renderer.TextureDesc, pixels []byte) (renderer.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return renderer.Texture{}, fmt.Errorf("software: texture %q has zero size", desc.Label)
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return renderer.Texture{}, fmt.Errorf("software: unsupported texture format %s", desc.Format)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height)))
	if pixels != nil {
		if len(pixels) != len(img.Pix) {
			return renderer.Texture{}, fmt.Errorf("software: texture %q expects %d bytes, got %d", desc.Label, len(img.Pix), len(pixels))
		}
		copy(img.Pix, pixels)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.textures[id] = img
	return renderer.NewTexture(desc, id), nil
}

func (d *deviceImpl) ReleaseTexture(t renderer.Texture) {
	if !t.Valid() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, t.ID())
}

func (d *deviceImpl) CreateRenderPass(desc renderer.RenderPassDesc) (renderer.RenderPass, error) {
	if len(desc.Attachments) == 0 {
		return renderer.RenderPass{}, errors.New("software: render pass has no attachments")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range desc.Attachments {
		if _, ok := d.textures[a.Texture.ID()]; !ok {
			return renderer.RenderPass{}, ErrUnknownTexture
		}
	}
	id := d.nextID
	d.nextID++
	pass := renderer.NewRenderPass(desc, id)
	return pass, nil
}

func (d *deviceImpl) BeginCommandList() renderer.CommandList {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists = append(d.lists, &commandList{})
	return renderer.CommandList(len(d.lists) - 1)
}

// record appends c to cmd. Unknown command lists are ignored.
func (d *deviceImpl) record(cmd renderer.CommandList, c command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(cmd) >= len(d.lists) {
		return
	}
	d.lists[cmd].commands = append(d.lists[cmd].commands, c)
}

func (d *deviceImpl) EventBegin(name string, cmd renderer.CommandList) {
	d.record(cmd, func(st *cmdState) error {
		st.events = append(st.events, name)
		return nil
	})
}

func (d *deviceImpl) EventEnd(cmd renderer.CommandList) {
	d.record(cmd, func(st *cmdState) error {
		if len(st.events) == 0 {
			return errors.New("software: EventEnd without EventBegin")
		}
		st.events = st.events[:len(st.events)-1]
		return nil
	})
}

func (d *deviceImpl) BindViewport(vp renderer.Viewport, cmd renderer.CommandList) {
	d.record(cmd, func(st *cmdState) error {
		st.viewport = vp
		return nil
	})
}

func (d *deviceImpl) RenderPassBegin(pass renderer.RenderPass, cmd renderer.CommandList) {
	d.record(cmd, func(st *cmdState) error {
		p := pass
		st.pass = &p
		for _, a := range pass.Desc.Attachments {
			if a.LoadOp != gputypes.LoadOpClear {
				continue
			}
			dst, ok := d.textures[a.Texture.ID()]
			if !ok {
				return ErrUnknownTexture
			}
			c := color.RGBA64{
				R: uint16(clamp01(a.ClearColor.R) * 0xffff),
				G: uint16(clamp01(a.ClearColor.G) * 0xffff),
				B: uint16(clamp01(a.ClearColor.B) * 0xffff),
				A: uint16(clamp01(a.ClearColor.A) * 0xffff),
			}
			xdraw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
		}
		return nil
	})
}

func (d *deviceImpl) DrawImage(src renderer.Texture, params renderer.ImageParams, cmd renderer.CommandList) {
	d.record(cmd, func(st *cmdState) error {
		if st.pass == nil {
			return errors.New("software: DrawImage outside a render pass")
		}
		srcImg, ok := d.textures[src.ID()]
		if !ok {
			return ErrUnknownTexture
		}
		dst, ok := d.textures[st.pass.Desc.Attachments[0].Texture.ID()]
		if !ok {
			return ErrUnknownTexture
		}

		rect := dst.Bounds()
		if !params.FullScreen && st.viewport.Width > 0 && st.viewport.Height > 0 {
			rect = image.Rect(
				int(st.viewport.X), int(st.viewport.Y),
				int(st.viewport.X+st.viewport.Width), int(st.viewport.Y+st.viewport.Height),
			).Intersect(dst.Bounds())
		} else if st.viewport.Width > 0 && st.viewport.Height > 0 {
			rect = image.Rect(0, 0, int(st.viewport.Width), int(st.viewport.Height)).Intersect(dst.Bounds())
		}

		var opts *xdraw.Options
		op := xdraw.Src
		if params.Opacity > 0 && params.Opacity < 1 {
			op = xdraw.Over
			opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(params.Opacity * 255)})}
		}
		d.scaler.Scale(dst, rect, srcImg, srcImg.Bounds(), op, opts)
		return nil
	})
}

func (d *deviceImpl) RenderPassEnd(cmd renderer.CommandList) {
	d.record(cmd, func(st *cmdState) error {
		if st.pass == nil {
			return errors.New("software: RenderPassEnd without RenderPassBegin")
		}
		st.pass = nil
		return nil
	})
}

func (d *deviceImpl) SubmitCommandLists() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for _, l := range d.lists {
		st := &cmdState{}
		for _, c := range l.commands {
			before := len(st.events)
			if err := c(st); err != nil && firstErr == nil {
				firstErr = err
			}
			if len(st.events) > before {
				d.eventLog = append(d.eventLog, st.events[len(st.events)-1])
			}
		}
	}
	d.lists = d.lists[:0]
	return firstErr
}

func (d *deviceImpl) TextureInternalResource(t renderer.Texture) uint64 {
	if !t.Valid() {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[t.ID()]; !ok {
		return 0
	}
	return t.ID()
}

func (d *deviceImpl) NativeDevice() renderer.NativeDevice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return renderer.NativeDevice{
		Instance:       d.id,
		PhysicalDevice: d.id,
		Device:         d.id,
		Queue:          d.id,
	}
}

func (d *deviceImpl) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.textures = make(map[uint64]*image.RGBA)
	d.lists = nil
}

func (d *deviceImpl) Image(id uint64) (*image.RGBA, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, ok := d.textures[id]
	if !ok {
		return nil, false
	}
	cp := image.NewRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	return cp, true
}

func (d *deviceImpl) TextureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

func (d *deviceImpl) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.eventLog))
	copy(out, d.eventLog)
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
