package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotInitialized is returned when the platform window was never created.
var ErrNotInitialized = errors.New("window: not initialized")

// Window is the desktop mirror of a VR session. It shows one eye image and
// forwards keyboard input to the host.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyDownCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for the mirror surface.
	// The descriptor is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close closes the window and releases platform resources. Closing twice is a no-op.
	//
	// Returns:
	//   - error: ErrNotInitialized if the window was never created
	Close() error

	// ProcessMessages runs the window message loop on the calling goroutine.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// mirrorWindow is the implementation of the Window interface.
type mirrorWindow struct {
	title string

	// width and height track the framebuffer, not the window, size.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
}

var _ Window = &mirrorWindow{}

// NewWindow creates and shows a mirror window.
// Must be called from the goroutine that will run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &mirrorWindow{
		title:  "oxy-vr mirror",
		width:  960,
		height: 540,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: create platform window: %w", err)
	}
	return w, nil
}

func (w *mirrorWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *mirrorWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *mirrorWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *mirrorWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *mirrorWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *mirrorWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *mirrorWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *mirrorWindow) Width() int {
	return w.width
}

func (w *mirrorWindow) Height() int {
	return w.height
}
