package vr

import "context"

// Runtime is the connection to a VR runtime: tracking, input and device queries.
type Runtime interface {
	// Init connects to the runtime.
	//
	// Parameters:
	//   - ctx: cancels a slow connection attempt
	//
	// Returns:
	//   - error: an error if the runtime could not be initialized
	Init(ctx context.Context) error

	// Shutdown disconnects from the runtime. Safe to call after a failed Init.
	Shutdown()

	// RenderModels returns the render model interface, nil if unavailable.
	RenderModels() RenderModels

	// Compositor returns the compositor interface, nil if unavailable.
	Compositor() Compositor

	// TrackedDeviceString reads a string property of a device.
	//
	// Parameters:
	//   - device: the device index
	//   - prop: the property to read
	//
	// Returns:
	//   - string: the property value
	//   - error: an error if the property is unknown or the device absent
	TrackedDeviceString(device uint32, prop TrackedDeviceProperty) (string, error)

	// RecommendedRenderTargetSize returns the per-eye image size the runtime expects.
	RecommendedRenderTargetSize() (width, height uint32)

	// ProjectionMatrix returns the projection of an eye for the given clip distances.
	ProjectionMatrix(eye Eye, near, far float32) HmdMatrix44

	// EyeToHeadTransform returns the offset from the head reference to an eye's optical center.
	EyeToHeadTransform(eye Eye) HmdMatrix34

	// ControllerState reads the raw input state of a device.
	//
	// Parameters:
	//   - device: the device index
	//
	// Returns:
	//   - ControllerState: the raw state
	//   - bool: false if the device has no controller state
	ControllerState(device uint32) (ControllerState, bool)

	// IsTrackedDeviceConnected reports whether a device is connected.
	IsTrackedDeviceConnected(device uint32) bool

	// TrackedDeviceClass returns the category of a device.
	TrackedDeviceClass(device uint32) TrackedDeviceClass

	// PollEvent pops the next pending event.
	//
	// Returns:
	//   - Event: the event
	//   - bool: false when the queue is empty
	PollEvent() (Event, bool)
}

// RenderModels gives access to the runtime's controller and device meshes.
type RenderModels interface {
	// RenderModelCount returns the number of render models the runtime knows.
	RenderModelCount() uint32
}

// Compositor accepts eye images and supplies per-frame poses.
type Compositor interface {
	// WaitGetPoses blocks until the next frame's poses are available and writes them into poses.
	//
	// Parameters:
	//   - ctx: the frame context
	//   - poses: destination, len MaxTrackedDeviceCount
	//
	// Returns:
	//   - error: an error if no poses could be obtained
	WaitGetPoses(ctx context.Context, poses []TrackedDevicePose) error

	// Submit hands one eye image to the compositor.
	//
	// Parameters:
	//   - eye: the eye the image is for
	//   - tex: the backend-specific image
	//   - bounds: the UV sub-rectangle to display
	//   - flags: submission flags
	//
	// Returns:
	//   - error: an error if the compositor rejected the image
	Submit(eye Eye, tex CompositorTexture, bounds TextureBounds, flags SubmitFlags) error

	// PostPresentHandoff signals that both eyes of the frame were submitted.
	PostPresentHandoff()
}
