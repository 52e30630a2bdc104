package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUDeviceOption is a functional option applied to a WebGPU device during construction via NewWGPUDevice.
type WGPUDeviceOption func(*wgpuDevice)

// WithSurfaceDescriptor enables the mirror surface for the given window.
//
// Parameters:
//   - desc: the platform surface descriptor, typically from window.Window
//
// Returns:
//   - WGPUDeviceOption: a function that applies the surface option to a device
func WithSurfaceDescriptor(desc *wgpu.SurfaceDescriptor) WGPUDeviceOption {
	return func(d *wgpuDevice) {
		d.surfaceDescriptor = desc
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
func WithForceFallbackAdapter(force bool) WGPUDeviceOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithPresentMode sets the initial presentation mode of the mirror surface.
func WithPresentMode(mode PresentMode) WGPUDeviceOption {
	return func(d *wgpuDevice) {
		d.vsync = mode == PresentModeVSync
	}
}
