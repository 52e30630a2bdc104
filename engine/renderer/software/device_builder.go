package software

import (
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// DeviceBuilderOption is a functional option applied to a software device during construction via NewDevice.
type DeviceBuilderOption func(*deviceImpl)

// WithBackend sets the backend the device reports.
// A VR session picks its submission path from this value.
//
// Parameters:
//   - b: the backend tag
//
// Returns:
//   - DeviceBuilderOption: a function that applies the backend option to a device
func WithBackend(b gputypes.Backend) DeviceBuilderOption {
	return func(d *deviceImpl) {
		d.backend = b
	}
}

// WithScaler sets the interpolator DrawImage uses when resampling.
//
// Parameters:
//   - s: the scaler, e.g. xdraw.NearestNeighbor
//
// Returns:
//   - DeviceBuilderOption: a function that applies the scaler option to a device
func WithScaler(s xdraw.Scaler) DeviceBuilderOption {
	return func(d *deviceImpl) {
		if s != nil {
			d.scaler = s
		}
	}
}

// WithVSync sets the initial vsync state.
func WithVSync(enabled bool) DeviceBuilderOption {
	return func(d *deviceImpl) {
		d.vsync = enabled
	}
}
