package camera

import "github.com/Carmen-Shannon/oxy-vr/common"

type CameraBuilderOption func(*cameraImpl)

// WithEye sets the camera's position.
//
// Parameters:
//   - x, y, z: position in world space
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithEye(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye = [3]float32{x, y, z}
	}
}

// WithAt sets the camera's forward direction.
//
// Parameters:
//   - x, y, z: forward direction components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's forward direction
func WithAt(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.at = common.Normalize3([3]float32{x, y, z})
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = common.Normalize3([3]float32{x, y, z})
	}
}

// WithSize sets the camera's viewport size in pixels.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's size
func WithSize(width, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.width = width
		c.height = height
	}
}

// WithFov sets the camera's field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}
