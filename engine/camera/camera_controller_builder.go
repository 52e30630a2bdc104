package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPanSpeed sets the translation speed multiplier.
//
// Parameters:
//   - speed: world units per unit of delta
//
// Returns:
//   - CameraControllerOption: functional option to set the pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithTurnSpeed sets the rotation speed multiplier.
//
// Parameters:
//   - speed: radians per unit of delta
//
// Returns:
//   - CameraControllerOption: functional option to set the turn speed
func WithTurnSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.turnSpeed = speed
	}
}

// WithTransform sets the initial world transform.
//
// Parameters:
//   - world: the initial world transform (column-major)
//
// Returns:
//   - CameraControllerOption: functional option to set the transform
func WithTransform(world [16]float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.world = world
	}
}
