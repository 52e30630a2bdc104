package camera

// CameraController moves a world transform across the ground plane.
// It is used to drive the base transform a head-tracked camera rig is attached to:
// the tracked head pose is applied on top of the controller's transform.
type CameraController interface {
	// Transform returns the current world transform (column-major).
	//
	// Returns:
	//   - [16]float32: the world transform
	Transform() [16]float32

	// SetTransform replaces the current world transform.
	//
	// Parameters:
	//   - world: the new world transform (column-major)
	SetTransform(world [16]float32)

	// PanRight translates along the transform's right axis projected onto the ground plane.
	// Positive values move right, negative values move left.
	//
	// Parameters:
	//   - delta: movement amount, scaled by PanSpeed
	PanRight(delta float32)

	// PanForward translates along the transform's forward axis projected onto the ground plane.
	// Positive values move forward, negative values move backward.
	//
	// Parameters:
	//   - delta: movement amount, scaled by PanSpeed
	PanForward(delta float32)

	// Turn rotates the transform about the world +Y axis through its own position.
	//
	// Parameters:
	//   - delta: rotation amount in radians, scaled by TurnSpeed
	Turn(delta float32)

	// PanSpeed returns the translation speed multiplier.
	//
	// Returns:
	//   - float32: the pan speed
	PanSpeed() float32

	// TurnSpeed returns the rotation speed multiplier.
	//
	// Returns:
	//   - float32: the turn speed
	TurnSpeed() float32
}
