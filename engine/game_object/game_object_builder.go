package game_object

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - x, y, z: position in world space
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [3]float32{x, y, z}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - x, y, z: scale factors along each axis
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation of the GameObject.
//
// Parameters:
//   - x, y, z: rotation angles in radians
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = [3]float32{x, y, z}
	}
}

// WithRotationSpeed sets the rotation applied per second of Update.
//
// Parameters:
//   - x, y, z: rotation speeds in radians per second
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = [3]float32{x, y, z}
	}
}

// WithColor sets the draw color of the GameObject.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the color
func WithColor(r, g, b, a float64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.color = [4]float64{r, g, b, a}
	}
}
