package game_object

import (
	"sync"
	"sync/atomic"
)

type gameObject struct {
	mu *sync.Mutex

	id      uint64
	enabled atomic.Bool

	position      [3]float32
	scale         [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	color         [4]float64
}

// GameObject is a simple spinning prop placed in a scene.
// Its transform is advanced by Update, which the scene calls from its own Update.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Position returns the object's position in world space.
	//
	// Returns:
	//   - [3]float32: position components
	Position() [3]float32

	// SetPosition moves the object.
	//
	// Parameters:
	//   - pos: the new position
	SetPosition(pos [3]float32)

	// Scale returns the object's scale.
	//
	// Returns:
	//   - [3]float32: scale components
	Scale() [3]float32

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - [3]float32: rotation angles
	Rotation() [3]float32

	// RotationSpeed returns the rotation applied per second of Update.
	//
	// Returns:
	//   - [3]float32: rotation speeds in radians per second
	RotationSpeed() [3]float32

	// Color returns the RGBA color used when the object is drawn.
	//
	// Returns:
	//   - [4]float64: color components in [0, 1]
	Color() [4]float64

	// Update advances the rotation by RotationSpeed * dt.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled GameObject at the origin with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:    &sync.Mutex{},
		scale: [3]float32{1, 1, 1},
		color: [4]float64{1, 1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Position() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) SetPosition(pos [3]float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = pos
}

func (g *gameObject) Scale() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) Rotation() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) RotationSpeed() [3]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed
}

func (g *gameObject) Color() [4]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.color
}

func (g *gameObject) Update(dt float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.rotation {
		g.rotation[i] += g.rotationSpeed[i] * dt
	}
}
