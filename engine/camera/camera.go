package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	eye [3]float32
	at  [3]float32 // forward direction, not a target point
	up  [3]float32

	width  float32
	height float32

	fov  float32
	near float32
	far  float32

	customProjection bool
	dirty            bool

	viewMatrix           [16]float32
	inverseViewMatrix    [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera is a camera component stored on a scene entity.
// It holds a position, a forward direction and an up vector, and derives view,
// inverse-view and view-projection matrices from them in UpdateCamera.
// The projection is either computed from fov/near/far or supplied by the caller
// when custom projection is enabled.
type Camera interface {
	// Eye returns the camera position in world space.
	//
	// Returns:
	//   - [3]float32: the eye position
	Eye() [3]float32

	// At returns the normalized forward direction.
	//
	// Returns:
	//   - [3]float32: the forward direction
	At() [3]float32

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - [3]float32: the up vector
	Up() [3]float32

	// SetEye sets the camera position. Call UpdateCamera to recompute matrices.
	//
	// Parameters:
	//   - eye: the new position
	SetEye(eye [3]float32)

	// SetAt sets the forward direction. Call UpdateCamera to recompute matrices.
	//
	// Parameters:
	//   - at: the new forward direction
	SetAt(at [3]float32)

	// SetUp sets the up vector. Call UpdateCamera to recompute matrices.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up [3]float32)

	// Width returns the viewport width the camera renders at.
	//
	// Returns:
	//   - float32: width in pixels
	Width() float32

	// Height returns the viewport height the camera renders at.
	//
	// Returns:
	//   - float32: height in pixels
	Height() float32

	// SetSize sets the viewport size used for the default projection's aspect ratio.
	//
	// Parameters:
	//   - width, height: size in pixels
	SetSize(width, height float32)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Projection returns the current projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	Projection() [16]float32

	// SetProjection replaces the projection matrix. It only survives UpdateCamera
	// while custom projection is enabled.
	//
	// Parameters:
	//   - m: the projection matrix
	SetProjection(m [16]float32)

	// CustomProjectionEnabled reports whether UpdateCamera keeps a caller-supplied projection.
	//
	// Returns:
	//   - bool: true when custom projection is enabled
	CustomProjectionEnabled() bool

	// SetCustomProjectionEnabled toggles whether UpdateCamera keeps a caller-supplied projection.
	//
	// Parameters:
	//   - enabled: true to keep the projection set through SetProjection
	SetCustomProjectionEnabled(enabled bool)

	// View returns the world-to-view matrix computed by the last UpdateCamera.
	//
	// Returns:
	//   - [16]float32: the view matrix
	View() [16]float32

	// InvView returns the view-to-world matrix computed by the last UpdateCamera.
	//
	// Returns:
	//   - [16]float32: the inverse view matrix
	InvView() [16]float32

	// ViewProjection returns projection * view computed by the last UpdateCamera.
	//
	// Returns:
	//   - [16]float32: the view-projection matrix
	ViewProjection() [16]float32

	// TransformCamera places the camera with a world transform: the eye becomes the
	// transformed origin, the forward direction the transformed +Z axis and the up
	// vector the transformed +Y axis. Call UpdateCamera afterwards.
	//
	// Parameters:
	//   - world: the world transform (column-major)
	TransformCamera(world [16]float32)

	// Restore puts back a state read through Eye, At, Up, Projection and
	// CustomProjectionEnabled exactly as given, without renormalizing, and recomputes
	// the view matrices.
	//
	// Parameters:
	//   - eye, at, up: the saved position, forward direction and up vector
	//   - projection: the saved projection matrix
	//   - custom: the saved custom projection flag
	Restore(eye, at, up [3]float32, projection [16]float32, custom bool)

	// UpdateCamera recomputes view, inverse view, projection (unless custom) and view-projection.
	UpdateCamera()

	// SetDirty flags the camera as changed so render paths refresh their per-camera state.
	SetDirty()

	// IsDirty reports whether the camera changed since ClearDirty was last called.
	//
	// Returns:
	//   - bool: the dirty flag
	IsDirty() bool

	// ClearDirty resets the dirty flag.
	ClearDirty()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin looking down +Z with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    [3]float32{0, 0, 0},
		at:     [3]float32{0, 0, 1},
		up:     [3]float32{0, 1, 0},
		width:  1,
		height: 1,
		fov:    45.0 * (math.Pi / 180.0), // radians
		near:   0.1,
		far:    100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) At() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *cameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) SetEye(eye [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
}

func (c *cameraImpl) SetAt(at [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = common.Normalize3(at)
}

func (c *cameraImpl) SetUp(up [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = common.Normalize3(up)
}

func (c *cameraImpl) Width() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *cameraImpl) Height() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

func (c *cameraImpl) SetSize(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Projection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) SetProjection(m [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectionMatrix = m
}

func (c *cameraImpl) CustomProjectionEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customProjection
}

func (c *cameraImpl) SetCustomProjectionEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customProjection = enabled
}

func (c *cameraImpl) View() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) InvView() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewMatrix
}

func (c *cameraImpl) ViewProjection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) TransformCamera(world [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = common.TransformPoint(world[:], [3]float32{0, 0, 0})
	c.at = common.Normalize3(common.TransformNormal(world[:], [3]float32{0, 0, 1}))
	c.up = common.Normalize3(common.TransformNormal(world[:], [3]float32{0, 1, 0}))
}

func (c *cameraImpl) Restore(eye, at, up [3]float32, projection [16]float32, custom bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye, c.at, c.up = eye, at, up
	c.projectionMatrix = projection
	c.customProjection = true
	c.updateMatrices()
	c.customProjection = custom
}

func (c *cameraImpl) UpdateCamera() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
}

func (c *cameraImpl) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *cameraImpl) ClearDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}

// updateMatrices recalculates the view, inverse view, projection and view-projection matrices.
// The projection is left untouched while custom projection is enabled.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookTo(c.viewMatrix[:], c.eye, c.at, c.up)

	if !common.Invert4(c.inverseViewMatrix[:], c.viewMatrix[:]) {
		common.Identity(c.inverseViewMatrix[:])
	}

	if !c.customProjection {
		aspect := float32(1)
		if c.height > 0 {
			aspect = c.width / c.height
		}
		common.PerspectiveLH(c.projectionMatrix[:], c.fov, aspect, c.near, c.far)
	}

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
