package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	world [16]float32

	panSpeed  float32
	turnSpeed float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new controller at the identity transform.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:        &sync.Mutex{},
		world:     common.IdentityMatrix(),
		panSpeed:  1.5,
		turnSpeed: 1.0,
	}

	for _, option := range options {
		option(cc)
	}

	return cc
}

// groundAxes returns the transform's right and forward axes flattened onto the XZ plane.
// If an axis is vertical its flattened form is zero.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) groundAxes() (right, forward [3]float32) {
	right = flatten([3]float32{cc.world[0], cc.world[1], cc.world[2]})
	forward = flatten([3]float32{cc.world[8], cc.world[9], cc.world[10]})
	return
}

func flatten(v [3]float32) [3]float32 {
	v[1] = 0
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[2]*v[2])))
	if l < 1e-8 {
		return [3]float32{}
	}
	return [3]float32{v[0] / l, 0, v[2] / l}
}

func (cc *cameraControllerImpl) Transform() [16]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.world
}

func (cc *cameraControllerImpl) SetTransform(world [16]float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.world = world
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	right, _ := cc.groundAxes()
	offset := delta * cc.panSpeed

	cc.world[12] += right[0] * offset
	cc.world[14] += right[2] * offset
}

func (cc *cameraControllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	_, forward := cc.groundAxes()
	offset := delta * cc.panSpeed

	cc.world[12] += forward[0] * offset
	cc.world[14] += forward[2] * offset
}

func (cc *cameraControllerImpl) Turn(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	var rot [16]float32
	common.RotationY(rot[:], delta*cc.turnSpeed)

	// Rotate the basis only, keeping the translation column in place.
	pos := [3]float32{cc.world[12], cc.world[13], cc.world[14]}
	cc.world[12], cc.world[13], cc.world[14] = 0, 0, 0
	common.Mul4(cc.world[:], rot[:], cc.world[:])
	cc.world[12], cc.world[13], cc.world[14] = pos[0], pos[1], pos[2]
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) TurnSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.turnSpeed
}
