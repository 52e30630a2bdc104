package simvr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
)

const (
	// Device indices of the simulated rig.
	HmdIndex               uint32 = vr.HmdDeviceIndex
	LeftControllerIndex    uint32 = vr.LeftControllerIndex
	RightControllerIndex   uint32 = vr.RightControllerIndex
	TrackingReferenceIndex uint32 = 3

	deviceCount = 4

	// framesPerSecond converts the pose frame counter into simulated seconds.
	framesPerSecond = 90

	standingHeight float32 = 1.7
)

// ErrNotInitialized is returned by queries made before Init or after Shutdown.
var ErrNotInitialized = errors.New("simvr: runtime not initialized")

// ErrUnknownProperty is returned for properties the simulated headset does not expose.
var ErrUnknownProperty = errors.New("simvr: unknown device property")

// Submission is one eye image accepted by the simulated compositor.
type Submission struct {
	Frame   uint64
	Eye     vr.Eye
	Texture vr.CompositorTexture
	Bounds  vr.TextureBounds
	Flags   vr.SubmitFlags
}

// InputScript returns the raw controller state of a device for a pose frame.
type InputScript func(frame uint64, device uint32) vr.ControllerState

type runtimeImpl struct {
	mu *sync.Mutex

	width, height uint32
	ipd           float32
	fovY          float32
	trackingName  string
	serial        string

	initErr        error
	poseErr        error
	noRenderModels bool
	noCompositor   bool
	script         InputScript
	onSubmit       func(Submission)
	initialized    bool
	frame          uint64
	events         []vr.Event
	submissions    []Submission
	handoffs       int
	initCount      int
	shutdownCount  int
	classQueries   int
}

// Runtime is a simulated headset with two controllers and a tracking reference.
// It implements vr.Runtime, vr.Compositor and vr.RenderModels.
type Runtime interface {
	vr.Runtime
	vr.Compositor
	vr.RenderModels

	// Submissions returns every eye image accepted since Init.
	Submissions() []Submission

	// Handoffs returns how many times PostPresentHandoff was called since Init.
	Handoffs() int

	// Frame returns the number of successful pose waits since Init.
	Frame() uint64

	// Initialized reports whether the runtime is between Init and Shutdown.
	Initialized() bool

	// InitCount and ShutdownCount count calls to Init and Shutdown.
	InitCount() int
	ShutdownCount() int

	// ClassQueries counts calls to TrackedDeviceClass.
	ClassQueries() int

	// PushEvent queues an event for PollEvent.
	//
	// Parameters:
	//   - ev: the event
	PushEvent(ev vr.Event)

	// SetPoseError makes subsequent pose waits fail with err, or succeed again when err is nil.
	SetPoseError(err error)
}

var _ Runtime = &runtimeImpl{}

// NewRuntime creates a simulated runtime.
//
// Parameters:
//   - options: functional options to configure the runtime
//
// Returns:
//   - Runtime: the runtime, not yet initialized
func NewRuntime(options ...RuntimeOption) Runtime {
	r := &runtimeImpl{
		mu:           &sync.Mutex{},
		width:        1852,
		height:       2056,
		ipd:          0.064,
		fovY:         110,
		trackingName: "simvr",
		serial:       "SIM-HMD-0001",
		script:       DefaultInputScript,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *runtimeImpl) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initCount++
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.initErr != nil {
		return r.initErr
	}
	r.initialized = true
	r.frame = 0
	r.submissions = nil
	r.handoffs = 0
	r.events = r.events[:0]
	for i := uint32(0); i < deviceCount; i++ {
		r.events = append(r.events, vr.Event{Type: vr.EventTrackedDeviceActivated, DeviceIndex: i})
	}
	common.Logger().Debug("[SimVR] runtime initialized", "width", r.width, "height", r.height)
	return nil
}

func (r *runtimeImpl) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdownCount++
	r.initialized = false
	r.events = nil
}

func (r *runtimeImpl) RenderModels() vr.RenderModels {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.noRenderModels || !r.initialized {
		return nil
	}
	return r
}

func (r *runtimeImpl) Compositor() vr.Compositor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.noCompositor || !r.initialized {
		return nil
	}
	return r
}

func (r *runtimeImpl) RenderModelCount() uint32 {
	return 3
}

func (r *runtimeImpl) TrackedDeviceString(device uint32, prop vr.TrackedDeviceProperty) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return "", ErrNotInitialized
	}
	if device >= deviceCount {
		return "", fmt.Errorf("simvr: device %d not present", device)
	}
	switch prop {
	case vr.PropTrackingSystemName:
		return r.trackingName, nil
	case vr.PropSerialNumber:
		if device == HmdIndex {
			return r.serial, nil
		}
		return fmt.Sprintf("%s-%d", r.serial, device), nil
	default:
		return "", ErrUnknownProperty
	}
}

func (r *runtimeImpl) RecommendedRenderTargetSize() (uint32, uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// ProjectionMatrix builds a symmetric off-axis projection in the runtime's convention.
func (r *runtimeImpl) ProjectionMatrix(eye vr.Eye, near, far float32) vr.HmdMatrix44 {
	r.mu.Lock()
	fovY := r.fovY
	aspect := float32(r.width) / float32(max(r.height, 1))
	r.mu.Unlock()

	tanY := float32(math.Tan(float64(fovY) * math.Pi / 360))
	tanX := tanY * aspect
	left, right, top, bottom := -tanX, tanX, -tanY, tanY

	idx := 1 / (right - left)
	idy := 1 / (bottom - top)
	q := far / (near - far)

	var m vr.HmdMatrix44
	m.M[0] = [4]float32{2 * idx, 0, (right + left) * idx, 0}
	m.M[1] = [4]float32{0, 2 * idy, (bottom + top) * idy, 0}
	m.M[2] = [4]float32{0, 0, q, q * near}
	m.M[3] = [4]float32{0, 0, -1, 0}
	return m
}

func (r *runtimeImpl) EyeToHeadTransform(eye vr.Eye) vr.HmdMatrix34 {
	r.mu.Lock()
	half := r.ipd / 2
	r.mu.Unlock()

	x := half
	if eye == vr.EyeLeft {
		x = -half
	}
	return translation34(x, 0, 0)
}

func (r *runtimeImpl) ControllerState(device uint32) (vr.ControllerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized || (device != LeftControllerIndex && device != RightControllerIndex) {
		return vr.ControllerState{}, false
	}
	if r.script == nil {
		return vr.ControllerState{PacketNum: uint32(r.frame)}, true
	}
	st := r.script(r.frame, device)
	st.PacketNum = uint32(r.frame)
	return st, true
}

func (r *runtimeImpl) IsTrackedDeviceConnected(device uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized && device < deviceCount
}

func (r *runtimeImpl) TrackedDeviceClass(device uint32) vr.TrackedDeviceClass {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classQueries++
	switch device {
	case HmdIndex:
		return vr.TrackedDeviceClassHMD
	case LeftControllerIndex, RightControllerIndex:
		return vr.TrackedDeviceClassController
	case TrackingReferenceIndex:
		return vr.TrackedDeviceClassTrackingReference
	default:
		return vr.TrackedDeviceClassInvalid
	}
}

func (r *runtimeImpl) PollEvent() (vr.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return vr.Event{}, false
	}
	ev := r.events[0]
	r.events = r.events[1:]
	return ev, true
}

func (r *runtimeImpl) PushEvent(ev vr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// WaitGetPoses writes the poses of the next simulated frame. It does not sleep.
func (r *runtimeImpl) WaitGetPoses(ctx context.Context, poses []vr.TrackedDevicePose) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return ErrNotInitialized
	}
	if r.poseErr != nil {
		return r.poseErr
	}
	r.frame++
	t := float64(r.frame) / framesPerSecond

	for i := range poses {
		poses[i] = vr.TrackedDevicePose{}
	}
	set := func(device uint32, m vr.HmdMatrix34) {
		if int(device) < len(poses) {
			poses[device] = vr.TrackedDevicePose{DeviceToAbsoluteTracking: m, PoseIsValid: true, DeviceIsConnected: true}
		}
	}

	yaw := float32(0.15 * math.Sin(t*0.8))
	sway := float32(0.02 * math.Sin(t*1.3))
	set(HmdIndex, rotationY34(yaw, sway, standingHeight, 0))
	set(LeftControllerIndex, translation34(-0.2, standingHeight-0.4, -0.3))
	set(RightControllerIndex, translation34(0.2, standingHeight-0.4, -0.3))
	set(TrackingReferenceIndex, translation34(2, 2.2, 2))
	return nil
}

func (r *runtimeImpl) Submit(eye vr.Eye, tex vr.CompositorTexture, bounds vr.TextureBounds, flags vr.SubmitFlags) error {
	switch tex.Type {
	case vr.TextureTypeVulkan:
		data, ok := tex.Handle.(*vr.VulkanTextureData)
		if !ok || data.Image == 0 {
			return errors.New("simvr: invalid vulkan texture data")
		}
	case vr.TextureTypeDirectX12:
		data, ok := tex.Handle.(*vr.D3D12TextureData)
		if !ok || data.Resource == 0 {
			return errors.New("simvr: invalid d3d12 texture data")
		}
	default:
		return fmt.Errorf("simvr: unsupported texture type %d", tex.Type)
	}

	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return ErrNotInitialized
	}
	sub := Submission{Frame: r.frame, Eye: eye, Texture: tex, Bounds: bounds, Flags: flags}
	r.submissions = append(r.submissions, sub)
	cb := r.onSubmit
	r.mu.Unlock()

	if cb != nil {
		cb(sub)
	}
	return nil
}

func (r *runtimeImpl) PostPresentHandoff() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handoffs++
}

func (r *runtimeImpl) Submissions() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Submission, len(r.submissions))
	copy(out, r.submissions)
	return out
}

func (r *runtimeImpl) Handoffs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handoffs
}

func (r *runtimeImpl) Frame() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

func (r *runtimeImpl) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

func (r *runtimeImpl) InitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initCount
}

func (r *runtimeImpl) ShutdownCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdownCount
}

func (r *runtimeImpl) ClassQueries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classQueries
}

func (r *runtimeImpl) SetPoseError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poseErr = err
}

// DefaultInputScript cycles through a left pad sweep, the right A button and the left trigger,
// one phase per simulated second.
func DefaultInputScript(frame uint64, device uint32) vr.ControllerState {
	var st vr.ControllerState
	switch (frame / framesPerSecond) % 4 {
	case 1:
		if device == LeftControllerIndex {
			st.Axis[0] = vr.ControllerAxis{X: 0.25, Y: 0.5}
		}
	case 2:
		if device == RightControllerIndex {
			st.ButtonPressed = vr.ButtonMaskFromID(7)
		}
	case 3:
		if device == LeftControllerIndex {
			st.ButtonPressed = vr.ButtonMaskFromID(33)
		}
	}
	return st
}

func translation34(x, y, z float32) vr.HmdMatrix34 {
	return vr.HmdMatrix34{M: [3][4]float32{
		{1, 0, 0, x},
		{0, 1, 0, y},
		{0, 0, 1, z},
	}}
}

// rotationY34 is a right-handed rotation about +Y followed by a translation.
func rotationY34(radians, x, y, z float32) vr.HmdMatrix34 {
	s, c := float32(math.Sin(float64(radians))), float32(math.Cos(float64(radians)))
	return vr.HmdMatrix34{M: [3][4]float32{
		{c, 0, s, x},
		{0, 1, 0, y},
		{-s, 0, c, z},
	}}
}
