package vr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/gogpu/gputypes"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Carmen-Shannon/oxy-vr/engine/vr"

// RenderPathFactory builds the render path of one eye.
type RenderPathFactory func(device renderer.GraphicsDevice, eye Eye) renderer.RenderPath

// DefaultRenderPathFactory returns a 3D render path that clears to the default color.
func DefaultRenderPathFactory(device renderer.GraphicsDevice, eye Eye) renderer.RenderPath {
	return renderer.NewRenderPath3D(device, renderer.WithLabel("VR "+eye.String()))
}

// ControllerHandler receives every decoded snapshot that carries input.
type ControllerHandler func(s ControllerSnapshot)

// SessionInfo describes a running session.
type SessionInfo struct {
	Driver     string
	Display    string
	Width      uint32
	Height     uint32
	Backend    gputypes.Backend
	Submission TextureType
	Compositor bool
}

// savedCamera is the active camera state captured at Start and restored at Stop.
type savedCamera struct {
	cam              camera.Camera
	eye, at, up      [3]float32
	projection       [16]float32
	customProjection bool
	invView          [16]float32
}

type sessionImpl struct {
	mu      *sync.Mutex
	inputMu *sync.Mutex

	rt     Runtime
	scn    scene.Scene
	device renderer.GraphicsDevice

	pathFactory RenderPathFactory
	tracer      trace.Tracer
	logger      *slog.Logger
	locomotion  camera.CameraController
	onInput     ControllerHandler

	running    bool
	hmdHeld    bool
	compositor Compositor
	submitter  Submitter
	info       SessionInfo

	width, height uint32
	projection    [2][16]float32
	eyeOffset     [2][16]float32
	headPose      [16]float32
	saved         *savedCamera

	devices DeviceTable
	poses   [MaxTrackedDeviceCount]TrackedDevicePose

	decoder Decoder
	latched ControllerSnapshot

	entities    [2]scene.Entity
	paths       [2]renderer.RenderPath
	eyeTextures [2]renderer.Texture

	frameIndex uint64
	last       FrameStats
}

// Session manages one headset session on top of a scene and a graphics device.
// Render is meant to be called from a single goroutine; Stop and the input
// queries may be called from any goroutine.
type Session interface {
	// Start brings the runtime online and prepares the eye projections and offsets.
	// Starting an active session is a no-op.
	//
	// Parameters:
	//   - ctx: bounds runtime initialization
	//
	// Returns:
	//   - error: ErrRuntimeInit or ErrRenderModelUnavailable (wrapped) if the session could not start
	Start(ctx context.Context) error

	// Stop shuts the runtime down, restores the scene camera and removes the eye cameras.
	// Safe to call at any time, including repeatedly.
	Stop()

	// IsActive reports whether the session is running.
	IsActive() bool

	// Info returns the runtime description captured at Start.
	Info() SessionInfo

	// EyeProjection returns the cached projection of an eye.
	EyeProjection(eye Eye) [16]float32

	// EyeOffset returns the cached head-to-eye transform of an eye.
	EyeOffset(eye Eye) [16]float32

	// Render draws and submits one stereo frame, then polls input and poses for the next.
	// Does nothing while inactive.
	//
	// Parameters:
	//   - ctx: the frame context, carries the frame span
	//   - dt: elapsed time in seconds
	Render(ctx context.Context, dt float32)

	// LastFrame returns the statistics of the latest Render.
	LastFrame() FrameStats

	// EyeTexture returns the eye image produced by the latest Render, invalid if none.
	EyeTexture(eye Eye) renderer.Texture

	// EyeCamera returns the camera of an eye, nil while the rig does not exist.
	EyeCamera(eye Eye) camera.Camera

	// Devices returns a copy of the tracked device table.
	Devices() DeviceTable

	// Controller returns the input latched during the latest poll.
	Controller() ControllerSnapshot

	IsLeftPadPressed() bool
	IsRightPadPressed() bool
	PadValues() [2]float32
	PadValueX() float32
	PadValueY() float32
	IsButtonX() bool
	IsButtonY() bool
	IsButtonMenu() bool
	IsButtonHome() bool
	IsButtonA() bool
	IsButtonB() bool
	IsButtonTriggerLeftA() bool
	IsButtonTriggerLeftB() bool
	IsButtonTriggerRightA() bool
	IsButtonTriggerRightB() bool
}

var _ Session = &sessionImpl{}

// NewSession creates an inactive session.
//
// Parameters:
//   - rt: the VR runtime
//   - scn: the scene whose active camera drives the rig and which owns the eye cameras
//   - device: the graphics device eye images are created on
//   - options: functional options to configure the session
//
// Returns:
//   - Session: the new session
func NewSession(rt Runtime, scn scene.Scene, device renderer.GraphicsDevice, options ...SessionBuilderOption) Session {
	s := &sessionImpl{
		mu:          &sync.Mutex{},
		inputMu:     &sync.Mutex{},
		rt:          rt,
		scn:         scn,
		device:      device,
		pathFactory: DefaultRenderPathFactory,
		headPose:    common.IdentityMatrix(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *sessionImpl) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return common.Logger()
}

func (s *sessionImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	log := s.log()

	s.device.SetVSync(false)
	backend := s.device.Backend()

	s.saved = nil
	if cam := s.scn.Camera(); cam != nil {
		s.saved = &savedCamera{
			cam:              cam,
			eye:              cam.Eye(),
			at:               cam.At(),
			up:               cam.Up(),
			projection:       cam.Projection(),
			customProjection: cam.CustomProjectionEnabled(),
			invView:          cam.InvView(),
		}
	}

	if err := s.rt.Init(ctx); err != nil {
		log.Error("[VR] failed to init VR runtime", "err", err)
		s.saved = nil
		return fmt.Errorf("%w: %w", ErrRuntimeInit, err)
	}
	s.hmdHeld = true

	if s.rt.RenderModels() == nil {
		log.Error("[VR] render model interface unavailable")
		s.stopLocked()
		return ErrRenderModelUnavailable
	}

	driver, err := s.rt.TrackedDeviceString(HmdDeviceIndex, PropTrackingSystemName)
	if err != nil {
		driver = "No Driver"
	}
	display, err := s.rt.TrackedDeviceString(HmdDeviceIndex, PropSerialNumber)
	if err != nil {
		display = "No Display"
	}

	s.width, s.height = s.rt.RecommendedRenderTargetSize()
	for _, eye := range [...]Eye{EyeLeft, EyeRight} {
		s.projection[eye] = ConvertProjection(s.rt.ProjectionMatrix(eye, ProjectionNear, ProjectionFar))
		s.eyeOffset[eye] = ConvertPose(s.rt.EyeToHeadTransform(eye))
	}
	s.headPose = common.IdentityMatrix()
	s.devices.Reset()

	s.compositor = s.rt.Compositor()
	if s.compositor == nil {
		log.Error("[VR] compositor initialization failed", "err", ErrCompositorUnavailable)
	}

	s.submitter, err = NewSubmitter(backend, s.device)
	if err != nil {
		log.Warn("[VR] frames will not be submitted", "err", err)
		s.submitter = nil
	}

	if s.locomotion != nil {
		if s.saved != nil {
			s.locomotion.SetTransform(s.saved.invView)
		} else {
			s.locomotion.SetTransform(common.IdentityMatrix())
		}
	}

	s.info = SessionInfo{
		Driver:     driver,
		Display:    display,
		Width:      s.width,
		Height:     s.height,
		Backend:    backend,
		Compositor: s.compositor != nil,
	}
	if s.submitter != nil {
		s.info.Submission = s.submitter.TextureType()
	}
	s.frameIndex = 0
	s.last = FrameStats{}
	s.running = true

	log.Info("[VR] session started",
		"driver", driver,
		"display", display,
		"width", s.width,
		"height", s.height,
		"backend", backend.String(),
	)
	return nil
}

func (s *sessionImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked tears the session down. Caller must hold the mutex.
func (s *sessionImpl) stopLocked() {
	wasRunning := s.running
	s.running = false

	if s.hmdHeld {
		s.hmdHeld = false
		s.rt.Shutdown()
	}
	s.compositor = nil
	s.submitter = nil

	if s.saved != nil {
		s.saved.cam.Restore(s.saved.eye, s.saved.at, s.saved.up, s.saved.projection, s.saved.customProjection)
		s.saved = nil
	}

	s.removeCameras()

	for eye := range s.eyeTextures {
		s.device.ReleaseTexture(s.eyeTextures[eye])
		s.eyeTextures[eye] = renderer.Texture{}
	}
	for eye, p := range s.paths {
		if p != nil {
			p.Release()
			s.paths[eye] = nil
		}
	}

	s.inputMu.Lock()
	s.latched = ControllerSnapshot{}
	s.inputMu.Unlock()

	if wasRunning {
		s.log().Info("[VR] session stopped")
	}
}

func (s *sessionImpl) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *sessionImpl) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *sessionImpl) EyeProjection(eye Eye) [16]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection[eye]
}

func (s *sessionImpl) EyeOffset(eye Eye) [16]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eyeOffset[eye]
}

func (s *sessionImpl) LastFrame() FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *sessionImpl) EyeTexture(eye Eye) renderer.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eyeTextures[eye]
}

func (s *sessionImpl) EyeCamera(eye Eye) camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	cam, _ := s.scn.Cameras().Get(s.entities[eye])
	return cam
}

func (s *sessionImpl) Devices() DeviceTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices
}

func (s *sessionImpl) Controller() ControllerSnapshot {
	s.inputMu.Lock()
	defer s.inputMu.Unlock()
	return s.latched
}

func (s *sessionImpl) IsLeftPadPressed() bool {
	return s.Controller().Side == TouchpadLeft
}

func (s *sessionImpl) IsRightPadPressed() bool {
	return s.Controller().Side == TouchpadRight
}

func (s *sessionImpl) PadValues() [2]float32 {
	return s.Controller().Axis
}

func (s *sessionImpl) PadValueX() float32 {
	return s.Controller().Axis[0]
}

func (s *sessionImpl) PadValueY() float32 {
	return s.Controller().Axis[1]
}

func (s *sessionImpl) isButton(b Controller) bool {
	c := s.Controller()
	return c.ButtonState && c.Button == b
}

func (s *sessionImpl) IsButtonX() bool             { return s.isButton(ButtonX) }
func (s *sessionImpl) IsButtonY() bool             { return s.isButton(ButtonY) }
func (s *sessionImpl) IsButtonMenu() bool          { return s.isButton(ButtonMenu) }
func (s *sessionImpl) IsButtonHome() bool          { return s.isButton(ButtonHome) }
func (s *sessionImpl) IsButtonA() bool             { return s.isButton(ButtonA) }
func (s *sessionImpl) IsButtonB() bool             { return s.isButton(ButtonB) }
func (s *sessionImpl) IsButtonTriggerLeftA() bool  { return s.isButton(ButtonTriggerLeftA) }
func (s *sessionImpl) IsButtonTriggerLeftB() bool  { return s.isButton(ButtonTriggerLeftB) }
func (s *sessionImpl) IsButtonTriggerRightA() bool { return s.isButton(ButtonTriggerRightA) }
func (s *sessionImpl) IsButtonTriggerRightB() bool { return s.isButton(ButtonTriggerRightB) }

