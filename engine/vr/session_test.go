package vr_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/software"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr/simvr"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWidth  = 64
	testHeight = 72
)

// probe wraps a render path and records the order eyes are rendered in.
type probe struct {
	renderer.RenderPath
	eye   vr.Eye
	log   *[]vr.Eye
	logMu *sync.Mutex
}

func (p *probe) Render() {
	p.logMu.Lock()
	*p.log = append(*p.log, p.eye)
	p.logMu.Unlock()
	p.RenderPath.Render()
}

type harness struct {
	rt     simvr.Runtime
	scn    scene.Scene
	cam    camera.Camera
	device software.Device
	sess   vr.Session

	mu     *sync.Mutex
	order  []vr.Eye
	builds int
}

func newHarness(t *testing.T, rtOpts []simvr.RuntimeOption, devOpts []software.DeviceBuilderOption, opts ...vr.SessionBuilderOption) *harness {
	t.Helper()
	h := &harness{mu: &sync.Mutex{}}
	h.rt = simvr.NewRuntime(append([]simvr.RuntimeOption{simvr.WithRecommendedSize(testWidth, testHeight)}, rtOpts...)...)
	h.cam = camera.NewCamera(camera.WithEye(1, 2, 3), camera.WithAt(1, 2, 4), camera.WithSize(320, 240))
	h.scn = scene.NewScene("test", scene.WithCamera(h.cam))
	h.device = software.NewDevice(devOpts...)

	factory := func(device renderer.GraphicsDevice, eye vr.Eye) renderer.RenderPath {
		h.mu.Lock()
		h.builds++
		h.mu.Unlock()
		return &probe{
			RenderPath: vr.DefaultRenderPathFactory(device, eye),
			eye:        eye,
			log:        &h.order,
			logMu:      h.mu,
		}
	}
	opts = append([]vr.SessionBuilderOption{vr.WithRenderPathFactory(factory)}, opts...)
	h.sess = vr.NewSession(h.rt, h.scn, h.device, opts...)
	t.Cleanup(h.sess.Stop)
	return h
}

func (h *harness) render(n int) {
	for range n {
		h.sess.Render(context.Background(), 1.0/90)
	}
}

func TestStartInitFailure(t *testing.T) {
	boom := errors.New("no headset")
	h := newHarness(t, []simvr.RuntimeOption{simvr.WithInitError(boom)}, nil)

	err := h.sess.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, vr.ErrRuntimeInit)
	assert.ErrorIs(t, err, boom)
	assert.False(t, h.sess.IsActive())
	assert.Equal(t, 0, h.rt.ShutdownCount())
}

func TestStartWithoutRenderModels(t *testing.T) {
	h := newHarness(t, []simvr.RuntimeOption{simvr.WithoutRenderModels()}, nil)
	entities := h.scn.EntityCount()

	err := h.sess.Start(context.Background())
	assert.ErrorIs(t, err, vr.ErrRenderModelUnavailable)
	assert.False(t, h.sess.IsActive())
	assert.Equal(t, 1, h.rt.ShutdownCount())
	assert.Equal(t, entities, h.scn.EntityCount())
	assert.Equal(t, [3]float32{1, 2, 3}, h.cam.Eye())
}

func TestStartInfo(t *testing.T) {
	h := newHarness(t, []simvr.RuntimeOption{simvr.WithTrackingSystem("lighthouse", "HMD-7")}, nil)
	require.True(t, h.device.VSync())

	require.NoError(t, h.sess.Start(context.Background()))
	assert.True(t, h.sess.IsActive())
	assert.False(t, h.device.VSync())

	info := h.sess.Info()
	assert.Equal(t, "lighthouse", info.Driver)
	assert.Equal(t, "HMD-7", info.Display)
	assert.Equal(t, uint32(testWidth), info.Width)
	assert.Equal(t, uint32(testHeight), info.Height)
	assert.Equal(t, gputypes.BackendVulkan, info.Backend)
	assert.Equal(t, vr.TextureTypeVulkan, info.Submission)
	assert.True(t, info.Compositor)

	for _, eye := range []vr.Eye{vr.EyeLeft, vr.EyeRight} {
		proj := h.rt.ProjectionMatrix(eye, vr.ProjectionNear, vr.ProjectionFar)
		assert.Equal(t, vr.ConvertProjection(proj), h.sess.EyeProjection(eye))
		assert.Equal(t, vr.ConvertPose(h.rt.EyeToHeadTransform(eye)), h.sess.EyeOffset(eye))
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.NoError(t, h.sess.Start(context.Background()))
	require.NoError(t, h.sess.Start(context.Background()))
	assert.Equal(t, 1, h.rt.InitCount())
}

func TestStopIsIdempotent(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.sess.Stop()
	assert.Equal(t, 0, h.rt.ShutdownCount())

	require.NoError(t, h.sess.Start(context.Background()))
	h.render(2)
	h.sess.Stop()
	h.sess.Stop()
	assert.False(t, h.sess.IsActive())
	assert.Equal(t, 1, h.rt.ShutdownCount())
	assert.Equal(t, 0, h.device.TextureCount())
}

func TestStopRestoresSceneCamera(t *testing.T) {
	h := newHarness(t, nil, nil)
	custom := [16]float32{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 4, 1, 0, 0, 5, 0}
	h.cam.SetProjection(custom)
	h.cam.SetCustomProjectionEnabled(true)
	h.cam.UpdateCamera()

	eye, at, up := h.cam.Eye(), h.cam.At(), h.cam.Up()

	require.NoError(t, h.sess.Start(context.Background()))
	h.render(3)
	h.cam.SetEye([3]float32{9, 9, 9})
	h.cam.SetCustomProjectionEnabled(false)
	h.sess.Stop()

	assert.Equal(t, eye, h.cam.Eye())
	assert.Equal(t, at, h.cam.At())
	assert.Equal(t, up, h.cam.Up())
	assert.Equal(t, custom, h.cam.Projection())
	assert.True(t, h.cam.CustomProjectionEnabled())
}

func TestEyeRigCreatedOnceAndRemovedOnStop(t *testing.T) {
	h := newHarness(t, nil, nil)
	base := h.scn.EntityCount()

	require.NoError(t, h.sess.Start(context.Background()))
	assert.Nil(t, h.sess.EyeCamera(vr.EyeLeft))

	h.render(1)
	assert.Equal(t, base+2, h.scn.EntityCount())
	left, right := h.sess.EyeCamera(vr.EyeLeft), h.sess.EyeCamera(vr.EyeRight)
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.NotSame(t, left, right)

	h.render(4)
	assert.Equal(t, base+2, h.scn.EntityCount())
	assert.Same(t, left, h.sess.EyeCamera(vr.EyeLeft))
	assert.Equal(t, 2, h.builds)

	h.sess.Stop()
	assert.Equal(t, base, h.scn.EntityCount())
	assert.Nil(t, h.sess.EyeCamera(vr.EyeLeft))
}

func TestRenderOrderAndSceneUpdate(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.NoError(t, h.sess.Start(context.Background()))

	h.render(3)

	assert.Equal(t, []vr.Eye{
		vr.EyeLeft, vr.EyeRight,
		vr.EyeLeft, vr.EyeRight,
		vr.EyeLeft, vr.EyeRight,
	}, h.order)
	// Only the left eye advances the scene.
	assert.Equal(t, uint64(3), h.scn.UpdateCount())

	left := h.sess.EyeCamera(vr.EyeLeft)
	assert.True(t, left.CustomProjectionEnabled())
	assert.Equal(t, h.sess.EyeProjection(vr.EyeLeft), left.Projection())
}

func TestRenderInactiveDoesNothing(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.render(2)
	assert.Empty(t, h.order)
	assert.Zero(t, h.rt.Frame())
	assert.Equal(t, vr.FrameStats{}, h.sess.LastFrame())
}

func TestRenderSubmitsBothEyes(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.NoError(t, h.sess.Start(context.Background()))

	h.render(3)

	subs := h.rt.Submissions()
	require.Len(t, subs, 6)
	for i, sub := range subs {
		want := vr.EyeLeft
		if i%2 == 1 {
			want = vr.EyeRight
		}
		assert.Equal(t, want, sub.Eye)
		assert.Equal(t, vr.TextureTypeVulkan, sub.Texture.Type)
		assert.Equal(t, vr.FullTextureBounds, sub.Bounds)
		data := sub.Texture.Handle.(*vr.VulkanTextureData)
		assert.Equal(t, uint32(testWidth), data.Width)
		assert.Equal(t, uint32(testHeight), data.Height)
	}
	assert.Equal(t, 3, h.rt.Handoffs())
	assert.Equal(t, uint64(3), h.rt.Frame())

	stats := h.sess.LastFrame()
	assert.Equal(t, uint64(2), stats.Index)
	assert.Equal(t, 2, stats.EyesRendered)
	assert.Equal(t, 2, stats.EyesSubmitted)
	assert.Equal(t, 4, stats.ValidPoses)
	assert.Equal(t, "HCCT", stats.PoseClasses)
	assert.False(t, stats.PoseError)

	for _, eye := range []vr.Eye{vr.EyeLeft, vr.EyeRight} {
		tex := h.sess.EyeTexture(eye)
		require.True(t, tex.Valid())
		img, ok := h.device.Image(tex.ID())
		require.True(t, ok)
		assert.Equal(t, testWidth, img.Bounds().Dx())
		assert.Equal(t, testHeight, img.Bounds().Dy())
	}
	assert.Contains(t, h.device.Events(), vr.ResizeEventName)
}

func TestRenderWithoutCompositor(t *testing.T) {
	h := newHarness(t, []simvr.RuntimeOption{simvr.WithoutCompositor()}, nil)
	require.NoError(t, h.sess.Start(context.Background()))
	assert.False(t, h.sess.Info().Compositor)

	h.render(2)
	assert.Len(t, h.order, 4)
	assert.Empty(t, h.rt.Submissions())
	assert.Zero(t, h.sess.LastFrame().EyesSubmitted)
}

func TestRenderUnsupportedBackend(t *testing.T) {
	h := newHarness(t, nil, []software.DeviceBuilderOption{software.WithBackend(gputypes.BackendMetal)})
	require.NoError(t, h.sess.Start(context.Background()))
	assert.Equal(t, vr.TextureTypeInvalid, h.sess.Info().Submission)

	h.render(2)
	assert.Len(t, h.order, 4)
	assert.Empty(t, h.rt.Submissions())
	assert.Zero(t, h.rt.Handoffs())
}

func TestPoseErrorKeepsHeadPose(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.NoError(t, h.sess.Start(context.Background()))

	h.render(2)
	before := h.sess.EyeCamera(vr.EyeLeft).Eye()
	h.rt.SetPoseError(errors.New("tracking lost"))
	h.render(1)
	moved := h.sess.EyeCamera(vr.EyeLeft).Eye()
	assert.NotEqual(t, before, moved)
	assert.True(t, h.sess.LastFrame().PoseError)
	assert.Zero(t, h.sess.LastFrame().ValidPoses)

	// The failed wait leaves the head where the last good pose put it.
	h.render(1)
	assert.Equal(t, moved, h.sess.EyeCamera(vr.EyeLeft).Eye())
	assert.True(t, h.sess.IsActive())

	h.rt.SetPoseError(nil)
	h.render(1)
	assert.False(t, h.sess.LastFrame().PoseError)
}

func TestEyeCamerasStraddleHead(t *testing.T) {
	h := newHarness(t, []simvr.RuntimeOption{simvr.WithIPD(0.1)}, nil)
	require.NoError(t, h.sess.Start(context.Background()))
	h.render(1)

	// The first frame renders from the identity head pose on top of the scene camera.
	left := h.sess.EyeCamera(vr.EyeLeft).Eye()
	right := h.sess.EyeCamera(vr.EyeRight).Eye()
	d := [3]float32{right[0] - left[0], right[1] - left[1], right[2] - left[2]}
	assert.InDelta(t, 0.01, common.Dot3(d, d), 1e-6)
	assert.InDelta(t, 2, left[1], 1e-4)
	assert.InDelta(t, 3, (left[2]+right[2])/2, 1e-4)
}

func TestControllerInputLatched(t *testing.T) {
	var (
		scriptMu sync.Mutex
		left     vr.ControllerState
		right    vr.ControllerState
	)
	script := func(frame uint64, device uint32) vr.ControllerState {
		scriptMu.Lock()
		defer scriptMu.Unlock()
		if device == simvr.LeftControllerIndex {
			return left
		}
		return right
	}
	var handled []vr.ControllerSnapshot
	h := newHarness(t,
		[]simvr.RuntimeOption{simvr.WithInputScript(script)},
		nil,
		vr.WithControllerHandler(func(s vr.ControllerSnapshot) { handled = append(handled, s) }),
	)
	require.NoError(t, h.sess.Start(context.Background()))

	scriptMu.Lock()
	left.Axis[0] = vr.ControllerAxis{X: 0.3, Y: 0.4}
	scriptMu.Unlock()
	h.render(1)

	assert.True(t, h.sess.IsLeftPadPressed())
	assert.False(t, h.sess.IsRightPadPressed())
	assert.Equal(t, [2]float32{0.3, 0.4}, h.sess.PadValues())
	assert.Equal(t, float32(0.3), h.sess.PadValueX())
	assert.Equal(t, float32(0.4), h.sess.PadValueY())
	assert.False(t, h.sess.IsButtonX())

	// The right controller is polled after the left one, so its input wins.
	scriptMu.Lock()
	right.ButtonPressed = vr.ButtonMaskFromID(7)
	scriptMu.Unlock()
	h.render(1)

	assert.True(t, h.sess.IsRightPadPressed())
	assert.True(t, h.sess.IsButtonA())
	assert.False(t, h.sess.IsButtonX())
	assert.False(t, h.sess.IsButtonB())

	scriptMu.Lock()
	left, right = vr.ControllerState{}, vr.ControllerState{}
	scriptMu.Unlock()
	h.render(1)
	assert.Equal(t, vr.ControllerSnapshot{}, h.sess.Controller())
	assert.False(t, h.sess.IsButtonA())

	require.Len(t, handled, 3)
	assert.Equal(t, vr.TouchpadLeft, handled[0].Side)
	assert.Equal(t, vr.ButtonA, handled[2].Button)

	h.sess.Stop()
	assert.Equal(t, vr.ControllerSnapshot{}, h.sess.Controller())
}

func TestLocomotionFromLeftPad(t *testing.T) {
	script := func(frame uint64, device uint32) vr.ControllerState {
		var st vr.ControllerState
		if device == simvr.LeftControllerIndex {
			st.Axis[0] = vr.ControllerAxis{Y: 0.5}
		}
		return st
	}
	cc := camera.NewCameraController(camera.WithPanSpeed(2))
	h := newHarness(t, []simvr.RuntimeOption{simvr.WithInputScript(script)}, nil, vr.WithLocomotion(cc))
	require.NoError(t, h.sess.Start(context.Background()))

	start := cc.Transform()
	assert.Equal(t, h.cam.InvView(), start)

	h.render(5)
	moved := cc.Transform()
	assert.NotEqual(t, start, moved)
	// Panning stays on the ground plane.
	assert.InDelta(t, start[13], moved[13], 1e-5)
}

func TestRuntimeEventsForgetDeviceClass(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.NoError(t, h.sess.Start(context.Background()))

	h.render(1)
	assert.Equal(t, 4, h.sess.LastFrame().Events)
	assert.Equal(t, 4, h.rt.ClassQueries())

	// Activation events of the first frame drop every cached class once.
	h.render(2)
	assert.Equal(t, 8, h.rt.ClassQueries())
	assert.Zero(t, h.sess.LastFrame().Events)

	h.rt.PushEvent(vr.Event{Type: vr.EventTrackedDeviceActivated, DeviceIndex: simvr.RightControllerIndex})
	h.rt.PushEvent(vr.Event{Type: vr.EventFocusLeave})
	h.render(1)
	assert.Equal(t, 2, h.sess.LastFrame().Events)
	h.render(1)
	assert.Equal(t, 9, h.rt.ClassQueries())

	devs := h.sess.Devices()
	class, ok := devs.Class(simvr.RightControllerIndex)
	assert.True(t, ok)
	assert.Equal(t, vr.TrackedDeviceClassController, class)
	_, tracked := devs.Transform(simvr.RightControllerIndex)
	assert.True(t, tracked)
}
