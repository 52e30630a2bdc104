package simvr

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeLifecycle(t *testing.T) {
	r := NewRuntime()
	assert.Nil(t, r.Compositor())
	assert.Nil(t, r.RenderModels())

	require.NoError(t, r.Init(context.Background()))
	assert.True(t, r.Initialized())
	assert.NotNil(t, r.Compositor())
	assert.NotNil(t, r.RenderModels())

	r.Shutdown()
	assert.False(t, r.Initialized())
	assert.Equal(t, 1, r.InitCount())
	assert.Equal(t, 1, r.ShutdownCount())
}

func TestRuntimeInitError(t *testing.T) {
	boom := errors.New("no hmd")
	r := NewRuntime(WithInitError(boom))

	err := r.Init(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.Initialized())
}

func TestRuntimeWithoutInterfaces(t *testing.T) {
	r := NewRuntime(WithoutRenderModels(), WithoutCompositor())
	require.NoError(t, r.Init(context.Background()))

	// Both must be untyped nil so callers can compare against nil.
	assert.True(t, r.RenderModels() == nil)
	assert.True(t, r.Compositor() == nil)
}

func TestRuntimeDeviceStrings(t *testing.T) {
	r := NewRuntime(WithTrackingSystem("lighthouse", "HMD-42"))
	_, err := r.TrackedDeviceString(HmdIndex, vr.PropTrackingSystemName)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, r.Init(context.Background()))
	name, err := r.TrackedDeviceString(HmdIndex, vr.PropTrackingSystemName)
	require.NoError(t, err)
	assert.Equal(t, "lighthouse", name)

	serial, err := r.TrackedDeviceString(HmdIndex, vr.PropSerialNumber)
	require.NoError(t, err)
	assert.Equal(t, "HMD-42", serial)

	_, err = r.TrackedDeviceString(HmdIndex, vr.TrackedDeviceProperty(99))
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestRuntimeEyeTransforms(t *testing.T) {
	r := NewRuntime(WithIPD(0.06))

	left := r.EyeToHeadTransform(vr.EyeLeft)
	right := r.EyeToHeadTransform(vr.EyeRight)
	assert.InDelta(t, -0.03, left.M[0][3], 1e-6)
	assert.InDelta(t, 0.03, right.M[0][3], 1e-6)

	p := r.ProjectionMatrix(vr.EyeLeft, vr.ProjectionNear, vr.ProjectionFar)
	assert.Equal(t, float32(-1), p.M[3][2])
	assert.Greater(t, p.M[0][0], float32(0))
	assert.Greater(t, p.M[1][1], float32(0))
}

func TestRuntimePoses(t *testing.T) {
	r := NewRuntime()
	require.NoError(t, r.Init(context.Background()))

	poses := make([]vr.TrackedDevicePose, vr.MaxTrackedDeviceCount)
	poses[10].PoseIsValid = true

	require.NoError(t, r.WaitGetPoses(context.Background(), poses))
	assert.Equal(t, uint64(1), r.Frame())
	for i := uint32(0); i < deviceCount; i++ {
		assert.True(t, poses[i].PoseIsValid, "device %d", i)
	}
	assert.False(t, poses[10].PoseIsValid)
	assert.InDelta(t, standingHeight, poses[HmdIndex].DeviceToAbsoluteTracking.M[1][3], 1e-6)

	boom := errors.New("lost tracking")
	r.SetPoseError(boom)
	assert.ErrorIs(t, r.WaitGetPoses(context.Background(), poses), boom)
	assert.Equal(t, uint64(1), r.Frame())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.SetPoseError(nil)
	assert.ErrorIs(t, r.WaitGetPoses(ctx, poses), context.Canceled)
}

func TestRuntimeEvents(t *testing.T) {
	r := NewRuntime()
	require.NoError(t, r.Init(context.Background()))

	var got []vr.Event
	for {
		ev, ok := r.PollEvent()
		if !ok {
			break
		}
		got = append(got, ev)
	}
	require.Len(t, got, deviceCount)
	for i, ev := range got {
		assert.Equal(t, vr.EventTrackedDeviceActivated, ev.Type)
		assert.Equal(t, uint32(i), ev.DeviceIndex)
	}

	r.PushEvent(vr.Event{Type: vr.EventFocusLeave})
	ev, ok := r.PollEvent()
	require.True(t, ok)
	assert.Equal(t, vr.EventFocusLeave, ev.Type)
}

func TestRuntimeControllerState(t *testing.T) {
	script := func(frame uint64, device uint32) vr.ControllerState {
		return vr.ControllerState{ButtonPressed: uint64(device)}
	}
	r := NewRuntime(WithInputScript(script))
	require.NoError(t, r.Init(context.Background()))

	st, ok := r.ControllerState(RightControllerIndex)
	require.True(t, ok)
	assert.Equal(t, uint64(RightControllerIndex), st.ButtonPressed)

	_, ok = r.ControllerState(HmdIndex)
	assert.False(t, ok)
}

func TestDefaultInputScriptPhases(t *testing.T) {
	assert.Equal(t, vr.ControllerState{}, DefaultInputScript(0, LeftControllerIndex))
	assert.Equal(t, float32(0.5), DefaultInputScript(framesPerSecond, LeftControllerIndex).Axis[0].Y)
	assert.Equal(t, vr.ButtonMaskFromID(7), DefaultInputScript(2*framesPerSecond, RightControllerIndex).ButtonPressed)
	assert.Equal(t, vr.ButtonMaskFromID(33), DefaultInputScript(3*framesPerSecond, LeftControllerIndex).ButtonPressed)
}

func TestRuntimeSubmit(t *testing.T) {
	var seen []Submission
	r := NewRuntime(WithOnSubmit(func(s Submission) { seen = append(seen, s) }))
	require.NoError(t, r.Init(context.Background()))

	err := r.Submit(vr.EyeLeft, vr.CompositorTexture{
		Handle: &vr.VulkanTextureData{Image: 5},
		Type:   vr.TextureTypeVulkan,
	}, vr.FullTextureBounds, vr.SubmitDefault)
	require.NoError(t, err)

	err = r.Submit(vr.EyeRight, vr.CompositorTexture{
		Handle: &vr.D3D12TextureData{Resource: 5},
		Type:   vr.TextureTypeVulkan,
	}, vr.FullTextureBounds, vr.SubmitDefault)
	assert.Error(t, err)

	r.PostPresentHandoff()

	subs := r.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, vr.EyeLeft, subs[0].Eye)
	assert.Equal(t, vr.FullTextureBounds, subs[0].Bounds)
	assert.Equal(t, subs, seen)
	assert.Equal(t, 1, r.Handoffs())
}
