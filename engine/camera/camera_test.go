package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, [3]float32{0, 0, 0}, c.Eye())
	assert.Equal(t, [3]float32{0, 0, 1}, c.At())
	assert.Equal(t, [3]float32{0, 1, 0}, c.Up())
	assert.False(t, c.CustomProjectionEnabled())
	assert.False(t, c.IsDirty())

	id := common.IdentityMatrix()
	view := c.View()
	assert.True(t, common.ApproxEqual4(view[:], id[:], 1e-6))
}

func TestTransformCameraRoundTrip(t *testing.T) {
	c := NewCamera(WithEye(1, 2, 3), WithAt(1, 0, 1), WithUp(0, 1, 0))
	c.UpdateCamera()

	eye, at, up := c.Eye(), c.At(), c.Up()

	// Re-applying the inverse view must reproduce the same placement.
	c.TransformCamera(c.InvView())
	c.UpdateCamera()

	for i := 0; i < 3; i++ {
		assert.InDelta(t, eye[i], c.Eye()[i], 1e-5)
		assert.InDelta(t, at[i], c.At()[i], 1e-5)
		assert.InDelta(t, up[i], c.Up()[i], 1e-5)
	}
}

func TestTransformCameraTranslation(t *testing.T) {
	c := NewCamera()

	var world [16]float32
	common.Translation(world[:], 4, 5, 6)
	c.TransformCamera(world)
	c.UpdateCamera()

	assert.Equal(t, [3]float32{4, 5, 6}, c.Eye())
	assert.Equal(t, [3]float32{0, 0, 1}, c.At())

	inv := c.InvView()
	assert.True(t, common.ApproxEqual4(inv[:], world[:], 1e-5))
}

func TestCustomProjectionSurvivesUpdate(t *testing.T) {
	c := NewCamera(WithSize(100, 50))
	custom := [16]float32{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 4, 1, 0, 0, 5, 0}

	c.SetCustomProjectionEnabled(true)
	c.SetProjection(custom)
	c.UpdateCamera()
	assert.Equal(t, custom, c.Projection())

	c.SetCustomProjectionEnabled(false)
	c.UpdateCamera()
	assert.NotEqual(t, custom, c.Projection())

	f := float32(1.0 / math.Tan(float64(c.Fov())/2))
	assert.InDelta(t, f/2, c.Projection()[0], 1e-5)
}

func TestRestoreIsExact(t *testing.T) {
	c := NewCamera(WithEye(1, 2, 3), WithAt(1, 2, 4), WithUp(0.3, 1, 0.1))
	eye, at, up, proj := c.Eye(), c.At(), c.Up(), c.Projection()

	var rot [16]float32
	common.RotationY(rot[:], 0.9)
	c.TransformCamera(rot)
	c.SetProjection([16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 2, 1, 0, 0, 3, 0})
	c.SetCustomProjectionEnabled(true)
	c.UpdateCamera()

	c.Restore(eye, at, up, proj, false)
	assert.Equal(t, eye, c.Eye())
	assert.Equal(t, at, c.At())
	assert.Equal(t, up, c.Up())
	assert.Equal(t, proj, c.Projection())
	assert.False(t, c.CustomProjectionEnabled())

	ref := NewCamera(WithEye(1, 2, 3), WithAt(1, 2, 4), WithUp(0.3, 1, 0.1))
	assert.Equal(t, ref.View(), c.View())
	assert.Equal(t, ref.ViewProjection(), c.ViewProjection())
}

func TestRestoreKeepsStaleProjection(t *testing.T) {
	c := NewCamera()
	stale := [16]float32{5, 0, 0, 0, 0, 5, 0, 0, 0, 0, 1, 1, 0, 0, 1, 0}
	c.SetProjection(stale)

	c.Restore(c.Eye(), c.At(), c.Up(), c.Projection(), false)
	assert.Equal(t, stale, c.Projection())
	assert.False(t, c.CustomProjectionEnabled())
}

func TestDirtyFlag(t *testing.T) {
	c := NewCamera()
	c.SetDirty()
	assert.True(t, c.IsDirty())
	c.ClearDirty()
	assert.False(t, c.IsDirty())
}

func TestCameraControllerPan(t *testing.T) {
	cc := NewCameraController(WithPanSpeed(2))

	cc.PanForward(1)
	w := cc.Transform()
	assert.InDelta(t, 0, w[12], 1e-6)
	assert.InDelta(t, 2, w[14], 1e-6)

	cc.PanRight(-0.5)
	w = cc.Transform()
	assert.InDelta(t, -1, w[12], 1e-6)
	assert.InDelta(t, 2, w[14], 1e-6)
}

func TestCameraControllerTurnKeepsPosition(t *testing.T) {
	var start [16]float32
	common.Translation(start[:], 3, 1, -2)
	cc := NewCameraController(WithTransform(start), WithTurnSpeed(1))

	cc.Turn(float32(math.Pi / 2))
	w := cc.Transform()
	require.InDelta(t, 3, w[12], 1e-6)
	require.InDelta(t, 1, w[13], 1e-6)
	require.InDelta(t, -2, w[14], 1e-6)

	// Forward (+Z) rotated a quarter turn about +Y now points along +X.
	assert.InDelta(t, 1, w[8], 1e-5)
	assert.InDelta(t, 0, w[10], 1e-5)

	cc.PanForward(1)
	w = cc.Transform()
	assert.InDelta(t, 3+cc.PanSpeed(), w[12], 1e-5)
}
