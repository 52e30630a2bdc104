package vr

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSubmit struct {
	eye    Eye
	tex    CompositorTexture
	bounds TextureBounds
}

type fakeCompositor struct {
	submits  []recordedSubmit
	handoffs int
	reject   map[Eye]error
}

func (c *fakeCompositor) WaitGetPoses(ctx context.Context, poses []TrackedDevicePose) error {
	return nil
}

func (c *fakeCompositor) Submit(eye Eye, tex CompositorTexture, bounds TextureBounds, flags SubmitFlags) error {
	if err := c.reject[eye]; err != nil {
		return err
	}
	c.submits = append(c.submits, recordedSubmit{eye: eye, tex: tex, bounds: bounds})
	return nil
}

func (c *fakeCompositor) PostPresentHandoff() { c.handoffs++ }

type fakeResolver struct {
	native renderer.NativeDevice
}

func (r fakeResolver) TextureInternalResource(t renderer.Texture) uint64 {
	if !t.Valid() {
		return 0
	}
	return t.ID() + 1000
}

func (r fakeResolver) NativeDevice() renderer.NativeDevice { return r.native }

func eyeTexture(id uint64) renderer.Texture {
	return renderer.NewTexture(renderer.TextureDesc{Width: 640, Height: 720, Format: gputypes.TextureFormatRGBA8Unorm}, id)
}

func TestNewSubmitterBackends(t *testing.T) {
	res := fakeResolver{}

	s, err := NewSubmitter(gputypes.BackendDX12, res)
	require.NoError(t, err)
	assert.Equal(t, TextureTypeDirectX12, s.TextureType())

	s, err = NewSubmitter(gputypes.BackendVulkan, res)
	require.NoError(t, err)
	assert.Equal(t, TextureTypeVulkan, s.TextureType())

	for _, b := range []gputypes.Backend{gputypes.BackendMetal, gputypes.BackendGL, gputypes.BackendEmpty} {
		_, err = NewSubmitter(b, res)
		assert.ErrorIs(t, err, ErrUnsupportedBackend, "backend %s", b)
	}
}

func TestD3D12SubmitterData(t *testing.T) {
	res := fakeResolver{native: renderer.NativeDevice{Queue: 77}}
	s, err := NewSubmitter(gputypes.BackendDX12, res)
	require.NoError(t, err)

	c := &fakeCompositor{}
	n := s.Submit(c, eyeTexture(1), eyeTexture(2))
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, c.handoffs)

	require.Len(t, c.submits, 2)
	assert.Equal(t, EyeLeft, c.submits[0].eye)
	assert.Equal(t, EyeRight, c.submits[1].eye)
	for i, sub := range c.submits {
		assert.Equal(t, FullTextureBounds, sub.bounds)
		assert.Equal(t, TextureTypeDirectX12, sub.tex.Type)
		assert.Equal(t, ColorSpaceGamma, sub.tex.ColorSpace)
		data, ok := sub.tex.Handle.(*D3D12TextureData)
		require.True(t, ok)
		assert.Equal(t, uint64(1001+i), data.Resource)
		assert.Equal(t, uint64(77), data.CommandQueue)
		assert.Zero(t, data.NodeMask)
	}
}

func TestVulkanSubmitterData(t *testing.T) {
	res := fakeResolver{native: renderer.NativeDevice{
		Instance:         1,
		PhysicalDevice:   2,
		Device:           3,
		Queue:            4,
		QueueFamilyIndex: 5,
	}}
	s, err := NewSubmitter(gputypes.BackendVulkan, res)
	require.NoError(t, err)

	c := &fakeCompositor{}
	assert.Equal(t, 2, s.Submit(c, eyeTexture(10), eyeTexture(11)))

	require.Len(t, c.submits, 2)
	left := c.submits[0].tex.Handle.(*VulkanTextureData)
	right := c.submits[1].tex.Handle.(*VulkanTextureData)
	assert.Equal(t, uint64(1010), left.Image)
	assert.Equal(t, uint64(1011), right.Image)
	for _, data := range []*VulkanTextureData{left, right} {
		assert.Equal(t, uint64(1), data.Instance)
		assert.Equal(t, uint64(2), data.PhysicalDevice)
		assert.Equal(t, uint64(3), data.Device)
		assert.Equal(t, uint64(4), data.Queue)
		assert.Equal(t, uint32(5), data.QueueFamilyIndex)
		assert.Equal(t, uint32(640), data.Width)
		assert.Equal(t, uint32(720), data.Height)
		assert.Equal(t, VkFormatR8G8B8A8Unorm, data.Format)
		assert.Zero(t, data.SampleCount)
	}
}

func TestSubmitterSkipsInvalidAndRejected(t *testing.T) {
	s, err := NewSubmitter(gputypes.BackendVulkan, fakeResolver{})
	require.NoError(t, err)

	c := &fakeCompositor{}
	assert.Equal(t, 1, s.Submit(c, renderer.Texture{}, eyeTexture(3)))
	assert.Equal(t, 1, c.handoffs)

	c = &fakeCompositor{reject: map[Eye]error{EyeLeft: errors.New("bad texture")}}
	assert.Equal(t, 1, s.Submit(c, eyeTexture(1), eyeTexture(2)))
	require.Len(t, c.submits, 1)
	assert.Equal(t, EyeRight, c.submits[0].eye)
	assert.Equal(t, 1, c.handoffs)
}
