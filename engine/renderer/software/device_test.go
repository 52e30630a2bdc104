package software

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgbaDesc(w, h uint32) renderer.TextureDesc {
	return renderer.TextureDesc{
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}
}

func solid(w, h int, r, g, b, a byte) []byte {
	px := make([]byte, w*h*4)
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = r, g, b, a
	}
	return px
}

func TestDeviceDefaults(t *testing.T) {
	d := NewDevice()
	assert.Equal(t, gputypes.BackendVulkan, d.Backend())
	assert.True(t, d.VSync())

	d = NewDevice(WithBackend(gputypes.BackendDX12), WithVSync(false))
	assert.Equal(t, gputypes.BackendDX12, d.Backend())
	assert.False(t, d.VSync())
}

func TestCreateTextureValidates(t *testing.T) {
	d := NewDevice()

	_, err := d.CreateTexture(rgbaDesc(0, 4), nil)
	assert.Error(t, err)

	_, err = d.CreateTexture(rgbaDesc(2, 2), make([]byte, 3))
	assert.Error(t, err)

	tex, err := d.CreateTexture(rgbaDesc(2, 2), solid(2, 2, 1, 2, 3, 4))
	require.NoError(t, err)
	assert.True(t, tex.Valid())
	assert.Equal(t, tex.ID(), d.TextureInternalResource(tex))

	img, ok := d.Image(tex.ID())
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Pix[:4])

	d.ReleaseTexture(tex)
	assert.Zero(t, d.TextureInternalResource(tex))
	assert.Equal(t, 0, d.TextureCount())
}

func TestClearAndDrawImage(t *testing.T) {
	d := NewDevice()
	target, err := d.CreateTexture(rgbaDesc(4, 2), nil)
	require.NoError(t, err)
	src, err := d.CreateTexture(rgbaDesc(1, 1), solid(1, 1, 255, 0, 0, 255))
	require.NoError(t, err)

	pass, err := d.CreateRenderPass(renderer.RenderPassDesc{Attachments: []renderer.RenderPassAttachment{{
		Texture:    target,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearColor: gputypes.Color{R: 0, G: 0, B: 1, A: 1},
	}}})
	require.NoError(t, err)

	cmd := d.BeginCommandList()
	d.EventBegin("ResizeTexture", cmd)
	d.BindViewport(renderer.Viewport{Width: 2, Height: 2}, cmd)
	d.RenderPassBegin(pass, cmd)
	d.DrawImage(src, renderer.FullScreenImage(), cmd)
	d.RenderPassEnd(cmd)
	d.EventEnd(cmd)
	require.NoError(t, d.SubmitCommandLists())

	img, ok := d.Image(target.ID())
	require.True(t, ok)
	// Left half is the drawn image, right half keeps the clear color.
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pix[0:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, img.Pix[12:16])
	assert.Equal(t, []string{"ResizeTexture"}, d.Events())
}

func TestSubmitReportsMisuse(t *testing.T) {
	d := NewDevice()
	src, err := d.CreateTexture(rgbaDesc(1, 1), nil)
	require.NoError(t, err)

	cmd := d.BeginCommandList()
	d.DrawImage(src, renderer.FullScreenImage(), cmd)
	assert.Error(t, d.SubmitCommandLists())

	// Lists are consumed even on failure.
	assert.NoError(t, d.SubmitCommandLists())
}

func TestCreateRenderPassUnknownTexture(t *testing.T) {
	d := NewDevice()
	_, err := d.CreateRenderPass(renderer.RenderPassDesc{Attachments: []renderer.RenderPassAttachment{{
		Texture: renderer.NewTexture(rgbaDesc(1, 1), 99),
	}}})
	assert.ErrorIs(t, err, ErrUnknownTexture)

	_, err = d.CreateRenderPass(renderer.RenderPassDesc{})
	assert.Error(t, err)
}

func TestNativeDeviceDistinctPerDevice(t *testing.T) {
	a, b := NewDevice(), NewDevice()
	assert.NotZero(t, a.NativeDevice().Device)
	assert.NotEqual(t, a.NativeDevice().Device, b.NativeDevice().Device)
}

func TestSceneDrawerDrawsObjectAtCenter(t *testing.T) {
	d := NewDevice()
	cam := camera.NewCamera(camera.WithEye(0, 0, -5), camera.WithSize(64, 64))
	s := scene.NewScene("test", scene.WithObjects(
		game_object.NewGameObject(game_object.WithPosition(0, 0, 0), game_object.WithColor(1, 0, 0, 1)),
	))

	tex, err := NewSceneDrawer().Draw(renderer.DrawContext{
		Device:     d,
		Scene:      s,
		Camera:     cam,
		Width:      64,
		Height:     64,
		ClearColor: gputypes.Color{A: 1},
	})
	require.NoError(t, err)
	require.True(t, tex.Valid())

	img, ok := d.Image(tex.ID())
	require.True(t, ok)
	c := img.RGBAAt(32, 32)
	assert.Greater(t, c.R, uint8(200))
	assert.Less(t, c.G, uint8(50))
}

func TestRenderPathWithSceneDrawer(t *testing.T) {
	d := NewDevice()
	path := renderer.NewRenderPath3D(d, renderer.WithDrawer(NewSceneDrawer()))
	path.SetScene(scene.NewScene("test"))
	path.SetCamera(camera.NewCamera())
	path.SetSize(32, 16)
	path.ResizeBuffers()

	path.PreUpdate()
	path.Update(0.016)
	path.PostUpdate()
	path.Render()

	rt := path.LastPostprocessRT()
	require.True(t, rt.Valid())
	assert.Equal(t, uint32(32), rt.Desc.Width)
	assert.Equal(t, uint32(16), rt.Desc.Height)

	path.Render()
	assert.Equal(t, 1, d.TextureCount())

	path.Release()
	assert.Equal(t, 0, d.TextureCount())
}
