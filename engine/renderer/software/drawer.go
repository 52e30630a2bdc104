package software

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
)

const (
	gridHalfExtent = 10
	gridStep       = 1
	minClipW       = 0.05
)

// SceneDrawer rasterizes a scene on the CPU with gg: a ground grid on y = 0 and
// every enabled game object as a disc at its projected position.
type SceneDrawer struct {
	// GridColor is the color of the ground grid lines.
	GridColor gg.RGBA
	// LineWidth is the grid line width in pixels.
	LineWidth float64
}

var _ renderer.Drawer = &SceneDrawer{}

// NewSceneDrawer returns a SceneDrawer with a grey grid.
func NewSceneDrawer() *SceneDrawer {
	return &SceneDrawer{
		GridColor: gg.RGBA{R: 0.45, G: 0.45, B: 0.5, A: 1},
		LineWidth: 1,
	}
}

func (sd *SceneDrawer) Draw(ctx renderer.DrawContext) (renderer.Texture, error) {
	w, h := max(int(ctx.Width), 1), max(int(ctx.Height), 1)
	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.ClearWithColor(gg.RGBA{R: ctx.ClearColor.R, G: ctx.ClearColor.G, B: ctx.ClearColor.B, A: ctx.ClearColor.A})

	if ctx.Camera != nil {
		vp := ctx.Camera.ViewProjection()
		proj := ctx.Camera.Projection()
		if err := sd.drawGrid(dc, vp, float64(w), float64(h)); err != nil {
			return renderer.Texture{}, err
		}
		if ctx.Scene != nil {
			if err := sd.drawObjects(dc, ctx, vp, proj[5], float64(w), float64(h)); err != nil {
				return renderer.Texture{}, err
			}
		}
	}

	pixels := toRGBA(dc.Image())
	return ctx.Device.CreateTexture(renderer.TextureDesc{
		Width:  uint32(w),
		Height: uint32(h),
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
		Label:  ctx.Label,
	}, pixels.Pix)
}

func (sd *SceneDrawer) drawGrid(dc *gg.Context, vp [16]float32, w, h float64) error {
	dc.SetColor(sd.GridColor)
	dc.SetLineWidth(sd.LineWidth)
	for i := -gridHalfExtent; i <= gridHalfExtent; i += gridStep {
		f := float32(i)
		sd.segment(dc, vp, w, h, [3]float32{f, 0, -gridHalfExtent}, [3]float32{f, 0, gridHalfExtent})
		sd.segment(dc, vp, w, h, [3]float32{-gridHalfExtent, 0, f}, [3]float32{gridHalfExtent, 0, f})
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("software: stroke grid: %w", err)
	}
	return nil
}

// segment adds the visible part of a world-space line to the current path.
func (sd *SceneDrawer) segment(dc *gg.Context, vp [16]float32, w, h float64, a, b [3]float32) {
	ca, cb := clip(vp, a), clip(vp, b)
	if ca[3] < minClipW && cb[3] < minClipW {
		return
	}
	if ca[3] < minClipW {
		ca = clipToNear(cb, ca)
	} else if cb[3] < minClipW {
		cb = clipToNear(ca, cb)
	}
	ax, ay := toScreen(ca, w, h)
	bx, by := toScreen(cb, w, h)
	dc.MoveTo(ax, ay)
	dc.LineTo(bx, by)
}

func (sd *SceneDrawer) drawObjects(dc *gg.Context, ctx renderer.DrawContext, vp [16]float32, focal float32, w, h float64) error {
	var frustum common.Frustum
	if ctx.OcclusionCulling {
		frustum = common.ExtractFrustumFromMatrix(vp[:])
	}
	objects := ctx.Scene.Objects()
	for _, e := range objects.Entities() {
		obj, ok := objects.Get(e)
		if !ok || !obj.Enabled() {
			continue
		}
		scale := obj.Scale()
		extent := 0.5 * max(scale[0], scale[1], scale[2])
		if ctx.OcclusionCulling && !frustum.IntersectsSphere(obj.Position(), extent) {
			continue
		}
		c := clip(vp, obj.Position())
		if c[3] < minClipW {
			continue
		}
		x, y := toScreen(c, w, h)
		radius := float64(extent) * float64(focal) / float64(c[3]) * h / 2

		col := obj.Color()
		dc.SetRGBA(col[0], col[1], col[2], col[3])
		dc.DrawCircle(x, y, radius)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("software: fill object %d: %w", e, err)
		}
	}
	return nil
}

func clip(m [16]float32, p [3]float32) [4]float32 {
	return [4]float32{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
		m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15],
	}
}

// clipToNear moves out toward in until its w reaches minClipW.
func clipToNear(in, out [4]float32) [4]float32 {
	t := (in[3] - minClipW) / (in[3] - out[3])
	var r [4]float32
	for i := range r {
		r[i] = in[i] + (out[i]-in[i])*t
	}
	return r
}

func toScreen(c [4]float32, w, h float64) (float64, float64) {
	nx := float64(c[0] / c[3])
	ny := float64(c[1] / c[3])
	if math.IsNaN(nx) || math.IsNaN(ny) {
		return 0, 0
	}
	return (nx + 1) * 0.5 * w, (1 - ny) * 0.5 * h
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
