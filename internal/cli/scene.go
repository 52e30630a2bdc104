package cli

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/software"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
)

const (
	ringSize   = 8
	ringRadius = 2.0
	ringHeight = 1.5
	orbitSpeed = 0.5 // radians per second
)

// demoScene is a ring of coloured markers around the origin, viewed from 4 m back.
type demoScene struct {
	scn     scene.Scene
	cam     camera.Camera
	markers []game_object.GameObject

	mu    *sync.Mutex
	angle float64
}

func newDemoScene() *demoScene {
	d := &demoScene{
		cam: camera.NewCamera(camera.WithEye(0, 0, -4), camera.WithAt(0, 0, 0)),
		mu:  &sync.Mutex{},
	}
	d.scn = scene.NewScene("demo", scene.WithCamera(d.cam))
	for i := range ringSize {
		t := float64(i) / ringSize
		obj := game_object.NewGameObject(
			game_object.WithScale(0.3, 0.3, 0.3),
			game_object.WithRotationSpeed(0, 1, 0),
			game_object.WithColor(0.5+0.5*math.Cos(2*math.Pi*t), 0.5+0.5*math.Sin(2*math.Pi*t), 0.8, 1),
		)
		d.scn.Add(obj)
		d.markers = append(d.markers, obj)
	}
	d.place()
	return d
}

// Tick advances the ring. It runs on the engine tick goroutine.
func (d *demoScene) Tick(dt float32) {
	d.mu.Lock()
	d.angle = math.Mod(d.angle+orbitSpeed*float64(dt), 2*math.Pi)
	d.mu.Unlock()
	d.place()
}

func (d *demoScene) place() {
	d.mu.Lock()
	angle := d.angle
	d.mu.Unlock()
	for i, obj := range d.markers {
		a := angle + 2*math.Pi*float64(i)/ringSize
		obj.SetPosition([3]float32{
			float32(ringRadius * math.Cos(a)),
			ringHeight,
			float32(ringRadius * math.Sin(a)),
		})
	}
}

// eyePaths builds eye render paths that rasterize the scene with the software drawer.
func eyePaths(device renderer.GraphicsDevice, eye vr.Eye) renderer.RenderPath {
	return renderer.NewRenderPath3D(device,
		renderer.WithLabel("VR "+eye.String()),
		renderer.WithDrawer(software.NewSceneDrawer()),
	)
}
