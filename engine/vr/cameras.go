package vr

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
)

// ensureCameras creates the eye camera pair when either handle is invalid or neither
// entity still carries a camera. Otherwise it does nothing. Caller must hold the mutex.
func (s *sessionImpl) ensureCameras() {
	cams := s.scn.Cameras()
	left, right := s.entities[EyeLeft], s.entities[EyeRight]
	if left != scene.InvalidEntity && right != scene.InvalidEntity && (cams.Contains(left) || cams.Contains(right)) {
		return
	}

	// Drop a half-built pair so it is not leaked.
	s.removeCameras()

	for _, eye := range [...]Eye{EyeLeft, EyeRight} {
		e := s.scn.CreateEntity()
		cam := cams.Create(e, camera.NewCamera(
			camera.WithSize(float32(s.width), float32(s.height)),
		))
		s.entities[eye] = e

		if s.paths[eye] == nil {
			s.paths[eye] = s.pathFactory(s.device, eye)
		}
		path := s.paths[eye]
		path.SetScene(s.scn)
		path.SetCamera(cam)
		path.SetSize(s.width, s.height)
		path.SetResolutionScale(EyeResolutionScale)
		path.ResizeBuffers()
	}
	s.log().Debug("[VR] eye cameras created", "left", s.entities[EyeLeft], "right", s.entities[EyeRight])
}

// removeCameras removes both eye entities if they exist and invalidates their handles.
// Caller must hold the mutex.
func (s *sessionImpl) removeCameras() {
	for eye, e := range s.entities {
		if e == scene.InvalidEntity {
			continue
		}
		s.scn.RemoveEntity(e)
		s.entities[eye] = scene.InvalidEntity
	}
}
