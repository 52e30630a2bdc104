package vr

import (
	"context"
	"errors"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FrameStats summarizes one Render call.
type FrameStats struct {
	Index         uint64
	EyesRendered  int
	EyesSubmitted int
	ValidPoses    int
	PoseClasses   string
	PoseError     bool
	Events        int
	Duration      time.Duration
}

func (s *sessionImpl) Render(ctx context.Context, dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "vr.frame", trace.WithAttributes(
		attribute.Int64("vr.frame.index", int64(s.frameIndex)),
	))
	defer span.End()

	stats := FrameStats{Index: s.frameIndex}

	s.ensureCameras()

	base := s.baseWorld()
	for _, eye := range [...]Eye{EyeLeft, EyeRight} {
		cam, ok := s.scn.Cameras().Get(s.entities[eye])
		if !ok {
			continue
		}
		cam.SetCustomProjectionEnabled(true)
		cam.SetProjection(s.projection[eye])
		cam.TransformCamera(s.eyeWorld(eye, base))
		cam.UpdateCamera()
		cam.SetDirty()
		s.renderEye(ctx, eye, dt)
		stats.EyesRendered++
	}

	if s.compositor != nil && s.submitter != nil {
		stats.EyesSubmitted = s.submitter.Submit(s.compositor, s.eyeTextures[EyeLeft], s.eyeTextures[EyeRight])
	}

	s.update(ctx, dt, &stats)

	stats.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("vr.eyes.rendered", stats.EyesRendered),
		attribute.Int("vr.eyes.submitted", stats.EyesSubmitted),
		attribute.Int("vr.poses.valid", stats.ValidPoses),
		attribute.String("vr.poses.classes", stats.PoseClasses),
	)
	if stats.PoseError {
		span.SetStatus(codes.Error, ErrCompositorPose.Error())
	}
	s.last = stats
	s.frameIndex++
}

// baseWorld is the world transform the headset moves in. Caller must hold the mutex.
func (s *sessionImpl) baseWorld() [16]float32 {
	if s.locomotion != nil {
		return s.locomotion.Transform()
	}
	if s.saved != nil {
		return s.saved.invView
	}
	return common.IdentityMatrix()
}

// eyeWorld composes eye offset, head pose and base world so the eye offset is applied
// first and the base world last. Caller must hold the mutex.
func (s *sessionImpl) eyeWorld(eye Eye, base [16]float32) [16]float32 {
	var headWorld, out [16]float32
	common.Mul4(headWorld[:], base[:], s.headPose[:])
	common.Mul4(out[:], headWorld[:], s.eyeOffset[eye][:])
	return out
}

// update polls input, waits for the next poses and drains runtime events.
// It runs once per Render, after submission. Caller must hold the mutex.
func (s *sessionImpl) update(ctx context.Context, dt float32, stats *FrameStats) {
	if !s.running || !s.hmdHeld {
		return
	}
	log := s.log()

	s.ensureCameras()

	s.pollControllers(dt)

	if s.compositor != nil {
		if err := s.compositor.WaitGetPoses(ctx, s.poses[:]); err != nil {
			stats.PoseError = true
			log.Error("[VR] error waiting for compositor pose", "err", errors.Join(ErrCompositorPose, err))
		} else {
			stats.ValidPoses, stats.PoseClasses = s.devices.Update(s.poses[:], s.rt.IsTrackedDeviceConnected, s.rt.TrackedDeviceClass)
			if head, valid := s.devices.Transform(HmdDeviceIndex); valid {
				s.headPose = head
			}
		}
	}

	for {
		ev, ok := s.rt.PollEvent()
		if !ok {
			break
		}
		stats.Events++
		switch ev.Type {
		case EventTrackedDeviceActivated:
			s.devices.Forget(ev.DeviceIndex)
			log.Info("[VR] device activated", "device", ev.DeviceIndex)
		case EventTrackedDeviceDeactivated:
			log.Info("[VR] device deactivated", "device", ev.DeviceIndex)
		default:
			log.Info("[VR] runtime event", "event", ev.Type.String())
		}
	}
}

// pollControllers decodes every device's input and latches the last snapshot carrying input.
// Caller must hold the mutex.
func (s *sessionImpl) pollControllers(dt float32) {
	latched := ControllerSnapshot{}
	for device := uint32(0); device < MaxTrackedDeviceCount; device++ {
		state, ok := s.rt.ControllerState(device)
		if !ok {
			continue
		}
		snap := s.decoder.Decode(state, device)
		if !snap.HasInput() {
			continue
		}
		latched = snap
		s.move(snap, dt)
		if s.onInput != nil {
			s.onInput(snap)
		}
	}

	s.inputMu.Lock()
	s.latched = latched
	s.inputMu.Unlock()
}

// move applies touchpad locomotion. Caller must hold the mutex.
func (s *sessionImpl) move(snap ControllerSnapshot, dt float32) {
	if s.locomotion == nil {
		return
	}
	switch snap.Side {
	case TouchpadLeft:
		speed := s.locomotion.PanSpeed() * dt
		s.locomotion.PanRight(snap.Axis[0] * speed)
		s.locomotion.PanForward(snap.Axis[1] * speed)
	case TouchpadRight:
		s.locomotion.Turn(snap.Axis[0] * s.locomotion.TurnSpeed() * dt)
	}
}
