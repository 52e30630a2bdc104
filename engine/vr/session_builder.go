package vr

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"go.opentelemetry.io/otel/trace"
)

// SessionBuilderOption is a functional option applied to a session during construction via NewSession.
type SessionBuilderOption func(*sessionImpl)

// WithRenderPathFactory sets how each eye's render path is built.
//
// Parameters:
//   - f: the factory, called once per eye when the rig is first created
//
// Returns:
//   - SessionBuilderOption: a function that applies the factory option to a session
func WithRenderPathFactory(f RenderPathFactory) SessionBuilderOption {
	return func(s *sessionImpl) {
		if f != nil {
			s.pathFactory = f
		}
	}
}

// WithTracerProvider sets the provider of the frame and eye spans.
//
// Parameters:
//   - tp: the tracer provider
//
// Returns:
//   - SessionBuilderOption: a function that applies the tracer option to a session
func WithTracerProvider(tp trace.TracerProvider) SessionBuilderOption {
	return func(s *sessionImpl) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLogger overrides the process logger for this session.
func WithLogger(l *slog.Logger) SessionBuilderOption {
	return func(s *sessionImpl) {
		s.logger = l
	}
}

// WithLocomotion moves the rig's world transform from touchpad input.
// The left pad pans along the ground plane, the right pad's x axis turns.
// The controller is reset to the scene camera's world transform at Start.
//
// Parameters:
//   - cc: the controller holding the rig's world transform
//
// Returns:
//   - SessionBuilderOption: a function that applies the locomotion option to a session
func WithLocomotion(cc camera.CameraController) SessionBuilderOption {
	return func(s *sessionImpl) {
		s.locomotion = cc
	}
}

// WithControllerHandler registers a callback for decoded controller input.
// It runs on the render goroutine during Render.
//
// Parameters:
//   - h: the handler
//
// Returns:
//   - SessionBuilderOption: a function that applies the handler option to a session
func WithControllerHandler(h ControllerHandler) SessionBuilderOption {
	return func(s *sessionImpl) {
		s.onInput = h
	}
}
