package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/Carmen-Shannon/oxy-vr/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the mirror window. Without one the engine runs headless.
//
// Parameters:
//   - w: an open Window, created on the goroutine that will call Run
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithMirror presents one eye of every rendered frame on m.
//
// Parameters:
//   - m: the presenting device, typically the renderer.MirrorDevice the session renders on
//   - eye: the eye to show
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMirror(m Mirror, eye vr.Eye) EngineBuilderOption {
	return func(e *engine) {
		e.mirror = m
		e.mirrorOf = eye
	}
}

// WithScene sets the scene the session renders. Window resizes update its camera size.
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithVRSession sets the session the render goroutine drives.
//
// Parameters:
//   - s: an inactive session; Run starts it
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithVRSession(s vr.Session) EngineBuilderOption {
	return func(e *engine) {
		e.session = s
	}
}

// WithKeyboardController binds W/A/S/D and Q/E in the mirror window to cc.
func WithKeyboardController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.keyboard = cc
	}
}

// WithMaxFrames makes the engine quit after n rendered frames. 0 runs until quit.
//
// Parameters:
//   - n: the frame limit
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithLogger overrides the process logger.
func WithLogger(l *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = l
	}
}
