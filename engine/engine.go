package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/scene"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/Carmen-Shannon/oxy-vr/engine/window"
)

var (
	// ErrAlreadyRun is returned by Run on an engine that has been run before.
	ErrAlreadyRun = errors.New("engine: already run")
	// ErrRenderPanic wraps a panic recovered in the render goroutine.
	ErrRenderPanic = errors.New("engine: render panic")
)

// idleBackoff is how long the render goroutine sleeps while the VR session is inactive.
const idleBackoff = 10 * time.Millisecond

// Mirror presents an eye image on a desktop surface. renderer.MirrorDevice satisfies it.
type Mirror interface {
	ConfigureSurface(width, height int)
	Present(tex renderer.Texture) error
}

// engine implements the Engine interface.
// Coordinates the tick, render and window goroutines.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	started atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	mirror   Mirror
	mirrorOf vr.Eye
	keyboard camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scene   scene.Scene
	session vr.Session
	logger  *slog.Logger

	maxFrames uint64
	frames    atomic.Uint64

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	errMu *sync.Mutex
	err   error
}

// Engine drives a VR session: a fixed-rate tick goroutine for application logic, a render
// goroutine that is the only caller of Session.Render, and an optional mirror window on the
// calling goroutine.
type Engine interface {
	// Window returns the mirror window, nil when running headless.
	Window() window.Window

	// Session returns the VR session, nil if none was configured.
	Session() vr.Session

	// Scene returns the scene the session renders.
	Scene() scene.Scene

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for application logic.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Must be set before Run.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	// Must be set before Run.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default). Must be set before Run.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of VR frames rendered so far.
	Frames() uint64

	// ToggleSession stops an active session or starts an inactive one.
	//
	// Parameters:
	//   - ctx: bounds runtime initialization when starting
	//
	// Returns:
	//   - error: the Start error, if any
	ToggleSession(ctx context.Context) error

	// Run starts the session and the engine goroutines and blocks until the engine quits:
	// on Quit, when ctx is done, when the mirror window closes, or after the frame limit.
	// The session is stopped before Run returns.
	//
	// Parameters:
	//   - ctx: the engine lifetime
	//
	// Returns:
	//   - error: a session start error, a recovered render panic (ErrRenderPanic), or nil
	Run(ctx context.Context) error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (session, window, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		mirrorOf:        vr.EyeLeft,
		errMu:           &sync.Mutex{},
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.handleResize)
		e.window.SetKeyDownCallback(e.handleKey)
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				_ = e.window.Close()
			default:
			}
		})
	}

	return e
}

func (e *engine) log() *slog.Logger {
	return common.Coalesce(e.logger, common.Logger())
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Session() vr.Session {
	return e.session
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer func() {
		if e.session != nil {
			e.session.Stop()
		}
	}()

	if e.session != nil {
		if err := e.session.Start(ctx); err != nil {
			e.signalQuit()
			return fmt.Errorf("engine: start session: %w", err)
		}
		if e.mirror != nil && e.window != nil {
			e.mirror.ConfigureSurface(e.window.Width(), e.window.Height())
		}
	}

	e.running.Store(true)
	e.log().Info("[Engine] running", "tick_rate", e.engineTickRate, "max_frames", e.maxFrames, "mirror", e.window != nil)
	e.handle(ctx)

	if e.window != nil {
		// The window loop must run on the goroutine that created the window.
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()

	e.log().Info("[Engine] stopped", "frames", e.frames.Load())
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the tick, render and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle(ctx context.Context) {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender(ctx)
	go e.handleQuit(ctx)
}

// handleEngine runs the fixed-rate tick loop.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop.
// Recovers from panics so a bad frame does not crash the process, records the panic and quits.
func (e *engine) handleRender(ctx context.Context) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log().Error("[Engine] render goroutine recovered from panic", "panic", r)
			e.setErr(fmt.Errorf("%w: %v", ErrRenderPanic, r))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		rendered := e.renderFrame(ctx, dt)

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if rendered {
			n := e.frames.Add(1)
			if e.maxFrames > 0 && n >= e.maxFrames {
				e.log().Info("[Engine] frame limit reached", "frames", n)
				e.signalQuit()
				return
			}
		}

		// Frame rate limiting
		limit := e.renderFrameLimit
		if !rendered {
			limit = max(limit, idleBackoff)
		}
		if limit > 0 {
			if remaining := limit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame renders one VR frame and mirrors it. Reports whether a frame was rendered.
func (e *engine) renderFrame(ctx context.Context, dt float32) bool {
	if e.session == nil || !e.session.IsActive() {
		return false
	}
	e.session.Render(ctx, dt)

	if e.profilingEnabled.Load() {
		e.profiler.Record(e.session.LastFrame())
		e.profiler.Tick()
	}

	if e.mirror != nil {
		if tex := e.session.EyeTexture(e.mirrorOf); tex.Valid() {
			if err := e.mirror.Present(tex); err != nil {
				e.log().Warn("[Engine] mirror present failed", "error", err)
			}
		}
	}
	return true
}

// handleQuit blocks until the quit channel is closed or the context is done.
func (e *engine) handleQuit(ctx context.Context) {
	defer e.wg.Done()
	select {
	case <-e.quitChannel:
	case <-ctx.Done():
		e.log().Info("[Engine] context done", "cause", context.Cause(ctx))
		e.signalQuit()
	}
}

func (e *engine) setErr(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

// handleResize keeps the mirror surface and the desktop camera aspect in step with the window.
func (e *engine) handleResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.mirror != nil {
		e.mirror.ConfigureSurface(width, height)
	}
	if e.scene == nil {
		return
	}
	if cam := e.scene.Camera(); cam != nil {
		cam.SetSize(float32(width), float32(height))
	}
}

// handleKey maps desktop keys: W/A/S/D pan and Q/E turn the keyboard controller,
// V toggles the session and P toggles the profiler.
func (e *engine) handleKey(keyCode uint32) {
	const step = 1.0 / 30
	switch keyCode {
	case common.KeyV:
		if err := e.ToggleSession(context.Background()); err != nil {
			e.log().Error("[Engine] session toggle failed", "error", err)
		}
		return
	case common.KeyP:
		if e.profilingEnabled.Load() {
			e.DisableProfiler()
		} else {
			e.EnableProfiler()
		}
		return
	}

	if e.keyboard == nil {
		return
	}
	switch keyCode {
	case common.KeyW:
		e.keyboard.PanForward(step)
	case common.KeyS:
		e.keyboard.PanForward(-step)
	case common.KeyD:
		e.keyboard.PanRight(step)
	case common.KeyA:
		e.keyboard.PanRight(-step)
	case common.KeyE:
		e.keyboard.Turn(step)
	case common.KeyQ:
		e.keyboard.Turn(-step)
	}
}

func (e *engine) ToggleSession(ctx context.Context) error {
	if e.session == nil {
		return nil
	}
	if e.session.IsActive() {
		e.session.Stop()
		e.log().Info("[Engine] session stopped")
		return nil
	}
	if err := e.session.Start(ctx); err != nil {
		return err
	}
	e.log().Info("[Engine] session started")
	return nil
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending update so the latest rate wins.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
