package simvr

// RuntimeOption is a functional option applied to a runtime during construction via NewRuntime.
type RuntimeOption func(*runtimeImpl)

// WithRecommendedSize sets the per-eye render target size.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - RuntimeOption: a function that applies the size option to a runtime
func WithRecommendedSize(width, height uint32) RuntimeOption {
	return func(r *runtimeImpl) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithIPD sets the interpupillary distance in meters.
func WithIPD(ipd float32) RuntimeOption {
	return func(r *runtimeImpl) {
		if ipd >= 0 {
			r.ipd = ipd
		}
	}
}

// WithFov sets the vertical field of view in degrees.
func WithFov(degrees float32) RuntimeOption {
	return func(r *runtimeImpl) {
		if degrees > 0 && degrees < 180 {
			r.fovY = degrees
		}
	}
}

// WithInitError makes Init fail with err.
//
// Parameters:
//   - err: the error Init returns
//
// Returns:
//   - RuntimeOption: a function that applies the init error option to a runtime
func WithInitError(err error) RuntimeOption {
	return func(r *runtimeImpl) {
		r.initErr = err
	}
}

// WithoutRenderModels makes RenderModels return nil.
func WithoutRenderModels() RuntimeOption {
	return func(r *runtimeImpl) {
		r.noRenderModels = true
	}
}

// WithoutCompositor makes Compositor return nil.
func WithoutCompositor() RuntimeOption {
	return func(r *runtimeImpl) {
		r.noCompositor = true
	}
}

// WithPoseError makes every pose wait fail with err.
func WithPoseError(err error) RuntimeOption {
	return func(r *runtimeImpl) {
		r.poseErr = err
	}
}

// WithInputScript replaces DefaultInputScript. A nil script leaves every controller neutral.
//
// Parameters:
//   - script: the controller state source
//
// Returns:
//   - RuntimeOption: a function that applies the input script option to a runtime
func WithInputScript(script InputScript) RuntimeOption {
	return func(r *runtimeImpl) {
		r.script = script
	}
}

// WithOnSubmit registers a callback for every accepted eye image.
// It runs on the submitting goroutine without the runtime lock held.
func WithOnSubmit(f func(Submission)) RuntimeOption {
	return func(r *runtimeImpl) {
		r.onSubmit = f
	}
}

// WithTrackingSystem sets the tracking system name and headset serial number.
//
// Parameters:
//   - name: the tracking system name
//   - serial: the headset serial number
//
// Returns:
//   - RuntimeOption: a function that applies the tracking system option to a runtime
func WithTrackingSystem(name, serial string) RuntimeOption {
	return func(r *runtimeImpl) {
		r.trackingName = name
		r.serial = serial
	}
}
