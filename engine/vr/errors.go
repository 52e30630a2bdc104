package vr

import "errors"

var (
	// ErrRuntimeInit is returned by Start when the runtime fails to initialize.
	ErrRuntimeInit = errors.New("vr: runtime init failed")

	// ErrRenderModelUnavailable is returned by Start when the render model interface is missing.
	ErrRenderModelUnavailable = errors.New("vr: render model interface unavailable")

	// ErrCompositorUnavailable is logged at start when the runtime has no compositor.
	ErrCompositorUnavailable = errors.New("vr: compositor unavailable")

	// ErrCompositorPose is logged when waiting for poses fails; previous poses are kept.
	ErrCompositorPose = errors.New("vr: compositor pose wait failed")

	// ErrUnsupportedBackend is returned by NewSubmitter for backends without a submission path.
	ErrUnsupportedBackend = errors.New("vr: unsupported graphics backend")
)
