package window

// WindowBuilderOption is a functional option for configuring a mirror window.
type WindowBuilderOption func(w *mirrorWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *mirrorWindow) {
		w.title = title
	}
}

// WithSize sets the requested window size. Non-positive values keep the default.
//
// Parameters:
//   - width, height: requested size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *mirrorWindow) {
		if width > 0 && height > 0 {
			w.width, w.height = width, height
		}
	}
}
