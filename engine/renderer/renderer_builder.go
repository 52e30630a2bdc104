package renderer

import "github.com/gogpu/gputypes"

// RenderPathBuilderOption is a functional option applied to a render path during construction via NewRenderPath3D.
type RenderPathBuilderOption func(*renderPath3D)

// WithDrawer sets the Drawer that produces each frame's image.
//
// Parameters:
//   - d: the drawer
//
// Returns:
//   - RenderPathBuilderOption: a function that applies the drawer option to a render path
func WithDrawer(d Drawer) RenderPathBuilderOption {
	return func(p *renderPath3D) {
		p.drawer = d
	}
}

// WithLabel names the render path in logs and texture labels.
//
// Parameters:
//   - label: the name
//
// Returns:
//   - RenderPathBuilderOption: a function that applies the label option to a render path
func WithLabel(label string) RenderPathBuilderOption {
	return func(p *renderPath3D) {
		p.label = label
	}
}

// WithClearColor sets the background color handed to the drawer.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RenderPathBuilderOption: a function that applies the clear color option to a render path
func WithClearColor(c gputypes.Color) RenderPathBuilderOption {
	return func(p *renderPath3D) {
		p.clearColor = c
	}
}
