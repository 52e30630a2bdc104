package vr

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/gogpu/gputypes"
)

// TextureResolver exposes the native handles a submitter needs. renderer.GraphicsDevice satisfies it.
type TextureResolver interface {
	TextureInternalResource(t renderer.Texture) uint64
	NativeDevice() renderer.NativeDevice
}

// Submitter hands a frame's two eye images to the compositor in a backend-specific form.
type Submitter interface {
	// Submit sends each valid eye texture with full bounds and then signals the present handoff.
	//
	// Parameters:
	//   - c: the compositor
	//   - left, right: the eye images; invalid textures are skipped
	//
	// Returns:
	//   - int: the number of eye images the compositor accepted
	Submit(c Compositor, left, right renderer.Texture) int

	// TextureType returns the compositor texture type this submitter produces.
	TextureType() TextureType
}

// NewSubmitter selects the submission path for a graphics backend.
//
// Parameters:
//   - backend: the device backend
//   - res: resolves textures and device handles
//
// Returns:
//   - Submitter: the DirectX 12 or Vulkan submitter
//   - error: ErrUnsupportedBackend for any other backend
func NewSubmitter(backend gputypes.Backend, res TextureResolver) (Submitter, error) {
	switch backend {
	case gputypes.BackendDX12:
		return &d3d12Submitter{res: res}, nil
	case gputypes.BackendVulkan:
		return &vulkanSubmitter{res: res}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, backend)
	}
}

// submitEyes submits both eyes through build and hands off. Caller-provided build returns the texture for an eye.
func submitEyes(c Compositor, left, right renderer.Texture, flags SubmitFlags, build func(renderer.Texture) CompositorTexture) int {
	submitted := 0
	for _, e := range [...]struct {
		eye Eye
		tex renderer.Texture
	}{{EyeLeft, left}, {EyeRight, right}} {
		if !e.tex.Valid() {
			continue
		}
		if err := c.Submit(e.eye, build(e.tex), FullTextureBounds, flags); err != nil {
			common.Logger().Warn("[VR] compositor rejected eye image", "eye", e.eye.String(), "err", err)
			continue
		}
		submitted++
	}
	c.PostPresentHandoff()
	return submitted
}

type d3d12Submitter struct {
	res TextureResolver
}

func (s *d3d12Submitter) Submit(c Compositor, left, right renderer.Texture) int {
	queue := s.res.NativeDevice().Queue
	return submitEyes(c, left, right, SubmitDefault, func(t renderer.Texture) CompositorTexture {
		return CompositorTexture{
			Handle: &D3D12TextureData{
				Resource:     s.res.TextureInternalResource(t),
				CommandQueue: queue,
				NodeMask:     0,
			},
			Type:       TextureTypeDirectX12,
			ColorSpace: ColorSpaceGamma,
		}
	})
}

func (s *d3d12Submitter) TextureType() TextureType { return TextureTypeDirectX12 }

type vulkanSubmitter struct {
	res TextureResolver
}

// Submit shares the device handles between both eyes; the image size is taken from the left eye.
func (s *vulkanSubmitter) Submit(c Compositor, left, right renderer.Texture) int {
	native := s.res.NativeDevice()
	base := VulkanTextureData{
		Device:           native.Device,
		PhysicalDevice:   native.PhysicalDevice,
		Instance:         native.Instance,
		Queue:            native.Queue,
		QueueFamilyIndex: native.QueueFamilyIndex,
		Width:            left.Desc.Width,
		Height:           left.Desc.Height,
		Format:           VkFormatR8G8B8A8Unorm,
		SampleCount:      0,
	}
	return submitEyes(c, left, right, SubmitDefault, func(t renderer.Texture) CompositorTexture {
		data := base
		data.Image = s.res.TextureInternalResource(t)
		return CompositorTexture{
			Handle:     &data,
			Type:       TextureTypeVulkan,
			ColorSpace: ColorSpaceGamma,
		}
	})
}

func (s *vulkanSubmitter) TextureType() TextureType { return TextureTypeVulkan }
