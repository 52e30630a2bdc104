package vr

const (
	// MaxTrackedDeviceCount bounds the tracked device index space.
	MaxTrackedDeviceCount = 64

	// HmdDeviceIndex is the device index of the headset.
	HmdDeviceIndex = 0

	// ProjectionNear and ProjectionFar are the clip distances passed to the runtime for
	// the eye projections. The pair is reversed on purpose for a reversed-depth buffer.
	ProjectionNear float32 = 1000
	ProjectionFar  float32 = 0.1

	// EyeResolutionScale is the internal render scale of each eye's render path.
	EyeResolutionScale float32 = 0.75
)

// HmdMatrix34 is the runtime's row-major 3x4 affine transform.
type HmdMatrix34 struct {
	M [3][4]float32
}

// HmdMatrix44 is the runtime's row-major 4x4 matrix.
type HmdMatrix44 struct {
	M [4][4]float32
}

// Eye selects one of the two displays.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

func (e Eye) String() string {
	if e == EyeLeft {
		return "left"
	}
	return "right"
}

// TrackedDeviceClass is the category of a tracked object.
type TrackedDeviceClass int

const (
	TrackedDeviceClassInvalid TrackedDeviceClass = iota
	TrackedDeviceClassHMD
	TrackedDeviceClassController
	TrackedDeviceClassGenericTracker
	TrackedDeviceClassTrackingReference
	TrackedDeviceClassDisplayRedirect
)

// Char returns the one-letter tag used in pose class strings.
func (c TrackedDeviceClass) Char() byte {
	switch c {
	case TrackedDeviceClassController:
		return 'C'
	case TrackedDeviceClassHMD:
		return 'H'
	case TrackedDeviceClassInvalid:
		return 'I'
	case TrackedDeviceClassGenericTracker:
		return 'G'
	case TrackedDeviceClassTrackingReference:
		return 'T'
	default:
		return '?'
	}
}

// TrackedDevicePose is the runtime's per-device pose record.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking HmdMatrix34
	PoseIsValid              bool
	DeviceIsConnected        bool
}

// ControllerAxis is one analog axis pair of a controller.
type ControllerAxis struct {
	X, Y float32
}

// ControllerState is the raw per-device input state.
type ControllerState struct {
	PacketNum     uint32
	ButtonPressed uint64
	ButtonTouched uint64
	Axis          [5]ControllerAxis
}

// ButtonMaskFromID returns the ButtonPressed bit of a runtime button id.
func ButtonMaskFromID(id uint) uint64 {
	return 1 << id
}

// TrackedDeviceProperty names a string property of a tracked device.
type TrackedDeviceProperty int

const (
	PropTrackingSystemName TrackedDeviceProperty = iota + 1
	PropSerialNumber
)

// TextureType tags the backend of a submitted texture.
type TextureType int

const (
	TextureTypeInvalid TextureType = iota
	TextureTypeDirectX12
	TextureTypeVulkan
)

// ColorSpace of a submitted texture.
type ColorSpace int

const (
	ColorSpaceAuto ColorSpace = iota
	ColorSpaceGamma
	ColorSpaceLinear
)

// SubmitFlags modify a compositor submission.
type SubmitFlags uint32

const SubmitDefault SubmitFlags = 0

// TextureBounds is the sub-rectangle of a submitted texture, in UV space.
type TextureBounds struct {
	UMin, VMin, UMax, VMax float32
}

// FullTextureBounds covers the whole texture.
var FullTextureBounds = TextureBounds{UMin: 0, VMin: 0, UMax: 1, VMax: 1}

// CompositorTexture is one eye image handed to the compositor.
// Handle holds a *D3D12TextureData or *VulkanTextureData matching Type.
type CompositorTexture struct {
	Handle     any
	Type       TextureType
	ColorSpace ColorSpace
}

// D3D12TextureData describes a DirectX 12 eye image.
type D3D12TextureData struct {
	Resource     uint64
	CommandQueue uint64
	NodeMask     uint32
}

// VkFormatR8G8B8A8Unorm is VK_FORMAT_R8G8B8A8_UNORM.
const VkFormatR8G8B8A8Unorm uint32 = 37

// VulkanTextureData describes a Vulkan eye image.
type VulkanTextureData struct {
	Image            uint64
	Device           uint64
	PhysicalDevice   uint64
	Instance         uint64
	Queue            uint64
	QueueFamilyIndex uint32
	Width            uint32
	Height           uint32
	Format           uint32
	SampleCount      uint32
}

// EventType identifies a runtime event.
type EventType int

const (
	EventNone EventType = iota
	EventTrackedDeviceActivated
	EventTrackedDeviceDeactivated
	EventEnterStandbyMode
	EventLeaveStandbyMode
	EventFocusEnter
	EventFocusLeave
)

func (t EventType) String() string {
	switch t {
	case EventTrackedDeviceActivated:
		return "device activated"
	case EventTrackedDeviceDeactivated:
		return "device deactivated"
	case EventEnterStandbyMode:
		return "enter standby mode"
	case EventLeaveStandbyMode:
		return "leave standby mode"
	case EventFocusEnter:
		return "focus entered"
	case EventFocusLeave:
		return "focus left"
	default:
		return "none"
	}
}

// Event is a runtime notification drained once per frame.
type Event struct {
	Type        EventType
	DeviceIndex uint32
}
