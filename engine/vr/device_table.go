package vr

import "github.com/Carmen-Shannon/oxy-vr/common"

type deviceSlot struct {
	transform [16]float32
	valid     bool
	class     TrackedDeviceClass
	classSeen bool
}

// DeviceTable caches converted device transforms, keyed by device index.
// A slot is written only from a valid, connected pose; its class is read from the
// runtime the first time the device is seen and kept until Reset or Forget.
type DeviceTable struct {
	slots [MaxTrackedDeviceCount]deviceSlot
}

// Update replaces the table contents from one frame of poses.
// Slots of invalid or disconnected devices keep their last transform but are marked not valid.
//
// Parameters:
//   - poses: the frame's poses, indexed by device
//   - connected: reports whether a device is connected
//   - classify: reads a device's class; called at most once per device until Forget or Reset
//
// Returns:
//   - int: the number of devices updated this frame
//   - string: one class character per updated device, in index order
func (t *DeviceTable) Update(poses []TrackedDevicePose, connected func(uint32) bool, classify func(uint32) TrackedDeviceClass) (int, string) {
	count := 0
	classes := make([]byte, 0, 4)
	for i := range t.slots {
		t.slots[i].valid = false
		if i >= len(poses) || !poses[i].PoseIsValid {
			continue
		}
		idx := uint32(i)
		if !connected(idx) {
			continue
		}

		slot := &t.slots[i]
		slot.transform = ConvertPose(poses[i].DeviceToAbsoluteTracking)
		slot.valid = true
		if !slot.classSeen {
			slot.class = classify(idx)
			slot.classSeen = true
		}
		count++
		classes = append(classes, slot.class.Char())
	}
	return count, string(classes)
}

// Transform returns the last transform written for a device.
//
// Parameters:
//   - device: the device index
//
// Returns:
//   - [16]float32: the transform, identity if the device was never seen
//   - bool: true if the transform was updated by the latest Update
func (t *DeviceTable) Transform(device uint32) ([16]float32, bool) {
	if device >= MaxTrackedDeviceCount {
		return common.IdentityMatrix(), false
	}
	s := t.slots[device]
	if s.transform == ([16]float32{}) {
		return common.IdentityMatrix(), s.valid
	}
	return s.transform, s.valid
}

// Class returns the cached class of a device.
//
// Returns:
//   - TrackedDeviceClass: the class
//   - bool: false if the device has not been classified yet
func (t *DeviceTable) Class(device uint32) (TrackedDeviceClass, bool) {
	if device >= MaxTrackedDeviceCount {
		return TrackedDeviceClassInvalid, false
	}
	return t.slots[device].class, t.slots[device].classSeen
}

// Forget drops the cached class of a device so it is reclassified on next sight.
func (t *DeviceTable) Forget(device uint32) {
	if device >= MaxTrackedDeviceCount {
		return
	}
	t.slots[device].classSeen = false
	t.slots[device].class = TrackedDeviceClassInvalid
}

// Reset clears every slot.
func (t *DeviceTable) Reset() {
	t.slots = [MaxTrackedDeviceCount]deviceSlot{}
}
