package vr

import "math"

// Controller identifies a touchpad side or a button.
type Controller int

const (
	ControllerNone Controller = iota
	TouchpadLeft
	TouchpadRight
	ButtonX
	ButtonY
	ButtonA
	ButtonB
	ButtonHome
	ButtonMenu
	ButtonTriggerLeftA
	ButtonTriggerLeftB
	ButtonTriggerRightA
	ButtonTriggerRightB
)

var controllerNames = [...]string{
	ControllerNone:      "None",
	TouchpadLeft:        "TouchpadLeft",
	TouchpadRight:       "TouchpadRight",
	ButtonX:             "ButtonX",
	ButtonY:             "ButtonY",
	ButtonA:             "ButtonA",
	ButtonB:             "ButtonB",
	ButtonHome:          "ButtonHome",
	ButtonMenu:          "ButtonMenu",
	ButtonTriggerLeftA:  "ButtonTriggerLeftA",
	ButtonTriggerLeftB:  "ButtonTriggerLeftB",
	ButtonTriggerRightA: "ButtonTriggerRightA",
	ButtonTriggerRightB: "ButtonTriggerRightB",
}

func (c Controller) String() string {
	if c < 0 || int(c) >= len(controllerNames) {
		return "Unknown"
	}
	return controllerNames[c]
}

const (
	// LeftControllerIndex and RightControllerIndex are the only device indices decoded.
	LeftControllerIndex  = 1
	RightControllerIndex = 2

	// AxisOutlierLimit zeroes axis components whose magnitude exceeds it.
	AxisOutlierLimit float32 = 0.7

	buttonIDPrimary   = 7
	buttonIDSecondary = 2
	buttonIDTrigger   = 33
)

// ControllerSnapshot is the normalized input of one decode.
type ControllerSnapshot struct {
	Side        Controller
	Button      Controller
	Axis        [2]float32
	ButtonState bool
}

// HasInput reports whether a button is pressed or the axis is off center.
// A side alone only says which controller was read.
func (s ControllerSnapshot) HasInput() bool {
	return s.ButtonState || s.Axis != [2]float32{}
}

// buttonMapping maps a runtime button id to its left and right hand identifiers.
type buttonMapping struct {
	id          uint
	left, right Controller
}

// Checked in order; a later match overrides an earlier one.
var buttonMappings = [...]buttonMapping{
	{id: buttonIDPrimary, left: ButtonX, right: ButtonA},
	{id: buttonIDSecondary, left: ButtonY, right: ButtonB},
	{id: buttonIDTrigger, left: ButtonTriggerLeftB, right: ButtonTriggerRightB},
}

// Decoder turns raw controller state into snapshots.
// Its working snapshot is reset to neutral after every decode, so the value
// returned by Decode is the only place the decoded input is observable.
type Decoder struct {
	state ControllerSnapshot
}

// Decode maps the raw state of one device into a snapshot.
// Devices other than LeftControllerIndex and RightControllerIndex yield the neutral snapshot.
//
// Parameters:
//   - state: the raw controller state
//   - device: the device index the state was read from
//
// Returns:
//   - ControllerSnapshot: the decoded input
func (d *Decoder) Decode(state ControllerState, device uint32) ControllerSnapshot {
	defer d.reset()

	if device != LeftControllerIndex && device != RightControllerIndex {
		return d.state
	}
	left := device == LeftControllerIndex

	if left {
		d.state.Side = TouchpadLeft
	} else {
		d.state.Side = TouchpadRight
	}

	if axis := state.Axis[0]; axis.X != 0 || axis.Y != 0 {
		d.state.Axis = [2]float32{clampOutlier(axis.X), clampOutlier(axis.Y)}
	}

	for _, m := range buttonMappings {
		if state.ButtonPressed&ButtonMaskFromID(m.id) == 0 {
			continue
		}
		d.state.ButtonState = true
		if left {
			d.state.Button = m.left
		} else {
			d.state.Button = m.right
		}
	}

	return d.state
}

// State returns the working snapshot, neutral outside of Decode.
func (d *Decoder) State() ControllerSnapshot {
	return d.state
}

func (d *Decoder) reset() {
	d.state = ControllerSnapshot{}
}

func clampOutlier(v float32) float32 {
	if float32(math.Abs(float64(v))) > AxisOutlierLimit {
		return 0
	}
	return v
}
