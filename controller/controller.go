// Package controller samples the console's standard controller.
package controller

import emucore "github.com/user-none/nesplay/api"

// Button identifies one controller input. The console buttons double as
// their bit position in the sampled bitmask; the pacing modifiers sit
// above bit 7 and never reach the console.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight

	// FastForward and SlowMotion alter pacing only.
	FastForward
	SlowMotion
)

var buttonNames = [...]string{
	ButtonA:      "A",
	ButtonB:      "B",
	ButtonSelect: "Select",
	ButtonStart:  "Start",
	ButtonUp:     "Up",
	ButtonDown:   "Down",
	ButtonLeft:   "Left",
	ButtonRight:  "Right",
	FastForward:  "FastForward",
	SlowMotion:   "SlowMotion",
}

// String returns the button name used in config files.
func (b Button) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return "Unknown"
	}
	return buttonNames[b]
}

// ParseButton converts a config name back into a Button.
func ParseButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), true
		}
	}
	return 0, false
}

// Buttons lists every input in declaration order.
func Buttons() []Button {
	out := make([]Button, len(buttonNames))
	for i := range out {
		out[i] = Button(i)
	}
	return out
}

// State is the live controller state. Host input events mutate it at any
// time; the frame driver only reads it. Not safe for concurrent use.
type State struct {
	A, B          bool
	Select, Start bool
	Up, Down      bool
	Left, Right   bool

	FastForward bool
	SlowMotion  bool
}

// Set updates a single button.
func (s *State) Set(b Button, down bool) {
	switch b {
	case ButtonA:
		s.A = down
	case ButtonB:
		s.B = down
	case ButtonSelect:
		s.Select = down
	case ButtonStart:
		s.Start = down
	case ButtonUp:
		s.Up = down
	case ButtonDown:
		s.Down = down
	case ButtonLeft:
		s.Left = down
	case ButtonRight:
		s.Right = down
	case FastForward:
		s.FastForward = down
	case SlowMotion:
		s.SlowMotion = down
	}
}

// Pressed reports whether a button is held.
func (s *State) Pressed(b Button) bool {
	switch b {
	case ButtonA:
		return s.A
	case ButtonB:
		return s.B
	case ButtonSelect:
		return s.Select
	case ButtonStart:
		return s.Start
	case ButtonUp:
		return s.Up
	case ButtonDown:
		return s.Down
	case ButtonLeft:
		return s.Left
	case ButtonRight:
		return s.Right
	case FastForward:
		return s.FastForward
	case SlowMotion:
		return s.SlowMotion
	}
	return false
}

// Bits projects the eight console buttons into the controller shift
// register order, bit 7 to bit 0: Right, Left, Down, Up, Start, Select, B, A.
func (s *State) Bits() uint8 {
	var bits uint8
	if s.Right {
		bits |= 0x80
	}
	if s.Left {
		bits |= 0x40
	}
	if s.Down {
		bits |= 0x20
	}
	if s.Up {
		bits |= 0x10
	}
	if s.Start {
		bits |= 0x08
	}
	if s.Select {
		bits |= 0x04
	}
	if s.B {
		bits |= 0x02
	}
	if s.A {
		bits |= 0x01
	}
	return bits
}

// Buttons returns the console buttons as an array in bit order (A first),
// the shape in-process cores read when the game strobes the controller.
func (s *State) Buttons() [8]bool {
	return [8]bool{s.A, s.B, s.Select, s.Start, s.Up, s.Down, s.Left, s.Right}
}

// Period returns the logical frame period in milliseconds selected by the
// pacing modifiers. FastForward wins when both are held.
func (s *State) Period() float64 {
	switch {
	case s.FastForward:
		return 1000.0 / emucore.FastForwardFPS
	case s.SlowMotion:
		return 1000.0 / emucore.SlowMotionFPS
	}
	return 1000.0 / emucore.NormalFPS
}

// Reset releases every button and modifier.
func (s *State) Reset() {
	*s = State{}
}
