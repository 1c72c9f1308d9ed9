package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/nesplay/controller"
)

// padBindings maps the first standard-layout gamepad onto the controller.
var padBindings = map[controller.Button]ebiten.StandardGamepadButton{
	controller.ButtonA:      ebiten.StandardGamepadButtonRightBottom,
	controller.ButtonB:      ebiten.StandardGamepadButtonRightLeft,
	controller.ButtonSelect: ebiten.StandardGamepadButtonCenterLeft,
	controller.ButtonStart:  ebiten.StandardGamepadButtonCenterRight,
	controller.ButtonUp:     ebiten.StandardGamepadButtonLeftTop,
	controller.ButtonDown:   ebiten.StandardGamepadButtonLeftBottom,
	controller.ButtonLeft:   ebiten.StandardGamepadButtonLeftLeft,
	controller.ButtonRight:  ebiten.StandardGamepadButtonLeftRight,
	controller.FastForward:  ebiten.StandardGamepadButtonFrontTopRight,
	controller.SlowMotion:   ebiten.StandardGamepadButtonFrontTopLeft,
}

const stickThreshold = 0.25

// stickButtons turns left stick deflection into d-pad presses.
func stickButtons(x, y float64) []controller.Button {
	var out []controller.Button
	if x < -stickThreshold {
		out = append(out, controller.ButtonLeft)
	} else if x > stickThreshold {
		out = append(out, controller.ButtonRight)
	}
	if y < -stickThreshold {
		out = append(out, controller.ButtonUp)
	} else if y > stickThreshold {
		out = append(out, controller.ButtonDown)
	}
	return out
}

// pollInput samples keyboard and the first gamepad into state.
func pollInput(state *controller.State, km Keymap) {
	state.Reset()

	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) > 0 && ebiten.IsStandardGamepadLayoutAvailable(ids[0]) {
		id := ids[0]
		for b, btn := range padBindings {
			if ebiten.IsStandardGamepadButtonPressed(id, btn) {
				state.Set(b, true)
			}
		}
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		for _, b := range stickButtons(x, y) {
			state.Set(b, true)
		}
	}

	km.Apply(state, ebiten.IsKeyPressed)
}
