package standalone

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/nesplay/controller"
)

// Keymap binds each controller input to one or more keyboard keys.
type Keymap map[controller.Button][]ebiten.Key

// keyNameMap maps config key names to ebiten keys.
var keyNameMap = map[string]ebiten.Key{
	"A": ebiten.KeyA, "B": ebiten.KeyB, "C": ebiten.KeyC, "D": ebiten.KeyD,
	"E": ebiten.KeyE, "F": ebiten.KeyF, "G": ebiten.KeyG, "H": ebiten.KeyH,
	"I": ebiten.KeyI, "J": ebiten.KeyJ, "K": ebiten.KeyK, "L": ebiten.KeyL,
	"M": ebiten.KeyM, "N": ebiten.KeyN, "O": ebiten.KeyO, "P": ebiten.KeyP,
	"Q": ebiten.KeyQ, "R": ebiten.KeyR, "S": ebiten.KeyS, "T": ebiten.KeyT,
	"U": ebiten.KeyU, "V": ebiten.KeyV, "W": ebiten.KeyW, "X": ebiten.KeyX,
	"Y": ebiten.KeyY, "Z": ebiten.KeyZ,
	"0": ebiten.Key0, "1": ebiten.Key1, "2": ebiten.Key2, "3": ebiten.Key3,
	"4": ebiten.Key4, "5": ebiten.Key5, "6": ebiten.Key6, "7": ebiten.Key7,
	"8": ebiten.Key8, "9": ebiten.Key9,

	"Enter":      ebiten.KeyEnter,
	"Backspace":  ebiten.KeyBackspace,
	"Space":      ebiten.KeySpace,
	"Tab":        ebiten.KeyTab,
	"Shift":      ebiten.KeyShift,
	"Control":    ebiten.KeyControl,
	"Alt":        ebiten.KeyAlt,
	"Semicolon":  ebiten.KeySemicolon,
	"Comma":      ebiten.KeyComma,
	"Period":     ebiten.KeyPeriod,
	"Slash":      ebiten.KeySlash,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"[":          ebiten.KeyLeftBracket,
	"]":          ebiten.KeyRightBracket,
	"-":          ebiten.KeyMinus,
	"=":          ebiten.KeyEqual,
	"'":          ebiten.KeyApostrophe,
}

// Host hotkeys. They never reach the controller.
const (
	keySwitchBackend = ebiten.KeyF5
	keyFullscreen    = ebiten.KeyF11
	keyScreenshot    = ebiten.KeyF12
	keyReload        = ebiten.KeyF9
)

var reservedKeys = map[ebiten.Key]bool{
	keySwitchBackend: true,
	keyFullscreen:    true,
	keyScreenshot:    true,
	keyReload:        true,
	ebiten.KeyEscape: true,
}

// defaultBindings are the built-in keyboard bindings.
var defaultBindings = map[controller.Button][]string{
	controller.ButtonA:      {"Space", "Z", "Alt"},
	controller.ButtonB:      {"X", "Control"},
	controller.ButtonSelect: {"5", "Shift", "G"},
	controller.ButtonStart:  {"1", "H"},
	controller.ButtonUp:     {"ArrowUp", "W"},
	controller.ButtonDown:   {"ArrowDown", "S"},
	controller.ButtonLeft:   {"ArrowLeft", "A"},
	controller.ButtonRight:  {"ArrowRight", "D"},
	controller.FastForward:  {"V"},
	controller.SlowMotion:   {"B"},
}

// ParseKey converts a config key name to an ebiten key.
func ParseKey(name string) (ebiten.Key, bool) {
	k, ok := keyNameMap[name]
	return k, ok
}

// ValidKeyName reports whether name is a bindable key.
func ValidKeyName(name string) bool {
	k, ok := keyNameMap[name]
	return ok && !reservedKeys[k]
}

// KeyNames lists every bindable key name, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(keyNameMap))
	for name := range keyNameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() Keymap {
	return BuildKeymap(nil)
}

// BuildKeymap applies config overrides (button name -> key names) on top of
// the defaults. An override replaces every default key of that button;
// unknown or reserved key names are skipped.
func BuildKeymap(overrides map[string][]string) Keymap {
	km := make(Keymap, len(defaultBindings))
	for _, b := range controller.Buttons() {
		names := defaultBindings[b]
		if o, ok := overrides[b.String()]; ok {
			names = o
		}
		for _, name := range names {
			if ValidKeyName(name) {
				km[b] = append(km[b], keyNameMap[name])
			}
		}
	}
	return km
}

// Apply sets every mapped input in state from pressed. Inputs held on the
// gamepad stay held.
func (km Keymap) Apply(state *controller.State, pressed func(ebiten.Key) bool) {
	for _, b := range controller.Buttons() {
		down := false
		for _, k := range km[b] {
			if pressed(k) {
				down = true
				break
			}
		}
		state.Set(b, down || state.Pressed(b))
	}
}
