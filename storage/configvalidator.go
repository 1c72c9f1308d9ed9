package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/user-none/nesplay/controller"
)

// detectPresentKeys returns the dotted paths ("audio.volume") of the keys
// with defaults that are present in the raw JSON.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	for _, k := range []string{"version", "backend"} {
		if _, ok := raw[k]; ok {
			present[k] = true
		}
	}

	nested := map[string][]string{
		"video":  {"scale"},
		"audio":  {"volume"},
		"window": {"width", "height"},
	}
	for section, keys := range nested {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults fills fields absent from the file with defaults,
// keeping intentional zero values such as volume=0.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["backend"] {
		config.Backend = defaults.Backend
	}
	if !presentKeys["video.scale"] {
		config.Video.Scale = defaults.Video.Scale
	}
	if !presentKeys["audio.volume"] {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
}

// ValidKeyFunc reports whether a keyboard key name is known to the host.
type ValidKeyFunc func(name string) bool

// ValidateConfig returns a description of every invalid field. An empty
// slice means the config is valid. validKey may be nil to skip key name
// checks.
func ValidateConfig(config *Config, validKey ValidKeyFunc) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}
	if config.Backend != BackendNative && config.Backend != BackendWasm {
		errors = append(errors, fmt.Sprintf("backend: %q (valid: %q, %q)", config.Backend, BackendNative, BackendWasm))
	}
	if config.Video.Scale < 1 || config.Video.Scale > 8 {
		errors = append(errors, fmt.Sprintf("video.scale: %d (valid: 1-8)", config.Video.Scale))
	}
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		errors = append(errors, fmt.Sprintf("audio.volume: %.2f (valid: 0.0-2.0)", config.Audio.Volume))
	}
	if config.Window.Width < 256 {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= 256)", config.Window.Width))
	}
	if config.Window.Height < 240 {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= 240)", config.Window.Height))
	}

	for _, button := range sortedKeys(config.Input.Keyboard) {
		if _, ok := controller.ParseButton(button); !ok {
			errors = append(errors, fmt.Sprintf("input.keyboard: unknown button %q", button))
			continue
		}
		if validKey == nil {
			continue
		}
		for _, key := range config.Input.Keyboard[button] {
			if !validKey(key) {
				errors = append(errors, fmt.Sprintf("input.keyboard.%s: unknown key %q", button, key))
			}
		}
	}

	return errors
}

// CorrectConfig resets invalid fields to their defaults and drops unknown
// keyboard bindings. Valid fields are preserved.
func CorrectConfig(config *Config, validKey ValidKeyFunc) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if config.Backend != BackendNative && config.Backend != BackendWasm {
		config.Backend = defaults.Backend
	}
	if config.Video.Scale < 1 || config.Video.Scale > 8 {
		config.Video.Scale = defaults.Video.Scale
	}
	if config.Audio.Volume < 0 || config.Audio.Volume > 2.0 {
		config.Audio.Volume = defaults.Audio.Volume
	}
	if config.Window.Width < 256 {
		config.Window.Width = defaults.Window.Width
	}
	if config.Window.Height < 240 {
		config.Window.Height = defaults.Window.Height
	}

	for button, keys := range config.Input.Keyboard {
		if _, ok := controller.ParseButton(button); !ok {
			delete(config.Input.Keyboard, button)
			continue
		}
		if validKey == nil {
			continue
		}
		kept := keys[:0]
		for _, key := range keys {
			if validKey(key) {
				kept = append(kept, key)
			}
		}
		if len(kept) == 0 {
			delete(config.Input.Keyboard, button)
		} else {
			config.Input.Keyboard[button] = kept
		}
	}

	return config
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
