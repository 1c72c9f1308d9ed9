package storage

import (
	"slices"
	"strings"
	"testing"
)

func knownKeys(name string) bool {
	return name == "J" || name == "K" || name == "Space"
}

func TestDetectPresentKeys(t *testing.T) {
	present := detectPresentKeys([]byte(`{"version": 1, "audio": {"volume": 0.5}, "window": {"height": 300}}`))

	for _, k := range []string{"version", "audio.volume", "window.height"} {
		if !present[k] {
			t.Errorf("%s not detected", k)
		}
	}
	for _, k := range []string{"backend", "window.width", "video.scale"} {
		if present[k] {
			t.Errorf("%s detected but absent", k)
		}
	}

	if len(detectPresentKeys([]byte(`not json`))) != 0 {
		t.Error("invalid JSON should report no keys")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"version", func(c *Config) { c.Version = 2 }, "version"},
		{"backend", func(c *Config) { c.Backend = "js" }, "backend"},
		{"scale low", func(c *Config) { c.Video.Scale = 0 }, "video.scale"},
		{"scale high", func(c *Config) { c.Video.Scale = 9 }, "video.scale"},
		{"volume", func(c *Config) { c.Audio.Volume = 2.5 }, "audio.volume"},
		{"width", func(c *Config) { c.Window.Width = 100 }, "window.width"},
		{"height", func(c *Config) { c.Window.Height = 100 }, "window.height"},
		{"unknown button", func(c *Config) { c.Input.Keyboard = map[string][]string{"Turbo": {"J"}} }, "input.keyboard"},
		{"unknown key", func(c *Config) { c.Input.Keyboard = map[string][]string{"A": {"Nope"}} }, "input.keyboard.A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			errs := ValidateConfig(c, knownKeys)
			if len(errs) != 1 {
				t.Fatalf("ValidateConfig = %v, want one error", errs)
			}
			if !strings.HasPrefix(errs[0], tt.field+":") {
				t.Errorf("error %q should name %s", errs[0], tt.field)
			}
		})
	}
}

func TestValidateConfig_NilKeyCheck(t *testing.T) {
	c := DefaultConfig()
	c.Input.Keyboard = map[string][]string{"A": {"Anything"}}
	if errs := ValidateConfig(c, nil); len(errs) != 0 {
		t.Errorf("ValidateConfig = %v, want none", errs)
	}
}

func TestCorrectConfig(t *testing.T) {
	c := &Config{
		Version: 7,
		Backend: "native",
		Video:   VideoConfig{Scale: 20},
		Audio:   AudioConfig{Volume: 0, Muted: true},
		Window:  WindowConfig{Width: 10, Height: 480},
		Input: InputConfig{Keyboard: map[string][]string{
			"A":     {"J", "Bogus"},
			"B":     {"Bogus"},
			"Turbo": {"K"},
			"Start": {"Space"},
		}},
	}

	CorrectConfig(c, knownKeys)

	if errs := ValidateConfig(c, knownKeys); len(errs) != 0 {
		t.Fatalf("corrected config still invalid: %v", errs)
	}
	if c.Backend != BackendNative {
		t.Error("valid backend replaced")
	}
	if c.Audio.Volume != 0 || !c.Audio.Muted {
		t.Error("valid audio settings replaced")
	}
	if c.Window.Height != 480 {
		t.Error("valid height replaced")
	}
	if c.Version != 1 || c.Video.Scale != 3 || c.Window.Width != 768 {
		t.Errorf("invalid fields not defaulted: %+v", c)
	}

	want := map[string][]string{"A": {"J"}, "Start": {"Space"}}
	if len(c.Input.Keyboard) != len(want) {
		t.Fatalf("Keyboard = %v, want %v", c.Input.Keyboard, want)
	}
	for button, keys := range want {
		if !slices.Equal(c.Input.Keyboard[button], keys) {
			t.Errorf("Keyboard[%s] = %v, want %v", button, c.Input.Keyboard[button], keys)
		}
	}
}
