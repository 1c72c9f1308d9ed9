package storage

// Backend names accepted in Config.Backend.
const (
	BackendNative = "native"
	BackendWasm   = "wasm"
)

// Config is the application configuration stored in config.json.
type Config struct {
	Version    int          `json:"version"`
	Backend    string       `json:"backend"`              // "native" or "wasm"
	WasmModule string       `json:"wasmModule,omitempty"` // relative paths resolve against the modules dir
	Video      VideoConfig  `json:"video"`
	Audio      AudioConfig  `json:"audio"`
	Window     WindowConfig `json:"window"`
	Input      InputConfig  `json:"input"`
}

// VideoConfig contains video settings.
type VideoConfig struct {
	Scale int `json:"scale"` // screenshot upscale factor, 1-8
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Volume float64 `json:"volume"` // 0.0-2.0
	Muted  bool    `json:"muted"`
}

// WindowConfig contains the initial window size.
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// InputConfig holds keyboard overrides. Only buttons listed here replace
// the built-in bindings.
type InputConfig struct {
	Keyboard map[string][]string `json:"keyboard,omitempty"` // button name -> key names
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Backend: BackendWasm,
		Video: VideoConfig{
			Scale: 3,
		},
		Audio: AudioConfig{
			Volume: 1.0,
		},
		Window: WindowConfig{
			Width:  768,
			Height: 720,
		},
	}
}
