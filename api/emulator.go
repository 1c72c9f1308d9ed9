package emucore

// Engine is the capability every execution backend implements. The frame
// driver only ever talks to an Engine; it never branches on the concrete
// backend once a session has been created.
type Engine interface {
	// Load validates and ingests a program image. On success the engine is
	// in a freshly reset, runnable state. Fails with ErrInvalidImage or
	// ErrUnsupportedConfiguration.
	Load(image []byte) error

	// StepFrame advances the engine by exactly one logical video frame,
	// using buttons as the controller 1 input for the whole frame.
	// Fails with ErrRuntimeFault.
	StepFrame(buttons uint8) error

	// Close releases any resources held by the engine.
	Close() error
}

// FrameSource is implemented by engines that complete a whole frame
// internally and hand back the finished buffer after StepFrame returns.
type FrameSource interface {
	// Framebuffer returns a copy of the last completed frame as
	// ScreenWidth*ScreenHeight RGBA pixels.
	Framebuffer() ([]byte, error)
}

// PixelSink consumes pixel-write events as an engine produces them.
type PixelSink interface {
	// WritePixel receives one pixel. color is a palette index (0-63) and
	// mask carries the color emphasis bits.
	WritePixel(scanline, dot int, color, mask uint8)
}

// PixelEmitter is implemented by engines that emit pixels one at a time
// while stepping instead of exposing a finished frame.
type PixelEmitter interface {
	SetPixelSink(sink PixelSink)
}

// AudioSource is implemented by engines that generate sound.
type AudioSource interface {
	// AudioSamples returns stereo 16-bit PCM samples produced since the
	// previous call.
	AudioSamples() []int16
}

// Factory creates a fresh, unloaded engine. A new engine is created for
// every session so no state carries over between sessions.
type Factory interface {
	// Name identifies the backend in logs and messages.
	Name() string

	// NewEngine creates an engine instance.
	NewEngine() (Engine, error)
}
