package emucore

// Console video geometry.
const (
	ScreenWidth     = 256
	ScreenHeight    = 240
	BytesPerPixel   = 4
	FramebufferSize = ScreenWidth * ScreenHeight * BytesPerPixel
)

// PixelAspectRatio is the NTSC pixel aspect ratio of the console's picture
// processing unit (8:7).
const PixelAspectRatio = 8.0 / 7.0

// AudioSampleRate is the rate of the interleaved stereo samples returned
// by AudioSource.
const AudioSampleRate = 48000

// Frame rates in logical frames per second for the three pacing modes.
const (
	NormalFPS      = 60
	FastForwardFPS = 240
	SlowMotionFPS  = 15
)

// DisplayAspectRatio returns the aspect ratio of a width x height picture
// shown with the given pixel aspect ratio.
func DisplayAspectRatio(width, height int, par float64) float64 {
	return float64(width) / float64(height) * par
}
