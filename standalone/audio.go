package standalone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	emucore "github.com/user-none/nesplay/api"
)

// ringBufferCapacity is about 170ms of 48kHz stereo 16-bit audio.
const ringBufferCapacity = 32768

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   emucore.AudioSampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// AudioPlayer streams engine samples to the sound card. It implements
// driver.AudioSink.
type AudioPlayer struct {
	player  *oto.Player
	ring    *AudioRingBuffer
	scratch []byte
}

// NewAudioPlayer starts playback at the given volume (0.0-2.0).
func NewAudioPlayer(volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext()
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	ring := NewAudioRingBuffer(ringBufferCapacity)
	player := ctx.NewPlayer(ring)
	// ~50ms instead of oto's default half second.
	player.SetBufferSize(19200)
	player.SetVolume(clampVolume(volume))
	player.Play()

	return &AudioPlayer{
		player:  player,
		ring:    ring,
		scratch: make([]byte, 0, 4096),
	}, nil
}

// QueueSamples implements driver.AudioSink.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.scratch = appendSamples(a.scratch[:0], samples)
	a.ring.Write(a.scratch)
}

// appendSamples encodes samples as little-endian bytes.
func appendSamples(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}

// ClearQueue drops buffered audio, used when a session ends.
func (a *AudioPlayer) ClearQueue() {
	a.ring.Clear()
}

// SetVolume sets playback volume, clamped to 0.0-2.0.
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(clampVolume(vol))
}

func clampVolume(vol float64) float64 {
	if vol < 0 {
		return 0
	}
	if vol > 2.0 {
		return 2.0
	}
	return vol
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	a.ring.Close()
	a.player.Close()
}
