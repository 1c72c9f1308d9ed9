package standalone

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	emucore "github.com/user-none/nesplay/api"
)

// WAVRecorder is an audio sink that writes every queued sample to a 16-bit
// stereo WAV file.
type WAVRecorder struct {
	file    *os.File
	enc     *wav.Encoder
	buf     audio.IntBuffer
	samples int
	err     error
}

// NewWAVRecorder creates path and writes the WAV header.
func NewWAVRecorder(path string) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio capture: %w", err)
	}
	r := &WAVRecorder{
		file: f,
		enc:  wav.NewEncoder(f, emucore.AudioSampleRate, 16, 2, 1),
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: emucore.AudioSampleRate},
			SourceBitDepth: 16,
		},
	}
	return r, nil
}

// QueueSamples implements driver.AudioSink. The first write error is kept
// and returned by Close.
func (r *WAVRecorder) QueueSamples(samples []int16) {
	if r.err != nil || len(samples) == 0 {
		return
	}
	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(&r.buf); err != nil {
		r.err = err
		return
	}
	r.samples += len(samples)
}

// Samples returns the number of samples written so far.
func (r *WAVRecorder) Samples() int {
	return r.samples
}

// Close finalises the header and closes the file.
func (r *WAVRecorder) Close() error {
	err := r.enc.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	if r.err != nil {
		return r.err
	}
	return err
}
