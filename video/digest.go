package video

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest fingerprints every presented frame. The fingerprint is chained:
// each frame is hashed together with the previous fingerprint, so the final
// value identifies the whole sequence of frames, not just the last one.
type Digest struct {
	next   Display
	sum    [32]byte
	frames int
}

// NewDigest creates a Digest that forwards frames to next (may be nil).
func NewDigest(next Display) *Digest {
	return &Digest{next: next}
}

// Present implements Display.
func (d *Digest) Present(pixels []byte) {
	h := blake3.New()
	h.Write(d.sum[:])
	h.Write(pixels)
	copy(d.sum[:], h.Sum(nil))
	d.frames++

	if d.next != nil {
		d.next.Present(pixels)
	}
}

// Hash returns the current fingerprint as a hex string.
func (d *Digest) Hash() string {
	return hex.EncodeToString(d.sum[:])
}

// Frames returns the number of frames hashed.
func (d *Digest) Frames() int {
	return d.frames
}

// Reset clears the fingerprint.
func (d *Digest) Reset() {
	d.sum = [32]byte{}
	d.frames = 0
}
