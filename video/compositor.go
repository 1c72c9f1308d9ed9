// Package video assembles engine output into displayable RGBA frames.
package video

import (
	"fmt"

	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/palette"
)

// Display accepts complete frames for presentation. The pixels slice is
// only valid for the duration of the call.
type Display interface {
	Present(pixels []byte)
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(pixels []byte)

// Present implements Display.
func (f DisplayFunc) Present(pixels []byte) { f(pixels) }

// Frame is one 256x240 RGBA picture.
type Frame [emucore.FramebufferSize]byte

// Compositor turns engine output into whole frames.
//
// Pixel-at-a-time engines write into the back buffer; the front buffer
// always holds the last complete frame. A frame is presented when the
// first pixel of the following frame arrives, so a half-drawn buffer is
// never shown. Engines that hand over finished frames skip the back buffer
// and go straight to PresentFrame.
//
// Compositor is used from the host loop goroutine only.
type Compositor struct {
	front   *Frame
	back    *Frame
	display Display

	// pending is set once the back buffer holds pixels that have not been
	// presented yet.
	pending   bool
	presented uint64
}

// NewCompositor creates a compositor presenting to display. display may be
// nil when the caller only reads Front.
func NewCompositor(display Display) *Compositor {
	c := &Compositor{
		front:   new(Frame),
		back:    new(Frame),
		display: display,
	}
	c.Clear()
	return c
}

// WritePixel implements emucore.PixelSink. The emphasis mask is accepted
// but does not affect color selection.
func (c *Compositor) WritePixel(scanline, dot int, color, mask uint8) {
	if scanline < 0 || scanline >= emucore.ScreenHeight || dot < 0 || dot >= emucore.ScreenWidth {
		return
	}

	if scanline == 0 && dot == 0 {
		c.flush()
	}

	off := (scanline*emucore.ScreenWidth + dot) * emucore.BytesPerPixel
	palette.Put(c.back[off:off+emucore.BytesPerPixel], color)
	c.pending = true
}

// flush swaps the completed back buffer to the front and presents it. The
// old front buffer becomes the next back buffer and is overwritten pixel by
// pixel.
func (c *Compositor) flush() {
	if !c.pending {
		return
	}
	c.front, c.back = c.back, c.front
	c.pending = false
	c.present()
}

// PresentFrame copies a finished frame into the front buffer and presents
// it. pixels is not retained.
func (c *Compositor) PresentFrame(pixels []byte) error {
	if len(pixels) < emucore.FramebufferSize {
		return fmt.Errorf("short frame: got %d bytes, want %d", len(pixels), emucore.FramebufferSize)
	}
	copy(c.front[:], pixels[:emucore.FramebufferSize])
	c.present()
	return nil
}

func (c *Compositor) present() {
	c.presented++
	if c.display != nil {
		c.display.Present(c.front[:])
	}
}

// Front returns the last presented frame. The slice is overwritten by later
// presentations.
func (c *Compositor) Front() []byte {
	return c.front[:]
}

// Presented returns the number of frames presented since creation or the
// last Clear.
func (c *Compositor) Presented() uint64 {
	return c.presented
}

// Clear fills both buffers with opaque black and drops any partial frame.
func (c *Compositor) Clear() {
	for _, f := range []*Frame{c.front, c.back} {
		for i := 0; i < len(f); i += emucore.BytesPerPixel {
			f[i] = 0
			f[i+1] = 0
			f[i+2] = 0
			f[i+3] = 0xff
		}
	}
	c.pending = false
	c.presented = 0
}
