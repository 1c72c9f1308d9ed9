package standalone

import (
	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/nesplay/api"
)

// FramebufferRenderer draws console frames onto the window, scaled to fit
// with the console's pixel aspect ratio and letterboxed.
type FramebufferRenderer struct {
	par       float64
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewFramebufferRenderer creates a renderer for frames with the given
// pixel aspect ratio. Use 1 for square pixels.
func NewFramebufferRenderer(par float64) *FramebufferRenderer {
	return &FramebufferRenderer{par: par}
}

// DrawFramebuffer uploads pixels and draws them onto screen.
func (r *FramebufferRenderer) DrawFramebuffer(screen *ebiten.Image, pixels []byte) {
	if len(pixels) < emucore.FramebufferSize {
		return
	}
	if r.offscreen == nil {
		r.offscreen = ebiten.NewImage(emucore.ScreenWidth, emucore.ScreenHeight)
	}
	r.offscreen.WritePixels(pixels[:emucore.FramebufferSize])

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, offX, offY := fitScale(sw, sh, r.par)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(scale*r.par, scale)
	r.drawOpts.GeoM.Translate(offX, offY)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// fitScale returns the vertical scale and the offsets that centre a frame
// with pixel aspect ratio par inside a sw x sh screen.
func fitScale(sw, sh int, par float64) (scale, offX, offY float64) {
	nativeW := float64(emucore.ScreenWidth) * par
	nativeH := float64(emucore.ScreenHeight)

	scale = float64(sw) / nativeW
	if s := float64(sh) / nativeH; s < scale {
		scale = s
	}

	offX = (float64(sw) - nativeW*scale) / 2
	offY = (float64(sh) - nativeH*scale) / 2
	return scale, offX, offY
}
