package standalone

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/driver"
	"github.com/user-none/nesplay/video"
)

// tickRequest is the driver's Scheduler: a tick requested during one
// Update runs on the next.
type tickRequest struct {
	pending bool
}

func (r *tickRequest) RequestTick() { r.pending = true }

func (r *tickRequest) take() bool {
	p := r.pending
	r.pending = false
	return p
}

// Host implements ebiten.Game around a driver.
type Host struct {
	driver       *driver.Driver
	compositor   *video.Compositor
	backends     *Backends
	renderer     *FramebufferRenderer
	keymap       Keymap
	notification *Notification
	audio        *AudioPlayer
	tick         tickRequest

	start time.Time
	now   func() time.Time

	imageTag      string
	screenshotDir string
	scale         int
}

// elapsed returns host time in milliseconds since start.
func (h *Host) elapsed() float64 {
	return float64(h.now().Sub(h.start)) / float64(time.Millisecond)
}

// onFault is the driver's fault handler.
func (h *Host) onFault(err error) {
	log.Printf("Warning: %v", err)
	if h.audio != nil {
		h.audio.ClearQueue()
	}
	h.notification.Show(driver.Message(err))
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if inpututil.IsKeyJustPressed(keyFullscreen) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(keyScreenshot) {
		h.takeScreenshot()
	}
	if inpututil.IsKeyJustPressed(keySwitchBackend) {
		h.switchBackend()
	}
	if inpututil.IsKeyJustPressed(keyReload) {
		h.reload()
	}

	if state := h.driver.Controller(); state != nil {
		pollInput(state, h.keymap)
	}

	h.step()
	return nil
}

// step runs a driver tick if one was requested.
func (h *Host) step() {
	if h.tick.take() {
		h.driver.Tick(h.elapsed())
	}
}

func (h *Host) switchBackend() {
	next := h.backends.Next(h.driver.Backend())
	if next == nil {
		h.notification.Show("No other backend available")
		return
	}
	if err := h.driver.SwitchBackend(next); err != nil {
		return
	}
	h.notification.Show("Backend: " + next.Name())
}

func (h *Host) reload() {
	if err := h.driver.Reload(); err != nil {
		return
	}
	h.notification.Show("Reloaded")
}

func (h *Host) takeScreenshot() {
	path, err := SaveScreenshot(h.screenshotDir, h.imageTag, h.compositor.Front(), h.scale, emucore.PixelAspectRatio)
	if err != nil {
		log.Printf("Warning: screenshot failed: %v", err)
		h.notification.Show("Screenshot failed")
		return
	}
	log.Printf("screenshot: %s", path)
	h.notification.Show("Screenshot saved")
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	h.renderer.DrawFramebuffer(screen, h.compositor.Front())

	if h.driver.State() == driver.Stopped {
		if msg := h.driver.FaultMessage(); msg != "" {
			ebitenutil.DebugPrintAt(screen, msg, 8, 8)
		}
	}
	h.notification.Draw(screen)
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// Close releases the session and audio.
func (h *Host) Close() {
	h.driver.Teardown()
	if h.audio != nil {
		h.audio.Close()
	}
}
