// Package standalone is the desktop player: an ebiten window driving a
// frame driver with keyboard and gamepad input, audio, screenshots, and a
// headless mode for regression runs.
package standalone

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/cartridge"
	"github.com/user-none/nesplay/driver"
	"github.com/user-none/nesplay/storage"
	"github.com/user-none/nesplay/video"
)

// Options configures Run.
type Options struct {
	Title    string
	Image    []byte
	Backend  string
	Backends *Backends
	Config   *storage.Config
}

// Run opens the window and plays Options.Image until the window closes.
func Run(opts Options) error {
	factory, ok := opts.Backends.Get(opts.Backend)
	if !ok {
		return fmt.Errorf("unknown backend %q (available: %v)", opts.Backend, opts.Backends.Names())
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = storage.DefaultConfig()
	}

	screenshotDir, err := storage.GetScreenshotDir()
	if err != nil {
		log.Printf("Warning: screenshots disabled: %v", err)
	}

	h := &Host{
		compositor:    video.NewCompositor(nil),
		backends:      opts.Backends,
		renderer:      NewFramebufferRenderer(emucore.PixelAspectRatio),
		keymap:        BuildKeymap(cfg.Input.Keyboard),
		notification:  NewNotification(),
		now:           time.Now,
		imageTag:      cartridge.Hash(opts.Image)[:16],
		screenshotDir: screenshotDir,
		scale:         cfg.Video.Scale,
	}

	driverOpts := []driver.Option{
		driver.WithScheduler(&h.tick),
		driver.WithFaultHandler(h.onFault),
	}
	if !cfg.Audio.Muted {
		audio, err := NewAudioPlayer(cfg.Audio.Volume)
		if err != nil {
			log.Printf("Warning: audio initialization failed: %v", err)
		} else {
			h.audio = audio
			driverOpts = append(driverOpts, driver.WithAudioSink(audio))
		}
	}

	h.driver = driver.New(factory, h.compositor, driverOpts...)
	if err := h.driver.Load(opts.Image); err != nil {
		h.Close()
		return fmt.Errorf("%s (%w)", driver.Message(err), err)
	}
	h.start = h.now()

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, hgt := cfg.Window.Width, cfg.Window.Height
	if w <= 0 || hgt <= 0 {
		hgt = emucore.ScreenHeight * max(cfg.Video.Scale, 1)
		w = int(float64(hgt) * emucore.DisplayAspectRatio(emucore.ScreenWidth, emucore.ScreenHeight, emucore.PixelAspectRatio))
	}
	ebiten.SetWindowSize(w, hgt)
	ebiten.SetWindowSizeLimits(emucore.ScreenWidth, emucore.ScreenHeight, -1, -1)
	ebiten.SetFullscreen(cfg.Window.Fullscreen)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	err = ebiten.RunGame(h)
	h.Close()
	return err
}
