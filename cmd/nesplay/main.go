// Command nesplay plays a console program image in a window, or headless
// for a fixed number of frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/user-none/nesplay/backend/native"
	"github.com/user-none/nesplay/backend/sandbox"
	"github.com/user-none/nesplay/driver"
	"github.com/user-none/nesplay/standalone"
	"github.com/user-none/nesplay/storage"
)

var (
	configPath = flag.String("config", "", "Config file (default: config.json in the data directory)")
	backend    = flag.String("backend", "", "Engine backend: native or wasm (default from config)")
	wasmPath   = flag.String("wasm", "", "Sandboxed core module (overrides config)")
	headless   = flag.Bool("headless", false, "Run without a window and print a frame digest")
	frames     = flag.Uint64("frames", 600, "Frames to run in headless mode")
	wavPath    = flag.String("wav", "", "Write headless audio to this WAV file")
	volume     = flag.Float64("volume", -1, "Audio volume 0.0-1.0 (default from config)")
	mute       = flag.Bool("mute", false, "Disable audio")
	fullscreen = flag.Bool("fullscreen", false, "Start in fullscreen")
	scale      = flag.Int("scale", 0, "Window and screenshot scale (default from config)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image.nes|archive>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(path string) error {
	storage.Init("nesplay")
	if err := storage.EnsureDirectories(); err != nil {
		log.Printf("Warning: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cfg)

	ctx := context.Background()
	backends, closeBackends := loadBackends(ctx, cfg)
	defer closeBackends()

	img, err := standalone.LoadImage(path)
	if err != nil {
		return err
	}

	if *headless {
		return runHeadless(backends, cfg.Backend, img.Data)
	}

	return standalone.Run(standalone.Options{
		Title:    "nesplay - " + img.Name,
		Image:    img.Data,
		Backend:  cfg.Backend,
		Backends: backends,
		Config:   cfg,
	})
}

func loadConfig() (*storage.Config, error) {
	var (
		cfg *storage.Config
		err error
	)
	if *configPath != "" {
		cfg, err = storage.LoadConfigFile(*configPath)
	} else {
		if err := storage.CreateConfigIfMissing(); err != nil {
			log.Printf("Warning: %v", err)
		}
		cfg, err = storage.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	for _, w := range storage.ValidateConfig(cfg, standalone.ValidKeyName) {
		log.Printf("Warning: config: %s", w)
	}
	return storage.CorrectConfig(cfg, standalone.ValidKeyName), nil
}

func applyFlags(cfg *storage.Config) {
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *wasmPath != "" {
		cfg.WasmModule = *wasmPath
	}
	if *volume >= 0 {
		cfg.Audio.Volume = *volume
	}
	if *mute {
		cfg.Audio.Muted = true
	}
	if *fullscreen {
		cfg.Window.Fullscreen = true
	}
	if *scale > 0 {
		// Size the window from the scale instead of the saved geometry.
		cfg.Video.Scale = *scale
		cfg.Window.Width, cfg.Window.Height = 0, 0
	}
}

// loadBackends registers the native backend, which is dropped unless a core
// is linked in, and the sandboxed one when a module is configured and
// compiles.
func loadBackends(ctx context.Context, cfg *storage.Config) (*standalone.Backends, func()) {
	var wasm *sandbox.Module

	modPath, err := storage.ResolveModulePath(cfg)
	switch {
	case err != nil:
		log.Printf("Warning: %v", err)
	case modPath == "":
		log.Printf("no sandboxed core configured")
	default:
		wasm, err = sandbox.LoadModule(ctx, modPath)
		if err != nil {
			log.Printf("Warning: sandboxed core unavailable: %v", err)
			wasm = nil
		}
	}

	closeFn := func() {}
	if wasm != nil {
		closeFn = func() { wasm.Close() }
		return standalone.NewBackends(native.Factory{}, wasm), closeFn
	}
	return standalone.NewBackends(native.Factory{}), closeFn
}

func runHeadless(backends *standalone.Backends, name string, image []byte) error {
	factory, ok := backends.Get(name)
	if !ok {
		return fmt.Errorf("unknown backend %q (available: %v)", name, backends.Names())
	}

	var opts []driver.Option
	var rec *standalone.WAVRecorder
	if *wavPath != "" {
		var err error
		rec, err = standalone.NewWAVRecorder(*wavPath)
		if err != nil {
			return err
		}
		opts = append(opts, driver.WithAudioSink(rec))
	}

	res, err := standalone.RunHeadless(factory, image, *frames, nil, opts...)
	if rec != nil {
		if cerr := rec.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("%s (%w)", driver.Message(err), err)
	}

	fmt.Printf("frames=%d presented=%d digest=%s\n", res.Frames, res.Presented, res.Digest)
	return nil
}
