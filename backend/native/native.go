// Package native runs an in-process emulation core behind the
// emucore.Engine capability.
//
// The core itself has no notion of frames: it is advanced one low-level
// tick at a time and reports pixels through a callback as its picture
// unit produces them. The adapter infers frame boundaries by tick count.
package native

import (
	"errors"
	"fmt"

	emucore "github.com/user-none/nesplay/api"
)

// TicksPerFrame is the number of core ticks making up one NTSC logical
// frame (341 dots x 262 scanlines / 3, rounded down).
const TicksPerFrame = 29780

// PixelFunc receives a pixel write from the core.
type PixelFunc func(scanline, dot int, color, mask uint8)

// InputFunc returns the controller bitmask for a port when the core polls
// it. Port 0 is controller 1.
type InputFunc func(port int) uint8

// Core is the in-process emulation engine. Instruction semantics and
// picture generation live entirely behind it.
type Core interface {
	// LoadImage parses a program image. Errors may wrap
	// emucore.ErrInvalidImage or emucore.ErrUnsupportedConfiguration;
	// anything else is treated as an invalid image.
	LoadImage(image []byte) error

	// Reset puts the loaded machine in its power-on state.
	Reset()

	// Run executes one tick.
	Run() error

	// Connect wires the core's video output and controller input.
	Connect(out PixelFunc, in InputFunc)
}

// Compile-time interface checks.
var (
	_ emucore.Engine       = (*Engine)(nil)
	_ emucore.PixelEmitter = (*Engine)(nil)
	_ emucore.AudioSource  = (*Engine)(nil)
)

// Engine adapts a Core to emucore.Engine.
type Engine struct {
	core    Core
	sink    emucore.PixelSink
	buttons uint8
	loaded  bool
}

// New wraps core. The core is connected immediately; pixel events are
// dropped until a sink is set.
func New(core Core) *Engine {
	e := &Engine{core: core}
	core.Connect(e.writePixel, e.readInput)
	return e
}

func (e *Engine) writePixel(scanline, dot int, color, mask uint8) {
	if e.sink != nil {
		e.sink.WritePixel(scanline, dot, color, mask)
	}
}

func (e *Engine) readInput(port int) uint8 {
	if port != 0 {
		return 0
	}
	return e.buttons
}

// SetPixelSink implements emucore.PixelEmitter.
func (e *Engine) SetPixelSink(sink emucore.PixelSink) {
	e.sink = sink
}

// Load implements emucore.Engine.
func (e *Engine) Load(image []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.loaded = false
			err = fmt.Errorf("%w: core panicked while loading: %v", emucore.ErrInvalidImage, r)
		}
	}()

	if err := e.core.LoadImage(image); err != nil {
		e.loaded = false
		if errors.Is(err, emucore.ErrInvalidImage) || errors.Is(err, emucore.ErrUnsupportedConfiguration) {
			return err
		}
		return fmt.Errorf("%w: %v", emucore.ErrInvalidImage, err)
	}

	e.core.Reset()
	e.buttons = 0
	e.loaded = true
	return nil
}

// StepFrame implements emucore.Engine. It runs TicksPerFrame core ticks
// with buttons latched as the controller state.
func (e *Engine) StepFrame(buttons uint8) (err error) {
	if !e.loaded {
		return fmt.Errorf("%w: no image loaded", emucore.ErrRuntimeFault)
	}

	tick := 0
	defer func() {
		if r := recover(); r != nil {
			e.loaded = false
			err = fmt.Errorf("%w: core panicked at tick %d: %v", emucore.ErrRuntimeFault, tick, r)
		}
	}()

	e.buttons = buttons
	for ; tick < TicksPerFrame; tick++ {
		if err := e.core.Run(); err != nil {
			e.loaded = false
			return fmt.Errorf("%w: tick %d: %v", emucore.ErrRuntimeFault, tick, err)
		}
	}
	return nil
}

// AudioSamples implements emucore.AudioSource. Cores without sound
// return nil.
func (e *Engine) AudioSamples() []int16 {
	if as, ok := e.core.(emucore.AudioSource); ok {
		return as.AudioSamples()
	}
	return nil
}

// HasAudio reports whether the wrapped core produces sound.
func (e *Engine) HasAudio() bool {
	_, ok := e.core.(emucore.AudioSource)
	return ok
}

// Close implements emucore.Engine.
func (e *Engine) Close() error {
	e.loaded = false
	e.sink = nil
	if c, ok := e.core.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Factory creates native engines from a core constructor.
type Factory struct {
	NewCore func() Core
}

// Name implements emucore.Factory.
func (f Factory) Name() string {
	return "native"
}

// Available reports whether a core constructor is set.
func (f Factory) Available() bool {
	return f.NewCore != nil
}

// NewEngine implements emucore.Factory.
func (f Factory) NewEngine() (emucore.Engine, error) {
	if f.NewCore == nil {
		return nil, errors.New("no in-process core available")
	}
	return New(f.NewCore()), nil
}
