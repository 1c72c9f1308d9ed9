// Package driver paces an engine against host timestamps.
//
// The host calls Tick from its display callback with a monotonic timestamp
// in milliseconds. The driver steps as many logical frames as fit between
// the session's last timestamp and now, at most five, and asks the host for
// another callback while the session is running. Nothing blocks and nothing
// runs concurrently: every method must be called from the host loop.
package driver

import (
	"errors"
	"fmt"
	"log"
	"math"

	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/controller"
	"github.com/user-none/nesplay/video"
)

// maxCatchUp bounds the frames stepped in one tick.
const maxCatchUp = 5

// dueEpsilon absorbs rounding when t sits on a period boundary, in periods.
const dueEpsilon = 1e-9

// State is the driver's lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// ErrNoImage is returned by SwitchBackend and Reload before any image has
// been loaded.
var ErrNoImage = errors.New("no image loaded")

// Scheduler asks the host for another Tick.
type Scheduler interface {
	RequestTick()
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func()

// RequestTick implements Scheduler.
func (f SchedulerFunc) RequestTick() { f() }

// AudioSink receives interleaved stereo samples after every frame.
type AudioSink interface {
	QueueSamples(samples []int16)
}

// FaultHandler is told about every load failure and every fatal step fault.
type FaultHandler func(err error)

// Option configures a Driver.
type Option func(*Driver)

// WithScheduler sets the tick scheduler.
func WithScheduler(s Scheduler) Option {
	return func(d *Driver) { d.scheduler = s }
}

// WithFaultHandler sets the fault handler.
func WithFaultHandler(h FaultHandler) Option {
	return func(d *Driver) { d.onFault = h }
}

// WithAudioSink routes engine audio to sink.
func WithAudioSink(sink AudioSink) Option {
	return func(d *Driver) { d.audio = sink }
}

// Driver owns at most one Session and the compositor it draws into.
type Driver struct {
	factory    emucore.Factory
	compositor *video.Compositor
	scheduler  Scheduler
	onFault    FaultHandler
	audio      AudioSink

	session *Session
	state   State
	fault   error
	image   []byte
}

// New creates an idle driver that builds engines with factory.
func New(factory emucore.Factory, compositor *video.Compositor, opts ...Option) *Driver {
	d := &Driver{
		factory:    factory,
		compositor: compositor,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Session returns the live session, or nil when idle.
func (d *Driver) Session() *Session {
	return d.session
}

// Backend returns the name of the factory new sessions are built with.
func (d *Driver) Backend() string {
	return d.factory.Name()
}

// Frames returns the logical frames stepped in the current session.
func (d *Driver) Frames() uint64 {
	if d.session == nil {
		return 0
	}
	return d.session.frames
}

// Controller returns the session's controller state for the host to
// update, or nil when idle. The pointer is invalid after the next Load.
func (d *Driver) Controller() *controller.State {
	if d.session == nil {
		return nil
	}
	return &d.session.input
}

// Fault returns the error that stopped the session, if any.
func (d *Driver) Fault() error {
	return d.fault
}

// FaultMessage returns the user text for Fault.
func (d *Driver) FaultMessage() string {
	return Message(d.fault)
}

// Load starts a new session for image. The previous session is torn down
// only once the new engine accepted the image; on failure it is left as
// it was.
func (d *Driver) Load(image []byte) error {
	return d.start(d.factory, image)
}

// Reload restarts the current image on the current backend.
func (d *Driver) Reload() error {
	if d.image == nil {
		return ErrNoImage
	}
	return d.start(d.factory, d.image)
}

// SwitchBackend restarts the current image on a different backend. With
// no image loaded it only changes the factory used by the next Load.
func (d *Driver) SwitchBackend(factory emucore.Factory) error {
	if d.image == nil {
		d.factory = factory
		return nil
	}
	return d.start(factory, d.image)
}

func (d *Driver) start(factory emucore.Factory, image []byte) error {
	engine, err := factory.NewEngine()
	if err != nil {
		err = fmt.Errorf("failed to create %s engine: %w", factory.Name(), err)
		d.report(err)
		return err
	}

	if emitter, ok := engine.(emucore.PixelEmitter); ok {
		emitter.SetPixelSink(d.compositor)
	}

	if err := engine.Load(image); err != nil {
		engine.Close()
		err = fmt.Errorf("failed to load image on %s engine: %w", factory.Name(), err)
		d.report(err)
		return err
	}

	d.closeSession()
	d.compositor.Clear()

	d.factory = factory
	d.image = image
	d.session = newSession(factory.Name(), engine)
	d.state = Running
	d.fault = nil
	log.Printf("driver: started %s session (%d byte image)", factory.Name(), len(image))

	d.requestTick()
	return nil
}

// Tick advances the session to timestamp t in milliseconds.
func (d *Driver) Tick(t float64) {
	s := d.session
	if d.state != Running || s == nil || !s.running {
		return
	}

	p := s.input.Period()

	// A clamped session is owed the full catch-up. Otherwise frames are
	// counted in one division and placed at whole periods from base, so
	// rounding never drops a frame that is due.
	base := t - float64(maxCatchUp*p)
	due := maxCatchUp
	if s.last > base {
		base = s.last
		due = min(maxCatchUp, int(math.Floor((t-base)/p+dueEpsilon)))
	}
	s.last = base
	for i := 1; i <= due; i++ {
		s.last = base + float64(i)*p
		if err := d.step(s); err != nil {
			d.fail(err)
			return
		}
	}

	d.requestTick()
}

func (d *Driver) step(s *Session) error {
	if err := s.engine.StepFrame(s.input.Bits()); err != nil {
		return err
	}
	s.frames++

	if src, ok := s.engine.(emucore.FrameSource); ok {
		pixels, err := src.Framebuffer()
		if err != nil {
			return err
		}
		if err := d.compositor.PresentFrame(pixels); err != nil {
			return fmt.Errorf("%w: %v", emucore.ErrRuntimeFault, err)
		}
	}

	if d.audio != nil {
		if src, ok := s.engine.(emucore.AudioSource); ok {
			d.audio.QueueSamples(src.AudioSamples())
		}
	}
	return nil
}

func (d *Driver) fail(err error) {
	d.session.running = false
	d.state = Stopped
	d.fault = err
	log.Printf("driver: %s session stopped after %d frames: %v", d.session.backend, d.session.frames, err)
	d.report(err)
}

// Stop halts a running session. The engine stays loaded until Teardown or
// the next Load.
func (d *Driver) Stop() {
	if d.state != Running {
		return
	}
	d.session.running = false
	d.state = Stopped
}

// Teardown closes the session and returns the driver to Idle.
func (d *Driver) Teardown() {
	d.closeSession()
	d.state = Idle
	d.fault = nil
}

func (d *Driver) closeSession() {
	if d.session == nil {
		return
	}
	if err := d.session.close(); err != nil {
		log.Printf("Warning: failed to close %s engine: %v", d.session.backend, err)
	}
	d.session = nil
}

func (d *Driver) report(err error) {
	if d.onFault != nil {
		d.onFault(err)
	}
}

func (d *Driver) requestTick() {
	if d.scheduler != nil {
		d.scheduler.RequestTick()
	}
}
