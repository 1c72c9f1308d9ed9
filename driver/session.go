package driver

import (
	emucore "github.com/user-none/nesplay/api"
	"github.com/user-none/nesplay/controller"
)

// Session is one loaded image on one backend. It owns the controller state
// and the pacing timestamp; neither survives a backend switch or a reload.
type Session struct {
	backend string
	engine  emucore.Engine
	running bool

	// last is the logical timestamp in milliseconds the session has been
	// advanced to. It starts at zero.
	last float64

	input  controller.State
	frames uint64
}

func newSession(backend string, engine emucore.Engine) *Session {
	return &Session{
		backend: backend,
		engine:  engine,
		running: true,
	}
}

// Backend returns the name of the factory that produced the engine.
func (s *Session) Backend() string {
	return s.backend
}

// Engine returns the session's engine.
func (s *Session) Engine() emucore.Engine {
	return s.engine
}

// Running reports whether the session still accepts ticks.
func (s *Session) Running() bool {
	return s.running
}

// Last returns the logical timestamp the session has advanced to.
func (s *Session) Last() float64 {
	return s.last
}

// Frames returns the number of logical frames stepped.
func (s *Session) Frames() uint64 {
	return s.frames
}

func (s *Session) close() error {
	s.running = false
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}
