package emucore

import (
	"errors"
	"fmt"
)

// Load and run failure classes shared by all backends.
var (
	// ErrInvalidImage is returned when a program image is malformed.
	// Recoverable: a different image may be loaded.
	ErrInvalidImage = errors.New("invalid program image")

	// ErrUnsupportedConfiguration is returned when an image parses but uses
	// hardware the engine does not implement. Recoverable.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrRuntimeFault is returned when stepping hits an unrecoverable
	// condition. Terminal for the session.
	ErrRuntimeFault = errors.New("runtime fault")
)

// Phase identifies when a sandbox fault happened.
type Phase int

const (
	PhaseLoad Phase = iota
	PhaseStep
)

// String returns the display name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoad:
		return "load"
	case PhaseStep:
		return "step"
	default:
		return "unknown"
	}
}

// HostTransferFault is a trap raised inside the sandbox while the host was
// calling into it. A fault at load time counts as an unsupported
// configuration, one at step time as a runtime fault.
type HostTransferFault struct {
	Phase Phase
	Op    string // export being called when the trap fired
	Err   error
}

func (f *HostTransferFault) Error() string {
	return fmt.Sprintf("sandbox trap during %s (%s): %v", f.Phase, f.Op, f.Err)
}

func (f *HostTransferFault) Unwrap() error {
	return f.Err
}

// Is reports whether target is the failure class of the fault's phase.
func (f *HostTransferFault) Is(target error) bool {
	switch f.Phase {
	case PhaseLoad:
		return target == ErrUnsupportedConfiguration
	case PhaseStep:
		return target == ErrRuntimeFault
	}
	return false
}
