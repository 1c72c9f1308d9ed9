package driver

import (
	"errors"
	"strings"

	emucore "github.com/user-none/nesplay/api"
)

// User-facing fault texts.
const (
	MsgSandboxLoad = "Sandboxed engine error while loading: probably an unsupported configuration."
	MsgSandboxStep = "Sandboxed engine error while running: probably an invalid operation during execution."
)

// Message converts a load or step error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var fault *emucore.HostTransferFault
	if errors.As(err, &fault) {
		switch fault.Phase {
		case emucore.PhaseLoad:
			return MsgSandboxLoad
		case emucore.PhaseStep:
			return MsgSandboxStep
		}
	}

	switch {
	case errors.Is(err, emucore.ErrInvalidImage):
		return withCause("Invalid program image", err, emucore.ErrInvalidImage)
	case errors.Is(err, emucore.ErrUnsupportedConfiguration):
		return withCause("Unsupported configuration", err, emucore.ErrUnsupportedConfiguration)
	}
	return "Engine error: " + err.Error()
}

// withCause appends what err says after the sentinel's own text, dropping
// the wrapping context in front of it.
func withCause(title string, err, sentinel error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, sentinel.Error()); i >= 0 {
		msg = strings.TrimPrefix(msg[i+len(sentinel.Error()):], ": ")
	}
	if msg == "" {
		return title + "."
	}
	return title + ": " + msg
}
