package sandbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	emucore "github.com/user-none/nesplay/api"
)

// Compile-time interface checks.
var (
	_ emucore.Engine      = (*Engine)(nil)
	_ emucore.FrameSource = (*Engine)(nil)
)

// Engine is one instance of the core module.
type Engine struct {
	ctx context.Context
	mod api.Module

	fn struct {
		bufferNew    api.Function
		bufferSet    api.Function
		bufferDrop   api.Function
		bufferPtr    api.Function // nil when the module lacks bulk access
		coreNew      api.Function
		setInput     api.Function
		runFrame     api.Function
		screenBuffer api.Function
	}

	loaded  bool
	faulted bool

	// frame is the host-side copy of the module's screen buffer.
	frame []byte
}

// Load implements emucore.Engine. A trap inside the module is reported as
// a HostTransferFault that matches emucore.ErrUnsupportedConfiguration.
func (e *Engine) Load(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image", emucore.ErrInvalidImage)
	}

	e.loaded = false
	e.faulted = false

	err := e.withTransfer(image, func(buf *TransferBuffer) error {
		_, err := call(e.ctx, emucore.PhaseLoad, e.fn.coreNew, ExportCoreNew, buf.handle)
		return err
	})
	if err != nil {
		return err
	}

	e.loaded = true
	return nil
}

// StepFrame implements emucore.Engine. A trap is reported as a
// HostTransferFault matching emucore.ErrRuntimeFault and the engine
// refuses further steps until reloaded.
func (e *Engine) StepFrame(buttons uint8) error {
	if e.faulted {
		return fmt.Errorf("%w: engine faulted, reload required", emucore.ErrRuntimeFault)
	}
	if !e.loaded {
		return fmt.Errorf("%w: no image loaded", emucore.ErrRuntimeFault)
	}

	if _, err := call(e.ctx, emucore.PhaseStep, e.fn.setInput, ExportSetInput, uint64(buttons)); err != nil {
		e.faulted = true
		return err
	}
	if _, err := call(e.ctx, emucore.PhaseStep, e.fn.runFrame, ExportRunFrame); err != nil {
		e.faulted = true
		return err
	}
	return nil
}

// Framebuffer implements emucore.FrameSource. The returned slice is a host
// copy owned by the engine and is overwritten by the next call.
func (e *Engine) Framebuffer() ([]byte, error) {
	if !e.loaded || e.faulted {
		return nil, fmt.Errorf("%w: no frame available", emucore.ErrRuntimeFault)
	}

	results, err := call(e.ctx, emucore.PhaseStep, e.fn.screenBuffer, ExportScreenBuffer)
	if err != nil {
		e.faulted = true
		return nil, err
	}

	ptr := api.DecodeU32(results[0])
	view, ok := e.mod.Memory().Read(ptr, emucore.FramebufferSize)
	if !ok {
		e.faulted = true
		return nil, &emucore.HostTransferFault{
			Phase: emucore.PhaseStep,
			Op:    ExportScreenBuffer,
			Err:   fmt.Errorf("screen buffer 0x%X+%d outside linear memory", ptr, emucore.FramebufferSize),
		}
	}
	copy(e.frame, view)
	return e.frame, nil
}

// Close implements emucore.Engine.
func (e *Engine) Close() error {
	e.loaded = false
	return e.mod.Close(e.ctx)
}

// BulkTransfer reports whether images are copied into linear memory in one
// write instead of byte by byte through the module.
func (e *Engine) BulkTransfer() bool {
	return e.fn.bufferPtr != nil
}

// TransferBuffer is a region of linear memory allocated by the module to
// receive a program image. It is only valid inside withTransfer.
type TransferBuffer struct {
	e        *Engine
	handle   uint64
	length   int
	released bool
}

// withTransfer allocates a buffer sized to data, fills it, hands it to fn
// and releases it again whatever fn returns.
func (e *Engine) withTransfer(data []byte, fn func(buf *TransferBuffer) error) (err error) {
	buf, err := e.acquire(len(data))
	if err != nil {
		return err
	}
	defer func() {
		if rerr := buf.release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err := buf.write(data); err != nil {
		return err
	}
	return fn(buf)
}

func (e *Engine) acquire(n int) (*TransferBuffer, error) {
	results, err := call(e.ctx, emucore.PhaseLoad, e.fn.bufferNew, ExportBufferNew, api.EncodeU32(uint32(n)))
	if err != nil {
		return nil, err
	}
	return &TransferBuffer{e: e, handle: results[0], length: n}, nil
}

func (b *TransferBuffer) write(data []byte) error {
	if len(data) > b.length {
		return fmt.Errorf("transfer of %d bytes into %d byte buffer", len(data), b.length)
	}

	e := b.e
	if e.fn.bufferPtr != nil {
		results, err := call(e.ctx, emucore.PhaseLoad, e.fn.bufferPtr, ExportBufferPtr, b.handle)
		if err != nil {
			return err
		}
		ptr := api.DecodeU32(results[0])
		if !e.mod.Memory().Write(ptr, data) {
			return &emucore.HostTransferFault{
				Phase: emucore.PhaseLoad,
				Op:    ExportBufferPtr,
				Err:   fmt.Errorf("buffer 0x%X+%d outside linear memory", ptr, len(data)),
			}
		}
		return nil
	}

	for i, v := range data {
		if _, err := call(e.ctx, emucore.PhaseLoad, e.fn.bufferSet, ExportBufferSet, b.handle, api.EncodeU32(uint32(i)), uint64(v)); err != nil {
			return err
		}
	}
	return nil
}

func (b *TransferBuffer) release() error {
	if b.released {
		return errors.New("transfer buffer released twice")
	}
	b.released = true
	_, err := call(b.e.ctx, emucore.PhaseLoad, b.e.fn.bufferDrop, ExportBufferDrop, b.handle)
	return err
}
