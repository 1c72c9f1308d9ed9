// Package sandbox runs an emulation core compiled to WebAssembly.
//
// The core is reachable only through its exported functions and its linear
// memory. Program images are copied in through a transfer buffer that the
// module allocates and the host releases straight after ingestion; finished
// frames are copied out of linear memory after every step. The host never
// keeps a view into linear memory past the call that produced it, since the
// module may grow or reuse its memory on the next entry.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	emucore "github.com/user-none/nesplay/api"
)

// Exported entry points of the core module.
const (
	ExportBufferNew    = "wasm_buffer_new"             // (len i32) -> handle i32
	ExportBufferSet    = "wasm_buffer_set"             // (handle, offset, value i32)
	ExportBufferDrop   = "wasm_buffer_drop"            // (handle i32)
	ExportBufferPtr    = "wasm_buffer_ptr"             // (handle i32) -> ptr i32, optional
	ExportCoreNew      = "wasm_core_new"               // (handle i32)
	ExportSetInput     = "wasm_core_set_controller1"   // (buttons i32)
	ExportRunFrame     = "wasm_core_run_frame"         // ()
	ExportScreenBuffer = "wasm_core_get_screen_buffer" // () -> ptr i32
)

var requiredExports = []string{
	ExportBufferNew,
	ExportBufferSet,
	ExportBufferDrop,
	ExportCoreNew,
	ExportSetInput,
	ExportRunFrame,
	ExportScreenBuffer,
}

// ErrMissingExport is returned when the module lacks a required entry
// point or memory.
var ErrMissingExport = errors.New("missing module export")

// Module is a compiled core module. Each engine it creates gets its own
// instance and linear memory. Module implements emucore.Factory.
type Module struct {
	ctx      context.Context
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	seq      atomic.Uint64
}

var _ emucore.Factory = (*Module)(nil)

// LoadModule reads and compiles a module from disk.
func LoadModule(ctx context.Context, path string) (*Module, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}
	return Compile(ctx, wasm)
}

// Compile validates and compiles module bytes. WASI preview1 imports are
// satisfied for modules built against a WASI target.
func Compile(ctx context.Context, wasm []byte) (*Module, error) {
	r := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	exports := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exports[name]; !ok {
			r.Close(ctx)
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
		}
	}
	if len(compiled.ExportedMemories()) == 0 {
		r.Close(ctx)
		return nil, fmt.Errorf("%w: memory", ErrMissingExport)
	}

	return &Module{
		ctx:      ctx,
		runtime:  r,
		compiled: compiled,
	}, nil
}

// Name implements emucore.Factory.
func (m *Module) Name() string {
	return "wasm"
}

// NewEngine implements emucore.Factory by instantiating a fresh copy of the
// module.
func (m *Module) NewEngine() (emucore.Engine, error) {
	return m.Instantiate()
}

// Instantiate creates a new engine instance.
func (m *Module) Instantiate() (*Engine, error) {
	cfg := wazero.NewModuleConfig().
		WithName(fmt.Sprintf("core-%d", m.seq.Add(1))).
		WithStartFunctions("_initialize")

	mod, err := m.runtime.InstantiateModule(m.ctx, m.compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	e := &Engine{
		ctx:   m.ctx,
		mod:   mod,
		frame: make([]byte, emucore.FramebufferSize),
	}
	e.fn.bufferNew = mod.ExportedFunction(ExportBufferNew)
	e.fn.bufferSet = mod.ExportedFunction(ExportBufferSet)
	e.fn.bufferDrop = mod.ExportedFunction(ExportBufferDrop)
	e.fn.bufferPtr = mod.ExportedFunction(ExportBufferPtr)
	e.fn.coreNew = mod.ExportedFunction(ExportCoreNew)
	e.fn.setInput = mod.ExportedFunction(ExportSetInput)
	e.fn.runFrame = mod.ExportedFunction(ExportRunFrame)
	e.fn.screenBuffer = mod.ExportedFunction(ExportScreenBuffer)

	if mod.Memory() == nil {
		mod.Close(m.ctx)
		return nil, fmt.Errorf("%w: memory", ErrMissingExport)
	}
	return e, nil
}

// Close releases the runtime and every instance created from it.
func (m *Module) Close() error {
	return m.runtime.Close(m.ctx)
}

// call invokes fn and turns a trap into a HostTransferFault for phase.
func call(ctx context.Context, phase emucore.Phase, fn api.Function, name string, params ...uint64) ([]uint64, error) {
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, &emucore.HostTransferFault{Phase: phase, Op: name, Err: err}
	}
	return results, nil
}
