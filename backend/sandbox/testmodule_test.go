package sandbox

// Minimal wasm assembler for a stub core module used by the tests.
//
// Memory layout of the stub:
//
//	0x0000  length passed to wasm_buffer_new
//	0x0004  number of wasm_buffer_drop calls
//	0x0008  1 once wasm_core_new accepted an image
//	0x000C  last controller byte
//	0x0010  frame counter
//	0x1000  screen buffer
//	0x40000 transfer buffer
//
// wasm_core_new traps unless the image starts with 'N'. wasm_core_run_frame
// traps on controller byte 0xFF and otherwise writes the controller byte
// and the frame counter into the first two bytes of the screen buffer.

const (
	addrLength   = 0x0000
	addrDrops    = 0x0004
	addrLoaded   = 0x0008
	addrInput    = 0x000C
	addrFrames   = 0x0010
	addrScreen   = 0x1000
	addrTransfer = 0x40000
)

const (
	opUnreachable = 0x00
	opIf          = 0x04
	opEnd         = 0x0B
	opLocalGet    = 0x20
	opI32Load     = 0x28
	opI32Load8U   = 0x2D
	opI32Store    = 0x36
	opI32Store8   = 0x3A
	opI32Const    = 0x41
	opI32Eqz      = 0x45
	opI32Eq       = 0x46
	opI32Ne       = 0x47
	opI32Add      = 0x6A

	valI32    = 0x7F
	blockVoid = 0x40
)

type stubOptions struct {
	bulk bool   // export wasm_buffer_ptr
	omit string // leave out an export
}

type stubFunc struct {
	name string
	typ  byte
	body []byte
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func i32(v int32) []byte {
	return append([]byte{opI32Const}, sleb(v)...)
}

func local(i byte) []byte {
	return []byte{opLocalGet, i}
}

func ops(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var (
	load    = []byte{opI32Load, 0x02, 0x00}
	load8   = []byte{opI32Load8U, 0x00, 0x00}
	store   = []byte{opI32Store, 0x02, 0x00}
	store8  = []byte{opI32Store8, 0x00, 0x00}
	add     = []byte{opI32Add}
	trapIf  = []byte{opIf, blockVoid, opUnreachable, opEnd}
	bodyEnd = []byte{opEnd}
)

func section(id byte, payload []byte) []byte {
	return ops([]byte{id}, uleb(uint32(len(payload))), payload)
}

func vector(items [][]byte) []byte {
	return ops(uleb(uint32(len(items))), ops(items...))
}

func wasmName(s string) []byte {
	return ops(uleb(uint32(len(s))), []byte(s))
}

// Function type indices.
const (
	typeI32ToI32 = iota
	typeI32x3
	typeI32
	typeVoid
	typeToI32
)

func stubModule(opts stubOptions) []byte {
	types := [][]byte{
		{0x60, 1, valI32, 1, valI32},
		{0x60, 3, valI32, valI32, valI32, 0},
		{0x60, 1, valI32, 0},
		{0x60, 0, 0},
		{0x60, 0, 1, valI32},
	}

	funcs := []stubFunc{
		{ExportBufferNew, typeI32ToI32, ops(
			i32(addrLength), local(0), store,
			i32(addrTransfer),
		)},
		{ExportBufferSet, typeI32x3, ops(
			local(0), local(1), add, local(2), store8,
		)},
		{ExportBufferDrop, typeI32, ops(
			i32(addrDrops), i32(addrDrops), load, i32(1), add, store,
		)},
		{ExportCoreNew, typeI32, ops(
			local(0), load8, i32('N'), []byte{opI32Ne}, trapIf,
			i32(addrLoaded), i32(1), store,
		)},
		{ExportSetInput, typeI32, ops(
			i32(addrInput), local(0), store8,
		)},
		{ExportRunFrame, typeVoid, ops(
			i32(addrLoaded), load, []byte{opI32Eqz}, trapIf,
			i32(addrInput), load8, i32(0xFF), []byte{opI32Eq}, trapIf,
			i32(addrFrames), i32(addrFrames), load, i32(1), add, store,
			i32(addrScreen), i32(addrInput), load8, store8,
			i32(addrScreen+1), i32(addrFrames), load8, store8,
		)},
		{ExportScreenBuffer, typeToI32, ops(
			i32(addrScreen),
		)},
	}
	if opts.bulk {
		funcs = append(funcs, stubFunc{ExportBufferPtr, typeI32ToI32, local(0)})
	}

	var funcTypes, exports, bodies [][]byte
	for i, f := range funcs {
		funcTypes = append(funcTypes, []byte{f.typ})
		if f.name != opts.omit {
			exports = append(exports, ops(wasmName(f.name), []byte{0x00}, uleb(uint32(i))))
		}
		body := ops([]byte{0x00}, f.body, bodyEnd)
		bodies = append(bodies, ops(uleb(uint32(len(body))), body))
	}
	if opts.omit != "memory" {
		exports = append(exports, ops(wasmName("memory"), []byte{0x02, 0x00}))
	}

	// 8 pages holds the screen buffer and a 256 KiB transfer buffer.
	memory := vector([][]byte{{0x00, 0x08}})

	return ops(
		[]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00},
		section(1, vector(types)),
		section(3, vector(funcTypes)),
		section(5, memory),
		section(7, vector(exports)),
		section(10, vector(bodies)),
	)
}
