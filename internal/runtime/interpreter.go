// Package runtime declares the seam between this repository and a
// conforming Luna interpreter. spec.md §1 names the bytecode interpreter
// (the VM loop), native/foreign function bindings, and the REPL/file
// driver's execution step as "external collaborators ... specified only by
// interface" — this package is that specification, not an implementation.
// Nothing in internal/compiler, internal/gc, or internal/object depends on
// it, and cmd/luna does not take an Interpreter: it stops after compiling
// and reporting diagnostics.
package runtime

import "github.com/lunalang/luna/internal/object"

// Interpreter executes a compiled top-level Function. A conforming
// implementation walks the function's Chunk with a bytecode VM loop
// (spec.md §6's opcode table: Call/Closure/Invoke/SuperInvoke and the rest),
// allocating further managed objects through the same gc.Allocator that
// produced fn, and feeding the same gc.Collector its stack/frame/global/
// open-upvalue roots via gc.RootSource so collection can interleave with
// execution exactly as it interleaves with compilation.
type Interpreter interface {
	Run(fn *object.Function) error
}

// NativeFn fixes the calling convention a native/foreign binding table must
// use. Concrete bindings (graphics, I/O, math libraries) are themselves
// external collaborators per spec.md §1; this type only names their shape
// so object.Native values have a consistent signature to wrap.
type NativeFn = object.NativeFn
