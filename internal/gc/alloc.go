package gc

import (
	"github.com/lunalang/luna/internal/object"
	"github.com/lunalang/luna/internal/value"
)

// Allocator is the single entry point managed objects are created through,
// mirroring LunaVM's allocateObject/reallocate discipline: every new heap
// object is tracked by a Collector, and string interning is table-consulted
// before anything is allocated at all.
type Allocator struct {
	gc      *Collector
	strings map[string]*object.String
}

func NewAllocator(gc *Collector) *Allocator {
	return &Allocator{gc: gc, strings: make(map[string]*object.String)}
}

// sizeof approximates the accounting weight reallocate() would track for a
// freshly allocated object. Exact byte-for-byte parity with a C struct
// layout isn't meaningful in Go; what matters for nextGC accounting is
// that larger objects (a string's bytes, a chunk's constants) count for
// more than a bare header, which is all bytesAllocated needs for the
// cadence of collectGarbage to behave sensibly.
func sizeof(extra int) uint64 {
	const headerSize = 24
	return uint64(headerSize + extra)
}

// CopyString interns chars, returning the existing interned String if an
// equal one is already known, or allocating (and tracking) a new one.
// Grounded on object.c's copyString: a hit returns the existing object
// untouched; a miss allocates fresh and inserts into the table.
func (a *Allocator) CopyString(chars string) *object.String {
	if s, ok := a.strings[chars]; ok {
		return s
	}
	return a.allocateString(chars, object.HashBytes(chars))
}

// allocateString mirrors allocateString in object.c: the new string is
// pinned on the collector's root stack for the duration of the table
// insert, so a collection step triggered by that insert (in a real VM,
// table growth can itself allocate) cannot sweep a string that has no
// other root yet.
func (a *Allocator) allocateString(chars string, hash uint32) *object.String {
	s := object.NewString(chars, hash)
	a.gc.Pin(s)
	a.strings[chars] = s
	a.gc.Unpin()
	a.gc.Track(s, sizeof(len(chars)))
	return s
}

// NewFunction allocates a fresh, empty Function.
func (a *Allocator) NewFunction() *object.Function {
	f := object.NewFunction()
	a.gc.Track(f, sizeof(0))
	return f
}

// NewClosure allocates a Closure over fn with an upvalue slot per
// fn.UpvalueCount.
func (a *Allocator) NewClosure(fn *object.Function) *object.Closure {
	c := object.NewClosure(fn)
	a.gc.Track(c, sizeof(8*fn.UpvalueCount))
	return c
}

// NewUpvalue allocates an open Upvalue referencing the given stack slot.
func (a *Allocator) NewUpvalue(slot int) *object.Upvalue {
	u := object.NewUpvalue(slot)
	a.gc.Track(u, sizeof(0))
	return u
}

// NewStruct allocates a Struct named by the given interned string.
func (a *Allocator) NewStruct(name *object.String) *object.Struct {
	s := object.NewStruct(name)
	a.gc.Track(s, sizeof(0))
	return s
}

// NewInstance allocates an Instance of klass with an empty field table.
func (a *Allocator) NewInstance(klass *object.Struct) *object.Instance {
	i := object.NewInstance(klass)
	a.gc.Track(i, sizeof(0))
	return i
}

// NewBoundMethod allocates a BoundMethod pairing receiver with method.
func (a *Allocator) NewBoundMethod(receiver value.Value, method *object.Closure) *object.BoundMethod {
	b := &object.BoundMethod{Receiver: receiver, Method: method}
	a.gc.Track(b, sizeof(0))
	return b
}

// NewList allocates an empty List.
func (a *Allocator) NewList() *object.List {
	l := object.NewList()
	a.gc.Track(l, sizeof(0))
	return l
}

// NewNative wraps fn as a callable native object.
func (a *Allocator) NewNative(name string, arity int, fn object.NativeFn) *object.Native {
	n := &object.Native{Name: name, Arity: arity, Function: fn}
	a.gc.Track(n, sizeof(0))
	return n
}
