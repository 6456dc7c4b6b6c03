// Package object implements Luna's managed heap objects: the String,
// Function, Native, Closure, Upvalue, Struct, Instance, BoundMethod, and
// List variants that back value.Value's Object reference case.
//
// Every managed object embeds Header, which the collector in internal/gc
// uses to track reachability and heap-list membership without needing a
// separate side table.
package object

import (
	"fmt"
	"hash/fnv"
	"unsafe"

	"github.com/lunalang/luna/internal/value"
)

// identityHash returns a hash derived from an object's address. Used for
// heap objects whose equality is identity, not content (functions,
// closures, structs, instances, bound methods, upvalues, lists).
func identityHash(p unsafe.Pointer) uint32 {
	addr := uintptr(p)
	return uint32(addr ^ (addr >> 32))
}

// Header is the GC bookkeeping every heap object carries: whether it
// survived the current mark phase, whether it existed before the current
// cycle began, and its link in the process-wide intrusive heap list.
type Header struct {
	Marked      bool
	OnCurrentGC bool
	Next        Managed
}

// Managed is implemented by every concrete heap object. It extends
// value.Object with header access so the collector can walk and mark the
// heap without a type switch at the header level.
type Managed interface {
	value.Object
	GCHeader() *Header
}

// String is an immutable, interned byte sequence.
type String struct {
	Header
	Chars string
	hash  uint32
}

// NewString wraps chars with its precomputed FNV-1a hash. Callers go
// through the interning table (see internal/gc's Allocator.CopyString) rather than
// constructing Strings directly, so identical content always yields the
// identical object.
func NewString(chars string, hash uint32) *String {
	return &String{Chars: chars, hash: hash}
}

func (s *String) Kind() value.ObjectKind { return value.ObjString }
func (s *String) Inspect() string        { return s.Chars }
func (s *String) Hash() uint32           { return s.hash }
func (s *String) GCHeader() *Header      { return &s.Header }

// HashBytes computes the FNV-1a hash Luna uses for string interning.
func HashBytes(b string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(b))
	return h.Sum32()
}

// Function is a compiled, callable unit of bytecode: a chunk plus arity
// and upvalue-count metadata the VM needs to set up call frames.
type Function struct {
	Header
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *String // nil for the top-level script function
}

func NewFunction() *Function {
	return &Function{Chunk: NewChunk()}
}

func (f *Function) Kind() value.ObjectKind { return value.ObjFunction }
func (f *Function) Inspect() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}
func (f *Function) Hash() uint32    { return identityHash(unsafe.Pointer(f)) }
func (f *Function) GCHeader() *Header { return &f.Header }

// NativeFn is a foreign callable exposed to Luna code.
type NativeFn func(args []value.Value) (value.Value, error)

// Native wraps a Go function as a callable Luna value.
type Native struct {
	Header
	Name     string
	Arity    int
	Function NativeFn
}

func (n *Native) Kind() value.ObjectKind { return value.ObjNative }
func (n *Native) Inspect() string        { return "<native fn>" }
func (n *Native) Hash() uint32           { return HashBytes(n.Name) }
func (n *Native) GCHeader() *Header      { return &n.Header }

// Closure pairs a compiled Function with the upvalues it captured at
// creation time.
type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func NewClosure(fn *Function) *Closure {
	return &Closure{Function: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

func (c *Closure) Kind() value.ObjectKind { return value.ObjClosure }
func (c *Closure) Inspect() string        { return c.Function.Inspect() }
func (c *Closure) Hash() uint32    { return identityHash(unsafe.Pointer(c)) }
func (c *Closure) GCHeader() *Header      { return &c.Header }

// Upvalue is either open (Location names a live VM stack slot) or closed
// (the frame it referenced has returned, so Closed now owns the value).
// Location == -1 marks a closed upvalue. Open upvalues form a singly
// linked list, sorted by stack position, so the VM can find-or-create one
// per slot and close them in order when a frame unwinds.
type Upvalue struct {
	Header
	Location int
	Closed   value.Value
	Next     *Upvalue
}

func NewUpvalue(slot int) *Upvalue {
	return &Upvalue{Location: slot, Closed: value.Null()}
}

func (u *Upvalue) IsOpen() bool { return u.Location >= 0 }

func (u *Upvalue) Kind() value.ObjectKind { return value.ObjUpvalue }
func (u *Upvalue) Inspect() string        { return "<upvalue>" }
func (u *Upvalue) Hash() uint32    { return identityHash(unsafe.Pointer(u)) }
func (u *Upvalue) GCHeader() *Header      { return &u.Header }

// Struct is Luna's class-like template: a name and a method table. Single
// inheritance is realized at Inherit-time by copying the superstruct's
// method entries into the subclass's table before its own methods
// overwrite any of the same name.
type Struct struct {
	Header
	Name    *String
	Methods map[string]*Closure
}

func NewStruct(name *String) *Struct {
	return &Struct{Name: name, Methods: make(map[string]*Closure)}
}

func (s *Struct) Kind() value.ObjectKind { return value.ObjStruct }
func (s *Struct) Inspect() string        { return fmt.Sprintf("<struct %s>", s.Name.Chars) }
func (s *Struct) Hash() uint32      { return identityHash(unsafe.Pointer(s)) }
func (s *Struct) GCHeader() *Header      { return &s.Header }

// Instance is a live object of a Struct: a reference to its class plus its
// own field table.
type Instance struct {
	Header
	Struct *Struct
	Fields map[string]value.Value
}

func NewInstance(klass *Struct) *Instance {
	return &Instance{Struct: klass, Fields: make(map[string]value.Value)}
}

func (i *Instance) Kind() value.ObjectKind { return value.ObjInstance }
func (i *Instance) Inspect() string        { return fmt.Sprintf("<%s instance>", i.Struct.Name.Chars) }
func (i *Instance) Hash() uint32    { return identityHash(unsafe.Pointer(i)) }
func (i *Instance) GCHeader() *Header      { return &i.Header }

// BoundMethod pairs a receiver with the Closure resolved for it, letting
// `obj.method` be passed around as a first-class callable value.
type BoundMethod struct {
	Header
	Receiver value.Value
	Method   *Closure
}

func (b *BoundMethod) Kind() value.ObjectKind { return value.ObjBoundMethod }
func (b *BoundMethod) Inspect() string        { return b.Method.Inspect() }
func (b *BoundMethod) Hash() uint32 { return identityHash(unsafe.Pointer(b)) }
func (b *BoundMethod) GCHeader() *Header      { return &b.Header }

// List is a growable array of Values. Unlike the source this is grounded
// on, element count is not capped at 255 here: the compiler enforces the
// 255-element limit on list *literals* (spec), but a runtime list grown by
// append has no reason to inherit an 8-bit length field, so the length is
// a plain int. See DESIGN.md for the open question this resolves.
type List struct {
	Header
	Elements []value.Value
}

func NewList() *List {
	return &List{}
}

func (l *List) Append(v value.Value) {
	l.Elements = append(l.Elements, v)
}

func (l *List) Kind() value.ObjectKind { return value.ObjList }
func (l *List) Inspect() string        { return "<list>" }
func (l *List) Hash() uint32        { return identityHash(unsafe.Pointer(l)) }
func (l *List) GCHeader() *Header      { return &l.Header }
