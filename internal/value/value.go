// Package value implements Luna's tagged-union runtime Value and the
// object reference interface it can carry.
package value

import (
	"fmt"
	"math"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Object is implemented by every heap-managed type (string, function,
// closure, upvalue, struct, instance, bound method, list, native). It is
// deliberately minimal: the GC and the interning table only need a kind
// tag, a human-readable form, and a hash.
type Object interface {
	Kind() ObjectKind
	Inspect() string
	Hash() uint32
}

// ObjectKind identifies which heap object variant an Object is.
type ObjectKind uint8

const (
	ObjString ObjectKind = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjStruct
	ObjInstance
	ObjBoundMethod
	ObjList
)

// Value is a stack-allocated tagged union: Null, Bool, Number, or a
// reference to a managed heap Object. Bool and Number live inline so
// boolean and arithmetic operations never allocate.
type Value struct {
	kind   Kind
	bits   uint64
	object Object
}

// Null is the single Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{kind: KindBool, bits: bits}
}

// Number wraps a float64.
func Number(n float64) Value {
	return Value{kind: KindNumber, bits: math.Float64bits(n)}
}

// FromObject wraps a managed heap object.
func FromObject(o Object) Value {
	return Value{kind: KindObject, object: o}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsFalsey follows Luna's truthiness rule: null and false are falsey,
// everything else (including 0 and the empty string) is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == KindNull || (v.kind == KindBool && v.bits == 0)
}

func (v Value) AsBool() bool {
	return v.bits == 1
}

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.bits)
}

func (v Value) AsObject() Object {
	return v.object
}

// Equal implements Value equality: Null equals Null, bools and numbers
// compare structurally, and object references compare by identity (which,
// thanks to interning, also covers string content equality).
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindNumber:
		return v.bits == other.bits
	case KindObject:
		return v.object == other.object
	default:
		return false
	}
}

// Inspect renders a Value the way Luna's print/println opcodes do.
func (v Value) Inspect() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.bits == 1 {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.AsNumber())
	case KindObject:
		if v.object == nil {
			return "<nil>"
		}
		return v.object.Inspect()
	default:
		return "<?>"
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "nan"
	}
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	// Negative zero prints as "0", matching IEEE-754 equality with +0.
	if n == 0 {
		return "0"
	}
	return fmt.Sprintf("%g", n)
}

// Hash mixes bools/numbers/null by bit pattern and delegates to the
// object's own hash for heap references (FNV-1a for strings).
func (v Value) Hash() uint32 {
	switch v.kind {
	case KindObject:
		if v.object == nil {
			return 0
		}
		return v.object.Hash()
	default:
		return uint32(v.bits ^ (v.bits >> 32))
	}
}
