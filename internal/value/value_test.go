package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeObject struct{ id string }

func (f *fakeObject) Kind() ObjectKind { return ObjString }
func (f *fakeObject) Inspect() string  { return f.id }
func (f *fakeObject) Hash() uint32     { return 0 }

func TestEquality(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.True(t, Bool(true).Equal(Bool(true)))
	assert.False(t, Bool(true).Equal(Bool(false)))
	assert.True(t, Number(3).Equal(Number(3)))
	assert.False(t, Number(3).Equal(Number(4)))
	assert.False(t, Null().Equal(Bool(false)), "null and false are distinct kinds")
}

func TestObjectEqualityIsByIdentity(t *testing.T) {
	a := &fakeObject{id: "a"}
	b := &fakeObject{id: "a"}
	assert.True(t, FromObject(a).Equal(FromObject(a)))
	assert.False(t, FromObject(a).Equal(FromObject(b)), "distinct objects with equal content are not equal")
}

func TestIsFalsey(t *testing.T) {
	assert.True(t, Null().IsFalsey())
	assert.True(t, Bool(false).IsFalsey())
	assert.False(t, Bool(true).IsFalsey())
	assert.False(t, Number(0).IsFalsey(), "0 is truthy in Luna")
	assert.False(t, FromObject(&fakeObject{}).IsFalsey())
}

func TestInspect(t *testing.T) {
	assert.Equal(t, "null", Null().Inspect())
	assert.Equal(t, "true", Bool(true).Inspect())
	assert.Equal(t, "7", Number(7).Inspect())
	assert.Equal(t, "0", Number(0).Inspect())
	assert.Equal(t, "0", Number(math.Copysign(0, -1)).Inspect(), "negative zero prints as 0")
}
