package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lunalang/luna/internal/value"
)

func TestChunkWriteAndLines(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpConstant, 1)
	c.Write(0, 1)
	c.WriteOp(OpReturn, 2)

	assert.Equal(t, []byte{byte(OpConstant), 0, byte(OpReturn)}, c.Code)
	assert.Equal(t, []int{1, 1, 2}, c.Lines)
	assert.Equal(t, 3, c.Len())
}

func TestAddConstantCapsAt256(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 256; i++ {
		idx := c.AddConstant(value.Number(float64(i)))
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, -1, c.AddConstant(value.Number(256)), "the 257th constant must be rejected")
	assert.Len(t, c.Constants, 256)
}

func TestNewStringHashesConsistently(t *testing.T) {
	s1 := NewString("hi", HashBytes("hi"))
	s2 := NewString("hi", HashBytes("hi"))
	// NewString itself does not intern (that's the allocator's job); it
	// only guarantees the hash is computed consistently.
	assert.Equal(t, s1.Hash(), s2.Hash())
}

func TestFunctionInspect(t *testing.T) {
	anon := NewFunction()
	assert.Equal(t, "<script>", anon.Inspect())

	named := NewFunction()
	named.Name = NewString("f", HashBytes("f"))
	assert.Equal(t, "<fn f>", named.Inspect())
}
