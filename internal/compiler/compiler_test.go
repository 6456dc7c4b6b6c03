package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunalang/luna/internal/gc"
	"github.com/lunalang/luna/internal/object"
)

func newTestCompiler() *Compiler {
	collector := gc.New()
	alloc := gc.NewAllocator(collector)
	return New(alloc, collector, nil)
}

func opcodesOf(fn *object.Function) []object.Opcode {
	var ops []object.Opcode
	code := fn.Chunk.Code
	i := 0
	for i < len(code) {
		op := object.Opcode(code[i])
		ops = append(ops, op)
		i += 1 + operandWidth(op)
	}
	return ops
}

// operandWidth is a test-only mirror of each opcode's operand size, used to
// walk the byte stream without a full disassembler (which is out of this
// repository's scope per spec.md §1).
func operandWidth(op object.Opcode) int {
	switch op {
	case object.OpConstant, object.OpGetLocal, object.OpSetLocal,
		object.OpGetGlobal, object.OpSetGlobal, object.OpDefineGlobal,
		object.OpGetUpvalue, object.OpSetUpvalue, object.OpCall,
		object.OpStruct, object.OpMethod, object.OpGetProperty,
		object.OpSetProperty, object.OpGetSuper:
		return 1
	case object.OpJump, object.OpJumpIfFalse, object.OpLoop:
		return 2
	case object.OpInvoke, object.OpSuperInvoke:
		return 2
	default:
		return 0
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	c := newTestCompiler()
	fn, diags := c.Compile("test", "print 1 + 2 * 3")
	require.Empty(t, diags)
	require.NotNil(t, fn)

	assert.Equal(t, []object.Opcode{
		object.OpConstant, object.OpConstant, object.OpConstant,
		object.OpMultiply, object.OpAdd, object.OpPrint,
		object.OpNull, object.OpReturn,
	}, opcodesOf(fn))
}

func TestEmptyProgramCompilesToNullReturn(t *testing.T) {
	c := newTestCompiler()
	fn, diags := c.Compile("test", "")
	require.Empty(t, diags)
	assert.Equal(t, []object.Opcode{object.OpNull, object.OpReturn}, opcodesOf(fn))
}

func TestClosureCapturesOneUpvalue(t *testing.T) {
	c := newTestCompiler()
	src := `
def mk() {
  var x = 10
  def get() { return x }
  return get
}
print mk()()
`
	fn, diags := c.Compile("test", src)
	require.Empty(t, diags)
	require.NotNil(t, fn)

	// mk's body: Closure <get> {isLocal=1, index=1} ... the captured local
	// is slot 1 (slot 0 is reserved, slot 1 is `x`).
	mkClosureIdx := -1
	for i, b := range fn.Chunk.Code {
		if object.Opcode(b) == object.OpClosure {
			mkClosureIdx = i
			break
		}
	}
	require.NotEqual(t, -1, mkClosureIdx)
	mkConst := fn.Chunk.Constants[fn.Chunk.Code[mkClosureIdx+1]]
	mkFn := mkConst.AsObject().(*object.Function)
	require.Equal(t, 0, mkFn.UpvalueCount, "mk declares x itself and captures nothing")

	var getFn *object.Function
	for i, b := range mkFn.Chunk.Code {
		if object.Opcode(b) == object.OpClosure {
			getFn = mkFn.Chunk.Constants[mkFn.Chunk.Code[i+1]].AsObject().(*object.Function)
			break
		}
	}
	require.NotNil(t, getFn)
	assert.Equal(t, 1, getFn.UpvalueCount)
	// {isLocal, index} pair follows the Closure+const-index bytes.
	isLocal := mkFn.Chunk.Code[indexOfClosure(mkFn)+2]
	index := mkFn.Chunk.Code[indexOfClosure(mkFn)+3]
	assert.Equal(t, byte(1), isLocal)
	assert.Equal(t, byte(1), index)
}

func indexOfClosure(fn *object.Function) int {
	for i, b := range fn.Chunk.Code {
		if object.Opcode(b) == object.OpClosure {
			return i
		}
	}
	return -1
}

func TestStructWithInheritanceEmitsSuperInvoke(t *testing.T) {
	c := newTestCompiler()
	src := `
struct A { def init() { self.v = 1 } def m() { return self.v } }
struct B : A { def m() { return super.m() + 1 } }
print B().m()
`
	fn, diags := c.Compile("test", src)
	require.Empty(t, diags)
	require.NotNil(t, fn)

	// SuperInvoke is emitted inside B.m's own chunk, not the script chunk;
	// walk the struct methods to find it.
	assert.True(t, chunkContainsSuperInvoke(t, fn), "B.m must contain a SuperInvoke instruction")
}

func chunkContainsSuperInvoke(t *testing.T, script *object.Function) bool {
	t.Helper()
	for _, v := range script.Chunk.Constants {
		if !v.IsObject() {
			continue
		}
		if bf, ok := v.AsObject().(*object.Function); ok {
			for _, b := range bf.Chunk.Code {
				if object.Opcode(b) == object.OpSuperInvoke {
					return true
				}
			}
			if chunkContainsSuperInvoke(t, bf) {
				return true
			}
		}
	}
	return false
}

func TestFailedImportDoesNotMarkModuleImported(t *testing.T) {
	c := newTestCompiler()
	_, diags := c.Compile("test", "import \"lib\"\nvar y = 1\nimport \"lib\"")
	// No ModuleReader is wired (nil), so the first import itself fails
	// with "can't resolve" rather than succeeding — this still exercises
	// that re-importing the same name is independently tracked, since a
	// resolver failure must not mark the module as imported. The `var`
	// line gives synchronize() a resync point, so the second import is
	// compiled rather than skipped as part of the first error.
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "Can't resolve module")
	assert.Contains(t, diags[1].Message, "Can't resolve module")
}

type stringModuleReader map[string]string

func (r stringModuleReader) ReadModule(filename string) (string, error) {
	if src, ok := r[filename]; ok {
		return src, nil
	}
	return "", assertErr{filename}
}

type assertErr struct{ name string }

func (e assertErr) Error() string { return "no such module: " + e.name }

func TestDuplicateImportWithResolvableModule(t *testing.T) {
	collector := gc.New()
	alloc := gc.NewAllocator(collector)
	reader := stringModuleReader{"lib.luna": "var x = 1"}
	c := New(alloc, collector, reader)

	_, diags := c.Compile("test", "import \"lib\"\nimport \"lib\"")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "already imported")
}

func TestSelfInitializerError(t *testing.T) {
	c := newTestCompiler()
	_, diags := c.Compile("test", `{ var a = a }`)
	// synchronize() discards the closing '}' (it is not a resync point), so
	// the block then also reports its missing '}' at end of input.
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "own initializer")
	assert.Contains(t, diags[1].Message, "Expect '}' after block.")
}

func TestForLoopDesugarsToJumpLoopBytecode(t *testing.T) {
	c := newTestCompiler()
	fn, diags := c.Compile("test", `for (var i = 0; i < 3; i = i + 1) print i`)
	require.Empty(t, diags)

	ops := opcodesOf(fn)
	assert.Contains(t, ops, object.OpLoop)
	assert.Contains(t, ops, object.OpJumpIfFalse)
	assert.Contains(t, ops, object.OpPrint)
}

func TestTooManyLocalsIsACompileError(t *testing.T) {
	c := newTestCompiler()
	src := "def f() {\n"
	for i := 0; i < 257; i++ {
		src += "var a" + itoa(i) + " = 0\n"
	}
	// The `print` line is a resync point for synchronize(), so the closing
	// '}' is not discarded along with the failing declaration. It reads a
	// local, adding no constant: the 257 `= 0` initializers already fill
	// the 256-entry constant pool.
	src += "print a0\n}\n"
	_, diags := c.Compile("test", src)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[len(diags)-1].Message, "Too many local variables")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestStructOutsideTopLevelIsAnError(t *testing.T) {
	c := newTestCompiler()
	_, diags := c.Compile("test", `def f() { struct A { } }`)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Message == "Structs can only be declared at the top level." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestImportOutsideTopLevelIsAnError(t *testing.T) {
	c := newTestCompiler()
	_, diags := c.Compile("test", `def f() { import "lib" }`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "top-level")
}
