package compiler

import (
	"github.com/lunalang/luna/internal/object"
	"github.com/lunalang/luna/internal/value"
)

// maxLocals/maxUpvalues mirror UINT8_COUNT (256) in the source: a function
// may declare at most 256 locals and capture at most 256 upvalues.
const (
	maxLocals   = 256
	maxUpvalues = 256
)

// FunctionType distinguishes the kind of code body a funcState compiles,
// which changes both its implicit-return shape and what reserved name (if
// any) occupies local slot 0.
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeScript
	TypeMethod
	TypeInitializer
	TypeImport
)

// Local is a resolved-by-name stack slot. Depth -1 means "declared but not
// yet initialized" — resolveLocal treats a hit at depth -1 as the
// self-initializer error.
type Local struct {
	Name       string
	Depth      int
	IsCaptured bool
}

// Upvalue is a capture descriptor: either Index names a slot in the
// immediately enclosing function's locals (IsLocal true), or it names one
// of that enclosing function's own upvalues (IsLocal false).
type Upvalue struct {
	Index   uint8
	IsLocal bool
}

// funcState is the per-function compiler frame. funcStates form a stack
// via enclosing, one per nested def/method/initializer/import currently
// being compiled — this is the compiler-chain the collector walks as
// roots while compilation is in progress.
type funcState struct {
	enclosing *funcState
	function  *object.Function
	typ       FunctionType

	locals    [maxLocals]Local
	localCount int

	upvalues     [maxUpvalues]Upvalue
	upvalueCount int

	scopeDepth int
}

func (c *Compiler) newFuncState(typ FunctionType, name *object.String) *funcState {
	fs := &funcState{enclosing: c.currentFn, typ: typ}
	fs.function = c.alloc.NewFunction()
	fs.function.Name = name

	if typ == TypeImport {
		// Reuses the enclosing function: module code is appended in
		// place rather than wrapped in its own callable, matching
		// importModule's initCompiler(&compiler, TYPE_IMPORT) reuse.
		fs.function = c.currentFn.function
	}

	// Slot 0 is reserved. Named "self" for anything that can see a
	// receiver (methods, initializers, the top-level script); empty for
	// plain functions and imports, which have none.
	slotName := ""
	if typ != TypeFunction && typ != TypeImport {
		slotName = "self"
	}
	fs.locals[0] = Local{Name: slotName, Depth: 0}
	fs.localCount = 1

	return fs
}

func (c *Compiler) currentChunk() *object.Chunk {
	return &c.currentFn.function.Chunk
}

func (c *Compiler) beginScope() {
	c.currentFn.scopeDepth++
}

// endScope pops every local declared at or below the scope just exited.
// Grounded on compiler.c's endScope exactly: each local gets an
// unconditional Pop, followed by a second Pop for an uncaptured local or a
// CloseUpvalue for a captured one — two opcodes per exiting local, not one.
// This is a literal double-emit in the original and is preserved here
// rather than "fixed", since spec.md §4.3 describes it and §9's redesign
// flags do not name it.
func (c *Compiler) endScope(line int) {
	c.currentFn.scopeDepth--

	for c.currentFn.localCount > 0 && c.currentFn.locals[c.currentFn.localCount-1].Depth > c.currentFn.scopeDepth {
		c.emit(object.OpPop, line)
		if c.currentFn.locals[c.currentFn.localCount-1].IsCaptured {
			c.emit(object.OpCloseUpvalue, line)
		} else {
			c.emit(object.OpPop, line)
		}
		c.currentFn.localCount--
	}
}

func (c *Compiler) addLocal(name string) {
	if c.currentFn.localCount >= maxLocals {
		c.errorAtPrevious("Too many local variables in function.")
		return
	}
	c.currentFn.locals[c.currentFn.localCount] = Local{Name: name, Depth: -1}
	c.currentFn.localCount++
}

// resolveLocal scans the current function's locals top-down. A hit at
// depth -1 means the name is being read from within its own initializer.
func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	for i := fs.localCount - 1; i >= 0; i-- {
		if fs.locals[i].Name == name {
			if fs.locals[i].Depth == -1 {
				c.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recurses into the enclosing funcState. A hit in its
// locals marks that local captured and registers a local-indexed upvalue;
// a hit in its own upvalues registers a non-local (chained) upvalue.
func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}

	if local := c.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].IsCaptured = true
		return c.addUpvalue(fs, uint8(local), true)
	}

	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, uint8(up), false)
	}

	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	for i := 0; i < fs.upvalueCount; i++ {
		if fs.upvalues[i].Index == index && fs.upvalues[i].IsLocal == isLocal {
			return i
		}
	}

	if fs.upvalueCount >= maxUpvalues {
		c.errorAtPrevious("Too many closure variables in function.")
		return 0
	}

	fs.upvalues[fs.upvalueCount] = Upvalue{Index: index, IsLocal: isLocal}
	fs.upvalueCount++
	return fs.upvalueCount - 1
}

// emit helpers

func (c *Compiler) emit(op object.Opcode, line int) {
	c.currentChunk().WriteOp(op, line)
}

func (c *Compiler) emitByte(b byte, line int) {
	c.currentChunk().Write(b, line)
}

func (c *Compiler) emitConstant(v value.Value, line int) {
	idx := c.currentChunk().AddConstant(v)
	if idx < 0 {
		c.errorAtPrevious("too many constants in one chunk")
		idx = 0
	}
	c.emit(object.OpConstant, line)
	c.emitByte(byte(idx), line)
}

// emitJump emits op followed by a two-byte placeholder operand, returning
// the offset of the placeholder for patchJump to fill in later.
func (c *Compiler) emitJump(op object.Opcode, line int) int {
	c.emit(op, line)
	c.emitByte(0xff, line)
	c.emitByte(0xff, line)
	return c.currentChunk().Len() - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := c.currentChunk().Len() - offset - 2
	if jump > 0xffff {
		c.errorAtPrevious("Too much code to jump over.")
		return
	}
	chunk := c.currentChunk()
	chunk.Code[offset] = byte(jump >> 8)
	chunk.Code[offset+1] = byte(jump)
}

// emitLoop emits a backward Loop jump to loopStart.
func (c *Compiler) emitLoop(loopStart, line int) {
	c.emit(object.OpLoop, line)
	offset := c.currentChunk().Len() - loopStart + 2
	if offset > 0xffff {
		c.errorAtPrevious("Loop body too large.")
	}
	c.emitByte(byte(offset>>8), line)
	c.emitByte(byte(offset), line)
}

// emitReturn emits the implicit return every function body ends with: an
// initializer returns its own receiver (slot 0), everything else returns
// null.
func (c *Compiler) emitReturn(line int) {
	if c.currentFn.typ == TypeInitializer {
		c.emit(object.OpGetLocal, line)
		c.emitByte(0, line)
	} else {
		c.emit(object.OpNull, line)
	}
	c.emit(object.OpReturn, line)
}
