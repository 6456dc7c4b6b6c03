package compiler

import (
	"strings"

	"github.com/lunalang/luna/internal/object"
	"github.com/lunalang/luna/internal/scanner"
	"github.com/lunalang/luna/internal/token"
	"github.com/lunalang/luna/internal/value"
)

// declaration is the top-level dispatcher: struct/def/var declarations, or
// any other token falls through to statement(). A synchronize() call after
// a failed declaration keeps one bad line from cascading into a wall of
// spurious errors.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.Struct):
		c.structDeclaration()
	case c.match(token.Def):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	case c.match(token.Import):
		c.importDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	line := c.previous.Line
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.Println):
		c.printlnStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement(line)
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope(c.previous.Line)
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	line := c.previous.Line
	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emit(object.OpNull, line)
	}

	c.defineVariable(global, c.previous.Line)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.emit(object.OpPop, c.previous.Line)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.emit(object.OpPrint, c.previous.Line)
}

func (c *Compiler) printlnStatement() {
	c.expression()
	c.emit(object.OpPrintln, c.previous.Line)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(object.OpJumpIfFalse, c.previous.Line)
	c.emit(object.OpPop, c.previous.Line)
	c.statement()

	elseJump := c.emitJump(object.OpJump, c.previous.Line)
	c.patchJump(thenJump)
	c.emit(object.OpPop, c.previous.Line)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.currentChunk().Len()
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(object.OpJumpIfFalse, c.previous.Line)
	c.emit(object.OpPop, c.previous.Line)
	c.statement()
	c.emitLoop(loopStart, c.previous.Line)

	c.patchJump(exitJump)
	c.emit(object.OpPop, c.previous.Line)
}

// forStatement desugars `for (init; cond; incr) body` into the equivalent
// while-loop bytecode shape, exactly as clox-style single-pass compilers do:
// no separate loop opcode exists, only Loop/JumpIfFalse wired by hand.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
		c.consume(token.Semicolon, "Expect ';' after loop initializer.")
	default:
		c.expressionStatement()
		c.consume(token.Semicolon, "Expect ';' after loop initializer.")
	}

	loopStart := c.currentChunk().Len()
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")

		exitJump = c.emitJump(object.OpJumpIfFalse, c.previous.Line)
		c.emit(object.OpPop, c.previous.Line)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(object.OpJump, c.previous.Line)
		incrementStart := c.currentChunk().Len()
		c.expression()
		c.emit(object.OpPop, c.previous.Line)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart, c.previous.Line)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart, c.previous.Line)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emit(object.OpPop, c.previous.Line)
	}

	c.endScope(c.previous.Line)
}

func (c *Compiler) returnStatement(line int) {
	if c.currentFn.typ == TypeScript {
		c.errorAtPrevious("Can't return from top-level code.")
	}

	if c.match(token.Semicolon) {
		c.emitReturn(c.previous.Line)
		return
	}

	if c.currentFn.typ == TypeInitializer {
		c.errorAtPrevious("Can't return a value from an initializer.")
	}

	c.expression()
	c.emit(object.OpReturn, c.previous.Line)
}

// function compiles a def body: a fresh funcState, parameter list, block
// body, and finally emits Closure plus one {isLocal,index} byte pair per
// captured upvalue.
func (c *Compiler) function(typ FunctionType) {
	name := c.alloc.CopyString(c.previous.Lexeme)
	fs := c.newFuncState(typ, name)
	c.currentFn = fs
	c.beginScope()

	line := c.previous.Line
	c.consume(token.LeftParen, "Expect '(' after function name.")
	if !c.check(token.RightParen) {
		for {
			c.currentFn.function.Arity++
			if c.currentFn.function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant, c.previous.Line)
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after parameters.")
	c.consume(token.LeftBrace, "Expect '{' before function body.")
	c.block()

	fn := c.endCompiler()
	fn.UpvalueCount = fs.upvalueCount
	idx := c.currentChunk().AddConstant(value.FromObject(fn))
	if idx < 0 {
		c.errorAtPrevious("too many constants in one chunk")
		idx = 0
	}
	c.emit(object.OpClosure, line)
	c.emitByte(byte(idx), line)

	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := byte(0)
		if fs.upvalues[i].IsLocal {
			isLocal = 1
		}
		c.emitByte(isLocal, line)
		c.emitByte(fs.upvalues[i].Index, line)
	}
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global, c.previous.Line)
}

// method compiles a struct method body. "init" (matched by exact lexeme,
// not a keyword) compiles as TypeInitializer so its implicit return yields
// self instead of null.
func (c *Compiler) method() {
	c.consume(token.Def, "Expect 'def' before method name.")
	c.consume(token.Identifier, "Expect method name.")
	name := c.identifierConstant(c.previous)
	line := c.previous.Line

	typ := TypeMethod
	if c.previous.Lexeme == "init" {
		typ = TypeInitializer
	}
	c.function(typ)
	c.emit(object.OpMethod, line)
	c.emitByte(name, line)
}

func (c *Compiler) structDeclaration() {
	if c.currentFn.scopeDepth > 0 {
		c.errorAtPrevious("Structs can only be declared at the top level.")
	}

	c.consume(token.Identifier, "Expect struct name.")
	nameTok := c.previous
	nameConstant := c.identifierConstant(nameTok)
	line := c.previous.Line
	c.declareVariable()

	c.emit(object.OpStruct, line)
	c.emitByte(nameConstant, line)
	c.defineVariable(nameConstant, line)

	st := &structState{enclosing: c.currentStruct}
	c.currentStruct = st

	if c.match(token.Colon) {
		c.consume(token.Identifier, "Expect superstruct name.")
		c.variable(false)

		if nameTok.Lexeme == c.previous.Lexeme {
			c.errorAtPrevious("A struct can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0, c.previous.Line)

		c.namedVariable(nameTok, false)
		c.emit(object.OpInherit, c.previous.Line)
		st.hasSuperstruct = true
	}

	c.namedVariable(nameTok, false)
	if c.check(token.LeftBrace) {
		c.advance()
		for !c.check(token.RightBrace) && !c.check(token.EOF) {
			c.method()
		}
		c.consume(token.RightBrace, "Expect '}' after struct body.")
	} else {
		c.consume(token.Semicolon, "Expect ';' after empty struct declaration.")
	}
	c.emit(object.OpPop, c.previous.Line)

	if st.hasSuperstruct {
		c.endScope(c.previous.Line)
	}

	c.currentStruct = c.currentStruct.enclosing
}

// importDeclaration reads and compiles another module's source inline,
// reusing the enclosing function (TYPE_IMPORT) rather than wrapping it in
// a callable — matching importModule's compiler/scanner/parser save-restore
// around a nested compile. Each module name may only be imported once per
// Compiler (the set is kept across Compile calls); a repeat is a compile
// error rather than a silent no-op.
func (c *Compiler) importDeclaration() {
	c.consume(token.String, "Expect module name.")
	line := c.previous.Line
	lexeme := c.previous.Lexeme
	moduleName := lexeme[1:len(lexeme)-1] + ".luna"

	if c.currentFn.scopeDepth > 0 || (c.currentFn.typ != TypeScript && c.currentFn.typ != TypeImport) {
		c.errorAtPrevious("Can't import a module outside of top-level code.")
		return
	}

	if c.importedModules[moduleName] {
		c.importErrorAt(line, moduleName)
		return
	}

	if c.modules == nil {
		c.errorAtPrevious("Can't resolve module '" + moduleName + "'.")
		return
	}

	source, err := c.modules.ReadModule(moduleName)
	if err != nil {
		c.errorAtPrevious("Can't open module '" + moduleName + "'.")
		return
	}
	source = stripBOM(source)
	c.importedModules[moduleName] = true

	// Save the parser/scanner/module-name state, compile the imported
	// source against a TYPE_IMPORT funcState that reuses the current
	// function, then restore everything so the importing module's own
	// parse resumes exactly where it left off.
	savedScan := c.scan
	savedPrevious := c.previous
	savedCurrent := c.current
	savedModuleName := c.moduleName

	c.scan = scanner.New(source)
	c.moduleName = moduleName

	importFS := c.newFuncState(TypeImport, nil)
	c.currentFn = importFS

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.currentFn = c.currentFn.enclosing

	c.scan = savedScan
	c.previous = savedPrevious
	c.current = savedCurrent
	c.moduleName = savedModuleName
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\xEF\xBB\xBF")
}
