package compiler

import (
	"strconv"

	"github.com/lunalang/luna/internal/object"
	"github.com/lunalang/luna/internal/token"
	"github.com/lunalang/luna/internal/value"
)

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) number(canAssign bool) {
	n, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(value.Number(n), c.previous.Line)
}

func (c *Compiler) stringLit(canAssign bool) {
	// Strip the surrounding quotes, as copyString(start+1, length-2) does.
	lexeme := c.previous.Lexeme
	chars := lexeme[1 : len(lexeme)-1]
	str := c.alloc.CopyString(chars)
	c.emitConstant(value.FromObject(str), c.previous.Line)
}

func (c *Compiler) literal(canAssign bool) {
	line := c.previous.Line
	switch c.previous.Kind {
	case token.False:
		c.emit(object.OpFalse, line)
	case token.True:
		c.emit(object.OpTrue, line)
	case token.Null:
		c.emit(object.OpNull, line)
	}
}

// list compiles a `[e1, e2, ...]` literal. The empty list constant is
// pushed first, then every element is pushed and folded in with AddList —
// this differs from compiler.c's literal instruction order (which emits
// the list's Constant instruction only after the whole element loop) but
// matches the bytecode contract in spec.md §6 ("AddList — append stack top
// to list just below"), which requires the list to already be on the
// stack under each appended element. See DESIGN.md for this resolution.
func (c *Compiler) list(canAssign bool) {
	line := c.previous.Line
	list := c.alloc.NewList()
	c.emitConstant(value.FromObject(list), line)

	length := 0
	if !c.check(token.RightBracket) {
		for {
			if length < 255 {
				c.expression()
				c.emit(object.OpAddList, c.previous.Line)
				length++
			} else {
				c.errorAtPrevious("Can't have more than 255 values in one list.")
			}
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightBracket, "Expect ']' at list values.")
}

func (c *Compiler) unary(canAssign bool) {
	opKind := c.previous.Kind
	line := c.previous.Line
	c.parsePrecedence(PrecUnary)

	switch opKind {
	case token.Bang:
		c.emit(object.OpNot, line)
	case token.Minus:
		c.emit(object.OpNegate, line)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opKind := c.previous.Kind
	line := c.previous.Line
	r := getRule(opKind)
	c.parsePrecedence(r.precedence + 1)

	switch opKind {
	case token.BangEqual:
		c.emit(object.OpEqual, line)
		c.emit(object.OpNot, line)
	case token.EqualEqual:
		c.emit(object.OpEqual, line)
	case token.Greater:
		c.emit(object.OpGreater, line)
	case token.GreaterEqual:
		c.emit(object.OpLess, line)
		c.emit(object.OpNot, line)
	case token.Less:
		c.emit(object.OpLess, line)
	case token.LessEqual:
		c.emit(object.OpGreater, line)
		c.emit(object.OpNot, line)
	case token.Plus:
		c.emit(object.OpAdd, line)
	case token.Minus:
		c.emit(object.OpSubtract, line)
	case token.Star:
		c.emit(object.OpMultiply, line)
	case token.Slash:
		c.emit(object.OpDivide, line)
	case token.Percent:
		c.emit(object.OpMod, line)
	}
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(object.OpJumpIfFalse, c.previous.Line)
	c.emit(object.OpPop, c.previous.Line)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(object.OpJumpIfFalse, c.previous.Line)
	endJump := c.emitJump(object.OpJump, c.previous.Line)
	c.patchJump(elseJump)
	c.emit(object.OpPop, c.previous.Line)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

// argumentList parses a parenthesized, comma-separated argument list
// (the opening paren already consumed) and returns the argument count.
func (c *Compiler) argumentList() byte {
	var argCount int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if argCount == 255 {
				c.errorAtPrevious("Can't have more than 255 arguments.")
			}
			argCount++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(argCount)
}

func (c *Compiler) call(canAssign bool) {
	line := c.previous.Line
	argCount := c.argumentList()
	c.emit(object.OpCall, line)
	c.emitByte(argCount, line)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)
	line := c.previous.Line

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emit(object.OpSetProperty, line)
		c.emitByte(name, line)
	case c.match(token.LeftParen):
		argCount := c.argumentList()
		c.emit(object.OpInvoke, line)
		c.emitByte(name, line)
		c.emitByte(argCount, line)
	default:
		c.emit(object.OpGetProperty, line)
		c.emitByte(name, line)
	}
}

// variable resolves an identifier reference: local slot, then upvalue,
// then global, in that order. Followed by `=` (when canAssign) it compiles
// an assignment instead of a read.
func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	line := name.Line
	var getOp, setOp object.Opcode
	var arg int

	if slot := c.resolveLocal(c.currentFn, name.Lexeme); slot != -1 {
		getOp, setOp, arg = object.OpGetLocal, object.OpSetLocal, slot
	} else if up := c.resolveUpvalue(c.currentFn, name.Lexeme); up != -1 {
		getOp, setOp, arg = object.OpGetUpvalue, object.OpSetUpvalue, up
	} else {
		getOp, setOp, arg = object.OpGetGlobal, object.OpSetGlobal, int(c.identifierConstant(name))
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emit(setOp, line)
	} else {
		c.emit(getOp, line)
	}
	c.emitByte(byte(arg), line)
}

func syntheticToken(lexeme string) token.Token {
	return token.Token{Kind: token.Identifier, Lexeme: lexeme}
}

func (c *Compiler) self(canAssign bool) {
	if c.currentStruct == nil {
		c.errorAtPrevious("Cannot use 'self' out of struct.")
		return
	}
	// self resolves through the ordinary local lookup at slot 0, never as
	// an assignment target.
	c.variable(false)
}

func (c *Compiler) super_(canAssign bool) {
	line := c.previous.Line
	if c.currentStruct == nil {
		c.errorAtPrevious("Can't use 'super' outside of struct.")
	} else if !c.currentStruct.hasSuperstruct {
		c.errorAtPrevious("Can't use 'super' in leaf struct.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superstruct method name.")
	name := c.identifierConstant(c.previous)

	c.namedVariable(syntheticToken("self"), false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariable(syntheticToken("super"), false)
		c.emit(object.OpSuperInvoke, line)
		c.emitByte(name, line)
		c.emitByte(argCount, line)
	} else {
		c.namedVariable(syntheticToken("super"), false)
		c.emit(object.OpGetSuper, line)
		c.emitByte(name, line)
	}
}
