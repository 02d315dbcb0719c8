package compiler

import (
	"github.com/dr8co/pl0/code"
	"github.com/dr8co/pl0/symtab"
	"github.com/dr8co/pl0/token"
)

// statement parses and emits a single (possibly empty) statement. An
// empty statement — the bracketed alternative in the grammar that
// matches none of the listed forms — is legal and emits nothing.
func (c *Compiler) statement(scope *symtab.Scope) error {
	switch c.lex.Peek().Tag {
	case token.IDENT:
		return c.assignment(scope)
	case token.CALL:
		return c.callStatement(scope)
	case token.READ:
		return c.readStatement(scope)
	case token.WRITE:
		return c.writeStatement(scope)
	case token.BEGIN:
		return c.beginStatement(scope)
	case token.IF:
		return c.ifStatement(scope)
	case token.WHILE:
		return c.whileStatement(scope)
	default:
		return nil
	}
}

func (c *Compiler) assignment(scope *symtab.Scope) error {
	nameTok, _ := c.lex.Accept(token.IDENT)

	sym, ok := scope.Resolve(nameTok.Ident)
	if !ok {
		return &SemanticError{Kind: UndeclaredIdentifier, Pos: nameTok.Pos, Name: nameTok.Ident}
	}
	if sym.Kind != symtab.VarKind {
		return &SemanticError{Kind: BadAssignTarget, Pos: nameTok.Pos, Name: nameTok.Ident}
	}

	if _, err := c.expect(token.ASSIGN); err != nil {
		return err
	}
	if err := c.expression(scope); err != nil {
		return err
	}

	c.asm.StoreVar(scope.Level-sym.Level, sym.Index)
	return nil
}

func (c *Compiler) callStatement(scope *symtab.Scope) error {
	if _, err := c.expect(token.CALL); err != nil {
		return err
	}
	nameTok, err := c.expect(token.IDENT)
	if err != nil {
		return err
	}

	sym, ok := scope.Resolve(nameTok.Ident)
	if !ok {
		idx := c.asm.Call(0, code.Unresolved)
		if _, seen := c.forwardCalls[nameTok.Ident]; !seen {
			c.forwardOrder = append(c.forwardOrder, nameTok.Ident)
		}
		c.forwardCalls[nameTok.Ident] = append(c.forwardCalls[nameTok.Ident], pendingCall{index: idx, callerLevel: scope.Level})
		return nil
	}

	if sym.Kind != symtab.ProcKind {
		return &SemanticError{Kind: NotCallable, Pos: nameTok.Pos, Name: nameTok.Ident}
	}

	if sym.Entry == symtab.Unresolved {
		idx := c.asm.Call(0, code.Unresolved)
		c.pendingEntry[sym] = append(c.pendingEntry[sym], pendingCall{index: idx, callerLevel: scope.Level})
		return nil
	}

	c.asm.Call(scope.Level-sym.Level, sym.Entry)
	return nil
}

func (c *Compiler) readStatement(scope *symtab.Scope) error {
	if _, err := c.expect(token.READ); err != nil {
		return err
	}
	for {
		nameTok, err := c.expect(token.IDENT)
		if err != nil {
			return err
		}
		sym, ok := scope.Resolve(nameTok.Ident)
		if !ok {
			return &SemanticError{Kind: UndeclaredIdentifier, Pos: nameTok.Pos, Name: nameTok.Ident}
		}
		if sym.Kind != symtab.VarKind {
			return &SemanticError{Kind: BadAssignTarget, Pos: nameTok.Pos, Name: nameTok.Ident}
		}
		c.asm.Read()
		c.asm.StoreVar(scope.Level-sym.Level, sym.Index)

		if _, ok := c.lex.Accept(token.COMMA); !ok {
			break
		}
	}
	return nil
}

func (c *Compiler) writeStatement(scope *symtab.Scope) error {
	if _, err := c.expect(token.WRITE); err != nil {
		return err
	}
	for {
		if err := c.expression(scope); err != nil {
			return err
		}
		c.asm.Write()

		if _, ok := c.lex.Accept(token.COMMA); !ok {
			break
		}
	}
	return nil
}

func (c *Compiler) beginStatement(scope *symtab.Scope) error {
	if _, err := c.expect(token.BEGIN); err != nil {
		return err
	}
	if err := c.statement(scope); err != nil {
		return err
	}
	for {
		if _, ok := c.lex.Accept(token.SEMICOLON); !ok {
			break
		}
		if err := c.statement(scope); err != nil {
			return err
		}
	}
	_, err := c.expect(token.END)
	return err
}

func (c *Compiler) ifStatement(scope *symtab.Scope) error {
	if _, err := c.expect(token.IF); err != nil {
		return err
	}
	if err := c.condition(scope); err != nil {
		return err
	}

	jpc := c.asm.JumpIfFalse(code.Unresolved)

	if _, err := c.expect(token.THEN); err != nil {
		return err
	}
	if err := c.statement(scope); err != nil {
		return err
	}

	if _, ok := c.lex.Accept(token.ELSE); ok {
		jmp := c.asm.Jump(code.Unresolved)
		c.asm.Patch(jpc, c.asm.NextAddr())

		if err := c.statement(scope); err != nil {
			return err
		}
		c.asm.Patch(jmp, c.asm.NextAddr())
		return nil
	}

	c.asm.Patch(jpc, c.asm.NextAddr())
	return nil
}

func (c *Compiler) whileStatement(scope *symtab.Scope) error {
	loopBegin := c.asm.NextAddr()

	if _, err := c.expect(token.WHILE); err != nil {
		return err
	}
	if err := c.condition(scope); err != nil {
		return err
	}

	jpc := c.asm.JumpIfFalse(code.Unresolved)

	if _, err := c.expect(token.DO); err != nil {
		return err
	}
	if err := c.statement(scope); err != nil {
		return err
	}

	c.asm.Jump(loopBegin)
	c.asm.Patch(jpc, c.asm.NextAddr())
	return nil
}

// condition parses "odd expression" or "expression relop expression".
func (c *Compiler) condition(scope *symtab.Scope) error {
	if _, ok := c.lex.Accept(token.ODD); ok {
		if err := c.expression(scope); err != nil {
			return err
		}
		c.asm.Operator(code.ODD)
		return nil
	}

	if err := c.expression(scope); err != nil {
		return err
	}

	relTok := c.lex.Peek()
	var op int
	switch relTok.Tag {
	case token.EQ:
		op = code.EQ
	case token.HASH:
		op = code.NEQ
	case token.LT:
		op = code.LT
	case token.LEQ:
		op = code.LEQ
	case token.GT:
		op = code.GT
	case token.GEQ:
		op = code.GEQ
	default:
		if lexErr := c.lex.Err(); lexErr != nil {
			return lexErr
		}
		return &SyntaxError{Pos: relTok.Pos, Expected: "a relational operator", Got: relTok}
	}
	c.lex.Advance()

	if err := c.expression(scope); err != nil {
		return err
	}
	c.asm.Operator(op)
	return nil
}

// expression parses ["+"|"-"] term {("+"|"-") term}. A leading "-" is
// compiled as "0 - term" so the two-operand SUB operator can express
// unary negation without a dedicated opcode; a leading "+" is a no-op.
func (c *Compiler) expression(scope *symtab.Scope) error {
	negate := false
	switch c.lex.Peek().Tag {
	case token.PLUS:
		c.lex.Advance()
	case token.MINUS:
		c.lex.Advance()
		negate = true
	}

	if negate {
		c.asm.LoadConst(0)
	}
	if err := c.term(scope); err != nil {
		return err
	}
	if negate {
		c.asm.Operator(code.SUB)
	}

	for {
		switch c.lex.Peek().Tag {
		case token.PLUS:
			c.lex.Advance()
			if err := c.term(scope); err != nil {
				return err
			}
			c.asm.Operator(code.ADD)
		case token.MINUS:
			c.lex.Advance()
			if err := c.term(scope); err != nil {
				return err
			}
			c.asm.Operator(code.SUB)
		default:
			return nil
		}
	}
}

// term parses factor {("*"|"/") factor}.
func (c *Compiler) term(scope *symtab.Scope) error {
	if err := c.factor(scope); err != nil {
		return err
	}
	for {
		switch c.lex.Peek().Tag {
		case token.STAR:
			c.lex.Advance()
			if err := c.factor(scope); err != nil {
				return err
			}
			c.asm.Operator(code.MUL)
		case token.SLASH:
			c.lex.Advance()
			if err := c.factor(scope); err != nil {
				return err
			}
			c.asm.Operator(code.DIV)
		default:
			return nil
		}
	}
}

// factor parses ident | number | "(" expression ")".
func (c *Compiler) factor(scope *symtab.Scope) error {
	tok := c.lex.Peek()
	switch tok.Tag {
	case token.IDENT:
		c.lex.Advance()
		sym, ok := scope.Resolve(tok.Ident)
		if !ok {
			return &SemanticError{Kind: UndeclaredIdentifier, Pos: tok.Pos, Name: tok.Ident}
		}
		switch sym.Kind {
		case symtab.VarKind:
			c.asm.LoadVar(scope.Level-sym.Level, sym.Index)
		case symtab.ConstKind:
			c.asm.LoadConst(sym.Value)
		case symtab.ProcKind:
			return &SemanticError{Kind: ExprUsesProcedure, Pos: tok.Pos, Name: tok.Ident}
		}
		return nil

	case token.NUMBER:
		c.lex.Advance()
		c.asm.LoadConst(tok.Value)
		return nil

	case token.LPAREN:
		c.lex.Advance()
		if err := c.expression(scope); err != nil {
			return err
		}
		_, err := c.expect(token.RPAREN)
		return err

	default:
		if lexErr := c.lex.Err(); lexErr != nil {
			return lexErr
		}
		return &SyntaxError{Pos: tok.Pos, Expected: "an identifier, a number, or '('", Got: tok}
	}
}
