// Package compiler fuses PL/0's parser and code generator into a
// single recursive-descent pass: no AST is built, every grammar rule
// emits directly through a [code.Assembler] as it recognizes source,
// and procedure calls that outrun their declaration are tracked in a
// forward-reference registry and backpatched once the target's entry
// address is known.
//
// # Architecture
//
// The compiler owns the lexer, the assembler, the currently open
// [symtab.Scope], and two patch registries:
//
//   - forwardCalls, keyed by procedure name, for calls to an
//     identifier that hasn't been declared anywhere visible yet.
//   - pendingEntry, keyed by the declared-but-still-compiling
//     [symtab.Symbol], for calls made from within a nested procedure
//     body to an enclosing procedure whose own entry address isn't
//     recorded until its block finishes parsing its declarations.
//
// Both registries are drained for a procedure when its block reaches
// its own entry point (after its nested declarations, before its
// body statement), and [Compiler.Compile] fails with an
// [SemanticError] of kind UndeclaredProcedure if anything is left in
// forwardCalls once the program ends.
package compiler

import (
	"github.com/dr8co/pl0/code"
	"github.com/dr8co/pl0/lexer"
	"github.com/dr8co/pl0/symtab"
	"github.com/dr8co/pl0/token"
)

// Program is the compiled output: a flat instruction stream ready for
// the VM. It carries no symbol or debug information beyond whatever
// per-instruction comments the compiler chose to attach.
type Program struct {
	Instructions []code.Instruction
}

// pendingCall is a call site awaiting a backpatch: the instruction
// index of its CAL and the lexical level it was emitted from (needed
// to compute the level-delta once the target level is known).
type pendingCall struct {
	index       int
	callerLevel int
}

// Compiler parses and emits PL/0 in one pass.
type Compiler struct {
	lex *lexer.Lexer
	asm *code.Assembler

	forwardCalls map[string][]pendingCall
	forwardOrder []string // first-seen order, for a deterministic UndeclaredProcedure diagnosis

	pendingEntry map[*symtab.Symbol][]pendingCall
}

// New creates a Compiler that will read from l.
func New(l *lexer.Lexer) *Compiler {
	return &Compiler{
		lex:          l,
		asm:          code.New(),
		forwardCalls: make(map[string][]pendingCall),
		pendingEntry: make(map[*symtab.Symbol][]pendingCall),
	}
}

// Compile parses the full "block '.'" program and returns an error on
// the first lexical, syntactic, or semantic fault.
func (c *Compiler) Compile() (*Program, error) {
	mainJump := c.asm.Emit(code.JMP, 0, code.Unresolved)

	global := symtab.NewGlobal()
	if err := c.block(global, mainJump, nil); err != nil {
		return nil, err
	}

	if _, err := c.expect(token.DOT); err != nil {
		return nil, err
	}

	for _, name := range c.forwardOrder {
		if len(c.forwardCalls[name]) > 0 {
			return nil, &SemanticError{Kind: UndeclaredProcedure, Name: name}
		}
	}

	if err := c.lex.Err(); err != nil {
		return nil, err
	}

	return &Program{Instructions: c.asm.Instructions()}, nil
}

// block parses one "[const...] [var...] {procedure...} statement" body
// into scope. mainJump, if >= 0, is the index of the program's initial
// jump-over-procedures instruction and is patched to this block's
// entry point once it's known (only ever passed for the outermost
// program block). selfProc, if non-nil, is this block's own procedure
// symbol (already defined in the enclosing scope) so its Entry field
// and any pending self/mutual-recursion calls can be resolved once
// this block's entry point is reached.
func (c *Compiler) block(scope *symtab.Scope, mainJump int, selfProc *symtab.Symbol) error {
	if err := c.constDecls(scope); err != nil {
		return err
	}
	if err := c.varDecls(scope); err != nil {
		return err
	}
	if err := c.procDecls(scope); err != nil {
		return err
	}

	entry := c.asm.NextAddr()
	if selfProc != nil {
		selfProc.Entry = entry
		c.resolvePending(selfProc, entry)
		c.resolveForward(selfProc.Name, selfProc.Level, entry)
	}
	if mainJump >= 0 {
		c.asm.Patch(mainJump, entry)
	}

	c.asm.Enter(scope.VarCount())
	if err := c.statement(scope); err != nil {
		return err
	}
	c.asm.Leave()
	return nil
}

func (c *Compiler) constDecls(scope *symtab.Scope) error {
	if _, ok := c.lex.Accept(token.CONST); !ok {
		return nil
	}
	for {
		nameTok, err := c.expect(token.IDENT)
		if err != nil {
			return err
		}
		if _, err := c.expect(token.EQ); err != nil {
			return err
		}
		valTok, err := c.expect(token.NUMBER)
		if err != nil {
			return err
		}
		if _, err := scope.DefineConstant(nameTok.Ident, valTok.Value); err != nil {
			return &SemanticError{Kind: DuplicateSymbol, Pos: nameTok.Pos, Name: nameTok.Ident}
		}
		if _, ok := c.lex.Accept(token.COMMA); !ok {
			break
		}
	}
	_, err := c.expect(token.SEMICOLON)
	return err
}

func (c *Compiler) varDecls(scope *symtab.Scope) error {
	if _, ok := c.lex.Accept(token.VAR); !ok {
		return nil
	}
	for {
		nameTok, err := c.expect(token.IDENT)
		if err != nil {
			return err
		}
		if _, err := scope.DefineVariable(nameTok.Ident); err != nil {
			return &SemanticError{Kind: DuplicateSymbol, Pos: nameTok.Pos, Name: nameTok.Ident}
		}
		if _, ok := c.lex.Accept(token.COMMA); !ok {
			break
		}
	}
	_, err := c.expect(token.SEMICOLON)
	return err
}

func (c *Compiler) procDecls(scope *symtab.Scope) error {
	for {
		if _, ok := c.lex.Accept(token.PROCEDURE); !ok {
			return nil
		}
		nameTok, err := c.expect(token.IDENT)
		if err != nil {
			return err
		}
		proc, err := scope.DefineProcedure(nameTok.Ident)
		if err != nil {
			return &SemanticError{Kind: DuplicateSymbol, Pos: nameTok.Pos, Name: nameTok.Ident}
		}
		if _, err := c.expect(token.SEMICOLON); err != nil {
			return err
		}

		inner := scope.Open()
		if err := c.block(inner, -1, proc); err != nil {
			return err
		}

		if _, err := c.expect(token.SEMICOLON); err != nil {
			return err
		}
	}
}

// resolvePending drains pendingEntry[sym], now that sym's entry
// address is known, patching each recorded call site.
func (c *Compiler) resolvePending(sym *symtab.Symbol, entry int) {
	for _, call := range c.pendingEntry[sym] {
		c.asm.Patch(call.index, entry)
		c.asm.PatchLevel(call.index, call.callerLevel-sym.Level)
	}
	delete(c.pendingEntry, sym)
}

// resolveForward drains forwardCalls[name], now that a procedure of
// that name has reached its entry point.
func (c *Compiler) resolveForward(name string, declLevel, entry int) {
	for _, call := range c.forwardCalls[name] {
		c.asm.Patch(call.index, entry)
		c.asm.PatchLevel(call.index, call.callerLevel-declLevel)
	}
	delete(c.forwardCalls, name)
}

// expect consumes the current token if its tag is want, otherwise
// returns a SyntaxError without consuming anything. A lexer fault
// takes precedence: once scanning has failed, every token the lexer
// hands back is a zero-Pos EOS, and reporting that as "expected X,
// got end-of-input" would bury the real LexError behind a bogus one.
func (c *Compiler) expect(want token.Tag) (token.Token, error) {
	tok, ok := c.lex.Accept(want)
	if !ok {
		if lexErr := c.lex.Err(); lexErr != nil {
			return token.Token{}, lexErr
		}
		return token.Token{}, &SyntaxError{Pos: c.lex.Peek().Pos, Expected: want.String(), Got: c.lex.Peek()}
	}
	return tok, nil
}
