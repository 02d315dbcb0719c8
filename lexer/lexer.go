// Package lexer implements the lexical analyzer for PL/0.
//
// The lexer exposes a one-token-lookahead interface: Peek inspects the
// current token without consuming it, Advance consumes it and scans
// the next, and Accept consumes the current token iff its tag matches.
// "expected X, got Y" diagnostics are a grammar concern and are raised
// by the parser, not here; the lexer only ever raises [LexError].
//
// Scanning itself never backtracks: each call to Advance reads exactly
// as many source characters as are needed to classify the next token.
package lexer

import (
	"fmt"

	"github.com/dr8co/pl0/token"
)

// LexError reports an unrecognizable character, or a numeric literal
// too large to represent, encountered while scanning.
type LexError struct {
	Pos      token.Pos
	Ch       byte
	Overflow bool
}

func (e *LexError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("%s: integer literal too large", e.Pos)
	}
	return fmt.Sprintf("%s: unexpected character %q", e.Pos, e.Ch)
}

// Lexer scans PL/0 source text into a one-token-lookahead stream.
//
// It owns the raw source and its cursor; positions are tracked as it
// scans so every emitted [token.Token] carries an accurate span.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte

	line   int
	col    int
	curCol int // column of the character at `position`, before readChar

	current token.Token
	err     error
}

// New creates a Lexer over input and scans the first token into Peek.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, col: 1}
	l.readChar()
	l.current = l.scan()
	return l
}

// readChar advances the cursor by one byte, tracking line/column.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.curCol = l.col
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// Peek returns the current lookahead token without consuming it.
func (l *Lexer) Peek() token.Token {
	return l.current
}

// Err returns the first [LexError] encountered while scanning, if any.
// Once set it is sticky: further Advance calls keep yielding EOS.
func (l *Lexer) Err() error {
	return l.err
}

// Advance consumes the current token and scans the next one, returning
// the token that was just consumed. Advancing past EOS is a no-op that
// returns EOS again.
func (l *Lexer) Advance() token.Token {
	consumed := l.current
	if consumed.Tag == token.EOS {
		return consumed
	}
	l.current = l.scan()
	return consumed
}

// Accept consumes the current token and returns it with ok=true iff its
// tag matches want; otherwise it leaves the stream untouched.
func (l *Lexer) Accept(want token.Tag) (token.Token, bool) {
	if l.current.Tag != want {
		return token.Token{}, false
	}
	return l.Advance(), true
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isAlnum(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isAlnum(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber scans a run of digits and returns its text; the caller
// parses it, which is where overflow is detected.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// scan produces the next token, recording a [LexError] and returning a
// sticky EOS if the input contains an unrecognizable character.
func (l *Lexer) scan() token.Token {
	if l.err != nil {
		return token.Token{Tag: token.EOS}
	}

	l.skipWhitespace()

	line, startCol := l.line, l.curCol

	mk := func(tag token.Tag) token.Token {
		return token.Token{Tag: tag, Pos: token.Pos{Line: line, StartCol: startCol, EndCol: l.curCol}}
	}

	switch {
	case l.ch == 0:
		return mk(token.EOS)

	case l.ch == ':' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		return mk(token.ASSIGN)
	case l.ch == '<' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		return mk(token.LEQ)
	case l.ch == '>' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		return mk(token.GEQ)

	case l.ch == '+':
		l.readChar()
		return mk(token.PLUS)
	case l.ch == '-':
		l.readChar()
		return mk(token.MINUS)
	case l.ch == '*':
		l.readChar()
		return mk(token.STAR)
	case l.ch == '/':
		l.readChar()
		return mk(token.SLASH)
	case l.ch == '=':
		l.readChar()
		return mk(token.EQ)
	case l.ch == '#':
		l.readChar()
		return mk(token.HASH)
	case l.ch == '<':
		l.readChar()
		return mk(token.LT)
	case l.ch == '>':
		l.readChar()
		return mk(token.GT)
	case l.ch == '(':
		l.readChar()
		return mk(token.LPAREN)
	case l.ch == ')':
		l.readChar()
		return mk(token.RPAREN)
	case l.ch == ',':
		l.readChar()
		return mk(token.COMMA)
	case l.ch == '.':
		l.readChar()
		return mk(token.DOT)
	case l.ch == ';':
		l.readChar()
		return mk(token.SEMICOLON)
	case l.ch == ':':
		l.readChar()
		return mk(token.COLON)

	case isLetter(l.ch):
		ident := l.readIdentifier()
		tok := mk(token.LookupIdent(ident))
		tok.Ident = ident
		return tok

	case isDigit(l.ch):
		digits := l.readNumber()
		tok := mk(token.NUMBER)
		var v int64
		for _, d := range digits {
			digit := int64(d - '0')
			if v > (1<<63-1-digit)/10 {
				l.err = &LexError{Pos: token.Pos{Line: line, StartCol: startCol, EndCol: l.curCol}, Overflow: true}
				return token.Token{Tag: token.EOS}
			}
			v = v*10 + digit
		}
		tok.Value = v
		return tok

	default:
		badCh := l.ch
		l.err = &LexError{Pos: token.Pos{Line: line, StartCol: startCol, EndCol: l.curCol + 1}, Ch: badCh}
		l.readChar()
		return token.Token{Tag: token.EOS}
	}
}
