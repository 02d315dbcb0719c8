// Package token defines the lexical tokens produced by the PL/0 lexer.
//
// A token is a classification tag, an optional payload (an identifier
// spelling or a parsed integer value), and a source span. The span is
// carried on every token so the parser and its error types can report
// 1-based line/column positions without re-scanning the source.
package token

import "fmt"

// Tag classifies a token. Tags cover keywords, punctuation, identifiers,
// numbers, and the end-of-stream sentinel.
type Tag int

//nolint:revive
const (
	EOS Tag = iota
	IDENT
	NUMBER

	// Keywords
	CONST
	VAR
	PROCEDURE
	CALL
	IF
	THEN
	ELSE
	WHILE
	DO
	BEGIN
	END
	ODD
	READ
	WRITE

	// Punctuation
	PLUS
	MINUS
	STAR
	SLASH
	EQ
	HASH
	LT
	GT
	LEQ
	GEQ
	LPAREN
	RPAREN
	COMMA
	DOT
	SEMICOLON
	COLON
	ASSIGN
)

var tagNames = map[Tag]string{
	EOS:       "end of input",
	IDENT:     "identifier",
	NUMBER:    "number",
	CONST:     "const",
	VAR:       "var",
	PROCEDURE: "procedure",
	CALL:      "call",
	IF:        "if",
	THEN:      "then",
	ELSE:      "else",
	WHILE:     "while",
	DO:        "do",
	BEGIN:     "begin",
	END:       "end",
	ODD:       "odd",
	READ:      "read",
	WRITE:     "write",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	EQ:        "=",
	HASH:      "#",
	LT:        "<",
	GT:        ">",
	LEQ:       "<=",
	GEQ:       ">=",
	LPAREN:    "(",
	RPAREN:    ")",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",
	COLON:     ":",
	ASSIGN:    ":=",
}

// String renders the tag the way it would appear in source, for use in
// diagnostics such as "expected ';', got 'end'".
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// keywords maps reserved spellings to their tag. Anything not in this
// table that starts with a letter is an IDENT.
var keywords = map[string]Tag{
	"const":     CONST,
	"var":       VAR,
	"procedure": PROCEDURE,
	"call":      CALL,
	"if":        IF,
	"then":      THEN,
	"else":      ELSE,
	"while":     WHILE,
	"do":        DO,
	"begin":     BEGIN,
	"end":       END,
	"odd":       ODD,
	"read":      READ,
	"write":     WRITE,
}

// LookupIdent returns the keyword tag for spelling if it is reserved,
// otherwise IDENT.
func LookupIdent(spelling string) Tag {
	if tag, ok := keywords[spelling]; ok {
		return tag
	}
	return IDENT
}

// Pos is a 1-based source position: a line and a start/end column pair.
// End is exclusive, i.e. the column just past the token's last character.
type Pos struct {
	Line     int
	StartCol int
	EndCol   int
}

// String renders a position as "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.StartCol)
}

// Token is a single classified lexeme with its source span.
type Token struct {
	Tag Tag
	Pos Pos

	// Ident holds the spelling when Tag == IDENT.
	Ident string

	// Value holds the parsed integer when Tag == NUMBER.
	Value int64
}

// String renders a token for diagnostics and test failure messages.
func (t Token) String() string {
	switch t.Tag {
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Ident)
	case NUMBER:
		return fmt.Sprintf("number %d", t.Value)
	default:
		return fmt.Sprintf("%q", t.Tag.String())
	}
}
