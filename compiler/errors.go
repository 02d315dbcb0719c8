package compiler

import (
	"fmt"

	"github.com/dr8co/pl0/token"
)

// SyntaxError reports a grammar violation: the parser expected one
// token and found another.
type SyntaxError struct {
	Pos      token.Pos
	Expected string
	Got      token.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Pos, e.Expected, e.Got)
}

// SemanticKind tags the specific flavor of [SemanticError].
type SemanticKind int

//nolint:revive
const (
	DuplicateSymbol SemanticKind = iota
	UndeclaredIdentifier
	UndeclaredProcedure
	BadAssignTarget
	ExprUsesProcedure
	NotCallable
)

func (k SemanticKind) String() string {
	switch k {
	case DuplicateSymbol:
		return "duplicate symbol"
	case UndeclaredIdentifier:
		return "undeclared identifier"
	case UndeclaredProcedure:
		return "undeclared procedure"
	case BadAssignTarget:
		return "bad assignment target"
	case ExprUsesProcedure:
		return "procedure used in expression"
	case NotCallable:
		return "not callable"
	default:
		return "semantic error"
	}
}

// SemanticError reports a name-resolution or static-typing fault:
// duplicate declarations, undeclared names, assigning to a constant or
// procedure, using a procedure where a value is expected, or calling a
// non-procedure.
type SemanticError struct {
	Kind SemanticKind
	Pos  token.Pos
	Name string
}

func (e *SemanticError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s: %q", e.Pos, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Kind)
}
