package symtab

import "testing"

func TestDefineVariableIndicesAreSequential(t *testing.T) {
	s := NewGlobal()
	x, err := s.DefineVariable("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y, _ := s.DefineVariable("y")

	if x.Index != 0 || y.Index != 1 {
		t.Fatalf("expected indices 0, 1, got %d, %d", x.Index, y.Index)
	}
	if s.VarCount() != 2 {
		t.Fatalf("expected VarCount 2, got %d", s.VarCount())
	}
}

func TestDuplicateSymbolInSameScope(t *testing.T) {
	s := NewGlobal()
	if _, err := s.DefineVariable("x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := s.DefineConstant("x", 1)
	if err == nil {
		t.Fatalf("expected a duplicate symbol error")
	}
	if _, ok := err.(*DuplicateSymbol); !ok {
		t.Fatalf("expected *DuplicateSymbol, got %T", err)
	}
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	outer := NewGlobal()
	outer.DefineVariable("x")

	inner := outer.Open()
	if _, err := inner.DefineVariable("x"); err != nil {
		t.Fatalf("shadowing in a nested scope should be legal: %v", err)
	}

	sym, ok := inner.Resolve("x")
	if !ok || sym.Level != inner.Level {
		t.Fatalf("Resolve should find the innermost x, got %+v ok=%v", sym, ok)
	}
}

func TestResolveWalksParentChain(t *testing.T) {
	outer := NewGlobal()
	outer.DefineConstant("max", 100)

	inner := outer.Open()
	sym, ok := inner.Resolve("max")
	if !ok {
		t.Fatalf("expected to resolve 'max' through the parent chain")
	}
	if sym.Level != outer.Level {
		t.Fatalf("expected resolved symbol's level to be the declaring scope's level %d, got %d", outer.Level, sym.Level)
	}
}

func TestResolveLocalDoesNotSeeOuterScope(t *testing.T) {
	outer := NewGlobal()
	outer.DefineVariable("x")
	inner := outer.Open()

	if _, ok := inner.ResolveLocal("x"); ok {
		t.Fatalf("ResolveLocal should not find a symbol declared only in the parent scope")
	}
	if _, ok := inner.Resolve("x"); !ok {
		t.Fatalf("Resolve should find a symbol declared in the parent scope")
	}
}

func TestCloseReturnsParent(t *testing.T) {
	outer := NewGlobal()
	inner := outer.Open()
	if inner.Close() != outer {
		t.Fatalf("Close should return the parent scope")
	}
}

func TestDefineProcedureStartsUnresolved(t *testing.T) {
	s := NewGlobal()
	p, err := s.DefineProcedure("p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Entry != Unresolved {
		t.Fatalf("expected a freshly declared procedure's Entry to be Unresolved, got %d", p.Entry)
	}
}
