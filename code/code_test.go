package code

import "testing"

func TestEmitReturnsSequentialAddresses(t *testing.T) {
	a := New()
	if got := a.LoadConst(5); got != 0 {
		t.Fatalf("expected first emission at address 0, got %d", got)
	}
	if got := a.LoadConst(6); got != 1 {
		t.Fatalf("expected second emission at address 1, got %d", got)
	}
	if got := a.NextAddr(); got != 2 {
		t.Fatalf("expected NextAddr 2, got %d", got)
	}
	if got := a.CurrAddr(); got != 1 {
		t.Fatalf("expected CurrAddr 1, got %d", got)
	}
}

func TestPatchOverwritesAddrOnly(t *testing.T) {
	a := New()
	idx := a.Jump(Unresolved)
	a.LoadConst(1)
	target := a.NextAddr()
	a.Patch(idx, target)

	ins := a.Instructions()[idx]
	if ins.Op != JMP || ins.Addr != target || ins.Level != 0 {
		t.Fatalf("unexpected patched instruction: %+v", ins)
	}
}

func TestPatchLevel(t *testing.T) {
	a := New()
	idx := a.Call(0, Unresolved)
	a.PatchLevel(idx, 2)
	a.Patch(idx, 10)

	ins := a.Instructions()[idx]
	if ins.Level != 2 || ins.Addr != 10 {
		t.Fatalf("expected level 2 addr 10, got %+v", ins)
	}
}

func TestEnterEncodesVarCountPlusHeader(t *testing.T) {
	a := New()
	a.Enter(4)
	ins := a.Instructions()[0]
	if ins.Op != INT || ins.Addr != 7 {
		t.Fatalf("expected INT 0, 7, got %s", ins)
	}
}

func TestCommentAttachesToNextInstructionOnly(t *testing.T) {
	a := New()
	a.Comment("loop start")
	a.LoadConst(1)
	a.LoadConst(2)

	ins := a.Instructions()
	if ins[0].Comment != "loop start" {
		t.Fatalf("expected comment on first instruction, got %q", ins[0].Comment)
	}
	if ins[1].Comment != "" {
		t.Fatalf("expected no comment on second instruction, got %q", ins[1].Comment)
	}
}

func TestInstructionStringRendersOperatorName(t *testing.T) {
	a := New()
	a.Operator(ADD)
	s := a.Instructions()[0].String()
	if s != "OPR 0, add" {
		t.Fatalf("expected %q, got %q", "OPR 0, add", s)
	}
}

func TestOpString(t *testing.T) {
	if LIT.String() != "LIT" {
		t.Fatalf("expected LIT, got %s", LIT.String())
	}
	if got := Op(99).String(); got != "Op(99)" {
		t.Fatalf("expected fallback rendering, got %s", got)
	}
}
