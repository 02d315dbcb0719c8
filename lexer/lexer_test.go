package lexer

import (
	"testing"

	"github.com/dr8co/pl0/token"
)

// TestAdvance exercises the scanner over a representative slice of
// PL/0 syntax, checking both the tag and the literal payload it sets.
func TestAdvance(t *testing.T) {
	input := `const max = 100;
var i, squ;

procedure square;
begin
   squ:= i * i
end;

begin
   i := 1;
   while i <= max do
   begin
      call square;
      write squ;
      i := i + 1
   end
end.`

	tests := []struct {
		tag   token.Tag
		ident string
		value int64
	}{
		{token.CONST, "", 0},
		{token.IDENT, "max", 0},
		{token.EQ, "", 0},
		{token.NUMBER, "", 100},
		{token.SEMICOLON, "", 0},
		{token.VAR, "", 0},
		{token.IDENT, "i", 0},
		{token.COMMA, "", 0},
		{token.IDENT, "squ", 0},
		{token.SEMICOLON, "", 0},
		{token.PROCEDURE, "", 0},
		{token.IDENT, "square", 0},
		{token.SEMICOLON, "", 0},
		{token.BEGIN, "", 0},
		{token.IDENT, "squ", 0},
		{token.ASSIGN, "", 0},
		{token.IDENT, "i", 0},
		{token.STAR, "", 0},
		{token.IDENT, "i", 0},
		{token.END, "", 0},
		{token.SEMICOLON, "", 0},
		{token.BEGIN, "", 0},
		{token.IDENT, "i", 0},
		{token.ASSIGN, "", 0},
		{token.NUMBER, "", 1},
		{token.SEMICOLON, "", 0},
		{token.WHILE, "", 0},
		{token.IDENT, "i", 0},
		{token.LEQ, "", 0},
		{token.IDENT, "max", 0},
		{token.DO, "", 0},
		{token.BEGIN, "", 0},
		{token.CALL, "", 0},
		{token.IDENT, "square", 0},
		{token.SEMICOLON, "", 0},
		{token.WRITE, "", 0},
		{token.IDENT, "squ", 0},
		{token.SEMICOLON, "", 0},
		{token.IDENT, "i", 0},
		{token.ASSIGN, "", 0},
		{token.IDENT, "i", 0},
		{token.PLUS, "", 0},
		{token.NUMBER, "", 1},
		{token.END, "", 0},
		{token.END, "", 0},
		{token.DOT, "", 0},
		{token.EOS, "", 0},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.Advance()
		if tok.Tag != tt.tag {
			t.Fatalf("test %d: expected tag %s, got %s", i, tt.tag, tok.Tag)
		}
		if tt.ident != "" && tok.Ident != tt.ident {
			t.Fatalf("test %d: expected ident %q, got %q", i, tt.ident, tok.Ident)
		}
		if tt.value != 0 && tok.Value != tt.value {
			t.Fatalf("test %d: expected value %d, got %d", i, tt.value, tok.Value)
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	l := New(":= <= >= # <")
	tags := []token.Tag{token.ASSIGN, token.LEQ, token.GEQ, token.HASH, token.LT, token.EOS}
	for i, want := range tags {
		if got := l.Advance().Tag; got != want {
			t.Fatalf("token %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("abc def")
	first := l.Peek()
	second := l.Peek()
	if first != second {
		t.Fatalf("Peek was not idempotent: %v != %v", first, second)
	}
	if adv := l.Advance(); adv != first {
		t.Fatalf("Advance returned %v, expected the peeked token %v", adv, first)
	}
}

func TestAccept(t *testing.T) {
	l := New("begin end")
	if _, ok := l.Accept(token.END); ok {
		t.Fatalf("Accept(END) unexpectedly matched BEGIN")
	}
	if _, ok := l.Accept(token.BEGIN); !ok {
		t.Fatalf("Accept(BEGIN) failed to match BEGIN")
	}
	if _, ok := l.Accept(token.END); !ok {
		t.Fatalf("Accept(END) failed to match END after BEGIN was consumed")
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("x := 1 @ 2")
	for {
		tok := l.Advance()
		if tok.Tag == token.EOS {
			break
		}
	}
	if l.Err() == nil {
		t.Fatalf("expected a LexError for '@', got nil")
	}
	lexErr, ok := l.Err().(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T", l.Err())
	}
	if lexErr.Ch != '@' {
		t.Fatalf("expected offending byte '@', got %q", lexErr.Ch)
	}
}

func TestNumberOverflow(t *testing.T) {
	l := New("99999999999999999999999999999")
	l.Advance()
	if l.Err() == nil {
		t.Fatalf("expected an overflow LexError, got nil")
	}
}
