package basic

import (
	"strings"
	"testing"
)

// sexpr renders a tree as a compact prefix form, leaves by value.
func sexpr(n *ActionNode) string {
	if n == nil {
		return "<nil>"
	}
	if len(n.Actions) == 0 {
		return n.Lexeme.Value
	}
	parts := []string{n.Lexeme.Value}
	for _, child := range n.Actions {
		parts = append(parts, sexpr(child))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func parseProgram(t *testing.T, source string) *Parser {
	t.Helper()
	p := NewParser(Config{})
	if err := p.ParseSource("test.bas", strings.NewReader(source)); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return p
}

func parseFailure(t *testing.T, source string) *ParseError {
	t.Helper()
	p := NewParser(Config{})
	err := p.ParseSource("test.bas", strings.NewReader(source))
	if err == nil {
		t.Fatalf("expected parse error for %q", source)
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if p.Err() != pe {
		t.Fatalf("Err() does not return the last error")
	}
	return pe
}

// expression parses "10 X=expr" and returns the right-hand side.
func expression(t *testing.T, expr string) *ActionNode {
	t.Helper()
	p := parseProgram(t, "10 X="+expr+"\n")
	let := p.Tags()[0].Actions[0]
	if !let.Lexeme.IsKeyword("LET") {
		t.Fatalf("expected LET, got %s", let.Lexeme)
	}
	return let.Child(1)
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2+3*4", "(+ 2 (* 3 4))"},
		{"(2+3)*4", "(* (+ 2 3) 4)"},
		{"2^3^2", "(^ (^ 2 3) 2)"},
		{"10-4-3", "(- (- 10 4) 3)"},
		{"-2^2", "(- (^ 2 2))"},
		{"-A*B", "(* (- A) B)"},
		{"A+-B", "(+ A (- B))"},
		{"NOT A AND B", "(AND (NOT A) B)"},
		{"A OR B AND C", "(OR A (AND B C))"},
		{"A XOR B OR C", "(XOR A (OR B C))"},
		{"A IMP B EQV C", "(IMP A (EQV B C))"},
		{"A MOD 3+1", "(+ (MOD A 3) 1)"},
		{"A\\2*3", "(* (\\ A 2) 3)"},
		{"A SHL 2+1", "(+ (SHL A 2) 1)"},
		{"A+1>B*2", "(> (+ A 1) (* B 2))"},
		{"A>=B AND C<>D", "(AND (>= A B) (<> C D))"},
		{"A<=B", "(<= A B)"},
		{"A=<B", "(<= A B)"},
		{"A=>B", "(>= A B)"},
		{"A><B", "(<> A B)"},
		{"A=-1", "(= A (- 1))"},
		{"&H10+1", "(+ 16 1)"},
		{"-(1)", "(- 1)"},
	}
	for _, tt := range tests {
		if got := sexpr(expression(t, tt.expr)); got != tt.want {
			t.Errorf("%s => %s, want %s", tt.expr, got, tt.want)
		}
	}
}

func TestExpressionCallsAndArrays(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"LEFT$(A$,2)", "(LEFT$ A$ 2)"},
		{"INT((A+1)/2)", "(INT (/ (+ A 1) 2))"},
		{"RND(1)*10", "(* (RND 1) 10)"},
		{"A(1,,3)", "(A 1 NULL 3)"},
		{"B(I+1)", "(B (+ I 1))"},
		{"MID$(S$,I,1)+CHR$(65)", "(+ (MID$ S$ I 1) (CHR$ 65))"},
		{"PLAY(0)", "(PLAY 0)"},
		{"USR(5)", "(USR 0 5)"},
		{"USR0(1)", "(USR 0 1)"},
		{"USR9(A)+1", "(+ (USR 9 A) 1)"},
	}
	for _, tt := range tests {
		if got := sexpr(expression(t, tt.expr)); got != tt.want {
			t.Errorf("%s => %s, want %s", tt.expr, got, tt.want)
		}
	}

	call := expression(t, "LEFT$(A$,2)")
	if call.Lexeme.ParmCount != 2 {
		t.Fatalf("expected 2 parameters, got %d", call.Lexeme.ParmCount)
	}
	if call.ParmCount != 2 {
		t.Fatalf("expected call node with 2 parameters, got %d", call.ParmCount)
	}
	array := expression(t, "A(1,,3)")
	if !array.Lexeme.IsArray || array.ParmCount != 3 {
		t.Fatalf("expected 3-index array, got %s /%d", array.Lexeme, array.ParmCount)
	}
	if array.Child(1).Lexeme.Subtype != SubtypeNull {
		t.Fatalf("expected null placeholder, got %s", array.Child(1).Lexeme)
	}
}

func TestExpressionOperatorFlags(t *testing.T) {
	neg := expression(t, "-A")
	if !neg.Lexeme.IsUnary || neg.Lexeme.ParmCount != 1 {
		t.Fatalf("expected unary minus, got %s", neg.Lexeme)
	}
	sub := expression(t, "A-B")
	if sub.Lexeme.IsUnary || sub.Lexeme.ParmCount != 2 {
		t.Fatalf("expected binary minus, got %s", sub.Lexeme)
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"10 X=(1+2\n", "mismatched parentheses"},
		{"10 X=1+2)\n", "mismatched parentheses"},
		{"10 X=LEFT$(A$,2\n", "mismatched parentheses"},
		{"10 X=1+\n", "missing operand at end of expression"},
		{"10 X=1 2\n", "missing operator before 2"},
		{"10 X=*2\n", "missing operand before *"},
		{"10 X=&H10000\n", "invalid numeric constant &H10000"},
		{"10 X=\n", "missing expression"},
		{"10 X=()\n", "missing operand before )"},
		{"10 X=USR12(1)\n", "USR index must be 0 to 9"},
		{"10 X=USR1+2\n", "missing ( after USR1"},
	}
	for _, tt := range tests {
		pe := parseFailure(t, tt.src)
		if !strings.Contains(pe.Msg, tt.want) {
			t.Errorf("%q: got %q, want %q", tt.src, pe.Msg, tt.want)
		}
	}
}

func TestArrayArityIsRecordedPerUse(t *testing.T) {
	p := parseProgram(t, "10 A(1)=1:B=A(1,2)\n")
	tag := p.Line(10)
	first := tag.Actions[0].Child(0)
	second := tag.Actions[1].Child(1)
	if first.Lexeme != second.Lexeme {
		t.Fatalf("expected both uses of A() to share one symbol")
	}
	if first.ParmCount != 1 || second.ParmCount != 2 {
		t.Fatalf("expected arities 1 and 2, got %d and %d", first.ParmCount, second.ParmCount)
	}
	if !strings.Contains(tag.String(), "identifier A [] /1\n") {
		t.Fatalf("expected the first use to dump with one index:\n%s", tag)
	}
}

func TestIdentifiersCoalesceAcrossLines(t *testing.T) {
	p := parseProgram(t, "10 A=1\n20 B=A+A\n30 A(1)=2\n40 A$=\"X\"\n")

	first := p.Line(10).Actions[0].Child(0).Lexeme
	sum := p.Line(20).Actions[0].Child(1)
	if sum.Child(0).Lexeme != first || sum.Child(1).Lexeme != first {
		t.Fatalf("expected every use of A to share one lexeme")
	}
	array := p.Line(30).Actions[0].Child(0).Lexeme
	if array == first || !array.IsArray {
		t.Fatalf("array A() must be a different symbol from scalar A")
	}
	str := p.Line(40).Actions[0].Child(0).Lexeme
	if str == first {
		t.Fatalf("A$ must be a different symbol from A")
	}

	names := make([]string, 0)
	for _, sym := range p.Context().Symbols() {
		names = append(names, sym.Name)
	}
	if got := strings.Join(names, ","); got != "A,B,A,A$" {
		t.Fatalf("unexpected symbol order %s", got)
	}
}
