package ast

import (
	"strings"
	"testing"
)

func TestParse_Program(t *testing.T) {
	src := `
type [Nat] : Z | S [Nat] .

fun (add [Nat] [Nat]) -> [Nat] :
    (add [Z] y) -> y
  | (add [S x] y) -> [S (add x y)] .
`
	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Types) != 1 || prog.Types[0].Name != "Nat" {
		t.Fatalf("unexpected types: %#v", prog.Types)
	}
	if len(prog.Types[0].Constructors) != 2 {
		t.Fatalf("unexpected constructors: %#v", prog.Types[0].Constructors)
	}
	sig := prog.SigOf("add")
	if sig == nil {
		t.Fatal("signature for add not found")
	}
	if len(prog.RulesOf("add")) != 2 {
		t.Fatalf("expected 2 rules for add, got %d", len(prog.RulesOf("add")))
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(strings.NewReader(`type [Nat] Z | S [Nat] .`))
	if err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x", "x"},
		{"42", "42"},
		{"[S [Z]]", "[S [Z]]"},
		{"(add x y)", "(add x y)"},
	}
	for _, tt := range tests {
		e, err := ParseExpr(strings.NewReader(tt.src))
		if err != nil {
			t.Fatalf("%q: %v", tt.src, err)
		}
		if got := Print(e); got != tt.want {
			t.Errorf("Print(ParseExpr(%q)) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseExpr_SyntaxError(t *testing.T) {
	_, err := ParseExpr(strings.NewReader("("))
	if err == nil {
		t.Fatal("expected a syntax error, got nil")
	}
}

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a", "a"},
		{"[Nat]", "[Nat]"},
		{"[List a]", "[List a]"},
	}
	for _, tt := range tests {
		ty, err := ParseTypeExpr(strings.NewReader(tt.src))
		if err != nil {
			t.Fatalf("%q: %v", tt.src, err)
		}
		if got := PrintType(ty); got != tt.want {
			t.Errorf("PrintType(ParseTypeExpr(%q)) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestProgram_ConstrOwner(t *testing.T) {
	prog, err := Parse(strings.NewReader(`type [Nat] : Z | S [Nat] .`))
	if err != nil {
		t.Fatal(err)
	}
	td, cd := prog.ConstrOwner("S")
	if td == nil || cd == nil {
		t.Fatal("expected S to be owned by Nat")
	}
	if td.Name != "Nat" || cd.Name != "S" {
		t.Fatalf("unexpected owner: %#v %#v", td, cd)
	}
	if td, cd := prog.ConstrOwner("NoSuchCtr"); td != nil || cd != nil {
		t.Fatalf("expected no owner for an unknown constructor, got %#v %#v", td, cd)
	}
}
