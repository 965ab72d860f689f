package core

import (
	"testing"

	"github.com/nihei9/psc/ast"
)

func TestGeneralize_IdenticalVarsStayShared(t *testing.T) {
	t1 := ast.NewCtr("S", ast.NewVar("x"))
	t2 := ast.NewCtr("S", ast.NewVar("x"))
	gr := Generalize(t1, t2)
	if ast.Print(gr.Gen) != "[S x]" {
		t.Fatalf("Gen = %v, want [S x]", ast.Print(gr.Gen))
	}
	if len(gr.HoleNames()) != 0 {
		t.Fatalf("expected no holes, got %v", gr.HoleNames())
	}
}

func TestGeneralize_DivergentSubtermsBecomeAHole(t *testing.T) {
	t1 := ast.NewCtr("S", ast.NewCtr("Z"))
	t2 := ast.NewCtr("S", ast.NewCtr("S", ast.NewCtr("Z")))
	gr := Generalize(t1, t2)

	holes := gr.HoleNames()
	if len(holes) != 1 {
		t.Fatalf("expected exactly 1 hole, got %v", holes)
	}
	h := holes[0]
	if ast.Print(gr.Gen) != "[S "+h+"]" {
		t.Fatalf("Gen = %v, want [S %v]", ast.Print(gr.Gen), h)
	}
	if ast.Print(gr.Sub1[h]) != "[Z]" {
		t.Errorf("Sub1[%v] = %v, want [Z]", h, ast.Print(gr.Sub1[h]))
	}
	if ast.Print(gr.Sub2[h]) != "[S [Z]]" {
		t.Errorf("Sub2[%v] = %v, want [S [Z]]", h, ast.Print(gr.Sub2[h]))
	}
}

func TestGeneralize_RepeatedDivergentPairSharesOneHole(t *testing.T) {
	t1 := ast.NewCtr("Pair", ast.NewCtr("Z"), ast.NewCtr("Z"))
	t2 := ast.NewCtr("Pair", ast.NewCtr("S", ast.NewCtr("Z")), ast.NewCtr("S", ast.NewCtr("Z")))
	gr := Generalize(t1, t2)

	holes := gr.HoleNames()
	if len(holes) != 1 {
		t.Fatalf("expected the two identical divergent pairs to share one hole, got %v", holes)
	}
}

func TestGenResult_HoleNamesNumericOrder(t *testing.T) {
	gr := GenResult{
		Sub1: map[string]ast.Expr{"v2": ast.NewVar("a"), "v10": ast.NewVar("b"), "v1": ast.NewVar("c")},
	}
	names := gr.HoleNames()
	want := []string{"v1", "v2", "v10"}
	if len(names) != len(want) {
		t.Fatalf("unexpected hole names: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("HoleNames() = %v, want %v", names, want)
		}
	}
}
