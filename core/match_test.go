package core

import (
	"testing"

	"github.com/nihei9/psc/ast"
)

func TestMatch_VarAlwaysSucceeds(t *testing.T) {
	res := Match(ast.NewVar("x"), ast.NewCtr("Z"))
	succ, ok := res.(MatchSuccess)
	if !ok {
		t.Fatalf("expected MatchSuccess, got %#v", res)
	}
	if ast.Print(succ.Bindings["x"]) != "[Z]" {
		t.Errorf("expected x bound to [Z], got %v", succ.Bindings["x"])
	}
}

func TestMatch_CtrVsCtr_SameShape(t *testing.T) {
	pattern := ast.NewCtr("S", ast.NewVar("x"))
	term := ast.NewCtr("S", ast.NewCtr("Z"))
	res := Match(pattern, term)
	succ, ok := res.(MatchSuccess)
	if !ok {
		t.Fatalf("expected MatchSuccess, got %#v", res)
	}
	if ast.Print(succ.Bindings["x"]) != "[Z]" {
		t.Errorf("expected x bound to [Z], got %v", succ.Bindings["x"])
	}
}

func TestMatch_CtrVsCtr_DifferentName(t *testing.T) {
	res := Match(ast.NewCtr("S", ast.NewVar("x")), ast.NewCtr("Z"))
	if _, ok := res.(MatchFail); !ok {
		t.Fatalf("expected MatchFail, got %#v", res)
	}
}

func TestMatch_CtrVsVar_Narrows(t *testing.T) {
	res := Match(ast.NewCtr("S", ast.NewVar("x")), ast.NewVar("a"))
	narrow, ok := res.(MatchNarrow)
	if !ok {
		t.Fatalf("expected MatchNarrow, got %#v", res)
	}
	if narrow.Var != "a" || narrow.Constr != "S" || narrow.Arity != 1 {
		t.Errorf("unexpected narrow: %#v", narrow)
	}
}

func TestMatch_CtrVsIntLit_Fails(t *testing.T) {
	res := Match(ast.NewCtr("S", ast.NewVar("x")), ast.NewIntLit(3))
	if _, ok := res.(MatchFail); !ok {
		t.Fatalf("expected MatchFail, got %#v", res)
	}
}

func TestMatch_IntLit(t *testing.T) {
	if _, ok := Match(ast.NewIntLit(3), ast.NewIntLit(3)).(MatchSuccess); !ok {
		t.Error("expected equal int literals to match")
	}
	if _, ok := Match(ast.NewIntLit(3), ast.NewIntLit(4)).(MatchFail); !ok {
		t.Error("expected unequal int literals to fail")
	}
}

func TestIsRenaming(t *testing.T) {
	a := ast.NewCtr("S", ast.NewVar("x"))
	b := ast.NewCtr("S", ast.NewVar("y"))
	if !IsRenaming(a, b) {
		t.Error("expected [S x] and [S y] to be renaming-equivalent")
	}
	c := ast.NewCtr("S", ast.NewCtr("Z"))
	if IsRenaming(a, c) {
		t.Error("[S x] and [S [Z]] are not renaming-equivalent")
	}
}

func TestMatchArgs(t *testing.T) {
	patternArgs := []ast.Expr{ast.NewCtr("Z"), ast.NewVar("y")}
	callArgs := []ast.Expr{ast.NewCtr("Z"), ast.NewCtr("S", ast.NewCtr("Z"))}
	res := MatchArgs(patternArgs, callArgs)
	succ, ok := res.(MatchSuccess)
	if !ok {
		t.Fatalf("expected MatchSuccess, got %#v", res)
	}
	if ast.Print(succ.Bindings["y"]) != "[S [Z]]" {
		t.Errorf("unexpected binding for y: %v", succ.Bindings["y"])
	}
}

func TestSubstitute(t *testing.T) {
	e := ast.NewCtr("S", ast.NewVar("x"))
	got := Substitute(e, map[string]ast.Expr{"x": ast.NewCtr("Z")})
	if want := "[S [Z]]"; ast.Print(got) != want {
		t.Errorf("Substitute() = %v, want %v", ast.Print(got), want)
	}
}

func TestSubstitute_LeavesUnboundVarsAlone(t *testing.T) {
	e := ast.NewVar("y")
	got := Substitute(e, map[string]ast.Expr{"x": ast.NewCtr("Z")})
	if ast.Print(got) != "y" {
		t.Errorf("expected y to be left alone, got %v", ast.Print(got))
	}
}
