package interp

import (
	"strings"
	"testing"

	"github.com/nihei9/psc/ast"
)

const addSrc = `
type [Nat] : Z | S [Nat] .

fun (add [Nat] [Nat]) -> [Nat] :
    (add [Z] y) -> y
  | (add [S x] y) -> [S (add x y)] .
`

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ast.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func mustParseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	e, err := ast.ParseExpr(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse expr %q: %v", src, err)
	}
	return e
}

func TestEval_ReducesToAValue(t *testing.T) {
	prog := mustParse(t, addSrc)
	expr := ast.NewFCall("add", ast.NewVar("x"), ast.NewVar("y"))
	env := map[string]ast.Expr{
		"x": mustParseExpr(t, "[S [Z]]"),
		"y": mustParseExpr(t, "[S [S [Z]]]"),
	}
	got, err := Eval(prog, expr, env, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if want := "[S [S [S [Z]]]]"; ast.Print(got) != want {
		t.Errorf("Eval() = %v, want %v", ast.Print(got), want)
	}
}

func TestEval_StepBudgetExceeded(t *testing.T) {
	prog := mustParse(t, addSrc)
	expr := ast.NewFCall("add", ast.NewVar("x"), ast.NewVar("y"))
	env := map[string]ast.Expr{
		"x": mustParseExpr(t, "[S [Z]]"),
		"y": mustParseExpr(t, "[Z]"),
	}
	if _, err := Eval(prog, expr, env, 0); err == nil {
		t.Fatal("expected a step-budget error with a zero-step budget")
	}
}

func TestEval_NonFunctionIsAlreadyAValue(t *testing.T) {
	prog := mustParse(t, addSrc)
	expr := mustParseExpr(t, "[S [Z]]")
	got, err := Eval(prog, expr, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if ast.Print(got) != "[S [Z]]" {
		t.Errorf("Eval() on an already-ground value should be a no-op, got %v", ast.Print(got))
	}
}
