package core_test

import (
	"strings"
	"testing"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/core"
	"github.com/nihei9/psc/interp"
)

// addAccSrc adds a second, accumulator-style addition next to addSrc's
// structurally-recursive one: addAcc(a, b) grows its second argument by one
// S at every step, so driving it never repeats an argument's configuration
// literally — it's the Turchin-relation shape §8.4 calls out, caught only
// by the embedding check, not by exact repetition.
const addAccSrc = core.AddSrc + `
fun (addAcc [Nat] [Nat]) -> [Nat] :
    (addAcc [Z] y) -> y
  | (addAcc [S x] y) -> (addAcc x [S y]) .
`

func TestResidualizer_GeneralizationEliminatesUnboundedGrowth(t *testing.T) {
	expr, err := ast.ParseExpr(strings.NewReader("(add a a)"))
	if err != nil {
		t.Fatal(err)
	}
	natType := ast.TypeExpr{Name: "Nat"}
	checked := core.MustCheck(t, core.AddSrc)
	residual, _ := buildAndResidualize(t, core.AddSrc, expr, map[string]ast.TypeExpr{"a": natType}, natType, core.HEWhistle{})

	printed := ast.PrintProgram(residual)
	if strings.Contains(printed, "[S [S [S") {
		t.Errorf("expected generalization to stop the S-nesting from growing without bound, got:\n%s", printed)
	}

	entry := residual.Signatures[0].Name
	for _, nat := range []string{"[Z]", "[S [Z]]", "[S [S [Z]]]", "[S [S [S [Z]]]]"} {
		n, err := ast.ParseExpr(strings.NewReader(nat))
		if err != nil {
			t.Fatal(err)
		}
		argEnv := map[string]ast.Expr{"a": n}
		want, err := interp.Eval(checked.Program, expr, argEnv, 10000)
		if err != nil {
			t.Fatalf("evaluating original add(%s, %s): %v", nat, nat, err)
		}
		got, err := interp.Eval(residual, ast.NewFCall(entry, ast.NewVar("a")), argEnv, 10000)
		if err != nil {
			t.Fatalf("evaluating residual for a=%s: %v", nat, err)
		}
		if ast.Print(want) != ast.Print(got) {
			t.Errorf("add(%s, %s): original=%s, residual=%s", nat, nat, ast.Print(want), ast.Print(got))
		}
	}
}

func TestResidualizer_AddAccGeneralizesAndStaysEquivalent(t *testing.T) {
	checked := core.MustCheck(t, addAccSrc)
	sig := checked.Program.SigOf("addAcc")
	a, b := ast.NewVar("a"), ast.NewVar("b")
	startExpr := ast.NewFCall("addAcc", a, b)
	env := map[string]ast.TypeExpr{"a": sig.ArgTypes[0], "b": sig.ArgTypes[1]}

	engine := core.NewEngine(checked, core.HEWhistle{}, nil, core.DefaultMaxNodes)
	tree, err := engine.BuildTree(startExpr, env)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	residual := core.NewResidualizer(tree, checked.Program, sig.RetType).Residualize()

	printed := ast.PrintProgram(residual)
	if strings.Contains(printed, "[S [S [S") {
		t.Errorf("expected generalization to stop addAcc's accumulator from growing without bound, got:\n%s", printed)
	}
	if strings.Contains(printed, "(addAcc") {
		t.Errorf("expected the residual program to have no remaining call to the original addAcc, got:\n%s", printed)
	}

	entry := residual.Signatures[0].Name
	cases := []struct{ x, y string }{
		{"[Z]", "[Z]"},
		{"[Z]", "[S [Z]]"},
		{"[S [Z]]", "[Z]"},
		{"[S [S [Z]]]", "[S [Z]]"},
	}
	for _, c := range cases {
		x, err := ast.ParseExpr(strings.NewReader(c.x))
		if err != nil {
			t.Fatal(err)
		}
		y, err := ast.ParseExpr(strings.NewReader(c.y))
		if err != nil {
			t.Fatal(err)
		}
		argEnv := map[string]ast.Expr{"a": x, "b": y}
		want, err := interp.Eval(checked.Program, startExpr, argEnv, 10000)
		if err != nil {
			t.Fatalf("evaluating original addAcc(%s, %s): %v", c.x, c.y, err)
		}
		got, err := interp.Eval(residual, ast.NewFCall(entry, a, b), argEnv, 10000)
		if err != nil {
			t.Fatalf("evaluating residual addAcc(%s, %s): %v", c.x, c.y, err)
		}
		if ast.Print(want) != ast.Print(got) {
			t.Errorf("addAcc(%s, %s): original=%s, residual=%s", c.x, c.y, ast.Print(want), ast.Print(got))
		}
	}
}

func TestResidualizer_RootIsAlwaysFirstSignature(t *testing.T) {
	checked := core.MustCheck(t, core.AddSrc)
	sig := checked.Program.SigOf("add")
	x1, x2 := ast.NewVar("x1"), ast.NewVar("x2")
	startExpr := ast.NewFCall("add", x1, x2)
	env := map[string]ast.TypeExpr{"x1": sig.ArgTypes[0], "x2": sig.ArgTypes[1]}

	engine := core.NewEngine(checked, core.HEWhistle{}, nil, core.DefaultMaxNodes)
	tree, err := engine.BuildTree(startExpr, env)
	if err != nil {
		t.Fatal(err)
	}
	residual := core.NewResidualizer(tree, checked.Program, sig.RetType).Residualize()
	if len(residual.Signatures) == 0 {
		t.Fatal("expected at least one residual signature")
	}
	if residual.Signatures[0].Name != "g1" {
		t.Errorf("expected the root's function to be registered first, got %q", residual.Signatures[0].Name)
	}
}
