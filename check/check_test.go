package check

import (
	"strings"
	"testing"

	"github.com/nihei9/psc/ast"
)

const natSrc = `
type [Nat] : Z | S [Nat] .

fun (add [Nat] [Nat]) -> [Nat] :
    (add [Z] y) -> y
  | (add [S x] y) -> [S (add x y)] .
`

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := ast.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return prog
}

func TestCheck_Valid(t *testing.T) {
	prog := mustParse(t, natSrc)
	checked, err := Check(prog)
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	if !checked.IsG("add") {
		t.Error("add dispatches on its first argument and should be classified as a G-function")
	}
}

func TestCheck_UnboundVariable(t *testing.T) {
	prog := mustParse(t, `
type [Nat] : Z | S [Nat] .

fun (id [Nat]) -> [Nat] :
  (id [Z]) -> y .
`)
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an unbound-variable error")
	}
}

func TestCheck_NonlinearPattern(t *testing.T) {
	prog := mustParse(t, `
type [Nat] : Z | S [Nat] .

fun (eq [Nat] [Nat]) -> [Nat] :
  (eq x x) -> x .
`)
	if _, err := Check(prog); err == nil {
		t.Fatal("expected a nonlinear-pattern error")
	}
}

func TestCheck_UnknownConstructor(t *testing.T) {
	prog := mustParse(t, `
type [Nat] : Z | S [Nat] .

fun (f [Nat]) -> [Nat] :
  (f [Bogus]) -> [Z] .
`)
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an unknown-constructor error")
	}
}

func TestCheck_ArityMismatch(t *testing.T) {
	prog := mustParse(t, `
type [Nat] : Z | S [Nat] .

fun (f [Nat]) -> [Nat] :
  (f [S]) -> [Z] .
`)
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an arity-mismatch error for [S] (S takes one argument)")
	}
}

func TestCheck_UnknownFunctionCall(t *testing.T) {
	prog := mustParse(t, `
type [Nat] : Z | S [Nat] .

fun (f [Nat]) -> [Nat] :
  (f x) -> (undeclared x) .
`)
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an unknown-function error")
	}
}

func TestClassify(t *testing.T) {
	prog := mustParse(t, natSrc)
	isG := Classify(prog)
	if !isG["add"] {
		t.Error("add should be classified as a G-function")
	}
}

func TestClassify_FFunction(t *testing.T) {
	prog := mustParse(t, `
type [Nat] : Z | S [Nat] .

fun (double [Nat]) -> [Nat] :
  (double x) -> [S [S x]] .
`)
	isG := Classify(prog)
	if isG["double"] {
		t.Error("double pattern-matches a bare variable and should be classified as an F-function")
	}
}

func TestInferStartEnv(t *testing.T) {
	prog := mustParse(t, natSrc)
	sig := prog.SigOf("add")
	if sig == nil {
		t.Fatal("signature for add not found")
	}
	env, call := InferStartEnv(sig, nil)
	fcall, ok := call.(*ast.FCall)
	if !ok {
		t.Fatalf("expected an FCall, got %T", call)
	}
	if fcall.Name != "add" || len(fcall.Args) != 2 {
		t.Fatalf("unexpected call shape: %#v", fcall)
	}
	if len(env) != 2 {
		t.Fatalf("expected 2 inferred variables, got %d", len(env))
	}
	if _, ok := env["x1"]; !ok {
		t.Error("expected x1 in the inferred environment")
	}
	if _, ok := env["x2"]; !ok {
		t.Error("expected x2 in the inferred environment")
	}
}

func TestInferStartEnv_Override(t *testing.T) {
	prog := mustParse(t, natSrc)
	sig := prog.SigOf("add")
	overrideTy, err := ast.ParseTypeExpr(strings.NewReader("[Nat]"))
	if err != nil {
		t.Fatal(err)
	}
	env, _ := InferStartEnv(sig, map[string]ast.TypeExpr{"x1": overrideTy})
	if env["x1"].Name != "Nat" {
		t.Fatalf("expected the override to replace x1's type, got %#v", env["x1"])
	}
}
