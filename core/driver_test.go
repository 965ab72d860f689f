package core

import (
	"strings"
	"testing"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/check"
)

func mustCheck(t *testing.T, src string) *check.CheckedProgram {
	t.Helper()
	prog, err := ast.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	checked, err := check.Check(prog)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return checked
}

// MustCheck and AddSrc expose mustCheck and addSrc to this directory's
// external core_test package, whose tests import interp (which imports
// core, so package core's own tests cannot import it).
var MustCheck = mustCheck

const AddSrc = addSrc

const addSrc = `
type [Nat] : Z | S [Nat] .

fun (add [Nat] [Nat]) -> [Nat] :
    (add [Z] y) -> y
  | (add [S x] y) -> [S (add x y)] .
`

func TestDriver_Drive_Ctr_Decomposes(t *testing.T) {
	d := NewDriver(mustCheck(t, addSrc), newNameGen())
	step := d.Drive(ast.NewCtr("S", ast.NewVar("x")), nil)
	ds, ok := step.(DecomposeStep)
	if !ok {
		t.Fatalf("expected DecomposeStep, got %#v", step)
	}
	if len(ds.Parts) != 1 || ast.Print(ds.Parts[0]) != "x" {
		t.Fatalf("unexpected decompose parts: %#v", ds.Parts)
	}
}

func TestDriver_Drive_VarStops(t *testing.T) {
	d := NewDriver(mustCheck(t, addSrc), newNameGen())
	if _, ok := d.Drive(ast.NewVar("x"), nil).(StopStep); !ok {
		t.Fatal("expected a bare variable to stop")
	}
}

func TestDriver_Drive_Transient_OnConcreteFirstArg(t *testing.T) {
	checked := mustCheck(t, addSrc)
	d := NewDriver(checked, newNameGen())
	call := ast.NewFCall("add", ast.NewCtr("Z"), ast.NewVar("y"))
	step := d.Drive(call, map[string]ast.TypeExpr{"y": {Name: "Nat"}})
	ts, ok := step.(TransientStep)
	if !ok {
		t.Fatalf("expected TransientStep, got %#v", step)
	}
	if ast.Print(ts.NextExpr) != "y" {
		t.Fatalf("expected (add [Z] y) -> y, got %v", ast.Print(ts.NextExpr))
	}
}

func TestDriver_Drive_Variant_OnFreeFirstArg(t *testing.T) {
	checked := mustCheck(t, addSrc)
	d := NewDriver(checked, newNameGen())
	call := ast.NewFCall("add", ast.NewVar("a"), ast.NewVar("b"))
	step := d.Drive(call, map[string]ast.TypeExpr{"a": {Name: "Nat"}, "b": {Name: "Nat"}})
	vs, ok := step.(VariantStep)
	if !ok {
		t.Fatalf("expected VariantStep, got %#v", step)
	}
	if len(vs.Branches) != 2 {
		t.Fatalf("expected 2 branches (Z, S), got %d", len(vs.Branches))
	}
	names := map[string]bool{}
	for _, b := range vs.Branches {
		names[b.Contraction.Pattern.Name] = true
	}
	if !names["Z"] || !names["S"] {
		t.Fatalf("expected branches for Z and S, got %#v", names)
	}
}

func TestDriver_Drive_NestedCallAdvancesFirst(t *testing.T) {
	checked := mustCheck(t, addSrc)
	d := NewDriver(checked, newNameGen())
	call := ast.NewFCall("add", ast.NewFCall("add", ast.NewCtr("Z"), ast.NewVar("y")), ast.NewVar("z"))
	step := d.Drive(call, map[string]ast.TypeExpr{"y": {Name: "Nat"}, "z": {Name: "Nat"}})
	ts, ok := step.(TransientStep)
	if !ok {
		t.Fatalf("expected TransientStep (nested call reduces), got %#v", step)
	}
	if ast.Print(ts.NextExpr) != "(add y z)" {
		t.Fatalf("unexpected reduced expr: %v", ast.Print(ts.NextExpr))
	}
}
