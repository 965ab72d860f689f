package core

import (
	"strconv"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/check"
)

// Step is the outcome of driving one configuration forward (§4.2).
type Step interface {
	isStep()
}

// TransientStep replaces expr with NextExpr with no branching: an
// unambiguous rule fired, or a nested call reduced.
type TransientStep struct {
	NextExpr ast.Expr
}

func (TransientStep) isStep() {}

// DecomposeStep splits a passive constructor into its arguments, each
// driven independently.
type DecomposeStep struct {
	Parts []ast.Expr
}

func (DecomposeStep) isStep() {}

// Branch is one arm of a VariantStep: the specialized call, and the
// contraction (variable refined to constructor) that produced it, plus the
// refined typing context for that arm.
type Branch struct {
	Expr        ast.Expr
	Contraction Contraction
	VarTypes    map[string]ast.TypeExpr
}

// VariantStep case-splits on a free variable's possible constructors.
type VariantStep struct {
	Branches []Branch
}

func (VariantStep) isStep() {}

// StopStep means expr (a free variable or a literal) cannot be reduced or
// branched any further.
type StopStep struct{}

func (StopStep) isStep() {}

// Contraction records why a VariantStep branch exists: Var was refined to
// Pattern (§4.3's process-tree edge label).
type Contraction struct {
	Var     string
	Pattern ast.Pattern
}

// Driver performs one-step symbolic evaluation of configurations (§4.2).
type Driver struct {
	prog    *check.CheckedProgram
	nameGen *nameGen
}

// NewDriver builds a Driver over a checked program, sharing nameGen across
// the whole supercompilation run so every synthesized variable is unique.
func NewDriver(prog *check.CheckedProgram, nameGen *nameGen) *Driver {
	return &Driver{prog: prog, nameGen: nameGen}
}

// Drive computes the single step available from expr under varTypes.
func (d *Driver) Drive(expr ast.Expr, varTypes map[string]ast.TypeExpr) Step {
	switch e := expr.(type) {
	case *ast.Ctr:
		return DecomposeStep{Parts: e.Args}
	case *ast.Var, *ast.IntLit:
		return StopStep{}
	case *ast.FCall:
		return d.driveCall(e, varTypes)
	default:
		return StopStep{}
	}
}

// driveCall performs rule-based driving over expr's rules in source order
// (§4.2): the first rule whose pattern succeeds reduces transiently, unless
// an earlier rule already forced a narrowing — first-match priority means
// we cannot skip ahead of a rule still stuck on a variable, so we must
// case-split instead (§3's adopted contract for overlapping rules).
func (d *Driver) driveCall(expr *ast.FCall, varTypes map[string]ast.TypeExpr) Step {
	rules := d.prog.Program.RulesOf(expr.Name)

	var branches []Branch
	for _, rule := range rules {
		res := MatchArgs(rule.Pattern.Params, expr.Args)
		switch r := res.(type) {
		case MatchSuccess:
			if len(branches) > 0 {
				return VariantStep{Branches: branches}
			}
			return TransientStep{NextExpr: Substitute(rule.Body, r.Bindings)}

		case MatchNarrow:
			if b, ok := d.createBranch(expr, r.Var, r.Constr, varTypes); ok {
				branches = append(branches, b)
			}

		case MatchFail:
			continue
		}
	}

	if len(branches) > 0 {
		return VariantStep{Branches: branches}
	}
	return d.driveNested(expr, varTypes)
}

// createBranch refines varName into a fresh Constr application inside
// expr, eagerly re-driving the refined call so the branch body is already
// reduced one more step where possible (§4.2).
func (d *Driver) createBranch(expr *ast.FCall, varName, constrName string, varTypes map[string]ast.TypeExpr) (Branch, bool) {
	typeExpr, ok := varTypes[varName]
	if !ok {
		return Branch{}, false
	}
	td := d.prog.Program.TypeOf(typeExpr.Name)
	if td == nil {
		return Branch{}, false
	}
	var constrDef *ast.ConstrDef
	for i := range td.Constructors {
		if td.Constructors[i].Name == constrName {
			constrDef = &td.Constructors[i]
			break
		}
	}
	if constrDef == nil {
		return Branch{}, false
	}

	freshVars := make([]ast.Expr, len(constrDef.ArgTypes))
	newVarTypes := map[string]ast.TypeExpr{}
	for k, v := range varTypes {
		newVarTypes[k] = v
	}
	for i, argType := range constrDef.ArgTypes {
		v := ast.NewVar(d.nameGen.fresh())
		freshVars[i] = v
		newVarTypes[v.Name] = argType
	}

	bindings := map[string]ast.Expr{varName: ast.NewCtr(constrName, freshVars...)}
	newExpr := Substitute(expr, bindings)

	finalExpr := ast.Expr(newExpr)
	if refined, ok := newExpr.(*ast.FCall); ok {
		for _, rule := range d.prog.Program.RulesOf(expr.Name) {
			res := MatchArgs(rule.Pattern.Params, refined.Args)
			if r, ok := res.(MatchSuccess); ok {
				finalExpr = Substitute(rule.Body, r.Bindings)
				break
			}
		}
	}

	return Branch{
		Expr:        finalExpr,
		Contraction: Contraction{Var: varName, Pattern: ast.Pattern{Name: constrName, Params: freshVars}},
		VarTypes:    newVarTypes,
	}, true
}

// driveNested advances the first nested function call found among expr's
// arguments, since expr's own rules are all stuck on it (§4.2, "driving
// under a context").
func (d *Driver) driveNested(expr *ast.FCall, varTypes map[string]ast.TypeExpr) Step {
	for i, arg := range expr.Args {
		call, ok := arg.(*ast.FCall)
		if !ok {
			continue
		}
		switch inner := d.Drive(call, varTypes).(type) {
		case TransientStep:
			newArgs := append([]ast.Expr(nil), expr.Args...)
			newArgs[i] = inner.NextExpr
			return TransientStep{NextExpr: ast.WithTag(ast.WithPos(ast.NewFCall(expr.Name, newArgs...), expr.Pos()), expr.Tag())}

		case VariantStep:
			branches := make([]Branch, len(inner.Branches))
			for j, b := range inner.Branches {
				newArgs := append([]ast.Expr(nil), expr.Args...)
				newArgs[i] = b.Expr
				branches[j] = Branch{
					Expr:        ast.WithTag(ast.WithPos(ast.NewFCall(expr.Name, newArgs...), expr.Pos()), expr.Tag()),
					Contraction: b.Contraction,
					VarTypes:    b.VarTypes,
				}
			}
			return VariantStep{Branches: branches}

		case DecomposeStep, StopStep:
			// this argument can't move; try the next one
		}
	}
	return StopStep{}
}

// nameGen hands out fresh driver-synthesized variable names, unique for
// the lifetime of one supercompilation run.
type nameGen struct {
	counter int
}

func newNameGen() *nameGen {
	return &nameGen{}
}

func (g *nameGen) fresh() string {
	g.counter++
	return "x" + strconv.Itoa(g.counter)
}
