// Package check implements the type-checker collaborator (§6): it accepts
// a parsed ast.Program and validates the invariants spec.md declares
// "enforced by external checker" — every constructor belongs to exactly
// one type, left-hand patterns are linear, every rule body's free
// variables are bound by its pattern, and every rule matches its
// signature's arity. It also derives the G/F classification (§3) once, so
// the driver never has to re-scan a function's rules to decide it.
package check

import (
	"fmt"
	"sort"

	"github.com/nihei9/psc/ast"
	verr "github.com/nihei9/psc/error"
)

// CheckedProgram wraps a validated ast.Program with the facts the checker
// derived from it once, so the rest of the pipeline never has to recompute
// them (or, worse, recompute them differently).
type CheckedProgram struct {
	Program *ast.Program

	// isG[fn] is true iff fn is a G-function: at least one of its rules
	// has a constructor as its first pattern argument (§3).
	isG map[string]bool
}

// IsG reports whether fn is a G-function.
func (c *CheckedProgram) IsG(fn string) bool {
	return c.isG[fn]
}

// Check validates prog against §3's invariants, collecting every violation
// it finds (rather than stopping at the first) so a user sees the whole
// picture in one run, matching the teacher's verr.SpecErrors idiom.
func Check(prog *ast.Program) (*CheckedProgram, error) {
	var errs verr.SpecErrors

	constrOwner := map[string]string{} // constructor name -> type name
	typeNames := map[string]bool{}
	for _, td := range prog.Types {
		if typeNames[td.Name] {
			errs = append(errs, &verr.SpecError{Cause: semErrDuplicateType, Detail: td.Name, Row: td.Pos.Row})
		}
		typeNames[td.Name] = true
		for _, c := range td.Constructors {
			if owner, ok := constrOwner[c.Name]; ok && owner != td.Name {
				errs = append(errs, &verr.SpecError{Cause: semErrDuplicateConstr, Detail: c.Name, Row: c.Pos.Row})
				continue
			}
			constrOwner[c.Name] = td.Name
		}
	}

	checkTypeExpr := func(t ast.TypeExpr, scope map[string]bool) {
		var walk func(t ast.TypeExpr)
		walk = func(t ast.TypeExpr) {
			if t.IsVar() {
				return
			}
			if !typeNames[t.Name] {
				errs = append(errs, &verr.SpecError{Cause: semErrUnknownType, Detail: t.Name, Row: t.Pos.Row})
				return
			}
			for _, p := range t.Params {
				walk(p)
			}
		}
		walk(t)
	}
	for _, sig := range prog.Signatures {
		scope := map[string]bool{}
		for _, at := range sig.ArgTypes {
			checkTypeExpr(at, scope)
		}
		checkTypeExpr(sig.RetType, scope)
	}

	sigOf := map[string]*ast.FunSig{}
	for i := range prog.Signatures {
		sigOf[prog.Signatures[i].Name] = &prog.Signatures[i]
	}

	for _, r := range prog.Rules {
		sig, ok := sigOf[r.Pattern.Name]
		if !ok {
			errs = append(errs, &verr.SpecError{Cause: semErrNoSignature, Detail: r.Pattern.Name, Row: r.Pos.Row})
			continue
		}
		if len(r.Pattern.Params) != len(sig.ArgTypes) {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrArityMismatch,
				Detail: fmt.Sprintf("%s expects %d argument(s), got %d", r.Pattern.Name, len(sig.ArgTypes), len(r.Pattern.Params)),
				Row:    r.Pos.Row,
			})
			continue
		}

		bound := map[string]bool{}
		for _, param := range r.Pattern.Params {
			collectPatternVars(param, bound, &errs, r.Pos.Row)
		}
		checkConstructors(r.Pattern.Params, constrOwner, prog, &errs)

		free := map[string]bool{}
		collectFreeVars(r.Body, bound, free)
		if len(free) > 0 {
			names := make([]string, 0, len(free))
			for n := range free {
				names = append(names, n)
			}
			sort.Strings(names)
			errs = append(errs, &verr.SpecError{
				Cause:  semErrUnboundVar,
				Detail: fmt.Sprintf("%v", names),
				Row:    r.Pos.Row,
			})
		}

		checkBodyConstructors(r.Body, constrOwner, prog, &errs)
		checkBodyCalls(r.Body, sigOf, &errs)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &CheckedProgram{Program: prog, isG: Classify(prog)}, nil
}

// Classify computes the G/F classification (§3): fn is a G-function iff at
// least one of its rules dispatches on its first argument, i.e. has a
// constructor pattern there. A function with no rules, or whose rules all
// pattern-match a bare variable in first position, is an F-function.
func Classify(prog *ast.Program) map[string]bool {
	isG := map[string]bool{}
	for _, r := range prog.Rules {
		if len(r.Pattern.Params) == 0 {
			continue
		}
		if _, ok := r.Pattern.Params[0].(*ast.Ctr); ok {
			isG[r.Pattern.Name] = true
		}
	}
	return isG
}

// InferStartEnv implements §6's "the CLI may synthesize (f x1 … xn) from the
// signature" rule: it invents one fresh argument variable per entry in
// sig.ArgTypes and returns both the Γ (variable name -> declared type) and
// the call expression (f x1 … xn) the CLI drives when the user supplies only
// a function name. overrides replaces the inferred type for any variable
// name it mentions (the CLI's repeated `-t var=Type` flag), letting a caller
// narrow a type variable to a concrete type before driving.
func InferStartEnv(sig *ast.FunSig, overrides map[string]ast.TypeExpr) (map[string]ast.TypeExpr, ast.Expr) {
	env := map[string]ast.TypeExpr{}
	args := make([]ast.Expr, len(sig.ArgTypes))
	for i, t := range sig.ArgTypes {
		name := fmt.Sprintf("x%d", i+1)
		if override, ok := overrides[name]; ok {
			t = override
		}
		env[name] = t
		args[i] = ast.NewVar(name)
	}
	return env, ast.NewFCall(sig.Name, args...)
}

// collectPatternVars walks a pattern, recording every Var name into bound
// and reporting a non-linearity error the moment a name reappears (§3:
// "left-hand patterns are linear").
func collectPatternVars(e ast.Expr, bound map[string]bool, errs *verr.SpecErrors, row int) {
	switch n := e.(type) {
	case *ast.Var:
		if bound[n.Name] {
			*errs = append(*errs, &verr.SpecError{Cause: semErrNonlinearPattern, Detail: n.Name, Row: row})
			return
		}
		bound[n.Name] = true
	case *ast.Ctr:
		for _, a := range n.Args {
			collectPatternVars(a, bound, errs, row)
		}
	}
}

// collectFreeVars accumulates every Var in e not present in bound.
func collectFreeVars(e ast.Expr, bound map[string]bool, free map[string]bool) {
	switch n := e.(type) {
	case *ast.Var:
		if !bound[n.Name] {
			free[n.Name] = true
		}
	case *ast.Ctr:
		for _, a := range n.Args {
			collectFreeVars(a, bound, free)
		}
	case *ast.FCall:
		for _, a := range n.Args {
			collectFreeVars(a, bound, free)
		}
	case *ast.Let:
		collectFreeVars(n.Val, bound, free)
		inner := map[string]bool{n.Var: true}
		for k := range bound {
			inner[k] = true
		}
		collectFreeVars(n.Body, inner, free)
	}
}

func checkConstructors(pats []ast.Expr, owner map[string]string, prog *ast.Program, errs *verr.SpecErrors) {
	for _, p := range pats {
		c, ok := p.(*ast.Ctr)
		if !ok {
			continue
		}
		checkOneConstructor(c, owner, prog, errs)
	}
}

func checkOneConstructor(c *ast.Ctr, owner map[string]string, prog *ast.Program, errs *verr.SpecErrors) {
	typeName, ok := owner[c.Name]
	if !ok {
		*errs = append(*errs, &verr.SpecError{Cause: semErrUnknownConstr, Detail: c.Name, Row: c.Pos().Row})
		return
	}
	td := prog.TypeOf(typeName)
	for _, cd := range td.Constructors {
		if cd.Name != c.Name {
			continue
		}
		if len(cd.ArgTypes) != len(c.Args) {
			*errs = append(*errs, &verr.SpecError{
				Cause:  semErrArityMismatch,
				Detail: fmt.Sprintf("%s expects %d argument(s), got %d", c.Name, len(cd.ArgTypes), len(c.Args)),
				Row:    c.Pos().Row,
			})
		}
		break
	}
	for _, a := range c.Args {
		if sub, ok := a.(*ast.Ctr); ok {
			checkOneConstructor(sub, owner, prog, errs)
		}
	}
}

func checkBodyConstructors(e ast.Expr, owner map[string]string, prog *ast.Program, errs *verr.SpecErrors) {
	switch n := e.(type) {
	case *ast.Ctr:
		checkOneConstructor(n, owner, prog, errs)
		for _, a := range n.Args {
			checkBodyConstructors(a, owner, prog, errs)
		}
	case *ast.FCall:
		for _, a := range n.Args {
			checkBodyConstructors(a, owner, prog, errs)
		}
	case *ast.Let:
		checkBodyConstructors(n.Val, owner, prog, errs)
		checkBodyConstructors(n.Body, owner, prog, errs)
	}
}

func checkBodyCalls(e ast.Expr, sigOf map[string]*ast.FunSig, errs *verr.SpecErrors) {
	switch n := e.(type) {
	case *ast.FCall:
		sig, ok := sigOf[n.Name]
		if !ok {
			*errs = append(*errs, &verr.SpecError{Cause: semErrUnknownFunction, Detail: n.Name, Row: n.Pos().Row})
		} else if len(sig.ArgTypes) != len(n.Args) {
			*errs = append(*errs, &verr.SpecError{
				Cause:  semErrArityMismatch,
				Detail: fmt.Sprintf("%s expects %d argument(s), got %d", n.Name, len(sig.ArgTypes), len(n.Args)),
				Row:    n.Pos().Row,
			})
		}
		for _, a := range n.Args {
			checkBodyCalls(a, sigOf, errs)
		}
	case *ast.Ctr:
		for _, a := range n.Args {
			checkBodyCalls(a, sigOf, errs)
		}
	case *ast.Let:
		checkBodyCalls(n.Val, sigOf, errs)
		checkBodyCalls(n.Body, sigOf, errs)
	}
}
