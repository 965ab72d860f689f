// Package interp is the reference interpreter oracle (§4.9): a plain
// leftmost-outermost evaluator over ground terms, used to check a residual
// program still computes the same answers as the source program it was
// specialized from.
package interp

import (
	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/core"
	verr "github.com/nihei9/psc/error"
)

// stepBudgetError is returned when Eval performs maxSteps reductions
// without reaching a value — almost always a non-terminating program
// rather than a slow one, since SLL has no numeric bound on recursion
// depth to wait out.
func stepBudgetError() error {
	return &verr.InternalError{Msg: "step budget exceeded before reaching a value"}
}

// Eval reduces expr to a normal form under prog, performing at most
// maxSteps rewrite steps. env binds expr's free variables to already-
// ground expressions; Eval substitutes it in once up front, so every
// reduction step afterward works over a fully ground term (§4.9 — no
// narrowing, unlike the driver's symbolic stepping).
func Eval(prog *ast.Program, expr ast.Expr, env map[string]ast.Expr, maxSteps int) (ast.Expr, error) {
	cur := core.Substitute(expr, env)
	for i := 0; i < maxSteps; i++ {
		next, progressed, err := step(prog, cur)
		if err != nil {
			return nil, err
		}
		if !progressed {
			return cur, nil
		}
		cur = next
	}
	return nil, stepBudgetError()
}

// step performs one reduction, mirroring the driver's own one-step
// semantics but over ground terms only: it reduces the first call it can,
// leftmost-outermost, falling back to the first reducible argument when
// none of a call's own rules fire directly.
func step(prog *ast.Program, expr ast.Expr) (ast.Expr, bool, error) {
	switch e := expr.(type) {
	case *ast.Ctr:
		for i, arg := range e.Args {
			next, progressed, err := step(prog, arg)
			if err != nil {
				return nil, false, err
			}
			if progressed {
				newArgs := append([]ast.Expr(nil), e.Args...)
				newArgs[i] = next
				return ast.NewCtr(e.Name, newArgs...), true, nil
			}
		}
		return expr, false, nil

	case *ast.FCall:
		for _, rule := range prog.RulesOf(e.Name) {
			res := core.MatchArgs(rule.Pattern.Params, e.Args)
			switch r := res.(type) {
			case core.MatchSuccess:
				return core.Substitute(rule.Body, r.Bindings), true, nil
			case core.MatchNarrow:
				return nil, false, &verr.InternalError{Msg: "ground evaluation narrowed on free variable " + r.Var + " — expr was not ground"}
			}
		}
		for i, arg := range e.Args {
			if _, ok := arg.(*ast.FCall); !ok {
				continue
			}
			next, progressed, err := step(prog, arg)
			if err != nil {
				return nil, false, err
			}
			if progressed {
				newArgs := append([]ast.Expr(nil), e.Args...)
				newArgs[i] = next
				return ast.NewFCall(e.Name, newArgs...), true, nil
			}
		}
		return expr, false, nil

	default:
		return expr, false, nil
	}
}
