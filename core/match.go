// Package core implements the supercompiler itself: the three-valued
// matcher, the symbolic driver, the two whistles, most-specific
// generalization, the process tree, and the residualizer (§3-§5).
package core

import (
	"fmt"

	"github.com/nihei9/psc/ast"
)

// MatchResult is the three-valued outcome of matching a rule's pattern
// argument against a call's argument (§4.1):
//
//	match(pattern, term) -> Success(σ) | Fail | Narrow(v, C, k)
//
// Narrow is what makes rule-based driving possible: it says the match
// could succeed if v were refined into a C-shaped value.
type MatchResult interface {
	isMatchResult()
}

// MatchSuccess carries the substitution that makes pattern and term equal.
type MatchSuccess struct {
	Bindings map[string]ast.Expr
}

func (MatchSuccess) isMatchResult() {}

// MatchFail means pattern and term can never unify, regardless of how any
// free variable in term is refined.
type MatchFail struct{}

func (MatchFail) isMatchResult() {}

// MatchNarrow means the match is undecided because Var is a free variable
// standing where the pattern needs a Ctr-shaped value: refining Var into a
// Constr application with Arity fresh arguments would let the match
// proceed.
type MatchNarrow struct {
	Var    string
	Constr string
	Arity  int
}

func (MatchNarrow) isMatchResult() {}

// Match compares a rule pattern argument against a call argument (§4.1).
//
//   - Var in pattern: always succeeds, binding the whole term.
//   - IntLit in pattern: succeeds iff term is an equal IntLit and fails on
//     anything else, a bare Var included (SLL has no way to case-split on
//     an integer's value, so only constructor-shaped patterns narrow).
//   - Ctr in pattern vs Ctr in term: same name and arity required; recurse
//     argument-wise, short-circuiting on the first non-Success result.
//   - Ctr in pattern vs Var in term: Narrow.
//   - Ctr in pattern vs anything else (IntLit, FCall): Fail.
func Match(pattern, term ast.Expr) MatchResult {
	switch p := pattern.(type) {
	case *ast.Var:
		return MatchSuccess{Bindings: map[string]ast.Expr{p.Name: term}}

	case *ast.IntLit:
		if t, ok := term.(*ast.IntLit); ok {
			if t.Value == p.Value {
				return MatchSuccess{Bindings: map[string]ast.Expr{}}
			}
		}
		return MatchFail{}

	case *ast.Ctr:
		switch t := term.(type) {
		case *ast.Ctr:
			if t.Name != p.Name || len(t.Args) != len(p.Args) {
				return MatchFail{}
			}
			bindings := map[string]ast.Expr{}
			for i := range p.Args {
				res := Match(p.Args[i], t.Args[i])
				switch r := res.(type) {
				case MatchSuccess:
					for k, v := range r.Bindings {
						bindings[k] = v
					}
				default:
					return res
				}
			}
			return MatchSuccess{Bindings: bindings}
		case *ast.Var:
			return MatchNarrow{Var: t.Name, Constr: p.Name, Arity: len(p.Args)}
		default:
			return MatchFail{}
		}

	case *ast.FCall:
		// Rule patterns never contain an FCall (the parser never produces
		// one), but IsRenaming reuses Match to compare whole
		// configurations, which can themselves be calls.
		t, ok := term.(*ast.FCall)
		if !ok || t.Name != p.Name || len(t.Args) != len(p.Args) {
			return MatchFail{}
		}
		bindings := map[string]ast.Expr{}
		for i := range p.Args {
			res := Match(p.Args[i], t.Args[i])
			switch r := res.(type) {
			case MatchSuccess:
				for k, v := range r.Bindings {
					bindings[k] = v
				}
			default:
				return res
			}
		}
		return MatchSuccess{Bindings: bindings}

	default:
		panic(fmt.Sprintf("match: %T cannot appear in a pattern position", pattern))
	}
}

// IsRenaming reports whether Match(a, b) and Match(b, a) both succeed: a
// and b have the same shape up to variable names. It does not check that
// a repeated variable is renamed consistently (see IsExactRenaming, which
// process-tree folding uses instead).
func IsRenaming(a, b ast.Expr) bool {
	_, ok1 := Match(a, b).(MatchSuccess)
	_, ok2 := Match(b, a).(MatchSuccess)
	return ok1 && ok2
}

// IsExactRenaming reports whether a and b are identical up to one
// consistent bijective variable renaming — stricter than IsRenaming, whose
// Match-based definition binds each pattern variable independently per
// argument and so can't notice a variable repeated across positions
// (Match(add(a,a), add(v1,a)) succeeds despite v1 and a not corresponding
// to the same thing on both sides). Generalization's fold-fallback (§4.6)
// needs the strict version: folding a node onto an ancestor whose
// signature doesn't truly match it would residualize a call with the
// wrong arity.
func IsExactRenaming(a, b ast.Expr) bool {
	return renamingWalk(a, b, map[string]string{}, map[string]string{})
}

func renamingWalk(a, b ast.Expr, aToB, bToA map[string]string) bool {
	switch an := a.(type) {
	case *ast.Var:
		bn, ok := b.(*ast.Var)
		if !ok {
			return false
		}
		if mapped, ok := aToB[an.Name]; ok {
			return mapped == bn.Name
		}
		if _, ok := bToA[bn.Name]; ok {
			return false
		}
		aToB[an.Name] = bn.Name
		bToA[bn.Name] = an.Name
		return true
	case *ast.IntLit:
		bn, ok := b.(*ast.IntLit)
		return ok && bn.Value == an.Value
	case *ast.Ctr:
		bn, ok := b.(*ast.Ctr)
		if !ok || bn.Name != an.Name || len(bn.Args) != len(an.Args) {
			return false
		}
		for i := range an.Args {
			if !renamingWalk(an.Args[i], bn.Args[i], aToB, bToA) {
				return false
			}
		}
		return true
	case *ast.FCall:
		bn, ok := b.(*ast.FCall)
		if !ok || bn.Name != an.Name || len(bn.Args) != len(an.Args) {
			return false
		}
		for i := range an.Args {
			if !renamingWalk(an.Args[i], bn.Args[i], aToB, bToA) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MatchArgs matches a rule's ordered pattern params against a call's
// ordered args by wrapping both sides in a dummy same-arity constructor, so
// a single Match call can drive the whole argument list and a Narrow on
// any argument short-circuits the rest (§4.2 "rule-based driving").
func MatchArgs(patternArgs, callArgs []ast.Expr) MatchResult {
	return Match(ast.NewCtr("#args", patternArgs...), ast.NewCtr("#args", callArgs...))
}

// Substitute replaces every free Var in e named in bindings with its bound
// expression (§4.1). Every Ctr, FCall and Let that e contributes is
// rebuilt with its own origin tag, and each substituted value keeps the
// tags it already carries (§5.2).
func Substitute(e ast.Expr, bindings map[string]ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.Var:
		if v, ok := bindings[n.Name]; ok {
			return v
		}
		return n
	case *ast.Ctr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Substitute(a, bindings)
		}
		return ast.WithTag(ast.WithPos(ast.NewCtr(n.Name, args...), n.Pos()), n.Tag())
	case *ast.FCall:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Substitute(a, bindings)
		}
		return ast.WithTag(ast.WithPos(ast.NewFCall(n.Name, args...), n.Pos()), n.Tag())
	case *ast.IntLit:
		return n
	case *ast.Let:
		val := Substitute(n.Val, bindings)
		inner := bindings
		if _, shadowed := bindings[n.Var]; shadowed {
			inner = map[string]ast.Expr{}
			for k, v := range bindings {
				if k != n.Var {
					inner[k] = v
				}
			}
		}
		return ast.WithTag(ast.WithPos(ast.NewLet(n.Var, val, Substitute(n.Body, inner)), n.Pos()), n.Tag())
	default:
		return e
	}
}
