package core

import "github.com/nihei9/psc/ast"

// HE reports whether t1 embeds homeomorphically into t2 (t1 <| t2), one of
// the two interchangeable whistle predicates (§5.1). Embedding holds by
// coupling — same head symbol, every argument pairwise embeds — or by
// diving into any one argument of t2.
func HE(t1, t2 ast.Expr) bool {
	if coupledEmbed(t1, t2) {
		return true
	}
	switch t2n := t2.(type) {
	case *ast.Ctr:
		for _, a := range t2n.Args {
			if HE(t1, a) {
				return true
			}
		}
	case *ast.FCall:
		for _, a := range t2n.Args {
			if HE(t1, a) {
				return true
			}
		}
	case *ast.Let:
		if HE(t1, t2n.Val) || HE(t1, t2n.Body) {
			return true
		}
	}
	return false
}

// coupledEmbed is the "coupling" half of HE: t1 and t2 share the same head
// (both variables, equal literals, or same-named same-arity Ctr/FCall) and
// every argument embeds pairwise.
func coupledEmbed(t1, t2 ast.Expr) bool {
	switch a := t1.(type) {
	case *ast.Var:
		_, ok := t2.(*ast.Var)
		return ok
	case *ast.IntLit:
		b, ok := t2.(*ast.IntLit)
		return ok && a.Value == b.Value
	case *ast.Ctr:
		b, ok := t2.(*ast.Ctr)
		if !ok || b.Name != a.Name || len(b.Args) != len(a.Args) {
			return false
		}
		for i := range a.Args {
			if !HE(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *ast.FCall:
		b, ok := t2.(*ast.FCall)
		if !ok || b.Name != a.Name || len(b.Args) != len(a.Args) {
			return false
		}
		for i := range a.Args {
			if !HE(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
