package core

import (
	"sort"
	"strconv"

	"github.com/nihei9/psc/ast"
)

// GenResult is the outcome of generalizing two expressions (§5.3): Gen is
// the common pattern with fresh hole variables standing for the points
// where t1 and t2 diverged; Sub1 and Sub2 recover t1 and t2 by substituting
// Gen's holes back in.
type GenResult struct {
	Gen  ast.Expr
	Sub1 map[string]ast.Expr
	Sub2 map[string]ast.Expr
}

// HoleNames returns g's hole variable names in a stable order: grouped by
// the non-numeric prefix of the name, then numerically by the trailing
// digits (so v2 sorts before v10). MSG's own fresh names are always
// "v<n>", but this also orders holes predictably if callers feed it
// residualizer-assigned names.
func (g GenResult) HoleNames() []string {
	names := make([]string, 0, len(g.Sub1))
	for n := range g.Sub1 {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, ni := splitNameKey(names[i])
		pj, nj := splitNameKey(names[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
	return names
}

func splitNameKey(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	prefix := s[:i]
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, -1
	}
	return prefix, n
}

// generalizer builds one GenResult, memoizing divergent subterm pairs it
// has already replaced with a hole so repeated occurrences of the same
// pair share a single variable (§5.3's common-subexpression sharing).
type generalizer struct {
	counter int
	memo    map[pairKey]*ast.Var
}

type pairKey struct {
	a, b string
}

// Generalize computes the most specific generalization of t1 and t2.
func Generalize(t1, t2 ast.Expr) GenResult {
	g := &generalizer{memo: map[pairKey]*ast.Var{}}
	gen, s1, s2 := g.gen(t1, t2)
	return GenResult{Gen: gen, Sub1: s1, Sub2: s2}
}

func (g *generalizer) freshVar() *ast.Var {
	g.counter++
	return ast.NewVar("v" + strconv.Itoa(g.counter))
}

func (g *generalizer) gen(t1, t2 ast.Expr) (ast.Expr, map[string]ast.Expr, map[string]ast.Expr) {
	if v1, ok := t1.(*ast.Var); ok {
		if v2, ok := t2.(*ast.Var); ok && v1.Name == v2.Name {
			return t1, map[string]ast.Expr{}, map[string]ast.Expr{}
		}
	}

	switch a := t1.(type) {
	case *ast.Ctr:
		if b, ok := t2.(*ast.Ctr); ok && b.Name == a.Name && len(b.Args) == len(a.Args) {
			return g.mergeArgs(a.Name, a.Args, b.Args, true)
		}
	case *ast.FCall:
		if b, ok := t2.(*ast.FCall); ok && b.Name == a.Name && len(b.Args) == len(a.Args) {
			return g.mergeArgs(a.Name, a.Args, b.Args, false)
		}
	case *ast.IntLit:
		if b, ok := t2.(*ast.IntLit); ok && b.Value == a.Value {
			return t1, map[string]ast.Expr{}, map[string]ast.Expr{}
		}
	}

	key := pairKey{ast.Print(t1), ast.Print(t2)}
	if v, ok := g.memo[key]; ok {
		return v, map[string]ast.Expr{}, map[string]ast.Expr{}
	}
	v := g.freshVar()
	g.memo[key] = v
	return v, map[string]ast.Expr{v.Name: t1}, map[string]ast.Expr{v.Name: t2}
}

func (g *generalizer) mergeArgs(name string, args1, args2 []ast.Expr, isCtr bool) (ast.Expr, map[string]ast.Expr, map[string]ast.Expr) {
	newArgs := make([]ast.Expr, len(args1))
	sub1 := map[string]ast.Expr{}
	sub2 := map[string]ast.Expr{}
	for i := range args1 {
		gi, s1, s2 := g.gen(args1[i], args2[i])
		newArgs[i] = gi
		for k, v := range s1 {
			sub1[k] = v
		}
		for k, v := range s2 {
			sub2[k] = v
		}
	}
	if isCtr {
		return ast.NewCtr(name, newArgs...), sub1, sub2
	}
	return ast.NewFCall(name, newArgs...), sub1, sub2
}
