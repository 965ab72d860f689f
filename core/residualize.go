package core

import (
	"strconv"

	"github.com/nihei9/psc/ast"
)

// funcSig is a residual function's synthesized name and ordered
// parameters, derived once a node is decided to need its own definition.
type funcSig struct {
	Name   string
	Params []*ast.Var
}

// Residualizer turns a finished process tree back into a program (§4.4):
// every node that must be callable (the root, every node with at least one
// contraction edge, every fold target, and every generalization body) gets
// one function definition, G- or
// F-shaped according to whether its children are case-split branches.
type Residualizer struct {
	tree     *Tree
	original *ast.Program

	sigOf   map[NodeID]funcSig
	order   []NodeID
	retType ast.TypeExpr

	rules  []ast.Rule
	fCount int
	gCount int
}

// NewResidualizer prepares a Residualizer over tree. original supplies the
// type declarations the residual program still needs (the new rules keep
// calling the same constructors) and the retType every synthesized
// signature is given — residual functions are first-order equations, not
// independently type-inferred, so one program-wide return type is a
// reasonable stand-in for a real inference pass (§4.4, open question).
func NewResidualizer(tree *Tree, original *ast.Program, retType ast.TypeExpr) *Residualizer {
	return &Residualizer{
		tree:     tree,
		original: original,
		sigOf:    map[NodeID]funcSig{},
		retType:  retType,
	}
}

func (r *Residualizer) isGNode(id NodeID) bool {
	n := r.tree.Node(id)
	return len(n.Children) > 0 && r.tree.Node(n.Children[0]).Contraction != nil
}

func (r *Residualizer) isHoleNode(id NodeID) bool {
	for _, c := range r.tree.Node(id).Children {
		if r.tree.Node(c).HoleVar != "" {
			return true
		}
	}
	return false
}

// genBodyChild returns id's GenBody child — the generalized continuation
// isHoleNode's HoleVar children recover the divergent detail for — or
// NoNode if id has none.
func (r *Residualizer) genBodyChild(id NodeID) NodeID {
	for _, c := range r.tree.Node(id).Children {
		if r.tree.Node(c).GenBody {
			return c
		}
	}
	return NoNode
}

// holeTargetSig returns the signature a hole node id's HoleVar children
// supply arguments for: its GenBody child's own function in the ordinary
// generalization case, or the function id folded onto (BackLink) when
// generalizing hit the §4.6 fold-fallback instead and never registered a
// GenBody child at all.
func (r *Residualizer) holeTargetSig(id NodeID) funcSig {
	if g := r.genBodyChild(id); g != NoNode {
		return r.sigOf[g]
	}
	return r.sigOf[r.tree.Node(id).BackLink]
}

// Residualize walks the tree and returns the specialized program.
func (r *Residualizer) Residualize() *ast.Program {
	r.findFunctions(r.tree.Root)
	for _, id := range r.order {
		r.generateDefinition(id)
	}

	var sigs []ast.FunSig
	for _, id := range r.order {
		sig := r.sigOf[id]
		argTypes := make([]ast.TypeExpr, len(sig.Params))
		n := r.tree.Node(id)
		for i, v := range sig.Params {
			argTypes[i] = n.VarTypes[v.Name]
		}
		sigs = append(sigs, ast.FunSig{Name: sig.Name, ArgTypes: argTypes, RetType: r.retType})
	}

	return &ast.Program{Types: r.original.Types, Signatures: sigs, Rules: r.rules}
}

func (r *Residualizer) findFunctions(id NodeID) {
	n := r.tree.Node(id)
	mustBeFunc := id == r.tree.Root
	if len(n.Children) > 0 {
		for _, c := range n.Children {
			if r.tree.Node(c).Contraction != nil {
				mustBeFunc = true
				break
			}
		}
	}
	if mustBeFunc {
		r.registerFunc(id)
	}
	if r.isHoleNode(id) {
		// The generalized continuation always needs its own definition: it
		// is a fresh, more general configuration that nothing else in the
		// tree shares, so only a call from id (or wherever id folds to)
		// could ever reach it. A hole node that hit the §4.6 fold-fallback
		// instead of generalizing has no GenBody child — it calls into
		// whatever it folded onto (BackLink), which the parent-loop check
		// below (or the BackLink target's own mustBeFunc/root status)
		// already registers.
		if g := r.genBodyChild(id); g != NoNode {
			r.registerFunc(g)
		}
	}
	for _, c := range n.Children {
		r.findFunctions(c)
		if cn := r.tree.Node(c); cn.BackLink != NoNode {
			r.registerFunc(cn.BackLink)
		}
	}
}

func (r *Residualizer) registerFunc(id NodeID) {
	if _, ok := r.sigOf[id]; ok {
		return
	}
	n := r.tree.Node(id)
	vars := collectVars(n.Expr)

	var name string
	if r.isGNode(id) {
		r.gCount++
		name = "g" + strconv.Itoa(r.gCount)
	} else {
		r.fCount++
		name = "f" + strconv.Itoa(r.fCount)
	}
	r.sigOf[id] = funcSig{Name: name, Params: vars}
	r.order = append(r.order, id)
}

func (r *Residualizer) generateDefinition(id NodeID) {
	sig := r.sigOf[id]
	n := r.tree.Node(id)

	if r.isGNode(id) {
		for _, c := range n.Children {
			cn := r.tree.Node(c)
			if cn.Contraction == nil {
				continue
			}
			lhs := make([]ast.Expr, len(sig.Params))
			for i, v := range sig.Params {
				if v.Name == cn.Contraction.Var {
					lhs[i] = patternToExpr(cn.Contraction.Pattern)
				} else {
					lhs[i] = v
				}
			}
			body := r.transform(c)
			r.rules = append(r.rules, ast.Rule{Pattern: ast.Pattern{Name: sig.Name, Params: lhs}, Body: body})
		}
		return
	}

	params := make([]ast.Expr, len(sig.Params))
	for i, v := range sig.Params {
		params[i] = v
	}
	pat := ast.Pattern{Name: sig.Name, Params: params}

	var body ast.Expr
	switch {
	case r.isHoleNode(id):
		// Must be checked before the plain BackLink case below: a hole node
		// that hit the §4.6 fold-fallback has BackLink set too, but its
		// HoleVar children carry actual argument values that a bare
		// collectVars(n.Expr) call would silently drop (see
		// generalizeInPlace). A hole node with a GenBody child instead
		// never has BackLink set, so this branch covers both shapes.
		body = r.residualizeGeneralization(id)

	case n.BackLink != NoNode:
		// A registered node (most commonly a GenBody continuation whose own
		// whistle later fired again) can itself turn out to be a plain
		// renaming of some other node and fold rather than drive further.
		// Its definition is then nothing but a call into whatever it folded
		// onto, exactly like transform's handling of an ordinary
		// (unregistered) fold.
		body = callOf(r.sigOf[n.BackLink], collectVars(n.Expr))

	case len(n.Children) == 0:
		body = n.Expr

	case isCtr(n.Expr):
		newArgs := make([]ast.Expr, len(n.Children))
		for i, c := range n.Children {
			newArgs[i] = r.transform(c)
		}
		body = ast.NewCtr(n.Expr.(*ast.Ctr).Name, newArgs...)

	case len(n.Children) == 1:
		body = r.transform(n.Children[0])

	default:
		body = n.Expr
	}
	r.rules = append(r.rules, ast.Rule{Pattern: pat, Body: body})
}

// residualizeGeneralization builds the expression a hole node id
// contributes: a call into holeTargetSig(id)'s function — its GenBody
// child's newly synthesized one, or the ancestor it folded onto under the
// §4.6 fold-fallback — passing each HoleVar child's transformed value as
// the actual argument in that function's corresponding parameter position.
// This is what turns a whistle-triggered generalization into a genuine call
// to a live function instead of a reference to a function name from the
// original, no-longer-present program (§4.6, §5.3).
//
// Not every one of the target's parameters has a HoleVar child: MSG only
// introduces a hole where t1 and t2 actually diverged (Generalize's gen),
// so a parameter the target's expression shares verbatim with id's own
// expression — the same variable, untouched on both sides of the whistle —
// never gets a hole at all. id's own expression still holds that variable
// under that exact name, since MSG couldn't have folded it into Gen
// unmodified otherwise, so such a parameter's argument defaults to a
// reference to its own name rather than staying unset.
func (r *Residualizer) residualizeGeneralization(id NodeID) ast.Expr {
	n := r.tree.Node(id)
	sig := r.holeTargetSig(id)

	args := make([]ast.Expr, len(sig.Params))
	for i, p := range sig.Params {
		args[i] = p
	}
	for _, c := range n.Children {
		cn := r.tree.Node(c)
		if cn.HoleVar == "" {
			continue
		}
		for i, p := range sig.Params {
			if p.Name == cn.HoleVar {
				args[i] = r.transform(c)
			}
		}
	}
	return ast.NewFCall(sig.Name, args...)
}

// transform produces the expression id contributes to its parent's body:
// a call into id's own function if one was registered (directly or via a
// fold back-link), a call into a generalization's continuation if id is a
// generalization node, a rebuilt constructor if id decomposed one, a
// pass-through if id had exactly one ordinary child, or id's own
// expression verbatim as the base case.
func (r *Residualizer) transform(id NodeID) ast.Expr {
	n := r.tree.Node(id)

	if r.isHoleNode(id) {
		// Checked first for the same reason as in generateDefinition: a
		// fold-fallback hole node has BackLink set but still needs its
		// HoleVar children's values threaded through as call arguments.
		return r.residualizeGeneralization(id)
	}
	if n.BackLink != NoNode {
		sig := r.sigOf[n.BackLink]
		return callOf(sig, collectVars(n.Expr))
	}
	if sig, ok := r.sigOf[id]; ok {
		return callOf(sig, collectVars(n.Expr))
	}
	if ctr, ok := n.Expr.(*ast.Ctr); ok && len(n.Children) > 0 {
		newArgs := make([]ast.Expr, len(n.Children))
		for i, c := range n.Children {
			newArgs[i] = r.transform(c)
		}
		return ast.NewCtr(ctr.Name, newArgs...)
	}
	if len(n.Children) == 1 {
		return r.transform(n.Children[0])
	}
	return n.Expr
}

func callOf(sig funcSig, vars []*ast.Var) ast.Expr {
	args := make([]ast.Expr, len(vars))
	for i, v := range vars {
		args[i] = v
	}
	return ast.NewFCall(sig.Name, args...)
}

func isCtr(e ast.Expr) bool {
	_, ok := e.(*ast.Ctr)
	return ok
}

// patternToExpr turns a Contraction's refinement pattern (a bare
// constructor name plus its fresh argument variables) into the Expr a
// residual rule's left-hand side needs.
func patternToExpr(p ast.Pattern) ast.Expr {
	return ast.NewCtr(p.Name, p.Params...)
}

// collectVars returns every distinct Var in e, in first-occurrence order.
func collectVars(e ast.Expr) []*ast.Var {
	var vars []*ast.Var
	seen := map[string]bool{}
	var visit func(ast.Expr)
	visit = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Var:
			if !seen[n.Name] {
				seen[n.Name] = true
				vars = append(vars, n)
			}
		case *ast.Ctr:
			for _, a := range n.Args {
				visit(a)
			}
		case *ast.FCall:
			for _, a := range n.Args {
				visit(a)
			}
		}
	}
	visit(e)
	return vars
}
