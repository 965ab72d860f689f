package core

import (
	"github.com/hashicorp/go-hclog"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/check"
	verr "github.com/nihei9/psc/error"
)

// ErrStepBudgetExceeded is returned by Engine.BuildTree when the tree has
// grown past the engine's node budget without running dry (§7(iv)'s resource-
// bound framing). The whistle is supposed to make this unreachable for any
// well-formed program, so hitting it in practice signals either a missing
// case in the whistle or a program the matcher can't see is ill-typed —
// either way, the right response is to stop and report, not to hang.
var ErrStepBudgetExceeded = &verr.InternalError{Msg: "supercompilation exceeded its node budget without terminating"}

// Whistle is a termination-signaling strategy (§5.1): given the path from
// the tree's root down to beta, it decides whether continuing to drive
// beta risks looping forever, and if so names the ancestor responsible.
// HE and the bag of tags are the two interchangeable implementations.
type Whistle interface {
	Signal(tree *Tree, beta NodeID) (ancestor NodeID, dangerous bool)
	Name() string
}

// HEWhistle blows when some ancestor's expression embeds homeomorphically
// into (or is coupled with) beta's — a purely syntactic signal that needs
// no bookkeeping beyond the tree itself.
type HEWhistle struct{}

func (HEWhistle) Name() string { return "he" }

func (HEWhistle) Signal(tree *Tree, beta NodeID) (NodeID, bool) {
	b := tree.Node(beta).Expr
	for _, a := range tree.Ancestors(beta) {
		if HE(tree.Node(a).Expr, b) {
			return a, true
		}
	}
	return NoNode, false
}

// TagBagWhistle blows when beta's origin-tag bag is a strictly growing
// superset of some ancestor's, signaling the same source call site keeps
// contributing structure without bound.
type TagBagWhistle struct{}

func (TagBagWhistle) Name() string { return "tagbag" }

func (TagBagWhistle) Signal(tree *Tree, beta NodeID) (NodeID, bool) {
	bag := CollectTags(tree.Node(beta).Expr)
	for _, a := range tree.Ancestors(beta) {
		if BagDangerous(CollectTags(tree.Node(a).Expr), bag) {
			return a, true
		}
	}
	return NoNode, false
}

// DefaultMaxNodes bounds process-tree growth when the caller doesn't pick
// its own budget (the CLI's --max-steps flag overrides this).
const DefaultMaxNodes = 100000

// Engine builds a process tree for a start configuration by repeatedly
// folding, whistling, generalizing, and driving its leaves (§4, §5).
type Engine struct {
	prog     *check.CheckedProgram
	driver   *Driver
	whistle  Whistle
	log      hclog.Logger
	maxNodes int
}

// NewEngine builds an Engine over a checked program, first assigning
// origin tags to its rule bodies in place (TagProgram). A nil logger is
// replaced with hclog's no-op sink, matching the optional, off-by-default
// trace logging the CLI's -v flag turns on. maxNodes caps how many nodes
// BuildTree will allocate before giving up; a value <= 0 falls back to
// DefaultMaxNodes.
func NewEngine(prog *check.CheckedProgram, whistle Whistle, log hclog.Logger, maxNodes int) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	TagProgram(prog.Program)
	ng := newNameGen()
	return &Engine{
		prog:     prog,
		driver:   NewDriver(prog, ng),
		whistle:  whistle,
		log:      log,
		maxNodes: maxNodes,
	}
}

// BuildTree runs the supercompiler's main loop over startExpr and returns
// the finished process tree. The whistle is consulted only for nodes whose
// expression is a function call. Before each step it checks the tree's
// size and returns ErrStepBudgetExceeded once the tree holds more than
// e.maxNodes nodes (§7(iv)).
func (e *Engine) BuildTree(startExpr ast.Expr, startVarTypes map[string]ast.TypeExpr) (*Tree, error) {
	tree := NewTree(startExpr, startVarTypes)
	queue := []NodeID{tree.Root}

	for len(queue) > 0 {
		if tree.Len() > e.maxNodes {
			return nil, ErrStepBudgetExceeded
		}

		beta := queue[0]
		queue = queue[1:]
		node := tree.Node(beta)

		if anc, folded := e.findFoldTarget(tree, beta); folded {
			node.BackLink = anc
			e.log.Trace("fold", "node", int(beta), "onto", int(anc))
			continue
		}

		if _, isCall := node.Expr.(*ast.FCall); isCall {
			if anc, dangerous := e.whistle.Signal(tree, beta); dangerous {
				e.log.Debug("whistle", "strategy", e.whistle.Name(), "node", int(beta), "ancestor", int(anc))
				added, err := e.generalizeInPlace(tree, beta, anc)
				if err != nil {
					return nil, err
				}
				queue = append(queue, added...)
				continue
			}
		}

		step := e.driver.Drive(node.Expr, node.VarTypes)
		queue = append(queue, e.applyStep(tree, beta, step)...)
	}

	return tree, nil
}

// applyStep attaches the children a driver Step describes to id and returns
// their ids for the caller to queue. Shared between BuildTree's main loop
// and generalizeInPlace, which drives its fresh GenBody node the same way
// rather than duplicating the switch.
func (e *Engine) applyStep(tree *Tree, id NodeID, step Step) []NodeID {
	node := tree.Node(id)
	var added []NodeID
	switch s := step.(type) {
	case StopStep:
		e.log.Trace("stop", "node", int(id))

	case TransientStep:
		added = append(added, tree.AddChild(id, s.NextExpr, node.VarTypes))

	case DecomposeStep:
		for _, part := range s.Parts {
			added = append(added, tree.AddChild(id, part, node.VarTypes))
		}

	case VariantStep:
		for _, br := range s.Branches {
			added = append(added, tree.AddBranch(id, br.Expr, br.VarTypes, br.Contraction))
		}
	}
	return added
}

// findFoldTarget looks for an ancestor that is a renaming of beta's
// configuration (§4.3 "folding"). It uses IsExactRenaming rather than
// IsRenaming: folding onto an ancestor asserts they share one residual
// function's signature, so the bijection has to be real — Match's
// per-argument binding overwrite would let two configurations differing
// only in how often they repeat a variable pass as a "renaming" of each
// other, producing a call whose arity doesn't match its own definition.
func (e *Engine) findFoldTarget(tree *Tree, beta NodeID) (NodeID, bool) {
	b := tree.Node(beta).Expr
	for _, a := range tree.Ancestors(beta) {
		if IsExactRenaming(tree.Node(a).Expr, b) {
			return a, true
		}
	}
	return NoNode, false
}

// generalizeInPlace reacts to beta whistling against ancestor by computing
// their most specific generalization eₘ (§5.3). If eₘ turns out to be
// nothing more than a renaming of ancestor's own configuration, the spec's
// fold-fallback (§4.6) applies directly: beta folds onto ancestor, with
// HoleVar children recovering the actual arguments to call ancestor's
// function with (see below) — no new function is registered. Otherwise
// beta keeps its own (over-specific) Expr untouched and gains two kinds of
// children: one GenBody child holding eₘ, and one HoleVar child per
// divergence point, each driving the subexpression that recovers beta's
// original configuration so it can be passed back as an actual argument
// once GenBody's function exists.
//
// GenBody is driven immediately, right here, rather than being queued for
// the ordinary fold/whistle pipeline: eₘ is built from ancestor's own
// structure plus fresh holes, so whistling it against that very ancestor
// again would just rename the holes and recur forever without ever
// shrinking anything. GenBody still gets a fold check first — it can close
// a loop directly if some ancestor already matches it exactly — and its own
// children, once driven, go through the ordinary pipeline like any other
// node (this is how a recursive call like addAcc's eventually folds back
// onto GenBody itself). The hole children and GenBody's own children are
// all returned for the caller to queue.
func (e *Engine) generalizeInPlace(tree *Tree, beta, ancestor NodeID) ([]NodeID, error) {
	node := tree.Node(beta)
	anc := tree.Node(ancestor)

	gr := Generalize(anc.Expr, node.Expr)
	holeNames := gr.HoleNames()
	if len(holeNames) == 0 {
		return nil, &verr.InternalError{Msg: "whistle fired but generalization produced no hole for " + ast.Print(node.Expr)}
	}

	if IsExactRenaming(gr.Gen, anc.Expr) {
		// §4.6 fold-fallback: eₘ is nothing more than a renaming of
		// ancestor's own expression, which means ancestor was already at
		// least as general as beta — every point where they diverged is a
		// position where ancestor itself only ever held a bare variable.
		// That makes gr.Sub1[name], the ancestor-side value MSG recovers for
		// each hole, exactly that variable (never a Ctr/FCall — had it been
		// one, Gen would carry that structure too and wouldn't be a renaming
		// of ancestor's expression at all). So rather than registering a
		// new function, beta folds directly onto ancestor, with one hole
		// child per divergence recovering beta's value for the ancestor
		// parameter it corresponds to — plain BackLink with no holes would
		// instead try to call ancestor's function positionally on beta's own
		// free variables, silently dropping whatever structure beta actually
		// built around them.
		node.BackLink = ancestor
		var added []NodeID
		for _, name := range holeNames {
			ancVar := gr.Sub1[name].(*ast.Var)
			added = append(added, tree.AddHole(beta, ancVar.Name, gr.Sub2[name], node.VarTypes))
		}
		return added, nil
	}

	genVarTypes := make(map[string]ast.TypeExpr, len(node.VarTypes)+len(holeNames))
	for k, v := range node.VarTypes {
		genVarTypes[k] = v
	}
	for _, name := range holeNames {
		genVarTypes[name] = e.inferHoleType(gr.Sub2[name], node.VarTypes)
	}
	genNode := tree.AddGenBody(beta, gr.Gen, genVarTypes)

	var added []NodeID
	if foldAnc, folded := e.findFoldTarget(tree, genNode); folded {
		tree.Node(genNode).BackLink = foldAnc
		e.log.Trace("fold", "node", int(genNode), "onto", int(foldAnc))
	} else {
		step := e.driver.Drive(gr.Gen, genVarTypes)
		added = e.applyStep(tree, genNode, step)
	}

	for _, name := range holeNames {
		added = append(added, tree.AddHole(beta, name, gr.Sub2[name], node.VarTypes))
	}
	return added, nil
}

// inferHoleType guesses the declared type of a generalization hole from
// the subterm it stands for: a bare variable keeps its own known type, a
// constructor's type is whatever TypeDef declares it, and a call's type is
// its signature's declared return type. This mirrors the driver's own
// varTypes propagation (createBranch) rather than running a real
// inference pass over the generalized configuration — the same
// program-wide-return-type-as-stand-in choice NewResidualizer documents.
func (e *Engine) inferHoleType(sub ast.Expr, varTypes map[string]ast.TypeExpr) ast.TypeExpr {
	switch n := sub.(type) {
	case *ast.Var:
		if t, ok := varTypes[n.Name]; ok {
			return t
		}
	case *ast.Ctr:
		if td, _ := e.prog.Program.ConstrOwner(n.Name); td != nil {
			return ast.TypeExpr{Name: td.Name}
		}
	case *ast.FCall:
		if sig := e.prog.Program.SigOf(n.Name); sig != nil {
			return sig.RetType
		}
	}
	return ast.TypeExpr{}
}
