package core

import "github.com/nihei9/psc/ast"

// NodeID indexes into a Tree's arena; node 0 is always the tree's root.
// NoNode (-1) never denotes a real node, so it doubles as a "no such node"
// sentinel for optional links like BackLink.
type NodeID int

// NoNode marks the absence of a node reference (an unset BackLink, or a
// not-yet-computed lookup).
const NoNode NodeID = -1

// Node is one configuration in the process tree (§4.3): the expression
// reached, the typing context needed to drive it further, and the edges
// that explain how the tree got here and where it folds to.
type Node struct {
	Expr     ast.Expr
	VarTypes map[string]ast.TypeExpr

	Parent   NodeID
	Children []NodeID

	// Contraction labels the edge from Parent to this node when Parent
	// drove by VariantStep; nil for a Transient/Decompose/root edge.
	Contraction *Contraction

	// HoleVar labels the edge from Parent to this node when Parent was
	// generalized: this node computes the subexpression of Parent's
	// expression that hole HoleVar stands for in the generalization. Empty
	// for every other kind of edge.
	HoleVar string

	// GenBody marks the one child of a generalized node that carries the
	// generalization itself (§5.3's eₘ), as opposed to its HoleVar
	// siblings, which recover the pre-generalization divergence points.
	// This is the node that gets driven onward and registered as a
	// residual function; Parent keeps its own (unmodified, over-specific)
	// expression and is residualized as a call into GenBody's function.
	GenBody bool

	// BackLink points at the ancestor this node folds to, or NoNode if
	// this node was driven further instead of folded.
	BackLink NodeID
}

// Tree is an arena-indexed process tree (§9): nodes are referenced by
// integer NodeID rather than by pointer, so folding a node back to an
// ancestor is a plain integer assignment with no cycle the garbage
// collector has to reason about.
type Tree struct {
	nodes []Node
	Root  NodeID
}

// NewTree starts a tree with a single root node holding startExpr.
func NewTree(startExpr ast.Expr, startVarTypes map[string]ast.TypeExpr) *Tree {
	t := &Tree{}
	t.Root = t.newNode(startExpr, startVarTypes, NoNode)
	return t
}

func (t *Tree) newNode(expr ast.Expr, varTypes map[string]ast.TypeExpr, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{Expr: expr, VarTypes: varTypes, Parent: parent, BackLink: NoNode})
	return id
}

// Node returns the node stored at id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// AddChild appends a new child of parent holding expr/varTypes, linked by
// an ordinary (non-branching) edge, and returns its id.
func (t *Tree) AddChild(parent NodeID, expr ast.Expr, varTypes map[string]ast.TypeExpr) NodeID {
	id := t.newNode(expr, varTypes, parent)
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// AddBranch appends a new child of parent labeled by contraction.
func (t *Tree) AddBranch(parent NodeID, expr ast.Expr, varTypes map[string]ast.TypeExpr, contraction Contraction) NodeID {
	id := t.AddChild(parent, expr, varTypes)
	t.nodes[id].Contraction = &contraction
	return id
}

// AddHole appends a new child of parent labeled as the subcomputation that
// fills holeVar in parent's generalized expression.
func (t *Tree) AddHole(parent NodeID, holeVar string, expr ast.Expr, varTypes map[string]ast.TypeExpr) NodeID {
	id := t.AddChild(parent, expr, varTypes)
	t.nodes[id].HoleVar = holeVar
	return id
}

// AddGenBody appends a new child of parent holding the generalized
// expression a whistle-triggered generalization produced (§5.3): the
// configuration that gets driven onward in parent's place, distinct from
// parent's HoleVar children, which recover parent's own divergent detail.
func (t *Tree) AddGenBody(parent NodeID, expr ast.Expr, varTypes map[string]ast.TypeExpr) NodeID {
	id := t.AddChild(parent, expr, varTypes)
	t.nodes[id].GenBody = true
	return id
}

// Ancestors returns id's ancestors, nearest first, root last.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var res []NodeID
	cur := t.nodes[id].Parent
	for cur != NoNode {
		res = append(res, cur)
		cur = t.nodes[cur].Parent
	}
	return res
}

// Leaves returns every node in id's subtree with no children and no
// back-link — the tree's current fringe of unprocessed configurations.
func (t *Tree) Leaves(id NodeID) []NodeID {
	n := &t.nodes[id]
	if n.BackLink != NoNode {
		return nil
	}
	if len(n.Children) == 0 {
		return []NodeID{id}
	}
	var res []NodeID
	for _, c := range n.Children {
		res = append(res, t.Leaves(c)...)
	}
	return res
}

// Walk visits every node in the tree in pre-order.
func (t *Tree) Walk(visit func(NodeID)) {
	var rec func(NodeID)
	rec = func(id NodeID) {
		visit(id)
		for _, c := range t.nodes[id].Children {
			rec(c)
		}
	}
	rec(t.Root)
}

// Len returns the number of nodes allocated so far, including folded ones.
func (t *Tree) Len() int {
	return len(t.nodes)
}
