package core

import "github.com/nihei9/psc/ast"

// TagAllocator assigns each node of a rule body a unique, positive origin
// tag before driving begins (§5.2). Tag 0 is reserved and never assigned,
// so it stays free to mark synthesized (driver- or generalization-made)
// structure.
type TagAllocator struct {
	next int
}

// NewTagAllocator returns an allocator starting at tag 1.
func NewTagAllocator() *TagAllocator {
	return &TagAllocator{next: 1}
}

func (a *TagAllocator) alloc() int {
	t := a.next
	a.next++
	return t
}

// Tag assigns a fresh tag to e and every descendant, in pre-order, and
// returns the re-tagged tree.
func (a *TagAllocator) Tag(e ast.Expr) ast.Expr {
	e = ast.WithTag(e, a.alloc())
	switch n := e.(type) {
	case *ast.Ctr:
		for i, arg := range n.Args {
			n.Args[i] = a.Tag(arg)
		}
	case *ast.FCall:
		for i, arg := range n.Args {
			n.Args[i] = a.Tag(arg)
		}
	case *ast.Let:
		n.Val = a.Tag(n.Val)
		n.Body = a.Tag(n.Body)
	}
	return e
}

// TagProgram tags every rule body of prog in place, sharing one allocator
// so tags are unique across the whole program, not just per rule.
func TagProgram(prog *ast.Program) {
	a := NewTagAllocator()
	for i := range prog.Rules {
		prog.Rules[i].Body = a.Tag(prog.Rules[i].Body)
	}
}
