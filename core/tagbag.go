package core

import "github.com/nihei9/psc/ast"

// Bag is a multiset of origin tags, the alternative whistle signal to HE
// (§5.1): instead of comparing term shapes, it compares which source-code
// call sites an expression's subterms trace back to.
type Bag map[int]int

// CollectTags walks e and counts every non-zero origin tag it carries.
// Synthesized nodes (tag 0, the driver's and generalization's fresh
// structure) contribute nothing, so the bag only ever grows by revisiting
// source-program call sites.
func CollectTags(e ast.Expr) Bag {
	bag := Bag{}
	collectTagsInto(e, bag)
	return bag
}

func collectTagsInto(e ast.Expr, bag Bag) {
	if t := e.Tag(); t != 0 {
		bag[t]++
	}
	switch n := e.(type) {
	case *ast.Ctr:
		for _, a := range n.Args {
			collectTagsInto(a, bag)
		}
	case *ast.FCall:
		for _, a := range n.Args {
			collectTagsInto(a, bag)
		}
	case *ast.Let:
		collectTagsInto(n.Val, bag)
		collectTagsInto(n.Body, bag)
	}
}

// BagDangerous reports whether newBag signals unbounded growth relative to
// oldBag: newBag must carry at least as many of every tag oldBag carries
// (a multiset superset) and strictly more tags in total. An empty oldBag
// never signals danger — the identical-configuration case is folding's
// job, not the whistle's.
func BagDangerous(oldBag, newBag Bag) bool {
	if len(oldBag) == 0 {
		return false
	}
	total := func(b Bag) int {
		n := 0
		for _, c := range b {
			n += c
		}
		return n
	}
	for tag, oldCount := range oldBag {
		if newBag[tag] < oldCount {
			return false
		}
	}
	return total(newBag) > total(oldBag)
}
