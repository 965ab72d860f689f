package dot

import (
	"strings"
	"testing"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/core"
)

func TestWrite_RendersNodesAndEdges(t *testing.T) {
	tree := core.NewTree(ast.NewVar("root"), nil)
	child := tree.AddChild(tree.Root, ast.NewCtr("Z"), nil)
	tree.AddBranch(tree.Root, ast.NewVar("y"), nil, core.Contraction{
		Var:     "root",
		Pattern: ast.Pattern{Name: "S", Params: []ast.Expr{ast.NewVar("v1")}},
	})

	var b strings.Builder
	if err := Write(&b, tree); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	if !strings.Contains(out, "digraph ProcessTree") {
		t.Errorf("expected a digraph header, got:\n%s", out)
	}
	if !strings.Contains(out, "n0") || !strings.Contains(out, "n1") {
		t.Errorf("expected node ids n0/n1, got:\n%s", out)
	}
	if !strings.Contains(out, `label="[Z]"`) {
		t.Errorf("expected [Z] to appear as a node label, got:\n%s", out)
	}
	if !strings.Contains(out, "root := [S v1]") {
		t.Errorf("expected a contraction edge label, got:\n%s", out)
	}
	_ = child
}

func TestWrite_FoldingEdgeIsDashed(t *testing.T) {
	tree := core.NewTree(ast.NewVar("root"), nil)
	child := tree.AddChild(tree.Root, ast.NewVar("root"), nil)
	tree.Node(child).BackLink = tree.Root

	var b strings.Builder
	if err := Write(&b, tree); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "style=dashed") || !strings.Contains(out, "Folding") {
		t.Errorf("expected a dashed Folding edge, got:\n%s", out)
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := escapeLabel(`say "hi"`); got != `say \"hi\"` {
		t.Errorf("escapeLabel() = %q", got)
	}
}
