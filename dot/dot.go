// Package dot renders a finished process tree as Graphviz DOT (§4.10),
// the way the teacher's own `show` command renders a compiled grammar
// description through a text/template.
package dot

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/core"
)

type dotNode struct {
	ID    string
	Label string
}

type dotEdge struct {
	From, To string
	Label    string
	Folding  bool
}

type dotGraph struct {
	Nodes []dotNode
	Edges []dotEdge
}

const graphTemplate = `digraph ProcessTree {
    node [fontname="Courier New"];
    edge [fontname="Courier New"];
{{ range .Nodes -}}
    {{ .ID }} [label="{{ .Label }}", shape=box];
{{ end -}}
{{ range .Edges -}}
{{ if .Folding -}}
    {{ .From }} -> {{ .To }} [style=dashed, color=red, label="Folding"];
{{ else -}}
    {{ .From }} -> {{ .To }} [label="{{ .Label }}"];
{{ end -}}
{{ end -}}
}
`

// Write renders tree as a DOT graph to w: one boxed node per core.Node
// labeled by its expression, ordinary edges labeled by their contraction
// (`x := [S v1]`) or generalization hole (`let v`), and dashed red edges
// for fold back-links.
func Write(w io.Writer, tree *core.Tree) error {
	g := buildGraph(tree)
	tmpl, err := template.New("dot").Parse(graphTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, g)
}

func buildGraph(tree *core.Tree) dotGraph {
	var g dotGraph
	tree.Walk(func(id core.NodeID) {
		n := tree.Node(id)
		g.Nodes = append(g.Nodes, dotNode{
			ID:    nodeID(id),
			Label: escapeLabel(ast.Print(n.Expr)),
		})
		if n.BackLink != core.NoNode {
			g.Edges = append(g.Edges, dotEdge{
				From:    nodeID(id),
				To:      nodeID(n.BackLink),
				Folding: true,
			})
			return
		}
		for _, c := range n.Children {
			cn := tree.Node(c)
			g.Edges = append(g.Edges, dotEdge{
				From:  nodeID(id),
				To:    nodeID(c),
				Label: escapeLabel(edgeLabel(cn)),
			})
		}
	})
	return g
}

func edgeLabel(cn *core.Node) string {
	switch {
	case cn.Contraction != nil:
		p := cn.Contraction.Pattern
		return fmt.Sprintf("%s := %s", cn.Contraction.Var, ast.Print(ast.NewCtr(p.Name, p.Params...)))
	case cn.HoleVar != "":
		return "let " + cn.HoleVar
	case cn.GenBody:
		return "generalize"
	default:
		return ""
	}
}

func nodeID(id core.NodeID) string {
	return fmt.Sprintf("n%d", int(id))
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
