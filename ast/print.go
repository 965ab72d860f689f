package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders e in SLL's concrete syntax (§6): [C e …] for constructors,
// (f e …) for calls, let x = … in … for let-bindings.
func Print(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Var:
		b.WriteString(n.Name)
	case *IntLit:
		b.WriteString(strconv.Itoa(n.Value))
	case *Ctr:
		b.WriteByte('[')
		b.WriteString(n.Name)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeExpr(b, a)
		}
		b.WriteByte(']')
	case *FCall:
		b.WriteByte('(')
		b.WriteString(n.Name)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeExpr(b, a)
		}
		b.WriteByte(')')
	case *Let:
		b.WriteString("let ")
		b.WriteString(n.Var)
		b.WriteString(" = ")
		writeExpr(b, n.Val)
		b.WriteString(" in ")
		writeExpr(b, n.Body)
	default:
		fmt.Fprintf(b, "<?%T>", e)
	}
}

// PrintType renders a TypeExpr in concrete syntax: a bare name for a type
// variable, [T t1 …] for an applied type constructor.
func PrintType(t TypeExpr) string {
	if len(t.Params) == 0 {
		if t.IsVar() {
			return t.Name
		}
		return fmt.Sprintf("[%s]", t.Name)
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = PrintType(p)
	}
	return fmt.Sprintf("[%s %s]", t.Name, strings.Join(parts, " "))
}

// PrintPattern renders a Pattern's left-hand side: (f p1 … pn).
func PrintPattern(p Pattern) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(p.Name)
	for _, a := range p.Params {
		b.WriteByte(' ')
		writeExpr(&b, a)
	}
	b.WriteByte(')')
	return b.String()
}

// PrintRule renders a single rule: (f p …) -> body .
func PrintRule(r Rule) string {
	return fmt.Sprintf("%s -> %s .", PrintPattern(r.Pattern), Print(r.Body))
}

// PrintProgram renders an entire program in SLL concrete syntax: type
// definitions, then signatures, then rules, one per line.
func PrintProgram(p *Program) string {
	var b strings.Builder
	for _, t := range p.Types {
		b.WriteString("type [")
		b.WriteString(t.Name)
		for _, tv := range t.Params {
			b.WriteByte(' ')
			b.WriteString(tv)
		}
		b.WriteString("] : ")
		for i, c := range t.Constructors {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(c.Name)
			for _, at := range c.ArgTypes {
				b.WriteByte(' ')
				b.WriteString(PrintType(at))
			}
		}
		b.WriteString(" .\n")
	}
	if len(p.Types) > 0 {
		b.WriteByte('\n')
	}
	for _, s := range p.Signatures {
		b.WriteString("fun (")
		b.WriteString(s.Name)
		for _, at := range s.ArgTypes {
			b.WriteByte(' ')
			b.WriteString(PrintType(at))
		}
		b.WriteString(") -> ")
		b.WriteString(PrintType(s.RetType))
		rules := p.RulesOf(s.Name)
		if len(rules) == 0 {
			b.WriteString(" : .\n")
			continue
		}
		b.WriteString(" :\n")
		for i, r := range rules {
			if i > 0 {
				b.WriteString("  |\n")
			}
			b.WriteString("  ")
			b.WriteString(PrintPattern(r.Pattern))
			b.WriteString(" -> ")
			b.WriteString(Print(r.Body))
		}
		b.WriteString(" .\n")
	}
	return b.String()
}
