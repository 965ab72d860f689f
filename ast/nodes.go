// Package ast defines the term model of SLL: expressions, types, and
// programs (§3 of the specification).
package ast

// Position is a source location. Only the row is tracked because SLL's
// concrete syntax is whitespace-insensitive within a line and every
// diagnostic in practice only ever needs to point at a line.
type Position struct {
	Row int
}

// Expr is the closed sum of expression node kinds: Var, Ctr, FCall, IntLit,
// and Let. A nullable interface plus a type switch would work too, but a
// marker method keeps the switch exhaustive by construction and mirrors the
// teacher's preference for small closed interfaces over tagged structs.
type Expr interface {
	isExpr()
	Pos() Position
	Tag() int
}

// exprBase factors the two fields every node carries: its source position
// and its origin tag (§3). Tag is 0 for synthesized nodes (driver-made
// variables, generalization holes) and a positive, once-assigned integer
// for every node that survived from the source program.
type exprBase struct {
	P Position
	T int
}

func (b exprBase) Pos() Position { return b.P }
func (b exprBase) Tag() int      { return b.T }

// Var is a free variable reference.
type Var struct {
	exprBase
	Name string
}

func (*Var) isExpr() {}

// NewVar builds an untagged variable, the common case for driver- and
// generalization-synthesized variables.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// Ctr is a fully-applied data constructor, [C e1 … en].
type Ctr struct {
	exprBase
	Name string
	Args []Expr
}

func (*Ctr) isExpr() {}

// NewCtr builds an untagged constructor application.
func NewCtr(name string, args ...Expr) *Ctr {
	return &Ctr{Name: name, Args: args}
}

// FCall is a function call, (f e1 … en).
type FCall struct {
	exprBase
	Name string
	Args []Expr
}

func (*FCall) isExpr() {}

// NewFCall builds an untagged function call.
func NewFCall(name string, args ...Expr) *FCall {
	return &FCall{Name: name, Args: args}
}

// IntLit is an integer literal.
type IntLit struct {
	exprBase
	Value int
}

func (*IntLit) isExpr() {}

// NewIntLit builds an untagged integer literal.
func NewIntLit(v int) *IntLit {
	return &IntLit{Value: v}
}

// Let binds Var to Val inside Body. Let only ever appears in residualized
// output and in generalization contractions (§3); the driver and the
// matcher never produce or consume one.
type Let struct {
	exprBase
	Var  string
	Val  Expr
	Body Expr
}

func (*Let) isExpr() {}

// NewLet builds an untagged let-binding.
func NewLet(v string, val, body Expr) *Let {
	return &Let{Var: v, Val: val, Body: body}
}

// WithPos returns e with its position set to p. Used by the parser right
// after construction; expressions are otherwise immutable once built.
func WithPos(e Expr, p Position) Expr {
	switch n := e.(type) {
	case *Var:
		n.P = p
		return n
	case *Ctr:
		n.P = p
		return n
	case *FCall:
		n.P = p
		return n
	case *IntLit:
		n.P = p
		return n
	case *Let:
		n.P = p
		return n
	default:
		return e
	}
}

// WithTag returns e with its origin tag set to t. Used by the tagging
// preprocessor (core.TagProgram) and by core when it rebuilds nodes.
func WithTag(e Expr, t int) Expr {
	switch n := e.(type) {
	case *Var:
		n.T = t
		return n
	case *Ctr:
		n.T = t
		return n
	case *FCall:
		n.T = t
		return n
	case *IntLit:
		n.T = t
		return n
	case *Let:
		n.T = t
		return n
	default:
		return e
	}
}

// TypeExpr is either a type variable (Params == nil, Name lowercase by
// convention) or an applied type constructor T t1 … tn.
type TypeExpr struct {
	Name   string
	Params []TypeExpr
	Pos    Position
}

// IsVar reports whether t is a bare type variable rather than an applied
// type constructor.
func (t TypeExpr) IsVar() bool {
	return len(t.Params) == 0 && t.Name != "" && isLower(t.Name[0])
}

func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// ConstrDef is one constructor of a TypeDef: a name and its ordered field
// types.
type ConstrDef struct {
	Name     string
	ArgTypes []TypeExpr
	Pos      Position
}

// TypeDef declares an algebraic data type: type T a1 … ak : C1 … | … .
type TypeDef struct {
	Name         string
	Params       []string
	Constructors []ConstrDef
	Pos          Position
}

// FunSig is a function's typed signature.
type FunSig struct {
	Name     string
	ArgTypes []TypeExpr
	RetType  TypeExpr
	Pos      Position
}

// Pattern is a rule's left-hand side: a function name plus argument
// patterns (each a Var or a fully explicit Ctr).
type Pattern struct {
	Name   string
	Params []Expr
	Pos    Position
}

// Rule associates a Pattern with a right-hand body expression.
type Rule struct {
	Pattern Pattern
	Body    Expr
	Pos     Position
}

// Program is the triple (types, signatures, rules) plus any metadata the
// checker derives once and callers want to reuse.
type Program struct {
	Types      []TypeDef
	Signatures []FunSig
	Rules      []Rule
}

// SigOf returns the declared signature of fn, or nil if undeclared.
func (p *Program) SigOf(fn string) *FunSig {
	for i := range p.Signatures {
		if p.Signatures[i].Name == fn {
			return &p.Signatures[i]
		}
	}
	return nil
}

// RulesOf returns fn's rules in source declaration order — the order the
// driver must consult them in (§4.2's "walk rules of f in source order").
func (p *Program) RulesOf(fn string) []Rule {
	var rs []Rule
	for _, r := range p.Rules {
		if r.Pattern.Name == fn {
			rs = append(rs, r)
		}
	}
	return rs
}

// TypeOf returns the TypeDef named name, or nil.
func (p *Program) TypeOf(name string) *TypeDef {
	for i := range p.Types {
		if p.Types[i].Name == name {
			return &p.Types[i]
		}
	}
	return nil
}

// ConstrOwner returns the TypeDef that declares a constructor named ctr,
// and the ConstrDef itself, or (nil, nil) if no type declares it.
func (p *Program) ConstrOwner(ctr string) (*TypeDef, *ConstrDef) {
	for i := range p.Types {
		td := &p.Types[i]
		for j := range td.Constructors {
			if td.Constructors[j].Name == ctr {
				return td, &td.Constructors[j]
			}
		}
	}
	return nil, nil
}
