package ast

import (
	"fmt"
	"io"

	verr "github.com/nihei9/psc/error"
)

// Parse reads an SLL source program (§6 concrete syntax) and returns its
// AST, or the full set of syntax errors found.
func Parse(src io.Reader) (*Program, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

// ParseExpr parses a single start-call expression, e.g. "(add a b)",
// outside of a program file — used by the CLI to parse its positional
// `expr` argument (§6).
func ParseExpr(src io.Reader) (e Expr, retErr error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		specErr, ok := r.(*verr.SpecError)
		if !ok {
			panic(r)
		}
		retErr = specErr
	}()
	e = p.parseExpr()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return e, nil
}

// ParseTypeExpr parses a single type expression, e.g. "[Nat]" or "a" — used
// by the CLI to parse the right-hand side of its repeated `-t var=Type`
// override flag (§6).
func ParseTypeExpr(src io.Reader) (t TypeExpr, retErr error) {
	p, err := newParser(src)
	if err != nil {
		return TypeExpr{}, err
	}
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(err)
		}
		retErr = specErr
	}()
	t = p.parseTypeExpr()
	if len(p.errs) > 0 {
		return TypeExpr{}, p.errs
	}
	return t, nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	pos       Position
	errs      verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{lex: lex}, nil
}

func raiseSyntaxError(row int, cause *SyntaxError) {
	panic(&verr.SpecError{Cause: cause, Row: row})
}

func raiseSyntaxErrorWithDetail(row int, cause *SyntaxError, detail string) {
	panic(&verr.SpecError{Cause: cause, Detail: detail, Row: row})
}

func (p *parser) parseProgram() (prog *Program, retErr error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			panic(fmt.Errorf("an unexpected error occurred: %v", err))
		}
		p.errs = append(p.errs, specErr)
		prog = nil
		retErr = p.errs
	}()

	var types []TypeDef
	var sigs []FunSig
	var rules []Rule
	for {
		if p.consume(tokenKindEOF) {
			break
		}
		if p.consume(tokenKindKWType) {
			types = append(types, p.parseTypeDef())
			continue
		}
		if p.consume(tokenKindKWFun) {
			sig, rs := p.parseFunDef()
			sigs = append(sigs, sig)
			rules = append(rules, rs...)
			continue
		}
		raiseSyntaxError(p.pos.Row, synErrExpectedID)
	}

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return &Program{Types: types, Signatures: sigs, Rules: rules}, nil
}

func (p *parser) parseTypeDef() TypeDef {
	if !p.consume(tokenKindLBracket) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedBracket)
	}
	if !p.consume(tokenKindUpperID) {
		raiseSyntaxError(p.pos.Row, synErrNoTypeName)
	}
	name := p.lastTok.text
	pos := p.lastTok.pos

	var params []string
	for p.consume(tokenKindLowerID) {
		params = append(params, p.lastTok.text)
	}
	if !p.consume(tokenKindRBracket) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedBracket)
	}
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(p.pos.Row, synErrNoColon)
	}

	var ctrs []ConstrDef
	ctrs = append(ctrs, p.parseConstrDef())
	for p.consume(tokenKindBar) {
		ctrs = append(ctrs, p.parseConstrDef())
	}

	if !p.consume(tokenKindDot) {
		raiseSyntaxError(p.pos.Row, synErrNoDot)
	}

	return TypeDef{Name: name, Params: params, Constructors: ctrs, Pos: pos}
}

func (p *parser) parseConstrDef() ConstrDef {
	if !p.consume(tokenKindUpperID) {
		raiseSyntaxError(p.pos.Row, synErrExpectedID)
	}
	name := p.lastTok.text
	pos := p.lastTok.pos

	var args []TypeExpr
	for p.peekIsTypeStart() {
		args = append(args, p.parseTypeExpr())
	}
	return ConstrDef{Name: name, ArgTypes: args, Pos: pos}
}

func (p *parser) peekIsTypeStart() bool {
	tok := p.peek()
	return tok.kind == tokenKindLBracket || tok.kind == tokenKindLowerID
}

func (p *parser) parseTypeExpr() TypeExpr {
	if p.consume(tokenKindLowerID) {
		return TypeExpr{Name: p.lastTok.text, Pos: p.lastTok.pos}
	}
	if !p.consume(tokenKindLBracket) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedBracket)
	}
	if !p.consume(tokenKindUpperID) {
		raiseSyntaxError(p.pos.Row, synErrExpectedID)
	}
	name := p.lastTok.text
	pos := p.lastTok.pos
	var params []TypeExpr
	for p.peekIsTypeStart() {
		params = append(params, p.parseTypeExpr())
	}
	if !p.consume(tokenKindRBracket) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedBracket)
	}
	return TypeExpr{Name: name, Params: params, Pos: pos}
}

func (p *parser) parseFunDef() (FunSig, []Rule) {
	if !p.consume(tokenKindLParen) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedParen)
	}
	if !p.consume(tokenKindLowerID) {
		raiseSyntaxError(p.pos.Row, synErrNoFunName)
	}
	name := p.lastTok.text
	pos := p.lastTok.pos

	var argTypes []TypeExpr
	for p.peekIsTypeStart() {
		argTypes = append(argTypes, p.parseTypeExpr())
	}
	if !p.consume(tokenKindRParen) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedParen)
	}
	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(p.pos.Row, synErrNoRetType)
	}
	retType := p.parseTypeExpr()
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(p.pos.Row, synErrNoColon)
	}

	var rules []Rule
	rules = append(rules, p.parseRule(name))
	for p.consume(tokenKindBar) {
		rules = append(rules, p.parseRule(name))
	}
	if !p.consume(tokenKindDot) {
		raiseSyntaxError(p.pos.Row, synErrNoDot)
	}

	return FunSig{Name: name, ArgTypes: argTypes, RetType: retType, Pos: pos}, rules
}

func (p *parser) parseRule(fn string) Rule {
	if !p.consume(tokenKindLParen) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedParen)
	}
	if !p.consume(tokenKindLowerID) {
		raiseSyntaxError(p.pos.Row, synErrNoFunName)
	}
	if p.lastTok.text != fn {
		raiseSyntaxErrorWithDetail(p.pos.Row, synErrExpectedID, fmt.Sprintf("rule pattern name %q does not match the enclosing signature %q", p.lastTok.text, fn))
	}
	pos := p.lastTok.pos

	var params []Expr
	for p.peekIsPatternStart() {
		params = append(params, p.parsePattern())
	}
	if !p.consume(tokenKindRParen) {
		raiseSyntaxError(p.pos.Row, synErrUnclosedParen)
	}
	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(p.pos.Row, synErrNoArrow)
	}
	body := p.parseExpr()

	return Rule{Pattern: Pattern{Name: fn, Params: params, Pos: pos}, Body: body, Pos: pos}
}

func (p *parser) peekIsPatternStart() bool {
	tok := p.peek()
	switch tok.kind {
	case tokenKindLowerID, tokenKindInt, tokenKindLBracket:
		return true
	default:
		return false
	}
}

func (p *parser) parsePattern() Expr {
	if p.consume(tokenKindLowerID) {
		return WithPos(NewVar(p.lastTok.text), p.lastTok.pos)
	}
	if p.consume(tokenKindInt) {
		return WithPos(NewIntLit(p.lastTok.num), p.lastTok.pos)
	}
	if p.consume(tokenKindLBracket) {
		if !p.consume(tokenKindUpperID) {
			raiseSyntaxError(p.pos.Row, synErrExpectedID)
		}
		name := p.lastTok.text
		pos := p.lastTok.pos
		var args []Expr
		for p.peekIsPatternStart() {
			args = append(args, p.parsePattern())
		}
		if !p.consume(tokenKindRBracket) {
			raiseSyntaxError(p.pos.Row, synErrUnclosedBracket)
		}
		return WithPos(NewCtr(name, args...), pos)
	}
	raiseSyntaxError(p.pos.Row, synErrExpectedPattern)
	return nil
}

func (p *parser) parseExpr() Expr {
	if p.consume(tokenKindLowerID) {
		name := p.lastTok.text
		pos := p.lastTok.pos
		return WithPos(NewVar(name), pos)
	}
	if p.consume(tokenKindInt) {
		return WithPos(NewIntLit(p.lastTok.num), p.lastTok.pos)
	}
	if p.consume(tokenKindLBracket) {
		if !p.consume(tokenKindUpperID) {
			raiseSyntaxError(p.pos.Row, synErrExpectedID)
		}
		name := p.lastTok.text
		pos := p.lastTok.pos
		var args []Expr
		for p.peekIsExprStart() {
			args = append(args, p.parseExpr())
		}
		if !p.consume(tokenKindRBracket) {
			raiseSyntaxError(p.pos.Row, synErrUnclosedBracket)
		}
		return WithPos(NewCtr(name, args...), pos)
	}
	if p.consume(tokenKindLParen) {
		if !p.consume(tokenKindLowerID) {
			raiseSyntaxError(p.pos.Row, synErrNoFunName)
		}
		name := p.lastTok.text
		pos := p.lastTok.pos
		var args []Expr
		for p.peekIsExprStart() {
			args = append(args, p.parseExpr())
		}
		if !p.consume(tokenKindRParen) {
			raiseSyntaxError(p.pos.Row, synErrUnclosedParen)
		}
		return WithPos(NewFCall(name, args...), pos)
	}
	raiseSyntaxError(p.pos.Row, synErrExpectedExpr)
	return nil
}

func (p *parser) peekIsExprStart() bool {
	tok := p.peek()
	switch tok.kind {
	case tokenKindLowerID, tokenKindInt, tokenKindLBracket, tokenKindLParen:
		return true
	default:
		return false
	}
}

// peek returns the next token without consuming it.
func (p *parser) peek() *token {
	if p.peekedTok == nil {
		tok, err := p.lex.next()
		if err != nil {
			panic(err)
		}
		p.peekedTok = tok
	}
	return p.peekedTok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	p.pos = tok.pos
	if tok.kind == tokenKindInvalid {
		raiseSyntaxErrorWithDetail(p.pos.Row, synErrInvalidToken, tok.text)
	}
	if tok.kind != expected {
		return false
	}
	p.lastTok = tok
	p.peekedTok = nil
	return true
}
