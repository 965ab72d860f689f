package ast

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	verr "github.com/nihei9/psc/error"
)

// tokenKind enumerates SLL's fixed token set (§6). Unlike the teacher's
// grammar DSL, SLL's concrete syntax has no user-extensible lexical rules,
// so there is no regex-DFA layer here — just a direct rune-at-a-time scan,
// the same shape the teacher's own lexer wraps around its (precompiled)
// token source.
type tokenKind string

const (
	tokenKindKWType    = tokenKind("type")
	tokenKindKWFun     = tokenKind("fun")
	tokenKindUpperID   = tokenKind("upper-id") // constructor / type name
	tokenKindLowerID   = tokenKind("lower-id") // variable / function name
	tokenKindInt       = tokenKind("int")
	tokenKindLBracket  = tokenKind("[")
	tokenKindRBracket  = tokenKind("]")
	tokenKindLParen    = tokenKind("(")
	tokenKindRParen    = tokenKind(")")
	tokenKindArrow     = tokenKind("->")
	tokenKindBar       = tokenKind("|")
	tokenKindDot       = tokenKind(".")
	tokenKindColon     = tokenKind(":")
	tokenKindEOF       = tokenKind("eof")
	tokenKindInvalid   = tokenKind("invalid")
)

type token struct {
	kind tokenKind
	text string
	num  int
	pos  Position
}

type lexer struct {
	r       *bufio.Reader
	row     int
	peeked  rune
	hasPeek bool
}

func newLexer(src io.Reader) (*lexer, error) {
	return &lexer{
		r:   bufio.NewReader(src),
		row: 1,
	}, nil
}

func (l *lexer) peekRune() (rune, bool) {
	if l.hasPeek {
		return l.peeked, true
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		return 0, false
	}
	l.peeked = r
	l.hasPeek = true
	return r, true
}

func (l *lexer) readRune() (rune, bool) {
	if l.hasPeek {
		l.hasPeek = false
		return l.peeked, true
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		return 0, false
	}
	return r, true
}

// next scans and returns the next token, skipping whitespace and block
// comments (<< … >>, which may nest).
func (l *lexer) next() (*token, error) {
	for {
		r, ok := l.peekRune()
		if !ok {
			return &token{kind: tokenKindEOF, pos: Position{Row: l.row}}, nil
		}
		switch {
		case r == '\n':
			l.readRune()
			l.row++
			continue
		case r == ' ' || r == '\t' || r == '\r':
			l.readRune()
			continue
		case r == '<':
			l.readRune()
			r2, ok := l.peekRune()
			if ok && r2 == '<' {
				l.readRune()
				if err := l.skipBlockComment(); err != nil {
					return nil, err
				}
				continue
			}
			return &token{kind: tokenKindInvalid, text: "<", pos: Position{Row: l.row}}, nil
		}
		break
	}

	row := l.row
	r, _ := l.readRune()

	switch r {
	case '[':
		return &token{kind: tokenKindLBracket, pos: Position{Row: row}}, nil
	case ']':
		return &token{kind: tokenKindRBracket, pos: Position{Row: row}}, nil
	case '(':
		return &token{kind: tokenKindLParen, pos: Position{Row: row}}, nil
	case ')':
		return &token{kind: tokenKindRParen, pos: Position{Row: row}}, nil
	case '|':
		return &token{kind: tokenKindBar, pos: Position{Row: row}}, nil
	case '.':
		return &token{kind: tokenKindDot, pos: Position{Row: row}}, nil
	case ':':
		return &token{kind: tokenKindColon, pos: Position{Row: row}}, nil
	case '-':
		r2, ok := l.peekRune()
		if ok && r2 == '>' {
			l.readRune()
			return &token{kind: tokenKindArrow, pos: Position{Row: row}}, nil
		}
		return &token{kind: tokenKindInvalid, text: "-", pos: Position{Row: row}}, nil
	}

	if r >= '0' && r <= '9' {
		var b strings.Builder
		b.WriteRune(r)
		for {
			r2, ok := l.peekRune()
			if !ok || r2 < '0' || r2 > '9' {
				break
			}
			l.readRune()
			b.WriteRune(r2)
		}
		n, err := strconv.Atoi(b.String())
		if err != nil {
			return nil, err
		}
		return &token{kind: tokenKindInt, text: b.String(), num: n, pos: Position{Row: row}}, nil
	}

	if isIDStart(r) {
		var b strings.Builder
		b.WriteRune(r)
		for {
			r2, ok := l.peekRune()
			if !ok || !isIDPart(r2) {
				break
			}
			l.readRune()
			b.WriteRune(r2)
		}
		text := b.String()
		switch text {
		case "type":
			return &token{kind: tokenKindKWType, text: text, pos: Position{Row: row}}, nil
		case "fun":
			return &token{kind: tokenKindKWFun, text: text, pos: Position{Row: row}}, nil
		}
		if r >= 'A' && r <= 'Z' {
			return &token{kind: tokenKindUpperID, text: text, pos: Position{Row: row}}, nil
		}
		return &token{kind: tokenKindLowerID, text: text, pos: Position{Row: row}}, nil
	}

	return &token{kind: tokenKindInvalid, text: string(r), pos: Position{Row: row}}, nil
}

func (l *lexer) skipBlockComment() error {
	depth := 1
	for {
		r, ok := l.readRune()
		if !ok {
			return &verr.SpecError{Cause: synErrUnclosedComment, Row: l.row}
		}
		if r == '\n' {
			l.row++
			continue
		}
		if r == '<' {
			if r2, ok := l.peekRune(); ok && r2 == '<' {
				l.readRune()
				depth++
				continue
			}
		}
		if r == '>' {
			if r2, ok := l.peekRune(); ok && r2 == '>' {
				l.readRune()
				depth--
				if depth == 0 {
					return nil
				}
				continue
			}
		}
	}
}

func isIDStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIDPart(r rune) bool {
	return isIDStart(r) || (r >= '0' && r <= '9')
}
