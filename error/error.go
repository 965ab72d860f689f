// Package error holds the small diagnostic types shared by every stage of
// the pipeline: parsing, type checking, and the supercompiler's own
// invariant checks (§7).
package error

import "fmt"

// SpecError is one source-rowed diagnostic: a parse error or a type error
// (§7 categories i and ii). Detail carries extra context a Cause's Error()
// string doesn't have room for (an offending token's text, an offending
// name), the way the teacher's parser attaches detail to a handful of its
// syntax errors.
type SpecError struct {
	Cause  error
	Detail string
	Row    int
	Col    int
}

func (e *SpecError) Error() string {
	loc := ""
	if e.Row != 0 {
		if e.Col != 0 {
			loc = fmt.Sprintf("%v:%v: ", e.Row, e.Col)
		} else {
			loc = fmt.Sprintf("%v: ", e.Row)
		}
	}
	if e.Detail != "" {
		return fmt.Sprintf("%verror: %v: %v", loc, e.Cause, e.Detail)
	}
	return fmt.Sprintf("%verror: %v", loc, e.Cause)
}

// SpecErrors aggregates every SpecError a single pass collected, so parsing
// and type checking can report every violation instead of stopping at the
// first one.
type SpecErrors []*SpecError

func (es SpecErrors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	msg := fmt.Sprintf("%v errors occurred:\n", len(es))
	for _, e := range es {
		msg += fmt.Sprintf("  %v\n", e)
	}
	return msg
}

// InternalError reports a §7(iii) invariant breach: a program the checker
// validated nonetheless drove the engine into an inconsistent state (e.g. a
// narrowing refers to a variable absent from its typing context, or a
// constructor name is absent from its declared type). These indicate a bug
// in the checker or the engine, not bad input, so they are never collected
// alongside SpecErrors — the engine fails fast on the first one.
type InternalError struct {
	Msg string
	Row int
}

func (e *InternalError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("internal error: %v", e.Msg)
	}
	return fmt.Sprintf("%v: internal error: %v", e.Row, e.Msg)
}
