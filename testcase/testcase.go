// Package testcase declares SLL's end-to-end golden test-case format (§8):
// a program, a start configuration, a whistle strategy, and the shape or
// equivalence assertions the residual program must satisfy, all encoded as
// one `---`-delimited text file the way the teacher's own
// `spec/test`.TestCase format encodes a grammar's input/output pair.
package testcase

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Assertion is one check run against a residualized program's printed
// concrete syntax, or (for Equivalent) against the interpreter oracle.
type Assertion struct {
	// Kind is one of "contains", "not-contains", or "equivalent".
	Kind string
	// Arg is the substring to look for (contains/not-contains).
	Arg string
	// Args is the ground argument list (equivalent), parsed as SLL
	// expressions in the same order as the start call's arguments.
	Args []string
}

// TestCase is one SLL supercompilation scenario (§8): a program plus a
// start configuration, driven under a chosen whistle, checked against a
// list of assertions about the resulting residual program.
type TestCase struct {
	Description string
	Program     string

	// Func is the function name to synthesize (f x1 ... xn) from via
	// check.InferStartEnv (§6's "CLI may synthesize" rule); set when the
	// case uses a "start:" directive. Mutually exclusive with Expr.
	Func string
	// Expr is a literal start expression's concrete syntax, parsed with
	// ast.ParseExpr; set when the case uses an "expr:" directive instead
	// of "start:", for configurations InferStartEnv can't express (a
	// partially-concrete call like "(add [S [Z]] a)"). Every free
	// variable Expr mentions must appear in Overrides.
	Expr string

	// Overrides maps a variable name to a type string (e.g. "[Nat]"),
	// parsed with ast.ParseTypeExpr by the runner. For a "start:" case
	// this narrows InferStartEnv's inferred argument type; for an
	// "expr:" case it is the only source of Γ.
	Overrides map[string]string

	// Strategy is "he" or "tag".
	Strategy string
	// MaxSteps is the interpreter's step budget for "equivalent"
	// assertions (0 means "use the runner's default").
	MaxSteps int

	Assertions []Assertion
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

// Parse reads one TestCase from r: four `---`-delimited parts — a free-text
// description, the SLL program source, a start-configuration directive
// block, and an assertion block — mirroring the teacher's own
// three-part delimited test-case format with one extra part for the
// directives a grammar test case doesn't need.
func Parse(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("a test case consists of exactly 4 parts (description, program, start directives, assertions): %d found", len(parts))
	}

	tc := &TestCase{
		Description: strings.TrimSpace(string(parts[0])),
		Program:     string(parts[1]),
		Overrides:   map[string]string{},
	}
	if err := parseDirectives(string(parts[2]), tc); err != nil {
		return nil, err
	}
	if err := parseAssertions(string(parts[3]), tc); err != nil {
		return nil, err
	}
	return tc, nil
}

func parseDirectives(block string, tc *TestCase) error {
	for _, line := range lines(block) {
		fields := strings.Fields(line)
		switch fields[0] {
		case "start:":
			if len(fields) != 2 {
				return fmt.Errorf("start: directive needs exactly one function name")
			}
			tc.Func = fields[1]
		case "expr:":
			tc.Expr = strings.TrimSpace(strings.TrimPrefix(line, "expr:"))
		case "-t":
			if len(fields) != 2 || !strings.Contains(fields[1], "=") {
				return fmt.Errorf("-t directive must look like \"-t var=Type\"")
			}
			kv := strings.SplitN(fields[1], "=", 2)
			tc.Overrides[kv[0]] = kv[1]
		case "strategy:":
			if len(fields) != 2 {
				return fmt.Errorf("strategy: directive needs exactly one value (he or tag)")
			}
			tc.Strategy = fields[1]
		case "max-steps:":
			if len(fields) != 2 {
				return fmt.Errorf("max-steps: directive needs exactly one integer")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return fmt.Errorf("max-steps: %w", err)
			}
			tc.MaxSteps = n
		default:
			return fmt.Errorf("unknown start directive: %q", line)
		}
	}
	if tc.Func == "" && tc.Expr == "" {
		return fmt.Errorf("missing start: or expr: directive")
	}
	if tc.Func != "" && tc.Expr != "" {
		return fmt.Errorf("start: and expr: directives are mutually exclusive")
	}
	if tc.Strategy == "" {
		tc.Strategy = "he"
	}
	return nil
}

func parseAssertions(block string, tc *TestCase) error {
	for _, line := range lines(block) {
		fields := strings.Fields(line)
		switch fields[0] {
		case "contains:":
			tc.Assertions = append(tc.Assertions, Assertion{Kind: "contains", Arg: strings.TrimSpace(strings.TrimPrefix(line, "contains:"))})
		case "not-contains:":
			tc.Assertions = append(tc.Assertions, Assertion{Kind: "not-contains", Arg: strings.TrimSpace(strings.TrimPrefix(line, "not-contains:"))})
		case "equivalent:":
			// Regroup the whitespace-split fields so a nested constructor
			// like "[S [Z]]" stays one argument.
			var args []string
			cur, depth := "", 0
			for _, f := range fields[1:] {
				if cur != "" {
					cur += " "
				}
				cur += f
				depth += strings.Count(f, "[") + strings.Count(f, "(") - strings.Count(f, "]") - strings.Count(f, ")")
				if depth <= 0 {
					args = append(args, cur)
					cur, depth = "", 0
				}
			}
			if cur != "" {
				args = append(args, cur)
			}
			tc.Assertions = append(tc.Assertions, Assertion{Kind: "equivalent", Args: args})
		default:
			return fmt.Errorf("unknown assertion: %q", line)
		}
	}
	return nil
}

func lines(block string) []string {
	var ls []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ls = append(ls, line)
	}
	return ls
}

func splitIntoParts(r io.Reader) ([][]byte, error) {
	var parts [][]byte
	s := bufio.NewScanner(r)
	for {
		buf, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		parts = append(parts, buf)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

func readPart(s *bufio.Scanner) ([]byte, error) {
	if !s.Scan() {
		return nil, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		return []byte{}, nil
	}
	buf.Write(line)
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), nil
		}
		buf.WriteByte('\n')
		buf.Write(line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
