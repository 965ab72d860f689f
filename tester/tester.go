// Package tester runs testcase.TestCase fixtures end to end (§8): parse,
// check, supercompile, residualize, then check the result's printed
// concrete syntax or ground-input equivalence against the interpreter
// oracle — grounded on the teacher's own tester.Tester/ListTestCases shape,
// adapted from grammar-parse-tree diffing to SLL's residual-program
// assertions.
package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/check"
	"github.com/nihei9/psc/core"
	"github.com/nihei9/psc/interp"
	"github.com/nihei9/psc/testcase"
)

// DefaultMaxSteps bounds the interpreter oracle's reduction count when a
// TestCase doesn't set its own (the teacher's analogous constants live
// next to the thing they bound, not in a shared config package).
const DefaultMaxSteps = 100000

// TestCaseWithMetadata pairs a parsed TestCase with the file it came from,
// or the error that kept it from parsing — mirroring the teacher's own
// load-errors-alongside-cases idiom so a directory with one bad fixture
// doesn't keep the rest from running.
type TestCaseWithMetadata struct {
	TestCase *testcase.TestCase
	FilePath string
	Error    error
}

// ListTestCases reads every test case under path: a single file, or every
// file in a directory tree.
func ListTestCases(path string) []*TestCaseWithMetadata {
	fi, err := os.Stat(path)
	if err != nil {
		return []*TestCaseWithMetadata{{FilePath: path, Error: err}}
	}
	if !fi.IsDir() {
		tc, err := parseTestCaseFile(path)
		return []*TestCaseWithMetadata{{TestCase: tc, FilePath: path, Error: err}}
	}

	es, err := os.ReadDir(path)
	if err != nil {
		return []*TestCaseWithMetadata{{FilePath: path, Error: err}}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cases = append(cases, ListTestCases(filepath.Join(path, e.Name()))...)
	}
	return cases
}

func parseTestCaseFile(path string) (*testcase.TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return testcase.Parse(f)
}

// TestResult is the outcome of running one TestCase.
type TestResult struct {
	FilePath string
	Error    error
}

func (r *TestResult) String() string {
	if r.Error != nil {
		return fmt.Sprintf("FAIL %v: %v", r.FilePath, r.Error)
	}
	return fmt.Sprintf("PASS %v", r.FilePath)
}

// Tester runs a batch of loaded test cases.
type Tester struct {
	Cases []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(c))
	}
	return rs
}

func runTest(c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{FilePath: c.FilePath, Error: c.Error}
	}
	tc := c.TestCase

	prog, err := ast.Parse(strings.NewReader(tc.Program))
	if err != nil {
		return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("parse: %w", err)}
	}
	checked, err := check.Check(prog)
	if err != nil {
		return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("check: %w", err)}
	}

	overrides := map[string]ast.TypeExpr{}
	for name, typeStr := range tc.Overrides {
		t, err := ast.ParseTypeExpr(strings.NewReader(typeStr))
		if err != nil {
			return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("override %s: %w", name, err)}
		}
		overrides[name] = t
	}

	var env map[string]ast.TypeExpr
	var startExpr ast.Expr
	var retType ast.TypeExpr
	if tc.Func != "" {
		sig := prog.SigOf(tc.Func)
		if sig == nil {
			return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("no signature for %q", tc.Func)}
		}
		env, startExpr = check.InferStartEnv(sig, overrides)
		retType = sig.RetType
	} else {
		e, err := ast.ParseExpr(strings.NewReader(tc.Expr))
		if err != nil {
			return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("parsing expr: %w", err)}
		}
		startExpr = e
		env = overrides
		if call, ok := startExpr.(*ast.FCall); ok {
			if sig := prog.SigOf(call.Name); sig != nil {
				retType = sig.RetType
			}
		}
	}

	var whistle core.Whistle
	switch tc.Strategy {
	case "he", "":
		whistle = core.HEWhistle{}
	case "tag":
		whistle = core.TagBagWhistle{}
	default:
		return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("unknown strategy %q", tc.Strategy)}
	}

	maxNodes := core.DefaultMaxNodes
	engine := core.NewEngine(checked, whistle, nil, maxNodes)
	tree, err := engine.BuildTree(startExpr, env)
	if err != nil {
		return &TestResult{FilePath: c.FilePath, Error: fmt.Errorf("supercompile: %w", err)}
	}

	residual := core.NewResidualizer(tree, prog, retType).Residualize()
	printed := ast.PrintProgram(residual)

	maxSteps := tc.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	for _, a := range tc.Assertions {
		if err := checkAssertion(a, printed, prog, residual, startExpr, residual.Signatures[0].Name, maxSteps); err != nil {
			return &TestResult{FilePath: c.FilePath, Error: err}
		}
	}
	return &TestResult{FilePath: c.FilePath}
}

func checkAssertion(a testcase.Assertion, printed string, original, residual *ast.Program, startExpr ast.Expr, residualEntry string, maxSteps int) error {
	switch a.Kind {
	case "contains":
		if !strings.Contains(printed, a.Arg) {
			return fmt.Errorf("expected residual program to contain %q, got:\n%s", a.Arg, printed)
		}
	case "not-contains":
		if strings.Contains(printed, a.Arg) {
			return fmt.Errorf("expected residual program not to contain %q, got:\n%s", a.Arg, printed)
		}
	case "equivalent":
		return checkEquivalent(a, original, residual, startExpr, residualEntry, maxSteps)
	default:
		return fmt.Errorf("unknown assertion kind %q", a.Kind)
	}
	return nil
}

func checkEquivalent(a testcase.Assertion, original, residual *ast.Program, startExpr ast.Expr, residualEntry string, maxSteps int) error {
	call, ok := startExpr.(*ast.FCall)
	if !ok {
		return fmt.Errorf("equivalent assertion requires a function-call start expression")
	}
	if len(a.Args) != len(call.Args) {
		return fmt.Errorf("equivalent: expected %d ground argument(s), got %d", len(call.Args), len(a.Args))
	}

	env := map[string]ast.Expr{}
	for i, argSrc := range a.Args {
		v, ok := call.Args[i].(*ast.Var)
		if !ok {
			return fmt.Errorf("equivalent: start call argument %d is not a variable", i)
		}
		ground, err := ast.ParseExpr(strings.NewReader(argSrc))
		if err != nil {
			return fmt.Errorf("equivalent: parsing ground argument %q: %w", argSrc, err)
		}
		env[v.Name] = ground
	}

	want, err := interp.Eval(original, startExpr, env, maxSteps)
	if err != nil {
		return fmt.Errorf("equivalent: evaluating original program: %w", err)
	}

	// The residual entry takes each distinct start variable once, in
	// first-occurrence order, so a repeated variable is passed only once.
	var residualArgs []ast.Expr
	seen := map[string]bool{}
	for _, arg := range call.Args {
		v := arg.(*ast.Var)
		if !seen[v.Name] {
			seen[v.Name] = true
			residualArgs = append(residualArgs, v)
		}
	}
	residualCall := ast.NewFCall(residualEntry, residualArgs...)
	got, err := interp.Eval(residual, residualCall, env, maxSteps)
	if err != nil {
		return fmt.Errorf("equivalent: evaluating residual program: %w", err)
	}

	if ast.Print(want) != ast.Print(got) {
		return fmt.Errorf("equivalent: original evaluates to %s, residual evaluates to %s", ast.Print(want), ast.Print(got))
	}
	return nil
}
