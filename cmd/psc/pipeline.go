package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/check"
	"github.com/nihei9/psc/core"
)

func readProgram(path string) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()
	return ast.Parse(f)
}

func parseOverrides(raw []string) (map[string]ast.TypeExpr, error) {
	overrides := map[string]ast.TypeExpr{}
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("-t flag must look like \"var=Type\", got %q", kv)
		}
		t, err := ast.ParseTypeExpr(strings.NewReader(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("-t %s: %w", kv, err)
		}
		overrides[parts[0]] = t
	}
	return overrides, nil
}

// buildStartConfig parses exprSrc as either a bare function name (§6's
// synthesis rule, via check.InferStartEnv) or a literal start expression,
// the way the CLI's single positional `expr` argument serves both cases:
// a name with no parentheses is looked up as a signature, anything else is
// parsed as an expression and every free variable must be typed by an
// override.
func buildStartConfig(checked *check.CheckedProgram, exprSrc string, overrides map[string]ast.TypeExpr) (ast.Expr, map[string]ast.TypeExpr, ast.TypeExpr, error) {
	prog := checked.Program
	if sig := prog.SigOf(exprSrc); sig != nil {
		env, expr := check.InferStartEnv(sig, overrides)
		return expr, env, sig.RetType, nil
	}

	expr, err := ast.ParseExpr(strings.NewReader(exprSrc))
	if err != nil {
		return nil, nil, ast.TypeExpr{}, fmt.Errorf("parsing start expression: %w", err)
	}
	var retType ast.TypeExpr
	if call, ok := expr.(*ast.FCall); ok {
		if sig := prog.SigOf(call.Name); sig != nil {
			retType = sig.RetType
		}
	}
	return expr, overrides, retType, nil
}

func whistleFor(strategy string) (core.Whistle, error) {
	switch strategy {
	case "he", "":
		return core.HEWhistle{}, nil
	case "tag":
		return core.TagBagWhistle{}, nil
	default:
		return nil, fmt.Errorf("unknown whistle strategy %q (want he or tag)", strategy)
	}
}

func loggerFor(verbose bool) hclog.Logger {
	if !verbose {
		return hclog.NewNullLogger()
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "psc",
		Level: hclog.Trace,
	})
}

// runPipeline parses, checks, and builds the process tree for file/exprSrc,
// stopping short of residualization — compile.go adds that last step, and
// dot.go stops here.
func runPipeline(file, exprSrc string, rawOverrides []string, strategy string, verbose bool, maxSteps int) (*core.Tree, *check.CheckedProgram, ast.TypeExpr, error) {
	prog, err := readProgram(file)
	if err != nil {
		return nil, nil, ast.TypeExpr{}, err
	}
	checked, err := check.Check(prog)
	if err != nil {
		return nil, nil, ast.TypeExpr{}, err
	}

	overrides, err := parseOverrides(rawOverrides)
	if err != nil {
		return nil, nil, ast.TypeExpr{}, err
	}

	startExpr, env, retType, err := buildStartConfig(checked, exprSrc, overrides)
	if err != nil {
		return nil, nil, ast.TypeExpr{}, err
	}

	whistle, err := whistleFor(strategy)
	if err != nil {
		return nil, nil, ast.TypeExpr{}, err
	}

	maxNodes := core.DefaultMaxNodes
	if maxSteps > 0 {
		maxNodes = maxSteps
	}
	engine := core.NewEngine(checked, whistle, loggerFor(verbose), maxNodes)

	tree, err := engine.BuildTree(startExpr, env)
	if err != nil {
		return nil, nil, ast.TypeExpr{}, err
	}
	return tree, checked, retType, nil
}

func openOutput(path string) (*os.File, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}
