package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nihei9/psc/ast"
	"github.com/nihei9/psc/core"
)

var compileFlags = struct {
	typeOverrides *[]string
	strategy      *string
	output        *string
	verbose       *bool
	maxSteps      *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <file> <expr>",
		Short:   "Supercompile a start call into a specialized residual program",
		Example: `  psc compile nat.sll add -t x1=[Nat] -t x2=[Nat] -s he -o nat.residual.sll`,
		Args:    cobra.ExactArgs(2),
		RunE:    runCompile,
	}
	compileFlags.typeOverrides = cmd.Flags().StringArrayP("type", "t", nil, "override a start variable's type (var=Type), repeatable")
	compileFlags.strategy = cmd.Flags().StringP("strategy", "s", "he", "whistle strategy: he or tag")
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.verbose = cmd.Flags().BoolP("verbose", "v", false, "trace the supercompiler's fold/whistle/drive steps to stderr")
	compileFlags.maxSteps = cmd.Flags().Int("max-steps", 0, "process-tree node budget (default core.DefaultMaxNodes)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	file, exprSrc := args[0], args[1]

	tree, checked, retType, err := runPipeline(file, exprSrc, *compileFlags.typeOverrides, *compileFlags.strategy, *compileFlags.verbose, *compileFlags.maxSteps)
	if err == core.ErrStepBudgetExceeded {
		return fmt.Errorf("%w (the partially-built tree was discarded; residualization was not attempted)", err)
	}
	if err != nil {
		return err
	}

	residual := core.NewResidualizer(tree, checked.Program, retType).Residualize()

	out, err := openOutput(*compileFlags.output)
	if err != nil {
		return err
	}
	if *compileFlags.output != "" {
		defer out.Close()
	}
	fmt.Fprint(out, ast.PrintProgram(residual))
	return nil
}
