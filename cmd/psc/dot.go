package main

import (
	"github.com/spf13/cobra"

	"github.com/nihei9/psc/dot"
)

var dotFlags = struct {
	typeOverrides *[]string
	strategy      *string
	output        *string
	maxSteps      *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "dot <file> <expr>",
		Short:   "Render a supercompilation run's process tree as Graphviz DOT",
		Example: `  psc dot nat.sll add -t x1=[Nat] -t x2=[Nat] -o tree.dot`,
		Args:    cobra.ExactArgs(2),
		RunE:    runDot,
	}
	dotFlags.typeOverrides = cmd.Flags().StringArrayP("type", "t", nil, "override a start variable's type (var=Type), repeatable")
	dotFlags.strategy = cmd.Flags().StringP("strategy", "s", "he", "whistle strategy: he or tag")
	dotFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	dotFlags.maxSteps = cmd.Flags().Int("max-steps", 0, "process-tree node budget (default core.DefaultMaxNodes)")
	rootCmd.AddCommand(cmd)
}

func runDot(cmd *cobra.Command, args []string) error {
	file, exprSrc := args[0], args[1]

	tree, _, _, err := runPipeline(file, exprSrc, *dotFlags.typeOverrides, *dotFlags.strategy, false, *dotFlags.maxSteps)
	if err != nil {
		return err
	}

	out, err := openOutput(*dotFlags.output)
	if err != nil {
		return err
	}
	if *dotFlags.output != "" {
		defer out.Close()
	}
	return dot.Write(out, tree)
}
