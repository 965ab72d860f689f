package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psc",
	Short: "A positive supercompiler for SLL",
	Long: `psc provides three features:
- Supercompiles an SLL program's start call into a specialized residual
  program.
- Renders a supercompilation run's process tree as Graphviz DOT.
- Runs declarative golden test cases end to end.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command; main prints any returned error.
func Execute() error {
	return rootCmd.Execute()
}
