// Package cmd provides the command-line interface for factorysim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd creates the command tree. Every call returns an independent
// tree with its own settings.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "factorysim",
		Short: "factorysim simulates factories of machines connected by pipes.",
		Long: `factorysim simulates factories of machines connected by ` +
			`fixed-length pipes that move one unit of a resource per tick. ` +
			`It can run a configured scenario, benchmark the pipe backings ` +
			`and print the content of every pipe.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "",
		"Config file (default is ./conveyor.yaml)")

	rootCmd.AddCommand(
		newRunCmd(),
		newBenchCmd(),
		newInspectCmd(),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
