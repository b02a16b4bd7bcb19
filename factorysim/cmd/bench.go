package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/conveyor/config"
	"github.com/sarchlab/conveyor/pipe"
)

// Every chain has three machines and two pipes that update each tick.
const opsPerChain = 5

type benchOptions struct {
	chains     int
	pipeLength int
	samples    int
	rounds     int
	workers    int
	kinds      []string
}

func newBenchCmd() *cobra.Command {
	opts := benchOptions{}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the time spent per machine and pipe update.",
		Long: "`bench` builds many source, passthrough and sink chains, " +
			"steps them in rounds of samples and prints the average time " +
			"per machine or pipe update for each pipe backing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bench(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	flags := benchCmd.Flags()
	flags.IntVar(&opts.chains, "chains", 100000, "Number of chains")
	flags.IntVar(&opts.pipeLength, "pipe-length", 10, "Length of every pipe")
	flags.IntVar(&opts.samples, "samples", 10, "Ticks per round")
	flags.IntVar(&opts.rounds, "rounds", 5, "Number of rounds to report")
	flags.IntVar(&opts.workers, "workers", 1,
		"Workers running links in parallel, 0 for one per CPU")
	flags.StringSliceVar(&opts.kinds, "kinds", []string{"packet"},
		"Pipe backings to measure")

	return benchCmd
}

func bench(out, stderr io.Writer, opts benchOptions) error {
	for _, name := range opts.kinds {
		if _, err := pipe.ParseKind(name); err != nil {
			return err
		}

		cfg := config.Default()
		cfg.Simulation.PipeKind = name
		cfg.Simulation.Workers = opts.workers
		cfg.Scenario.Chains = opts.chains
		cfg.Scenario.PipeLength = opts.pipeLength

		if err := config.ValidateConfig(cfg); err != nil {
			return err
		}

		sim, err := buildSimulation(cfg, stderr)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s:\n", name)

		ops := opts.samples * opts.chains * opsPerChain
		for r := 0; r < opts.rounds; r++ {
			start := time.Now()

			for i := 0; i < opts.samples; i++ {
				sim.factory.Step()
			}

			perOp := time.Since(start).Nanoseconds() / int64(max(ops, 1))
			fmt.Fprintf(out, "  %dns per op\n", perOp)
		}

		fmt.Fprintf(out, "  delivered: %d\n", sim.Delivered())

		sim.Close()
	}

	return nil
}
