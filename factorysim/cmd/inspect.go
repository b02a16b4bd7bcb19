package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sarchlab/conveyor/resource"
)

func newInspectCmd() *cobra.Command {
	v := viper.New()

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run the configured scenario and print every pipe.",
		Long: "`inspect` runs the configured scenario and prints the slots of " +
			"every pipe from its output end to its input end. Units are " +
			"shown by the first letter of their resource and empty slots as " +
			"dots.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			sim, err := buildSimulation(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sim.Close()

			if err := sim.factory.Run(cmd.Context(), cfg.Simulation.Ticks); err != nil {
				return err
			}

			return inspect(cmd.OutOrStdout(), sim)
		},
	}

	addScenarioFlags(inspectCmd)
	bindFlags(inspectCmd, v, scenarioBindings)

	return inspectCmd
}

func inspect(out io.Writer, sim *simulation) error {
	f := sim.factory
	now := f.Now()

	fmt.Fprintf(out, "tick %d\n", now)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PIPE\tKIND\tLEN\tSLOTS")

	for _, h := range f.Pipes() {
		info, err := f.Describe(h)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n",
			info.Name, info.Kind, info.Pipe.Len(), info.Pipe.Capacity(),
			drawSlots(info.Pipe.Resolve(now)))
	}

	return w.Flush()
}

func drawSlots(slots []resource.ID) string {
	var b strings.Builder

	for _, id := range slots {
		if id == resource.None {
			b.WriteByte('.')
			continue
		}

		name := id.String()
		b.WriteString(strings.ToUpper(name[:1]))
	}

	return b.String()
}
