package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sarchlab/conveyor/config"
)

type flagBinding struct {
	flag string
	key  string
}

var scenarioBindings = []flagBinding{
	{"ticks", "simulation.ticks"},
	{"workers", "simulation.workers"},
	{"phase-order", "simulation.phase_order"},
	{"pipe-kind", "simulation.pipe_kind"},
	{"entry-interval", "simulation.entry_interval"},
	{"chains", "scenario.chains"},
	{"pipe-length", "scenario.pipe_length"},
	{"resource", "scenario.resource"},
	{"trace", "logging.trace"},
}

var runBindings = []flagBinding{
	{"tick-rate", "simulation.tick_rate"},
	{"record", "recording.enabled"},
	{"record-path", "recording.path"},
	{"record-interval", "recording.interval"},
	{"analysis-path", "recording.analysis_path"},
	{"monitor", "monitoring.enabled"},
	{"monitor-port", "monitoring.port"},
	{"open-browser", "monitoring.open_browser"},
}

func addScenarioFlags(cmd *cobra.Command) {
	d := config.Default()
	flags := cmd.Flags()

	flags.Int("ticks", d.Simulation.Ticks, "Number of ticks to run")
	flags.Int("workers", d.Simulation.Workers,
		"Workers running links in parallel, 0 for one per CPU")
	flags.String("phase-order", d.Simulation.PhaseOrder,
		"Order of the transfer phases: send-first or receive-first")
	flags.String("pipe-kind", d.Simulation.PipeKind,
		"Pipe backing: packet, countdown, packed or queue")
	flags.Uint32("entry-interval", d.Simulation.EntryInterval,
		"Minimum ticks between units entering a pipe, 0 for the pipe length")
	flags.Int("chains", d.Scenario.Chains,
		"Number of source, passthrough and sink chains")
	flags.Int("pipe-length", d.Scenario.PipeLength, "Length of every pipe")
	flags.String("resource", d.Scenario.Resource,
		"Resource produced by the sources")
	flags.Bool("trace", d.Logging.Trace,
		"Log every unit entering, leaving or stalling in a pipe")
}

func addRunFlags(cmd *cobra.Command) {
	d := config.Default()
	flags := cmd.Flags()

	flags.Float64("tick-rate", d.Simulation.TickRate,
		"Ticks per second, 0 to run as fast as possible")
	flags.Bool("record", d.Recording.Enabled,
		"Record throughput samples into a SQLite database")
	flags.String("record-path", d.Recording.Path,
		"Database path without the .sqlite3 suffix")
	flags.Uint32("record-interval", d.Recording.Interval,
		"Ticks between two throughput samples")
	flags.String("analysis-path", d.Recording.AnalysisPath,
		"CSV path without the .csv suffix for per-port traffic")
	flags.Bool("monitor", d.Monitoring.Enabled, "Serve the monitoring page")
	flags.Int("monitor-port", d.Monitoring.Port,
		"Port of the monitoring server, 0 for any free port")
	flags.Bool("open-browser", d.Monitoring.OpenBrowser,
		"Open the monitoring page in a browser")
}

func bindFlags(cmd *cobra.Command, v *viper.Viper, bindings []flagBinding) {
	for _, b := range bindings {
		err := v.BindPFlag(b.key, cmd.Flags().Lookup(b.flag))
		if err != nil {
			log.Panic(err)
		}
	}
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	return config.LoadWithViper(v, path)
}
