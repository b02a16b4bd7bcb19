package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sarchlab/conveyor/analysis"
	"github.com/sarchlab/conveyor/config"
	"github.com/sarchlab/conveyor/datarecording"
	"github.com/sarchlab/conveyor/monitoring"
	"github.com/sarchlab/conveyor/timing"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured scenario.",
		Long: "`run` builds chains of source, passthrough and sink machines, " +
			"steps the factory and reports how many units were delivered. " +
			"It can record throughput samples and serve a monitoring page.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return run(ctx, cmd, cfg)
		},
	}

	addScenarioFlags(runCmd)
	addRunFlags(runCmd)
	bindFlags(runCmd, v, scenarioBindings)
	bindFlags(runCmd, v, runBindings)

	return runCmd
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	sim, err := buildSimulation(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sim.Close()

	if cfg.Recording.Enabled {
		finish := startRecording(sim)
		defer finish()
	}

	if cfg.Recording.AnalysisPath != "" {
		finish, err := startAnalysis(sim)
		if err != nil {
			return err
		}
		defer finish()
	}

	if cfg.Monitoring.Enabled {
		stop := startMonitoring(cmd, sim)
		defer stop()
	}

	start := time.Now()

	if err := step(ctx, sim, cfg.Simulation.TickRate); err != nil {
		return err
	}

	elapsed := time.Since(start)
	stats := sim.factory.Stats()

	fmt.Fprintf(cmd.OutOrStdout(),
		"ticks: %d\ndelivered: %d\nin flight: %d\nelapsed: %s\n",
		stats.Ticks, sim.Delivered(), sim.InFlight(), elapsed)

	return nil
}

func step(ctx context.Context, sim *simulation, tickRate float64) error {
	ticks := sim.cfg.Simulation.Ticks

	if tickRate <= 0 {
		return sim.factory.Run(ctx, ticks)
	}

	ticker := time.NewTicker(timing.Freq(tickRate).Period())
	defer ticker.Stop()

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sim.factory.Step()
		}
	}

	return nil
}

func startRecording(sim *simulation) func() {
	cfg := sim.cfg
	recorder := datarecording.New(cfg.Recording.Path)

	exec := datarecording.NewExecRecorder(recorder)
	exec.Start()
	exec.Set("Chains", strconv.Itoa(cfg.Scenario.Chains))
	exec.Set("Pipe Kind", cfg.Simulation.PipeKind)
	exec.Set("Pipe Length", strconv.Itoa(cfg.Scenario.PipeLength))
	exec.Set("Phase Order", cfg.Simulation.PhaseOrder)

	sim.factory.AcceptHook(
		datarecording.NewThroughputRecorder(recorder, cfg.Recording.Interval))

	return func() {
		exec.Set("Delivered", strconv.FormatUint(sim.Delivered(), 10))
		exec.End()

		if err := recorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing recording: %v\n", err)
		}
	}
}

func startAnalysis(sim *simulation) (func(), error) {
	backend, err := analysis.NewCSVBackend(sim.cfg.Recording.AnalysisPath)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.MakePerfAnalyzerBuilder().
		WithPeriod(sim.cfg.Recording.Interval).
		WithTimeTeller(sim.factory).
		WithBackend(backend).
		Build()

	for _, p := range sim.factory.Ports() {
		analyzer.RegisterPort(p)
	}

	return func() {
		analyzer.Flush()

		if err := backend.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing analysis: %v\n", err)
		}
	}, nil
}

func startMonitoring(cmd *cobra.Command, sim *simulation) func() {
	cfg := sim.cfg

	m := monitoring.NewMonitor().WithPortNumber(cfg.Monitoring.Port)
	m.RegisterFactory(sim.factory)
	bar := m.TrackTicks("Simulation", uint64(cfg.Simulation.Ticks))

	url := m.StartServer()
	if cfg.Monitoring.OpenBrowser {
		if err := monitoring.OpenInBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cannot open browser: %v\n", err)
		}
	}

	return func() {
		m.CompleteProgressBar(bar)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = m.StopServer(ctx)
	}
}
