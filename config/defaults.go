package config

import "github.com/spf13/viper"

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)

	return cfg
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.Ticks == 0 {
		cfg.Simulation.Ticks = 1000
	}
	if cfg.Simulation.PhaseOrder == "" {
		cfg.Simulation.PhaseOrder = "send-first"
	}
	if cfg.Simulation.PipeKind == "" {
		cfg.Simulation.PipeKind = "packet"
	}

	// Scenario defaults
	if cfg.Scenario.Chains == 0 {
		cfg.Scenario.Chains = 1
	}
	if cfg.Scenario.PipeLength == 0 {
		cfg.Scenario.PipeLength = 10
	}
	if cfg.Scenario.Resource == "" {
		cfg.Scenario.Resource = "ore"
	}

	// Recording defaults
	if cfg.Recording.Interval == 0 {
		cfg.Recording.Interval = 100
	}

	// Logging defaults
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// registerDefaults makes every key known to viper so that environment
// variables are picked up by Unmarshal even without a config file.
func registerDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("simulation.ticks", d.Simulation.Ticks)
	v.SetDefault("simulation.workers", d.Simulation.Workers)
	v.SetDefault("simulation.phase_order", d.Simulation.PhaseOrder)
	v.SetDefault("simulation.pipe_kind", d.Simulation.PipeKind)
	v.SetDefault("simulation.entry_interval", d.Simulation.EntryInterval)
	v.SetDefault("simulation.tick_rate", d.Simulation.TickRate)

	v.SetDefault("scenario.chains", d.Scenario.Chains)
	v.SetDefault("scenario.pipe_length", d.Scenario.PipeLength)
	v.SetDefault("scenario.resource", d.Scenario.Resource)

	v.SetDefault("recording.enabled", d.Recording.Enabled)
	v.SetDefault("recording.path", d.Recording.Path)
	v.SetDefault("recording.interval", d.Recording.Interval)
	v.SetDefault("recording.analysis_path", d.Recording.AnalysisPath)

	v.SetDefault("monitoring.enabled", d.Monitoring.Enabled)
	v.SetDefault("monitoring.port", d.Monitoring.Port)
	v.SetDefault("monitoring.open_browser", d.Monitoring.OpenBrowser)

	v.SetDefault("logging.trace", d.Logging.Trace)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
}
