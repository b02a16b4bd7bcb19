// Package config loads the settings of a simulation run from defaults, a
// YAML file, a .env file and CONVEYOR_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "CONVEYOR"

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Scenario   ScenarioConfig   `mapstructure:"scenario"`
	Recording  RecordingConfig  `mapstructure:"recording"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig controls how the factory is stepped.
type SimulationConfig struct {
	// Number of ticks to run
	Ticks int `mapstructure:"ticks" validate:"min=1"`

	// Workers running port-disjoint links in parallel; 0 means GOMAXPROCS
	Workers int `mapstructure:"workers" validate:"min=0"`

	// Order of the two transfer phases: send-first, receive-first
	PhaseOrder string `mapstructure:"phase_order" validate:"required,oneof=send-first receive-first"`

	// Pipe backing: packet, countdown, packed, queue
	PipeKind string `mapstructure:"pipe_kind" validate:"required,oneof=packet countdown packed queue"`

	// Minimum ticks between two units entering a pipe; 0 means the pipe
	// length
	EntryInterval uint32 `mapstructure:"entry_interval"`

	// Ticks per second of wall time; 0 runs as fast as possible
	TickRate float64 `mapstructure:"tick_rate" validate:"min=0"`
}

// ScenarioConfig describes the production chains to build.
type ScenarioConfig struct {
	// Number of source -> passthrough -> sink chains
	Chains int `mapstructure:"chains" validate:"min=1"`

	// Length of every pipe in ticks
	PipeLength int `mapstructure:"pipe_length" validate:"min=1,max=65535"`

	// Name of the resource the sources produce
	Resource string `mapstructure:"resource" validate:"required"`
}

// RecordingConfig controls the SQLite throughput recording.
type RecordingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Database path without the .sqlite3 suffix; empty picks a unique name
	Path string `mapstructure:"path"`

	// Ticks between two samples
	Interval uint32 `mapstructure:"interval" validate:"min=1"`

	// CSV path without the .csv suffix for per-port traffic; empty disables
	// the analysis
	AnalysisPath string `mapstructure:"analysis_path"`
}

// MonitoringConfig controls the monitoring web server.
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port to listen on; 0 picks a free port
	Port int `mapstructure:"port" validate:"omitempty,min=1000,max=65535"`

	// Open the monitoring page in a browser once the server is up
	OpenBrowser bool `mapstructure:"open_browser"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log every unit entering, leaving or stalling in a pipe
	Trace bool `mapstructure:"trace"`

	// Output destination: stdout, stderr, file
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	// File path (required if output is "file")
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (conveyor.yaml)
// 3. Defaults (lowest priority)
func Load(configPath string) (*Config, error) {
	return LoadWithViper(viper.New(), configPath)
}

// LoadWithViper is Load on a viper instance that may already carry values
// with a higher priority, such as bound command line flags.
func LoadWithViper(v *viper.Viper, configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("conveyor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration or returns a default config on error
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return Default()
	}

	return cfg
}

// MustLoad loads configuration and panics on error
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	return cfg
}
