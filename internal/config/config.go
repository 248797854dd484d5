// Package config loads the flow's runtime configuration: SA refiner
// defaults, CTS/ECO inputs, logging, and output directory, grounded on
// pkg/config/config.go (teacher).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level flow configuration, loadable from an optional
// YAML file and overridable per-subcommand by CLI flags.
type Config struct {
	Flow   FlowConfig   `yaml:"flow"`
	SA     SAConfig     `yaml:"sa"`
	CTS    CTSConfig    `yaml:"cts"`
	ECO    ECOConfig    `yaml:"eco"`
	Output OutputConfig `yaml:"output"`
}

// FlowConfig controls internal/logging's zerolog setup.
type FlowConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// SAConfig mirrors internal/anneal.Config; duplicated here (rather than
// imported) so internal/config has no dependency on the stage packages it
// configures.
type SAConfig struct {
	InitialTemp   float64 `yaml:"initial_temp"`
	FinalTemp     float64 `yaml:"final_temp"`
	CoolingRate   float64 `yaml:"cooling_rate"`
	MovesPerTemp  int     `yaml:"moves_per_temp"`
	MaxIterations int     `yaml:"max_iterations"`
	ProbRefine    float64 `yaml:"prob_refine"`
	ProbExplore   float64 `yaml:"prob_explore"`
	WInitial      float64 `yaml:"w_initial"`
	Seed          int64   `yaml:"seed"`
}

// CTSConfig controls clock tree synthesis.
type CTSConfig struct {
	ClockPort string `yaml:"clock_port"`
	MaxLevel  int    `yaml:"max_level"`
}

// ECOConfig controls the power-down ECO pass.
type ECOConfig struct {
	LibertyPath string `yaml:"liberty_path"`
}

// OutputConfig controls where stage outputs and reports land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the flow's default configuration, with the SA
// defaults named in spec.md §4.E.
func DefaultConfig() *Config {
	return &Config{
		Flow: FlowConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		SA: SAConfig{
			InitialTemp:   1000.0,
			FinalTemp:     0.01,
			CoolingRate:   0.97,
			MovesPerTemp:  4000,
			MaxIterations: 15000,
			ProbRefine:    0.5,
			ProbExplore:   0.5,
			WInitial:      0.5,
			Seed:          42,
		},
		CTS: CTSConfig{
			ClockPort: "",
			MaxLevel:  8,
		},
		ECO: ECOConfig{
			LibertyPath: "",
		},
		Output: OutputConfig{
			Dir: "./build",
		},
	}
}

// Load reads configuration from a YAML file, starting from DefaultConfig
// and overlaying whatever the file specifies. A missing path returns the
// defaults unchanged, matching the teacher's "absent config file is not
// an error" behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
