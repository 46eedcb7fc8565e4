// Package config loads and validates application configuration from
// environment variables (prefix STUDY) layered over an optional YAML file.
// All file paths are resolved to absolute paths at load time; nothing in
// the system relies on the process working directory after that.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Study   StudyConfig   `yaml:"study" envconfig:"STUDY"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
}

// StudyConfig contains the engine defaults shared by the analysis CLIs.
// Individual CLIs may override pieces via flags.
type StudyConfig struct {
	BaselineWindow  time.Duration `yaml:"baseline_window" envconfig:"BASELINE_WINDOW"`
	ToleranceBefore time.Duration `yaml:"tolerance_before" envconfig:"TOLERANCE_BEFORE"`
	ToleranceAfter  time.Duration `yaml:"tolerance_after" envconfig:"TOLERANCE_AFTER"`
	ControlSeed     int64         `yaml:"control_seed" envconfig:"CONTROL_SEED"`
	ExclusionDays   int           `yaml:"exclusion_days" envconfig:"EXCLUSION_DAYS" validate:"min=0"`
	MinGroupSize    int           `yaml:"min_group_size" envconfig:"MIN_GROUP_SIZE" validate:"min=3"`
	Parallelism     int           `yaml:"parallelism" envconfig:"PARALLELISM" validate:"min=1"`
}

// Load reads configuration from environment variables layered over the
// optional YAML file. A missing file is not an error; defaults apply.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Environment overrides file values.
	if err := envconfig.Process("STUDY", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills fields that neither the file nor the environment
// set. Defaults live here rather than in envconfig default tags: a
// default tag is applied whenever the env var is unset, which would
// clobber values read from the file.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "console"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = "logs/eventstudy.log"
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "data"
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "outputs"
	}
	if cfg.Study.BaselineWindow == 0 {
		cfg.Study.BaselineWindow = 30 * time.Minute
	}
	if cfg.Study.ToleranceBefore == 0 {
		cfg.Study.ToleranceBefore = 2 * time.Minute
	}
	if cfg.Study.ToleranceAfter == 0 {
		cfg.Study.ToleranceAfter = 3 * time.Minute
	}
	if cfg.Study.ControlSeed == 0 {
		cfg.Study.ControlSeed = 42
	}
	if cfg.Study.ExclusionDays == 0 {
		cfg.Study.ExclusionDays = 3
	}
	if cfg.Study.MinGroupSize == 0 {
		cfg.Study.MinGroupSize = 3
	}
	if cfg.Study.Parallelism == 0 {
		cfg.Study.Parallelism = 1
	}
}

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// resolvePaths makes every configured path absolute so later directory
// changes cannot redirect reads or writes.
func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.Paths.DataDir, &c.Paths.OutputDir, &c.Logging.FilePath} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve path %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}
