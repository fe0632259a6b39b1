package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/inlethq/triage/internal/pipeline"
)

const (
	EnvPipelineMaxRetries      = "TRIAGE_PIPELINE_MAX_RETRIES"
	EnvPipelineInitialInterval = "TRIAGE_PIPELINE_INITIAL_INTERVAL"
	EnvPipelineMaxInterval     = "TRIAGE_PIPELINE_MAX_INTERVAL"
	EnvPipelineWorkers         = "TRIAGE_PIPELINE_WORKERS"
)

// PipelineConfig holds stage retry and batch concurrency settings.
type PipelineConfig struct {
	MaxRetries      int    `toml:"max_retries"`
	InitialInterval string `toml:"initial_interval"`
	MaxInterval     string `toml:"max_interval"`
	Workers         int    `toml:"workers"`
}

// RetryConfig converts the finalized settings to the pipeline's retry policy.
func (c *PipelineConfig) RetryConfig() pipeline.RetryConfig {
	initial, _ := time.ParseDuration(c.InitialInterval)
	max, _ := time.ParseDuration(c.MaxInterval)

	return pipeline.RetryConfig{
		MaxRetries:      uint64(c.MaxRetries),
		InitialInterval: initial,
		MaxInterval:     max,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.InitialInterval != "" {
		c.InitialInterval = overlay.InitialInterval
	}
	if overlay.MaxInterval != "" {
		c.MaxInterval = overlay.MaxInterval
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *PipelineConfig) loadDefaults() {
	defaults := pipeline.DefaultRetryConfig()

	if c.MaxRetries == 0 {
		c.MaxRetries = int(defaults.MaxRetries)
	}
	if c.InitialInterval == "" {
		c.InitialInterval = defaults.InitialInterval.String()
	}
	if c.MaxInterval == "" {
		c.MaxInterval = defaults.MaxInterval.String()
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvPipelineInitialInterval); v != "" {
		c.InitialInterval = v
	}
	if v := os.Getenv(EnvPipelineMaxInterval); v != "" {
		c.MaxInterval = v
	}
	if v := os.Getenv(EnvPipelineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries: %d", c.MaxRetries)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if _, err := time.ParseDuration(c.InitialInterval); err != nil {
		return fmt.Errorf("invalid initial_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.MaxInterval); err != nil {
		return fmt.Errorf("invalid max_interval: %w", err)
	}
	return nil
}
