package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
)

// RetryConfig bounds per-stage retries for transient failures. Zero values
// fall back to the backoff library defaults.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the retry policy used when configuration leaves
// the pipeline section empty.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
	}
}

// Runtime bundles the dependencies that pipeline nodes require. It is
// constructed by higher-level composition code from Infrastructure and
// Domain systems.
type Runtime struct {
	Classifier Classifier
	Generator  Generator
	Leads      leads.System
	References references.System
	Settings   settings.System
	Retry      RetryConfig
	Logger     *slog.Logger
}

// retryStage runs op with exponential backoff for transient failures. Errors
// wrapped in backoff.Permanent abort immediately, as does context
// cancellation.
func retryStage(ctx context.Context, cfg RetryConfig, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		b.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		b.MaxInterval = cfg.MaxInterval
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx))
}
