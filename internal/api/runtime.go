package api

import (
	"github.com/inlethq/triage/internal/config"
	"github.com/inlethq/triage/internal/infrastructure"
	"github.com/inlethq/triage/internal/pipeline"
	"github.com/inlethq/triage/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Retry      pipeline.RetryConfig
	Workers    int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Agent:     cfg.Agent,
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
		},
		Pagination: cfg.API.Pagination,
		Retry:      cfg.Pipeline.RetryConfig(),
		Workers:    cfg.Pipeline.Workers,
	}
}
