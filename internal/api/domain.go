package api

import (
	"github.com/inlethq/triage/internal/analytics"
	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/prompts"
	"github.com/inlethq/triage/internal/references"
	"github.com/inlethq/triage/internal/settings"
	"github.com/inlethq/triage/internal/triage"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Leads      leads.System
	References references.System
	Settings   settings.System
	Prompts    prompts.System
	Triage     triage.System
	Analytics  analytics.System
}

// NewDomain creates all domain systems from the API runtime. The triage
// system composes the others into the pipeline runtime.
func NewDomain(runtime *Runtime) *Domain {
	leadSystem := leads.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	referenceSystem := references.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	settingSystem := settings.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	promptSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	triageSystem := triage.New(
		runtime.Agent,
		runtime.Retry,
		runtime.Workers,
		runtime.Logger,
		leadSystem,
		referenceSystem,
		settingSystem,
		promptSystem,
	)

	analyticsSystem := analytics.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	return &Domain{
		Leads:      leadSystem,
		References: referenceSystem,
		Settings:   settingSystem,
		Prompts:    promptSystem,
		Triage:     triageSystem,
		Analytics:  analyticsSystem,
	}
}
