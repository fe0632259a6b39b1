package api

import (
	"net/http"

	"github.com/inlethq/triage/internal/config"
	"github.com/inlethq/triage/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Leads.Handler().Routes(),
		domain.Triage.Handler(cfg.API.MaxBodySizeBytes()).Routes(),
		domain.References.Handler().Routes(),
		domain.Settings.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Analytics.Handler().Routes(),
	)
}
