package analytics

import (
	"log/slog"
	"net/http"

	"github.com/inlethq/triage/pkg/handlers"
	"github.com/inlethq/triage/pkg/routes"
)

// Handler provides HTTP endpoints for analytics queries.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the route group definition for analytics endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/agreement", Handler: h.Agreement},
		},
	}
}

// Agreement returns bot/human agreement statistics across all leads.
func (h *Handler) Agreement(w http.ResponseWriter, r *http.Request) {
	report, err := h.sys.Agreement(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}
