package settings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inlethq/triage/pkg/handlers"
	"github.com/inlethq/triage/pkg/routes"
)

// Handler provides HTTP endpoints for settings operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "settings"),
	}
}

// Routes returns the route group definition for settings endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/settings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Current},
			{Method: "PUT", Pattern: "", Handler: h.Update},
		},
	}
}

// Current returns the current settings snapshot.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Snapshot(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Update replaces the tunable settings fields by decoding an UpdateCommand
// JSON body. The settings version is bumped; in-flight pipeline runs keep
// the snapshot they captured.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Update(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
