package triage

import (
	"errors"
	"net/http"

	"github.com/inlethq/triage/internal/leads"
	"github.com/inlethq/triage/internal/pipeline"
	"github.com/inlethq/triage/internal/settings"
)

// MapHTTPStatus maps triage action errors to HTTP status codes. Pipeline
// failures surface as 502: the lead itself is fine, the model backend is not.
func MapHTTPStatus(err error) int {
	if errors.Is(err, pipeline.ErrPipelineFailed) {
		return http.StatusBadGateway
	}
	if errors.Is(err, settings.ErrUnknownClassification) ||
		errors.Is(err, settings.ErrThresholdMissing) {
		return http.StatusBadRequest
	}
	if status := leads.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusInternalServerError
}
