package settings

import (
	"errors"
	"net/http"
)

// Domain errors for settings operations.
var (
	ErrNotFound              = errors.New("settings not found")
	ErrThresholdMissing      = errors.New("no threshold configured for classification")
	ErrUnknownClassification = errors.New("classification outside configured set")
	ErrInvalidSettings       = errors.New("invalid settings")
)

// MapHTTPStatus maps settings domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidSettings) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnknownClassification) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
