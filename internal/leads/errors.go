package leads

import (
	"errors"
	"net/http"
)

// Domain errors for lead operations.
var (
	ErrNotFound          = errors.New("lead not found")
	ErrDuplicate         = errors.New("lead already exists")
	ErrVersionConflict   = errors.New("lead version conflict")
	ErrInvalidTransition = errors.New("invalid lead transition")
	ErrInvalidCommand    = errors.New("invalid lead command")
)

// MapHTTPStatus maps lead domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrVersionConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidTransition) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCommand) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
