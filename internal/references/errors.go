package references

import (
	"errors"
	"net/http"
)

// Domain errors for reference material operations.
var (
	ErrNotFound         = errors.New("reference material not found")
	ErrDuplicate        = errors.New("reference material already exists")
	ErrInvalidReference = errors.New("invalid reference material")
)

// MapHTTPStatus maps reference domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidReference) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
