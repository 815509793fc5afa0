package knowledge

import (
	"errors"
	"net/http"
)

// Domain errors for knowledge base operations.
var (
	ErrNotFound  = errors.New("knowledge base item not found")
	ErrDuplicate = errors.New("knowledge base item already exists")
	// ErrAlreadyDecided indicates a pending approval was decided before
	// this call; the gate skips it without failing the batch.
	ErrAlreadyDecided = errors.New("pending approval already decided")
)

// MapHTTPStatus maps knowledge domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrAlreadyDecided) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
