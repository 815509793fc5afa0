package workflows

import (
	"errors"
	"net/http"
)

// Domain errors for workflow operations.
var (
	ErrNotFound           = errors.New("workflow not found")
	ErrDuplicate          = errors.New("workflow already exists")
	ErrInvalidMode        = errors.New("invalid comparison mode")
	ErrMissingDocument    = errors.New("work instruction document required")
	ErrMissingItemMaster  = errors.New("item master required for full comparison mode")
	ErrFileTooLarge       = errors.New("file exceeds maximum upload size")
	ErrAlreadyStarted     = errors.New("workflow processing already started")
	ErrResultsUnavailable = errors.New("results not available until workflow completes")
)

// MapHTTPStatus maps workflow domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrAlreadyStarted) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrMissingDocument) ||
		errors.Is(err, ErrMissingItemMaster) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrResultsUnavailable) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
