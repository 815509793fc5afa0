package ingest

import (
	"errors"
	"net/http"
)

// Domain errors for ingest operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("file parse failed")
	ErrEmptyDocument     = errors.New("document contains no extractable text")
)

// MapHTTPStatus maps ingest domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnsupportedFormat) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrParse) || errors.Is(err, ErrEmptyDocument) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
