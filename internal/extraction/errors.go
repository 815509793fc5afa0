package extraction

import "errors"

// Domain errors for extraction operations.
var (
	// ErrUnavailable indicates the extraction gateway could not produce a
	// usable response after all retry attempts.
	ErrUnavailable = errors.New("extraction service unavailable")
	// ErrMalformedResponse indicates the gateway responded but the content
	// could not be decoded into items.
	ErrMalformedResponse = errors.New("malformed extraction response")
)
