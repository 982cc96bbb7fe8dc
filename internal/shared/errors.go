package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrUnauthorized  = fmt.Errorf("unauthorized")
	ErrLoginRequired = fmt.Errorf("login required")
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMalformedResponse  = fmt.Errorf("malformed response")

	// Local state errors
	ErrCorruptCache  = fmt.Errorf("corrupt history cache")
	ErrEntryNotFound = fmt.Errorf("history entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrTooFewArtists   = fmt.Errorf("at least 3 artists are required")
	ErrDuplicateArtist = fmt.Errorf("artist already selected")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
