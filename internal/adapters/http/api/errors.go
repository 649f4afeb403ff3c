package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrUnauthorized = errors.New("missing or invalid bearer token")
)
