package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	// ErrNoSnapshot is returned when no recomputation has published yet.
	ErrNoSnapshot = errors.New("no snapshot published")
)
