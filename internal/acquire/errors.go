package acquire

import "errors"

// Sentinel kinds for acquisition errors.
var (
	// ErrNoEvents signals that the event list resolved to nothing to scrape.
	ErrNoEvents = errors.New("no events configured")

	// ErrInvalidEvent signals an event entry missing its name or listing ID.
	ErrInvalidEvent = errors.New("invalid event entry")

	// ErrBadStatus signals a non-200 response from the listing site.
	ErrBadStatus = errors.New("unexpected listing status")
)
