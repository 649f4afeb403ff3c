package dedupe

import "errors"

// Sentinel kinds for dedupe errors.
var (
	// ErrDuplicate signals that a record ID was already recorded.
	ErrDuplicate = errors.New("duplicate record")
)
