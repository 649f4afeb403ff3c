package correction

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingBaseline = errors.New("baseline venue missing from stats")
)
