package baseline

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoEligibleBaseline = errors.New("no eligible baseline venue")
)
