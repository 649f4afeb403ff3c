package model

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidGender = errors.New("invalid gender")
	ErrInvalidRecord = errors.New("invalid record")
)
