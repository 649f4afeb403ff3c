// Package timeparse converts between finish-time strings and seconds.
//
// The accepted grammar is explicit: "HH:MM:SS" (hours unbounded,
// minutes/seconds 0-59) or "MM:SS" (minutes unbounded, seconds 0-59).
// Fields are unsigned integers; single digits are allowed, so "1:2:3"
// is 3723 seconds.
package timeparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseToSeconds parses a finish-time string into seconds.
func ParseToSeconds(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch len(parts) {
	case 3:
		hours, err := field(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		minutes, err := boundedField(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		seconds, err := boundedField(parts[2])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		return float64(hours*3600 + minutes*60 + seconds), nil
	case 2:
		minutes, err := field(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		seconds, err := boundedField(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		return float64(minutes*60 + seconds), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
}

// ValidSeconds reports whether a numeric finish time is usable at all.
func ValidSeconds(seconds float64) bool {
	return seconds > 0 && !math.IsNaN(seconds) && !math.IsInf(seconds, 0)
}

// Format renders seconds as "H:MM:SS" with unpadded hours and the
// fractional part truncated, so 5675.5 becomes "1:34:35".
func Format(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// field parses an unbounded unsigned integer field.
func field(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// boundedField parses a 0-59 minutes or seconds field.
func boundedField(s string) (int, error) {
	n, err := field(s)
	if err != nil {
		return 0, err
	}
	if n > 59 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
