// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Gender identifies a result division.
type Gender string

// Divisions recognized by the engine.
const (
	GenderMen   Gender = "M"
	GenderWomen Gender = "W"
)

// Genders lists the divisions in canonical order.
func Genders() []Gender {
	return []Gender{GenderMen, GenderWomen}
}

// ParseGender normalizes common division spellings to a Gender.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "men", "male":
		return GenderMen, nil
	case "w", "f", "women", "female":
		return GenderWomen, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

// Result is a single athlete finish at a venue.
// Immutable once ingested; ID exists only for duplicate suppression.
type Result struct {
	ID            string
	Venue         string
	Gender        Gender
	FinishSeconds float64
}

// Validate reports whether the record can enter the store.
func (r Result) Validate() error {
	if strings.TrimSpace(r.Venue) == "" {
		return fmt.Errorf("%w: missing venue", ErrInvalidRecord)
	}
	if r.Gender != GenderMen && r.Gender != GenderWomen {
		return fmt.Errorf("%w: %q", ErrInvalidGender, string(r.Gender))
	}
	if r.FinishSeconds <= 0 || math.IsNaN(r.FinishSeconds) || math.IsInf(r.FinishSeconds, 0) {
		return fmt.Errorf("%w: finish seconds must be positive and finite", ErrInvalidRecord)
	}
	return nil
}

// Group keys a (venue, gender) series.
type Group struct {
	Venue  string
	Gender Gender
}
