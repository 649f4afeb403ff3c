// Package convert translates finish times between venues using a
// correction table.
package convert

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/coursecorrect/internal/domain/correction"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
)

// Target aliases that resolve to the baseline venue.
const (
	AliasNormalized = "normalized"
	AliasBaseline   = "baseline"
)

// Result is one completed conversion.
type Result struct {
	Gender            model.Gender
	FromVenue         string
	ToVenue           string
	OriginalSeconds   float64
	ConvertedSeconds  float64
	DifferenceSeconds float64
	Faster            bool
}

// Convert re-expresses a finish time recorded at one venue as the
// equivalent time at another. The identity holds exactly when both
// venues resolve to the same name.
func Convert(table *correction.Table, gender model.Gender, seconds float64, from, to string) (Result, error) {
	if !timeparse.ValidSeconds(seconds) {
		return Result{}, fmt.Errorf("%w: %v seconds", timeparse.ErrInvalidTime, seconds)
	}

	from = strings.TrimSpace(from)
	to = resolveAlias(table, to)

	if from == to {
		return Result{
			Gender:           gender,
			FromVenue:        from,
			ToVenue:          to,
			OriginalSeconds:  seconds,
			ConvertedSeconds: seconds,
		}, nil
	}

	fromOffset, ok := table.Offset(gender, from)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q (%s)", ErrUnknownVenue, from, gender)
	}
	toOffset, ok := table.Offset(gender, to)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q (%s)", ErrUnknownVenue, to, gender)
	}

	converted := seconds - fromOffset + toOffset
	return Result{
		Gender:            gender,
		FromVenue:         from,
		ToVenue:           to,
		OriginalSeconds:   seconds,
		ConvertedSeconds:  converted,
		DifferenceSeconds: math.Abs(converted - seconds),
		Faster:            converted < seconds,
	}, nil
}

// ConvertTime is Convert for a finish-time string.
func ConvertTime(table *correction.Table, gender model.Gender, finishTime, from, to string) (Result, error) {
	seconds, err := timeparse.ParseToSeconds(finishTime)
	if err != nil {
		return Result{}, err
	}
	return Convert(table, gender, seconds, from, to)
}

// resolveAlias maps the baseline aliases (and the empty target) to the
// table's baseline venue.
func resolveAlias(table *correction.Table, venue string) string {
	switch strings.ToLower(strings.TrimSpace(venue)) {
	case "", AliasNormalized, AliasBaseline:
		return table.Baseline
	default:
		return strings.TrimSpace(venue)
	}
}
