// Package stats derives per-venue descriptive statistics from filtered samples.
package stats

import (
	"fmt"

	"github.com/okian/coursecorrect/internal/domain/model"
)

// Ladder is the percentile ladder computed for every venue stat.
var Ladder = []int{10, 25, 50, 75, 90}

// PercentilePoint is one rung of the ladder.
type PercentilePoint struct {
	P       int
	Seconds float64
}

// VenueStat summarizes one filtered (venue, gender) sample. Derived,
// recomputed whole, never hand-edited.
type VenueStat struct {
	Venue         string
	Gender        model.Gender
	SampleCount   int
	MedianSeconds float64
	MeanSeconds   float64
	Percentiles   []PercentilePoint
}

// Compute builds the VenueStat for a filtered sample. The sample must
// already be ascending by seconds, which is how the quality filter
// emits it. An empty sample yields ErrInsufficientData.
func Compute(venue string, gender model.Gender, sorted []float64) (VenueStat, error) {
	n := len(sorted)
	if n == 0 {
		return VenueStat{}, fmt.Errorf("%w: %s/%s", ErrInsufficientData, venue, gender)
	}

	sum := 0.0
	for _, t := range sorted {
		sum += t
	}

	ladder := make([]PercentilePoint, 0, len(Ladder))
	for _, p := range Ladder {
		ladder = append(ladder, PercentilePoint{P: p, Seconds: Quantile(sorted, float64(p)/100)})
	}

	return VenueStat{
		Venue:         venue,
		Gender:        gender,
		SampleCount:   n,
		MedianSeconds: Median(sorted),
		MeanSeconds:   sum / float64(n),
		Percentiles:   ladder,
	}, nil
}

// Median returns the middle value of an ascending sample, averaging the
// two middle values for even counts.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Quantile returns the q-th quantile (0 <= q <= 1) of an ascending
// sample using linear interpolation between closest ranks. At q = 0.5
// it equals Median exactly.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Percentile returns the ladder value for p, or false if p is not a rung.
func (v VenueStat) Percentile(p int) (float64, bool) {
	for _, pt := range v.Percentiles {
		if pt.P == p {
			return pt.Seconds, true
		}
	}
	return 0, false
}
