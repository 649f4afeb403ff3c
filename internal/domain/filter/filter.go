// Package filter applies the quality gate to raw finish-time samples.
package filter

import (
	"slices"
)

// Params control the quality gate for one (venue, gender) sample.
type Params struct {
	// LowerBound and UpperBound are inclusive-keep plausibility bounds.
	LowerBound float64
	UpperBound float64

	// TopFraction keeps only the fastest share of a small sample.
	TopFraction float64

	// FullSampleThreshold is the size at or above which the surviving
	// sample is used whole. Zero disables trimming.
	FullSampleThreshold int
}

// Apply drops implausible times and, for samples below the full-sample
// threshold, trims to the fastest floor(n*TopFraction) records. The
// input is not modified; the output is ascending by seconds.
//
// No record is ever excluded on any other basis.
func Apply(p Params, times []float64) []float64 {
	kept := make([]float64, 0, len(times))
	for _, t := range times {
		if t < p.LowerBound || t > p.UpperBound {
			continue
		}
		kept = append(kept, t)
	}
	slices.Sort(kept)

	if p.FullSampleThreshold > 0 && len(kept) < p.FullSampleThreshold {
		kept = kept[:int(float64(len(kept))*p.TopFraction)]
	}
	return kept
}
