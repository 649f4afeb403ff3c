// Package distribution bins filtered finish times into fixed-width
// histograms.
package distribution

import (
	"slices"
	"sort"

	"github.com/okian/coursecorrect/internal/domain/model"
)

// Params fix the histogram geometry.
type Params struct {
	// LowerBound and UpperBound span the binned range.
	LowerBound float64
	UpperBound float64

	// BinWidth is the fixed bin width in seconds.
	BinWidth float64
}

// Bin is one histogram bucket. Start is inclusive; End is exclusive
// except for the final bin, whose upper edge is inclusive so a time
// exactly at the upper bound is counted.
type Bin struct {
	Start float64
	End   float64
	Count int
}

// Histogram is the binned view of a selection of filtered groups.
type Histogram struct {
	Bins       []Bin
	TotalCount int
}

// Selection restricts the histogram to certain venues and/or genders.
// Empty slices mean no restriction.
type Selection struct {
	Venues  []string
	Genders []model.Gender
}

// Compute bins the filtered finish times of every group matching the
// selection. Pure function of its inputs.
func Compute(p Params, groups map[model.Group][]float64, sel Selection) Histogram {
	bins := makeBins(p)

	total := 0
	for group, times := range groups {
		if !sel.matches(group) {
			continue
		}
		for _, t := range times {
			i := binIndex(p, bins, t)
			if i < 0 {
				continue
			}
			bins[i].Count++
			total++
		}
	}
	return Histogram{Bins: bins, TotalCount: total}
}

// makeBins lays out the fixed-width bins spanning [lower, upper]. The
// last bin is clamped to the upper bound when the range is not an
// exact multiple of the width.
func makeBins(p Params) []Bin {
	var bins []Bin
	for start := p.LowerBound; start < p.UpperBound; start += p.BinWidth {
		end := start + p.BinWidth
		if end > p.UpperBound {
			end = p.UpperBound
		}
		bins = append(bins, Bin{Start: start, End: end})
	}
	return bins
}

// binIndex places a time, or returns -1 when it falls outside the span.
func binIndex(p Params, bins []Bin, t float64) int {
	if t < p.LowerBound || t > p.UpperBound {
		return -1
	}
	i := int((t - p.LowerBound) / p.BinWidth)
	if i >= len(bins) {
		// Exactly the upper bound lands in the final, inclusive bin.
		i = len(bins) - 1
	}
	return i
}

func (s Selection) matches(g model.Group) bool {
	if len(s.Venues) > 0 && !slices.Contains(s.Venues, g.Venue) {
		return false
	}
	if len(s.Genders) > 0 && !slices.Contains(s.Genders, g.Gender) {
		return false
	}
	return true
}

// GroupVenues lists the distinct venues present in a group map, sorted.
func GroupVenues(groups map[model.Group][]float64) []string {
	seen := make(map[string]struct{})
	for g := range groups {
		seen[g.Venue] = struct{}{}
	}
	venues := make([]string, 0, len(seen))
	for v := range seen {
		venues = append(venues, v)
	}
	sort.Strings(venues)
	return venues
}
