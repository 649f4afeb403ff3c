// Package baseline selects the reference venue all corrections are
// expressed against.
package baseline

import (
	"sort"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/stats"
)

// Select picks the baseline venue from one recomputation's venue stats.
//
// Candidates are venues with a stat for both genders. Per gender the
// candidates are sorted ascending by that gender's median and the venue
// at index floor(N/2) is picked; ties on the median prefer the larger
// sample, then the lexicographically smaller name. When the two genders
// pick different venues, the gender with the larger total filtered
// sample decides the single shared baseline.
func Select(venueStats []stats.VenueStat) (string, error) {
	byVenue := make(map[string]map[model.Gender]stats.VenueStat)
	totals := make(map[model.Gender]int)
	for _, vs := range venueStats {
		if byVenue[vs.Venue] == nil {
			byVenue[vs.Venue] = make(map[model.Gender]stats.VenueStat)
		}
		byVenue[vs.Venue][vs.Gender] = vs
		totals[vs.Gender] += vs.SampleCount
	}

	var candidates []string
	for venue, genders := range byVenue {
		if _, m := genders[model.GenderMen]; !m {
			continue
		}
		if _, w := genders[model.GenderWomen]; !w {
			continue
		}
		candidates = append(candidates, venue)
	}
	if len(candidates) == 0 {
		return "", ErrNoEligibleBaseline
	}

	picks := make(map[model.Gender]string, 2)
	for _, gender := range model.Genders() {
		picks[gender] = medianVenue(candidates, byVenue, gender)
	}

	if picks[model.GenderMen] == picks[model.GenderWomen] {
		return picks[model.GenderMen], nil
	}
	// Divergent picks: the better-sampled gender decides; men's on a
	// dead-even split so the outcome stays deterministic.
	if totals[model.GenderWomen] > totals[model.GenderMen] {
		return picks[model.GenderWomen], nil
	}
	return picks[model.GenderMen], nil
}

// medianVenue returns the candidate at floor(N/2) of the gender's
// median ordering.
func medianVenue(candidates []string, byVenue map[string]map[model.Gender]stats.VenueStat, gender model.Gender) string {
	ordered := make([]string, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := byVenue[ordered[i]][gender], byVenue[ordered[j]][gender]
		if a.MedianSeconds != b.MedianSeconds {
			return a.MedianSeconds < b.MedianSeconds
		}
		if a.SampleCount != b.SampleCount {
			return a.SampleCount > b.SampleCount
		}
		return ordered[i] < ordered[j]
	})
	return ordered[len(ordered)/2]
}
