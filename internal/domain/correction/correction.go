// Package correction builds the venue correction table from venue stats.
package correction

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/stats"
)

// Confidence grades how well-sampled a correction entry is. Advisory
// only; it never blocks a conversion.
type Confidence string

const (
	ConfidenceNormal Confidence = "normal"
	ConfidenceLow    Confidence = "low"
)

// Entry is the correction for one (venue, gender).
type Entry struct {
	Venue         string
	Gender        model.Gender
	OffsetSeconds float64
	OffsetPct     float64
	SampleCount   int
	Confidence    Confidence
}

// Table is the immutable product of one calculator run. Regenerated
// whole, never patched.
type Table struct {
	Baseline        string
	BaselineMedians map[model.Gender]float64
	entries         map[model.Gender]map[string]Entry
}

// Build computes an entry for every (venue, gender) with a stat.
// Offsets are expressed against the baseline venue's median for the
// same gender; the baseline's own entries are exactly zero. Entries
// below lowConfidenceThreshold records are graded low.
func Build(baselineVenue string, venueStats []stats.VenueStat, lowConfidenceThreshold int) (*Table, error) {
	medians := make(map[model.Gender]float64, 2)
	for _, vs := range venueStats {
		if vs.Venue == baselineVenue {
			medians[vs.Gender] = vs.MedianSeconds
		}
	}

	t := &Table{
		Baseline:        baselineVenue,
		BaselineMedians: medians,
		entries:         make(map[model.Gender]map[string]Entry, 2),
	}
	for _, vs := range venueStats {
		base, ok := medians[vs.Gender]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s median", ErrMissingBaseline, baselineVenue, vs.Gender)
		}

		offset := vs.MedianSeconds - base
		if vs.Venue == baselineVenue {
			offset = 0
		}

		entry := Entry{
			Venue:         vs.Venue,
			Gender:        vs.Gender,
			OffsetSeconds: offset,
			OffsetPct:     offsetPct(offset, base),
			SampleCount:   vs.SampleCount,
			Confidence:    ConfidenceNormal,
		}
		if vs.SampleCount < lowConfidenceThreshold {
			entry.Confidence = ConfidenceLow
		}

		if t.entries[vs.Gender] == nil {
			t.entries[vs.Gender] = make(map[string]Entry)
		}
		t.entries[vs.Gender][vs.Venue] = entry
	}
	return t, nil
}

// offsetPct converts an absolute offset into the display percentage:
// positive means the venue runs faster than the baseline. Rounded to
// one decimal; magnitudes under 0.05 collapse to exactly 0.0 so the
// zero never renders signed.
func offsetPct(offsetSeconds, baselineMedian float64) float64 {
	raw := -(offsetSeconds / baselineMedian) * 100
	if math.Abs(raw) < 0.05 {
		return 0.0
	}
	return math.Round(raw*10) / 10
}

// Entry looks up the correction for a venue and gender.
func (t *Table) Entry(gender model.Gender, venue string) (Entry, bool) {
	e, ok := t.entries[gender][venue]
	return e, ok
}

// Offset returns the offset seconds for a venue and gender.
func (t *Table) Offset(gender model.Gender, venue string) (float64, bool) {
	e, ok := t.entries[gender][venue]
	return e.OffsetSeconds, ok
}

// Entries returns the gender's entries keyed by venue.
func (t *Table) Entries(gender model.Gender) map[string]Entry {
	return t.entries[gender]
}

// Venues returns every venue with at least one entry, sorted by name.
func (t *Table) Venues() []string {
	seen := make(map[string]struct{})
	for _, byVenue := range t.entries {
		for venue := range byVenue {
			seen[venue] = struct{}{}
		}
	}
	venues := make([]string, 0, len(seen))
	for venue := range seen {
		venues = append(venues, venue)
	}
	sort.Strings(venues)
	return venues
}

// EntryCount returns the number of entries for a gender.
func (t *Table) EntryCount(gender model.Gender) int {
	return len(t.entries[gender])
}
