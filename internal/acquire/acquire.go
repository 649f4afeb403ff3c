// Package acquire scrapes public race-results listings into the cleaned
// dataset consumed by the correction engine.
//
// A listing site paginates finishers per event and gender. The Fetcher
// walks those pages politely (rate limited, bounded concurrency), parses
// the rows, standardizes venue names through an alias table, and returns
// records ready for CSV export or direct submission to a running service.
package acquire

import (
	"strconv"
	"strings"

	"github.com/okian/coursecorrect/internal/domain/model"
)

// Record is one scraped finisher row after normalization.
type Record struct {
	Venue         string
	Gender        model.Gender
	Rank          int
	Name          string
	Nationality   string
	AgeGroup      string
	FinishTime    string
	FinishSeconds float64
}

// RecordID derives a stable identifier from the row's identity fields so
// that re-running a scrape deduplicates against earlier submissions. Rank
// disambiguates same-named finishers within one venue and gender.
func (r Record) RecordID() string {
	parts := []string{
		slugify(r.Name),
		slugify(r.Venue),
		strings.ToLower(string(r.Gender)),
		strconv.Itoa(r.Rank),
	}
	return strings.Join(parts, "-")
}

// slugify lowercases and strips everything outside [a-z0-9].
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range strings.ToLower(s) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}
