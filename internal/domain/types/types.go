// Package types contains common types used across the application
package types

// VenueRow is one row of the venue correction listing. The percentage
// fields are pointers so a gender with no recorded results renders as
// null instead of a misleading zero.
type VenueRow struct {
	Venue              string   `json:"venue"`
	MenCorrectionPct   *float64 `json:"men_correction_pct"`
	WomenCorrectionPct *float64 `json:"women_correction_pct"`
	SampleCount        int      `json:"sample_count"`
	Confidence         string   `json:"confidence"`
	Baseline           bool     `json:"baseline"`
}
