package testresults

import "time"

// Config holds configuration for the correction engine test.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumResults int           // Total number of results to generate
	Token      string        // Bearer token for the write endpoints
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated results
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// Result is one synthetic finish time to be submitted.
type Result struct {
	RecordID      string  `json:"record_id"`
	Venue         string  `json:"venue"`
	Gender        string  `json:"gender"`
	FinishSeconds float64 `json:"finish_seconds"`
}

// AckResponse represents the response from result submission.
type AckResponse struct {
	Status   string `json:"status"`
	RecordID string `json:"record_id"`
}

// VenueRow represents one row of the venue correction listing.
type VenueRow struct {
	Venue              string   `json:"venue"`
	MenCorrectionPct   *float64 `json:"men_correction_pct"`
	WomenCorrectionPct *float64 `json:"women_correction_pct"`
	SampleCount        int      `json:"sample_count"`
	Confidence         string   `json:"confidence"`
	Baseline           bool     `json:"baseline"`
}

// ConvertResponse represents the response from a conversion request.
type ConvertResponse struct {
	OriginalTime     string  `json:"original_time"`
	OriginalSeconds  float64 `json:"original_seconds"`
	Gender           string  `json:"gender"`
	FromVenue        string  `json:"from_venue"`
	ToVenue          string  `json:"to_venue"`
	ConvertedTime    string  `json:"converted_time"`
	ConvertedSeconds float64 `json:"converted_seconds"`
	TimeDifference   float64 `json:"time_difference"`
	Faster           bool    `json:"faster"`
}

// RecomputeResponse represents the response from a forced recomputation.
type RecomputeResponse struct {
	Status          string `json:"status"`
	RunID           string `json:"run_id"`
	BaselineVenue   string `json:"baseline_venue"`
	VenueCount      int    `json:"venue_count"`
	FilteredRecords int    `json:"filtered_records"`
}

// Stats holds test statistics.
type Stats struct {
	ResultsGenerated  int
	ResultsSubmitted  int
	ResultsSuccessful int
	ResultsDuplicate  int
	ResultsFailed     int
	ReplaysSubmitted  int
	ReplaysConfirmed  int
	ChecksRun         int
	ChecksFailed      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
