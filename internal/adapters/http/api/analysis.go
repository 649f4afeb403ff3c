// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/coursecorrect/internal/adapters/repository"
	"github.com/okian/coursecorrect/internal/domain/distribution"
)

// AnalysisDependencies defines the interface for the analysis report.
type AnalysisDependencies interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
	Distribution(ctx context.Context, sel distribution.Selection) (distribution.Histogram, error)
}

// analysisResponse aggregates per-venue statistics, the overall time
// distribution and snapshot provenance into one report payload.
type analysisResponse struct {
	RunID           string               `json:"run_id"`
	ComputedAt      time.Time            `json:"computed_at"`
	BaselineVenue   string               `json:"baseline_venue"`
	TotalVenues     int                  `json:"total_venues"`
	FilteredRecords int                  `json:"filtered_records"`
	FastestVenue    string               `json:"fastest_venue"`
	SlowestVenue    string               `json:"slowest_venue"`
	Venues          []venueAnalysis      `json:"venues"`
	Distribution    distributionResponse `json:"distribution"`
}

// venueAnalysis is one per-venue per-gender stat row.
type venueAnalysis struct {
	Venue         string             `json:"venue"`
	Gender        string             `json:"gender"`
	SampleCount   int                `json:"sample_count"`
	MeanSeconds   float64            `json:"mean_seconds"`
	MedianSeconds float64            `json:"median_seconds"`
	Percentiles   map[string]float64 `json:"percentiles"`
	CorrectionPct float64            `json:"correction_pct"`
	Confidence    string             `json:"confidence"`
}

// AnalysisHandler handles analysis report requests.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandleGetAnalysis handles GET /api/analysis requests.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	hist, err := h.deps.Distribution(r.Context(), distribution.Selection{})
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}

	venues := make([]venueAnalysis, 0, len(snap.VenueStats))
	for _, vs := range snap.VenueStats {
		row := venueAnalysis{
			Venue:         vs.Venue,
			Gender:        string(vs.Gender),
			SampleCount:   vs.SampleCount,
			MeanSeconds:   vs.MeanSeconds,
			MedianSeconds: vs.MedianSeconds,
			Percentiles:   make(map[string]float64, len(vs.Percentiles)),
		}
		for _, pt := range vs.Percentiles {
			row.Percentiles[fmt.Sprintf("p%d", pt.P)] = pt.Seconds
		}
		if e, ok := snap.Table.Entry(vs.Gender, vs.Venue); ok {
			row.CorrectionPct = e.OffsetPct
			row.Confidence = string(e.Confidence)
		}
		venues = append(venues, row)
	}

	resp := analysisResponse{
		RunID:           snap.RunID,
		ComputedAt:      snap.ComputedAt,
		BaselineVenue:   snap.Table.Baseline,
		TotalVenues:     len(snap.Table.Venues()),
		FilteredRecords: snap.FilteredCount,
		Venues:          venues,
		Distribution:    toDistributionResponse(hist),
	}
	if rows := VenueRows(snap.Table); len(rows) > 0 {
		resp.FastestVenue = rows[0].Venue
		resp.SlowestVenue = rows[len(rows)-1].Venue
	}
	writeJSON(w, http.StatusOK, resp)
}
