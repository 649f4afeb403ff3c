// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/okian/coursecorrect/internal/adapters/repository"
	"github.com/okian/coursecorrect/internal/domain/correction"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/types"
)

// VenueRow mirrors the read shape returned by venue listings.
type VenueRow = types.VenueRow

// VenueDependencies defines the interface for venue listing operations.
type VenueDependencies interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
}

// VenuesHandler handles venue listing requests.
type VenuesHandler struct {
	deps VenueDependencies
}

// NewVenuesHandler creates a new venues handler.
func NewVenuesHandler(deps VenueDependencies) *VenuesHandler {
	return &VenuesHandler{deps: deps}
}

// HandleGetVenues handles GET /api/venues requests.
func (h *VenuesHandler) HandleGetVenues(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, VenueRows(snap.Table))
}

// VenueRows flattens a correction table into display rows, fastest venue
// first. Rows order by offset seconds (men's entry when present, women's
// otherwise) with the venue name as tiebreak, so the listing is identical
// across recomputes of the same data.
func VenueRows(table *correction.Table) []VenueRow {
	venues := table.Venues()
	rows := make([]VenueRow, 0, len(venues))
	order := make(map[string]float64, len(venues))
	for _, venue := range venues {
		row := VenueRow{
			Venue:      venue,
			Confidence: string(correction.ConfidenceNormal),
			Baseline:   venue == table.Baseline,
		}
		if e, ok := table.Entry(model.GenderMen, venue); ok {
			pct := e.OffsetPct
			row.MenCorrectionPct = &pct
			row.SampleCount += e.SampleCount
			if e.Confidence == correction.ConfidenceLow {
				row.Confidence = string(correction.ConfidenceLow)
			}
			order[venue] = e.OffsetSeconds
		}
		if e, ok := table.Entry(model.GenderWomen, venue); ok {
			pct := e.OffsetPct
			row.WomenCorrectionPct = &pct
			row.SampleCount += e.SampleCount
			if e.Confidence == correction.ConfidenceLow {
				row.Confidence = string(correction.ConfidenceLow)
			}
			if _, seen := order[venue]; !seen {
				order[venue] = e.OffsetSeconds
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		oi, oj := order[rows[i].Venue], order[rows[j].Venue]
		if oi != oj {
			return oi < oj
		}
		return rows[i].Venue < rows[j].Venue
	})
	return rows
}
