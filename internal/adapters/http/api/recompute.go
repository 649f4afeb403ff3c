// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/coursecorrect/internal/adapters/repository"
)

// RecomputeDependencies defines the interface for forced recomputation.
type RecomputeDependencies interface {
	Recompute(ctx context.Context) error
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
}

// recomputeResponse summarizes the published run.
type recomputeResponse struct {
	Status          string    `json:"status"`
	RunID           string    `json:"run_id"`
	ComputedAt      time.Time `json:"computed_at"`
	BaselineVenue   string    `json:"baseline_venue"`
	VenueCount      int       `json:"venue_count"`
	FilteredRecords int       `json:"filtered_records"`
}

// RecomputeHandler handles forced recomputation requests.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

// HandleRecompute handles POST /api/recompute requests. The run is
// synchronous; a failed run keeps the previous table in place and reports
// the failure without partial state.
func (h *RecomputeHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Recompute(r.Context()); err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, recomputeResponse{
		Status:          "ok",
		RunID:           snap.RunID,
		ComputedAt:      snap.ComputedAt,
		BaselineVenue:   snap.Table.Baseline,
		VenueCount:      len(snap.Table.Venues()),
		FilteredRecords: snap.FilteredCount,
	})
}
