// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/coursecorrect/internal/domain/distribution"
)

// DistributionDependencies defines the interface for histogram queries.
type DistributionDependencies interface {
	Distribution(ctx context.Context, sel distribution.Selection) (distribution.Histogram, error)
}

// distributionResponse mirrors the OpenAPI schema for GET /api/distribution.
type distributionResponse struct {
	Bins       []binResponse `json:"bins"`
	TotalCount int           `json:"total_count"`
}

type binResponse struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// DistributionHandler handles histogram requests.
type DistributionHandler struct {
	deps DistributionDependencies
}

// NewDistributionHandler creates a new distribution handler.
func NewDistributionHandler(deps DistributionDependencies) *DistributionHandler {
	return &DistributionHandler{deps: deps}
}

// HandleGetDistribution handles GET /api/distribution?venue=&gender= requests.
// Both filters are repeatable and accept comma-separated lists; no filter
// means the whole filtered dataset.
func (h *DistributionHandler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	genders, err := parseGenders(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_gender", err)
		return
	}
	sel := distribution.Selection{
		Venues:  queryValues(q, "venue"),
		Genders: genders,
	}
	hist, err := h.deps.Distribution(r.Context(), sel)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, toDistributionResponse(hist))
}

func toDistributionResponse(hist distribution.Histogram) distributionResponse {
	resp := distributionResponse{
		Bins:       make([]binResponse, 0, len(hist.Bins)),
		TotalCount: hist.TotalCount,
	}
	for _, b := range hist.Bins {
		resp.Bins = append(resp.Bins, binResponse{Start: b.Start, End: b.End, Count: b.Count})
	}
	return resp
}
