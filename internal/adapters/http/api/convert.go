// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/coursecorrect/internal/domain/convert"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
)

// ConvertDependencies defines the interface for conversion operations.
type ConvertDependencies interface {
	Convert(ctx context.Context, gender model.Gender, finishTime, fromVenue, toVenue string) (convert.Result, error)
}

// convertRequest mirrors the OpenAPI schema for POST /api/convert.
// An empty, "normalized" or "baseline" to_venue targets the baseline venue.
type convertRequest struct {
	FinishTime string `json:"finish_time"`
	Gender     string `json:"gender"`
	FromVenue  string `json:"from_venue"`
	ToVenue    string `json:"to_venue"`
}

// convertResponse carries both raw seconds and display strings so clients
// never reimplement time formatting.
type convertResponse struct {
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

// ConvertHandler handles conversion requests.
type ConvertHandler struct {
	deps ConvertDependencies
}

// NewConvertHandler creates a new convert handler.
func NewConvertHandler(deps ConvertDependencies) *ConvertHandler {
	return &ConvertHandler{deps: deps}
}

// HandleConvert handles POST /api/convert requests.
func (h *ConvertHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	gender, err := model.ParseGender(req.Gender)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_gender", err)
		return
	}
	res, err := h.deps.Convert(r.Context(), gender, req.FinishTime, req.FromVenue, req.ToVenue)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		OriginalTime:     timeparse.Format(res.OriginalSeconds),
		OriginalSeconds:  res.OriginalSeconds,
		Gender:           string(res.Gender),
		FromVenue:        res.FromVenue,
		ToVenue:          res.ToVenue,
		ConvertedTime:    timeparse.Format(res.ConvertedSeconds),
		ConvertedSeconds: res.ConvertedSeconds,
		TimeDifference:   res.DifferenceSeconds,
		Faster:           res.Faster,
	})
}
