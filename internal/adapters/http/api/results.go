// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okian/coursecorrect/internal/adapters/dedupe"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
)

// ResultDependencies defines the interface for result ingestion.
type ResultDependencies interface {
	SubmitResult(ctx context.Context, r model.Result) error
}

// resultRequest mirrors the OpenAPI schema for POST /api/results. Callers
// send either a formatted finish time or raw seconds; a missing record ID
// gets a generated one, which also opts the record out of deduplication.
type resultRequest struct {
	RecordID      string  `json:"record_id" validate:"omitempty,max=128"`
	Venue         string  `json:"venue" validate:"required,max=128"`
	Gender        string  `json:"gender" validate:"required"`
	FinishTime    string  `json:"finish_time" validate:"required_without=FinishSeconds"`
	FinishSeconds float64 `json:"finish_seconds" validate:"omitempty,gt=0"`
}

// toResult resolves the flexible payload into a storable record. Explicit
// seconds win over the formatted time when both are present.
func (req resultRequest) toResult() (model.Result, error) {
	gender, err := model.ParseGender(req.Gender)
	if err != nil {
		return model.Result{}, err
	}
	seconds := req.FinishSeconds
	if seconds == 0 {
		seconds, err = timeparse.ParseToSeconds(req.FinishTime)
		if err != nil {
			return model.Result{}, err
		}
	}
	id := strings.TrimSpace(req.RecordID)
	if id == "" {
		id = uuid.New().String()
	}
	return model.Result{
		ID:            id,
		Venue:         strings.TrimSpace(req.Venue),
		Gender:        gender,
		FinishSeconds: seconds,
	}, nil
}

// ResultsHandler handles result ingestion requests.
type ResultsHandler struct {
	deps     ResultDependencies
	validate *validator.Validate
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{
		deps:     deps,
		validate: validator.New(),
	}
}

// HandlePostResult handles POST /api/results requests.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := req.toResult()
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}

	if err := h.deps.SubmitResult(r.Context(), res); err != nil {
		// A replayed record is acknowledged, not rejected, so retrying
		// producers converge without error handling of their own.
		if errors.Is(err, dedupe.ErrDuplicate) {
			writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RecordID: res.ID})
			return
		}
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RecordID: res.ID})
}
