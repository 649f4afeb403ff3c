// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/coursecorrect/internal/adapters/mq/queue"
	"github.com/okian/coursecorrect/internal/adapters/repository"
	"github.com/okian/coursecorrect/internal/domain/baseline"
	"github.com/okian/coursecorrect/internal/domain/convert"
	"github.com/okian/coursecorrect/internal/domain/distribution"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the application service.
type Dependencies interface {
	// Convert translates a finish time between venues on the published table.
	Convert(ctx context.Context, gender model.Gender, finishTime, fromVenue, toVenue string) (convert.Result, error)

	// Snapshot returns the latest published correction snapshot.
	Snapshot(ctx context.Context) (*repository.Snapshot, error)

	// Distribution bins the snapshot's filtered finish times for a selection.
	Distribution(ctx context.Context, sel distribution.Selection) (distribution.Histogram, error)

	// SubmitResult validates, deduplicates and queues one result.
	SubmitResult(ctx context.Context, r model.Result) error

	// Recompute forces a synchronous recomputation run.
	Recompute(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	convertHandler      *ConvertHandler
	venuesHandler       *VenuesHandler
	distributionHandler *DistributionHandler
	analysisHandler     *AnalysisHandler
	resultsHandler      *ResultsHandler
	recomputeHandler    *RecomputeHandler
	statsHandler        *StatsHandler
	healthHandler       *HealthHandler
	dashboardHandler    *dashboardHandler
	auth                AuthConfig
}

// NewServer creates a new API server with all handlers. An AuthConfig with
// an empty secret leaves the write endpoints unguarded.
func NewServer(deps Dependencies, statsProvider StatsProvider, auth AuthConfig) *Server {
	return &Server{
		convertHandler:      NewConvertHandler(deps),
		venuesHandler:       NewVenuesHandler(deps),
		distributionHandler: NewDistributionHandler(deps),
		analysisHandler:     NewAnalysisHandler(deps),
		resultsHandler:      NewResultsHandler(deps),
		recomputeHandler:    NewRecomputeHandler(deps),
		statsHandler:        NewStatsHandler(statsProvider),
		healthHandler:       NewHealthHandler(),
		dashboardHandler:    newDashboardHandler(),
		auth:                auth,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/api/convert", MetricsMiddleware(s.convertHandler.HandleConvert, "convert"))
	mux.HandleFunc("/api/venues", MetricsMiddleware(s.venuesHandler.HandleGetVenues, "venues"))
	mux.HandleFunc("/api/distribution", MetricsMiddleware(s.distributionHandler.HandleGetDistribution, "distribution"))
	mux.HandleFunc("/api/analysis", MetricsMiddleware(s.analysisHandler.HandleGetAnalysis, "analysis"))
	mux.HandleFunc("/api/results", MetricsMiddleware(s.auth.Wrap(s.resultsHandler.HandlePostResult), "results"))
	mux.HandleFunc("/api/recompute", MetricsMiddleware(s.auth.Wrap(s.recomputeHandler.HandleRecompute), "recompute"))
	mux.HandleFunc("/api/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

// ackResponse acknowledges an ingested result.
type ackResponse struct {
	Status   string `json:"status"`
	RecordID string `json:"record_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor translates domain sentinels into an HTTP status and a stable
// machine-readable code. Unknown errors stay 500 so callers never see a
// misleading client-error status for a server fault.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, timeparse.ErrInvalidTime):
		return http.StatusBadRequest, "invalid_time"
	case errors.Is(err, model.ErrInvalidGender):
		return http.StatusBadRequest, "invalid_gender"
	case errors.Is(err, model.ErrInvalidRecord):
		return http.StatusBadRequest, "invalid_record"
	case errors.Is(err, convert.ErrUnknownVenue):
		return http.StatusNotFound, "unknown_venue"
	case errors.Is(err, repository.ErrNoSnapshot):
		return http.StatusServiceUnavailable, "no_snapshot"
	case errors.Is(err, baseline.ErrNoEligibleBaseline):
		return http.StatusServiceUnavailable, "no_eligible_baseline"
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrQueueClosed):
		return http.StatusServiceUnavailable, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
