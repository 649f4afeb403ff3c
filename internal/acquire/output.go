package acquire

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/coursecorrect/pkg/logger"
)

// csvHeader matches the column names the dataset CSV loader reads, so a
// scrape output can seed the service directly.
var csvHeader = []string{
	"record_id", "venue", "gender", "rank", "name",
	"nationality", "age_group", "finish_time", "finish_seconds",
}

// WriteCSV writes records as a dataset CSV.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.RecordID(),
			r.Venue,
			string(r.Gender),
			strconv.Itoa(r.Rank),
			r.Name,
			r.Nationality,
			r.AgeGroup,
			r.FinishTime,
			strconv.FormatFloat(r.FinishSeconds, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PostReport summarizes a submission run.
type PostReport struct {
	Accepted   int
	Duplicates int
	Failed     int
}

// Poster submits scraped records to a running service's ingest endpoint.
type Poster struct {
	baseURL string
	client  *http.Client
	token   string
	workers int
	logger  logger.Logger
}

// PosterOption applies a configuration option to the Poster.
type PosterOption func(*Poster)

// WithPosterHTTPClient replaces the default HTTP client.
func WithPosterHTTPClient(client *http.Client) PosterOption {
	return func(p *Poster) {
		if client != nil {
			p.client = client
		}
	}
}

// WithPosterToken sets the bearer token for authenticated ingest.
func WithPosterToken(token string) PosterOption {
	return func(p *Poster) {
		p.token = token
	}
}

// WithPosterWorkers sets how many submissions run in parallel.
func WithPosterWorkers(n int) PosterOption {
	return func(p *Poster) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPosterLogger sets a custom logger.
func WithPosterLogger(l logger.Logger) PosterOption {
	return func(p *Poster) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoster builds a Poster for the given service base URL.
func NewPoster(baseURL string, opts ...PosterOption) *Poster {
	p := &Poster{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		workers: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("acquire-post")
	}
	return p
}

// ingestPayload mirrors the ingest endpoint's request schema.
type ingestPayload struct {
	RecordID      string  `json:"record_id"`
	Venue         string  `json:"venue"`
	Gender        string  `json:"gender"`
	FinishSeconds float64 `json:"finish_seconds"`
}

// Post submits every record concurrently. Rejections and transport
// errors on single records are counted, not fatal; only cancellation
// aborts the run.
func (p *Poster) Post(ctx context.Context, records []Record) (PostReport, error) {
	var accepted, duplicates, failed atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, r := range records {
		r := r
		g.Go(func() error {
			outcome, err := p.postOne(gctx, r)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				p.logger.Warn(gctx, "record submission failed",
					logger.String("recordID", r.RecordID()),
					logger.Err(err),
				)
				return nil
			}
			switch outcome {
			case http.StatusAccepted:
				accepted.Add(1)
			case http.StatusOK:
				duplicates.Add(1)
			default:
				failed.Add(1)
				p.logger.Warn(gctx, "record rejected",
					logger.String("recordID", r.RecordID()),
					logger.Int("status", outcome),
				)
			}
			return nil
		})
	}

	err := g.Wait()
	report := PostReport{
		Accepted:   int(accepted.Load()),
		Duplicates: int(duplicates.Load()),
		Failed:     int(failed.Load()),
	}
	p.logger.Info(ctx, "submission finished",
		logger.Int("accepted", report.Accepted),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("failed", report.Failed),
		logger.Duration("elapsed", time.Since(start)),
	)
	return report, err
}

// postOne submits a single record and returns the response status.
func (p *Poster) postOne(ctx context.Context, r Record) (int, error) {
	payload, err := json.Marshal(ingestPayload{
		RecordID:      r.RecordID(),
		Venue:         r.Venue,
		Gender:        string(r.Gender),
		FinishSeconds: r.FinishSeconds,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal record: %w", err)
	}

	url := p.baseURL + "/api/results"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post record: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
