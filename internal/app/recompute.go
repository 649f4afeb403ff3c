package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	repository "github.com/okian/coursecorrect/internal/adapters/repository"
	"github.com/okian/coursecorrect/internal/domain/baseline"
	"github.com/okian/coursecorrect/internal/domain/correction"
	"github.com/okian/coursecorrect/internal/domain/filter"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/stats"
	"github.com/okian/coursecorrect/pkg/logger"
	"github.com/okian/coursecorrect/pkg/metrics"
)

// Recomputer owns the filter, aggregate, baseline and correction batch
// run. It wakes on a ticker and recomputes only when data changed since
// the last run, so ingest bursts coalesce into a single run.
type Recomputer struct {
	store      repository.Store
	params     EngineParams
	clock      clockwork.Clock
	interval   time.Duration
	exportPath string

	// dirty is set by workers on every stored result and cleared when
	// a run starts.
	dirty atomic.Bool

	// runMu serializes batch runs between the ticker and RunNow.
	runMu sync.Mutex

	// Background goroutine management.
	stopCh chan struct{}
	wg     sync.WaitGroup

	logger logger.Logger
}

// RecomputerOption applies a configuration option to the Recomputer.
type RecomputerOption func(*Recomputer)

// WithRecomputerClock sets the clock driving the ticker and snapshot
// timestamps.
func WithRecomputerClock(clock clockwork.Clock) RecomputerOption {
	return func(r *Recomputer) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithRecomputerInterval sets the dirty-check interval.
func WithRecomputerInterval(interval time.Duration) RecomputerOption {
	return func(r *Recomputer) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithRecomputerExportPath enables the corrections JSON export.
func WithRecomputerExportPath(path string) RecomputerOption {
	return func(r *Recomputer) {
		r.exportPath = path
	}
}

// WithRecomputerLogger sets a custom logger.
func WithRecomputerLogger(l logger.Logger) RecomputerOption {
	return func(r *Recomputer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecomputer constructs a Recomputer over the given store.
func NewRecomputer(store repository.Store, params EngineParams, opts ...RecomputerOption) *Recomputer {
	r := &Recomputer{
		store:    store,
		params:   params,
		clock:    clockwork.NewRealClock(),
		interval: 3 * time.Second,
		stopCh:   make(chan struct{}),
		logger:   logger.Get().Named("recompute"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// MarkDirty flags that stored data changed since the last run.
func (r *Recomputer) MarkDirty() {
	r.dirty.Store(true)
}

// Start launches the background dirty-check loop.
func (r *Recomputer) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := r.clock.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.Chan():
				if !r.dirty.CompareAndSwap(true, false) {
					continue
				}
				if err := r.run(ctx); err != nil {
					r.logger.Error(ctx, "recompute failed", logger.Err(err))
				}
			}
		}
	}()
}

// Stop shuts down the background loop.
func (r *Recomputer) Stop() {
	select {
	case <-r.stopCh:
		// Channel already closed
	default:
		close(r.stopCh)
	}
	r.wg.Wait()
}

// RunNow forces a synchronous run regardless of the dirty flag.
func (r *Recomputer) RunNow(ctx context.Context) error {
	r.dirty.Store(false)
	return r.run(ctx)
}

// run executes one batch recomputation and publishes the snapshot.
// A failed run leaves the previous snapshot in place.
func (r *Recomputer) run(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	start := time.Now()

	groups := r.store.RawGroups(ctx)

	fp := filter.Params{
		LowerBound:          r.params.LowerBound,
		UpperBound:          r.params.UpperBound,
		TopFraction:         r.params.TopFraction,
		FullSampleThreshold: r.params.FullSampleThreshold,
	}

	filtered := make(map[model.Group][]float64, len(groups))
	venueStats := make([]stats.VenueStat, 0, len(groups))
	filteredCount := 0
	for g, times := range groups {
		kept := filter.Apply(fp, times)
		stat, err := stats.Compute(g.Venue, g.Gender, kept)
		if err != nil {
			// Groups with no usable records are skipped, not fatal.
			continue
		}
		filtered[g] = kept
		venueStats = append(venueStats, stat)
		filteredCount += len(kept)
	}

	baselineVenue, err := baseline.Select(venueStats)
	if err != nil {
		metrics.RecordRecomputeRun(metrics.RecomputeFailed)
		return fmt.Errorf("select baseline: %w", err)
	}

	table, err := correction.Build(baselineVenue, venueStats, r.params.LowConfidenceThreshold)
	if err != nil {
		metrics.RecordRecomputeRun(metrics.RecomputeFailed)
		return fmt.Errorf("build corrections: %w", err)
	}

	// Deterministic snapshot order: venue, then gender.
	sort.Slice(venueStats, func(i, j int) bool {
		if venueStats[i].Venue != venueStats[j].Venue {
			return venueStats[i].Venue < venueStats[j].Venue
		}
		return venueStats[i].Gender < venueStats[j].Gender
	})

	snap := &repository.Snapshot{
		RunID:         uuid.New().String(),
		ComputedAt:    r.clock.Now(),
		Table:         table,
		VenueStats:    venueStats,
		Groups:        filtered,
		FilteredCount: filteredCount,
	}
	r.store.Publish(ctx, snap)

	elapsedMs := float64(time.Since(start).Milliseconds())
	metrics.RecordRecomputeRun(metrics.RecomputeOK)
	metrics.RecordRecomputeDuration(elapsedMs)

	r.logger.Info(ctx, "correction table published",
		logger.String("runID", snap.RunID),
		logger.String("baseline", baselineVenue),
		logger.Int("venues", len(table.Venues())),
		logger.Int("filteredRecords", filteredCount),
		logger.Float64("durationMs", elapsedMs),
	)

	if r.exportPath != "" {
		if exportErr := r.export(table); exportErr != nil {
			r.logger.Warn(ctx, "corrections export failed", logger.Err(exportErr))
		}
	}

	return nil
}

// correctionsExport is the on-disk shape of the published table.
type correctionsExport struct {
	Baseline string             `json:"baseline"`
	Men      map[string]float64 `json:"men"`
	Women    map[string]float64 `json:"women"`
}

// export writes the correction table as JSON, atomically via rename.
func (r *Recomputer) export(table *correction.Table) error {
	doc := correctionsExport{
		Baseline: table.Baseline,
		Men:      make(map[string]float64),
		Women:    make(map[string]float64),
	}
	for venue, entry := range table.Entries(model.GenderMen) {
		doc.Men[venue] = entry.OffsetSeconds
	}
	for venue, entry := range table.Entries(model.GenderWomen) {
		doc.Women[venue] = entry.OffsetSeconds
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corrections: %w", err)
	}

	tmp := r.exportPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write corrections: %w", err)
	}
	if err := os.Rename(tmp, r.exportPath); err != nil {
		return fmt.Errorf("publish corrections file: %w", err)
	}
	return nil
}
