// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/coursecorrect/internal/adapters/dataset"
	"github.com/okian/coursecorrect/internal/adapters/dedupe"
	resultqueue "github.com/okian/coursecorrect/internal/adapters/mq/queue"
	workerpool "github.com/okian/coursecorrect/internal/adapters/mq/worker"
	repository "github.com/okian/coursecorrect/internal/adapters/repository"
	"github.com/okian/coursecorrect/internal/domain/convert"
	"github.com/okian/coursecorrect/internal/domain/distribution"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/timeparse"
	"github.com/okian/coursecorrect/pkg/logger"
	"github.com/okian/coursecorrect/pkg/metrics"
)

// EngineParams carries the recomputation tunables.
type EngineParams struct {
	// LowerBound and UpperBound drop implausible finish times.
	LowerBound float64
	UpperBound float64

	// TopFraction keeps only the fastest share of groups smaller than
	// FullSampleThreshold. Zero threshold disables trimming.
	TopFraction         float64
	FullSampleThreshold int

	// LowConfidenceThreshold marks correction entries built from fewer
	// records as low confidence.
	LowConfidenceThreshold int

	// BinWidth sets the distribution histogram bin width in seconds.
	BinWidth float64
}

// Service implements the API dependencies for the correction engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      resultqueue.Queue
	workers    *workerpool.Pool
	recomputer *Recomputer

	// Configuration
	workerCount       int
	queueSize         int
	dedupeSize        int
	engine            EngineParams
	recomputeInterval time.Duration
	exportPath        string
	clock             clockwork.Clock

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the record deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEngineParams sets the recomputation tunables.
func WithEngineParams(p EngineParams) Option {
	return func(s *Service) {
		s.engine = p
	}
}

// WithRecomputeInterval sets how often the engine checks for new data.
func WithRecomputeInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.recomputeInterval = interval
		}
	}
}

// WithExportPath enables the corrections JSON export after every
// successful recompute.
func WithExportPath(path string) Option {
	return func(s *Service) {
		s.exportPath = path
	}
}

// WithClock sets the clock used for snapshot timestamps and the
// recompute ticker.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:   10000,                // Default queue size
		dedupeSize:  100000,               // Default dedupe cache size
		engine: EngineParams{
			LowerBound:             3000,
			UpperBound:             9000,
			TopFraction:            0.8,
			FullSampleThreshold:    0,
			LowConfidenceThreshold: 50,
			BinWidth:               300,
		},
		recomputeInterval: 3 * time.Second,
		clock:             clockwork.NewRealClock(),
		logger:            nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting correction service...")

	// Initialize components
	s.store = repository.NewSeriesStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = resultqueue.NewInMemoryQueue(
		resultqueue.WithCapacity(s.queueSize),
		resultqueue.WithBufferSize(s.queueSize),
	)
	s.recomputer = NewRecomputer(s.store, s.engine,
		WithRecomputerClock(s.clock),
		WithRecomputerInterval(s.recomputeInterval),
		WithRecomputerExportPath(s.exportPath),
	)

	// Create and start the worker pool feeding the store
	s.workers = workerpool.NewPool(s.workerCount, s.queue, s.store, s.recomputer)
	s.workers.Start(ctx)
	s.recomputer.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "correction service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("recomputeInterval", s.recomputeInterval),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping correction service...")

	// Shut down the worker pool; it closes the queue and drains it
	if s.workers != nil {
		_ = s.workers.Shutdown(ctx)
	}

	// Stop the recompute loop
	if s.recomputer != nil {
		s.recomputer.Stop()
	}

	// Close the store
	if s.store != nil {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(ctx, "correction service stopped")
}

// SubmitResult validates, deduplicates and queues one result for
// asynchronous storage. Duplicates return dedupe.ErrDuplicate; a full
// or closed queue returns the queue sentinel.
func (s *Service) SubmitResult(ctx context.Context, r model.Result) error {
	if err := r.Validate(); err != nil {
		metrics.RecordRecordRejected()
		return err
	}

	if s.deduper.SeenAndRecord(ctx, r.ID) {
		metrics.RecordRecordDuplicate()
		return fmt.Errorf("record %s: %w", r.ID, dedupe.ErrDuplicate)
	}

	if !s.queue.Enqueue(ctx, r) {
		// Unrecord so the producer can retry the same record later.
		s.deduper.Unrecord(ctx, r.ID)
		if s.queue.IsClosed() {
			return resultqueue.ErrQueueClosed
		}
		return resultqueue.ErrQueueFull
	}

	metrics.RecordRecordIngested()
	return nil
}

// Convert translates a finish time between venues using the published
// correction table.
func (s *Service) Convert(ctx context.Context, gender model.Gender, finishTime, fromVenue, toVenue string) (convert.Result, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return convert.Result{}, err
	}

	result, err := convert.ConvertTime(snap.Table, gender, finishTime, fromVenue, toVenue)
	if err != nil {
		switch {
		case errors.Is(err, timeparse.ErrInvalidTime):
			metrics.RecordConversion(metrics.ConversionInvalidTime)
		case errors.Is(err, convert.ErrUnknownVenue):
			metrics.RecordConversion(metrics.ConversionUnknownVenue)
		}
		return convert.Result{}, err
	}

	metrics.RecordConversion(metrics.ConversionOK)
	return result, nil
}

// Snapshot returns the latest published snapshot.
func (s *Service) Snapshot(ctx context.Context) (*repository.Snapshot, error) {
	return s.store.Latest(ctx)
}

// Distribution bins the snapshot's filtered finish times, optionally
// restricted to a set of venues and genders.
func (s *Service) Distribution(ctx context.Context, sel distribution.Selection) (distribution.Histogram, error) {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return distribution.Histogram{}, err
	}

	p := distribution.Params{
		LowerBound: s.engine.LowerBound,
		UpperBound: s.engine.UpperBound,
		BinWidth:   s.engine.BinWidth,
	}
	return distribution.Compute(p, snap.Groups, sel), nil
}

// Recompute forces a synchronous recomputation run.
func (s *Service) Recompute(ctx context.Context) error {
	return s.recomputer.RunNow(ctx)
}

// LoadDataset bulk loads a seed dataset and recomputes once.
func (s *Service) LoadDataset(ctx context.Context, src dataset.Source) error {
	results, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	stored, err := s.store.BulkLoad(ctx, results)
	if err != nil {
		return fmt.Errorf("store dataset: %w", err)
	}

	s.logger.Info(ctx, "dataset loaded",
		logger.Int("rows", len(results)),
		logger.Int("stored", stored),
	)

	if stored == 0 {
		return nil
	}
	return s.recomputer.RunNow(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["recordsStored"] = s.store.RecordCount(ctx)
		stats["venuesTracked"] = s.store.VenueCount(ctx)
		stats["dedupeEntries"] = s.Size()

		if snap, err := s.store.Latest(ctx); err == nil {
			stats["snapshotRunID"] = snap.RunID
			stats["snapshotAgeSeconds"] = s.clock.Now().Sub(snap.ComputedAt).Seconds()
			stats["baselineVenue"] = snap.Table.Baseline
			stats["recordsFiltered"] = snap.FilteredCount
		}
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
