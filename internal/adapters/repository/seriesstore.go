package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/pkg/metrics"
)

// In-memory Store implementation.
//
// Raw finish times accumulate per (venue, gender) in append-only
// series. Recomputation reads a copy of the series, builds a
// Snapshot elsewhere, and publishes it here through an atomic
// pointer so readers never block on writers.

// SeriesStore keeps raw result series and the latest snapshot in memory.
type SeriesStore struct {
	mu          sync.RWMutex
	series      map[model.Group][]float64
	recordCount int

	// Interval for background metrics refreshes.
	metricsInterval time.Duration

	// snapshot is an atomic pointer to the latest published Snapshot.
	snapshot atomic.Pointer[Snapshot]

	// Background goroutine management.
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewSeriesStore constructs a series store with configuration options.
func NewSeriesStore(ctx context.Context, opts ...Option) *SeriesStore {
	s := &SeriesStore{
		metricsInterval: 5 * time.Second, // default metrics refresh interval
		series:          make(map[model.Group][]float64),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close gracefully shuts down the background metrics goroutine.
func (s *SeriesStore) Close() error {
	// Signal all goroutines to stop
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Append implements Store.Append.
func (s *SeriesStore) Append(ctx context.Context, r model.Result) error {
	if err := r.Validate(); err != nil {
		return err
	}

	g := model.Group{Venue: r.Venue, Gender: r.Gender}

	s.mu.Lock()
	s.series[g] = append(s.series[g], r.FinishSeconds)
	s.recordCount++
	total := s.recordCount
	s.mu.Unlock()

	// Update metrics outside the lock
	metrics.UpdateRecordsStored(total)
	return nil
}

// BulkLoad implements Store.BulkLoad. Invalid records are skipped so a
// single bad row cannot abort a dataset load.
func (s *SeriesStore) BulkLoad(ctx context.Context, rs []model.Result) (int, error) {
	stored := 0

	s.mu.Lock()
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			continue
		}
		g := model.Group{Venue: r.Venue, Gender: r.Gender}
		s.series[g] = append(s.series[g], r.FinishSeconds)
		s.recordCount++
		stored++
	}
	total := s.recordCount
	s.mu.Unlock()

	metrics.UpdateRecordsStored(total)
	return stored, nil
}

// RawGroups implements Store.RawGroups. The returned map and slices are
// copies; callers may sort and filter them freely.
func (s *SeriesStore) RawGroups(ctx context.Context) map[model.Group][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.Group][]float64, len(s.series))
	for g, times := range s.series {
		cp := make([]float64, len(times))
		copy(cp, times)
		out[g] = cp
	}
	return out
}

// RecordCount implements Store.RecordCount.
func (s *SeriesStore) RecordCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordCount
}

// VenueCount implements Store.VenueCount.
func (s *SeriesStore) VenueCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	venues := make(map[string]struct{}, len(s.series))
	for g := range s.series {
		venues[g.Venue] = struct{}{}
	}
	return len(venues)
}

// Latest implements Store.Latest.
func (s *SeriesStore) Latest(ctx context.Context) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Publish implements Store.Publish.
func (s *SeriesStore) Publish(ctx context.Context, snap *Snapshot) {
	s.snapshot.Store(snap)

	if snap == nil {
		return
	}
	metrics.UpdateSnapshotAge(0)
	metrics.UpdateRecordsFiltered(snap.FilteredCount)
	if snap.Table != nil {
		metrics.UpdateVenuesTracked(len(snap.Table.Venues()))
		for _, g := range model.Genders() {
			metrics.UpdateCorrectionEntries(string(g), snap.Table.EntryCount(g))
		}
	}
}

// startMetricsUpdater starts a background goroutine that refreshes
// repository metrics at the configured interval.
func (s *SeriesStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics refreshes gauges that drift between publishes.
func (s *SeriesStore) updateMetrics() {
	s.mu.RLock()
	recordCount := s.recordCount
	s.mu.RUnlock()

	metrics.UpdateRecordsStored(recordCount)

	if snap := s.snapshot.Load(); snap != nil {
		metrics.UpdateSnapshotAge(time.Since(snap.ComputedAt).Seconds())
	}
}
