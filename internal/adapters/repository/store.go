// Package repository stores raw result series and the published
// correction snapshot.
package repository

import (
	"context"
	"time"

	"github.com/okian/coursecorrect/internal/domain/correction"
	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/internal/domain/stats"
)

// Snapshot is the immutable publication unit of one recomputation run.
// Readers always see a fully-old or fully-new snapshot, never a mix.
type Snapshot struct {
	// RunID identifies the recomputation run that produced this snapshot.
	RunID string

	// ComputedAt is when the run finished.
	ComputedAt time.Time

	// Table holds the corrections the run produced.
	Table *correction.Table

	// VenueStats carries the per-(venue, gender) statistics.
	VenueStats []stats.VenueStat

	// Groups holds the filtered finish times per (venue, gender),
	// ascending. Distribution and analysis reads serve from here.
	Groups map[model.Group][]float64

	// FilteredCount is the total number of records that survived the
	// quality filter across all groups.
	FilteredCount int
}

// Store provides read/write access to the result series and the
// published snapshot.
type Store interface {
	// Append adds one validated result to its (venue, gender) series.
	Append(ctx context.Context, r model.Result) error

	// BulkLoad appends many results at once, skipping invalid ones.
	// Returns the number of records stored.
	BulkLoad(ctx context.Context, rs []model.Result) (int, error)

	// RawGroups returns a copy of every (venue, gender) series.
	RawGroups(ctx context.Context) map[model.Group][]float64

	// RecordCount returns the total number of raw records stored.
	RecordCount(ctx context.Context) int

	// VenueCount returns the number of distinct venues stored.
	VenueCount(ctx context.Context) int

	// Latest returns the most recently published snapshot.
	// Returns ErrNoSnapshot before the first successful run.
	Latest(ctx context.Context) (*Snapshot, error)

	// Publish atomically swaps in a new snapshot.
	Publish(ctx context.Context, snap *Snapshot)
}
