// Package dedupe suppresses duplicate result submissions by record ID.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of record IDs kept in memory.
// Positive values bound the deduper with oldest-first eviction;
// zero or negative values disable eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
