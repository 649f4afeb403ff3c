package acquire

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Event describes one race whose listings should be scraped.
//
// Single-day races carry one listing ID. Multi-day races list one ID per
// day under Splits; their rows are consolidated under the event name so
// the engine sees a single venue.
type Event struct {
	// Name is the canonical venue name for every row of this event.
	Name string `yaml:"name"`

	// ID selects the event listing. Superseded by Splits when present.
	ID string `yaml:"id,omitempty"`

	// Group is the listing site's event grouping parameter, needed by
	// venues whose ID is not globally unique.
	Group string `yaml:"group,omitempty"`

	// Splits maps a day label to its listing ID for multi-day races.
	Splits map[string]string `yaml:"splits,omitempty"`
}

// eventFile is the on-disk shape of an event list.
type eventFile struct {
	Events []Event `yaml:"events"`
}

// listingIDs returns the event's listing IDs, one per day for multi-day
// races, in a stable order.
func (e Event) listingIDs() []string {
	if len(e.Splits) == 0 {
		return []string{e.ID}
	}
	days := make([]string, 0, len(e.Splits))
	for day := range e.Splits {
		days = append(days, day)
	}
	sort.Strings(days)
	ids := make([]string, 0, len(days))
	for _, day := range days {
		ids = append(ids, e.Splits[day])
	}
	return ids
}

// validate checks that the entry can actually be scraped.
func (e Event) validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if e.ID == "" && len(e.Splits) == 0 {
		return fmt.Errorf("%w: %s needs an id or splits", ErrInvalidEvent, e.Name)
	}
	for day, id := range e.Splits {
		if id == "" {
			return fmt.Errorf("%w: %s split %s has no id", ErrInvalidEvent, e.Name, day)
		}
	}
	return nil
}

// LoadEvents reads a YAML event list. Unknown fields are rejected so a
// typo in the file surfaces instead of silently skipping a venue.
func LoadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read event list: %w", err)
	}
	return ParseEvents(data)
}

// ParseEvents decodes an event list from YAML bytes.
func ParseEvents(data []byte) ([]Event, error) {
	var file eventFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode event list: %w", err)
	}
	if len(file.Events) == 0 {
		return nil, ErrNoEvents
	}
	for _, e := range file.Events {
		if err := e.validate(); err != nil {
			return nil, err
		}
	}
	return file.Events, nil
}
