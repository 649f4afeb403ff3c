package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/pkg/logger"
)

// Column names recognized in dataset CSV headers. Matching is
// case-insensitive and extra columns are ignored.
const (
	colRecordID      = "record_id"
	colVenue         = "venue"
	colGender        = "gender"
	colFinishTime    = "finish_time"
	colFinishSeconds = "finish_seconds"
)

// CSVSource loads results from a header-addressed CSV file.
type CSVSource struct {
	path   string
	logger logger.Logger
}

// NewCSVSource builds a Source reading from the given file path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger.Get().Named("dataset-csv"),
	}
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) ([]model.Result, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may carry trailing extras
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset csv %s: %w", s.path, err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", s.path)
	}

	header := all[0]
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	if _, ok := index[colVenue]; !ok {
		return nil, fmt.Errorf("dataset csv %s: missing required column %q", s.path, colVenue)
	}
	if _, ok := index[colGender]; !ok {
		return nil, fmt.Errorf("dataset csv %s: missing required column %q", s.path, colGender)
	}
	_, hasSeconds := index[colFinishSeconds]
	_, hasTime := index[colFinishTime]
	if !hasSeconds && !hasTime {
		return nil, fmt.Errorf("dataset csv %s: missing %q or %q column", s.path, colFinishSeconds, colFinishTime)
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	results := make([]model.Result, 0, len(all)-1)
	skipped := 0
	for i, row := range all[1:] {
		lineNum := i + 2

		raw := rawRecord{
			ID:         field(row, colRecordID),
			Venue:      field(row, colVenue),
			Gender:     field(row, colGender),
			FinishTime: field(row, colFinishTime),
		}
		if v := field(row, colFinishSeconds); v != "" {
			seconds, parseErr := strconv.ParseFloat(v, 64)
			if parseErr != nil {
				skipped++
				s.logger.Debug(ctx, "skipping row with bad finish_seconds",
					logger.Int("line", lineNum),
					logger.String("value", v),
				)
				continue
			}
			raw.FinishSeconds = seconds
		}

		result, convErr := raw.toResult()
		if convErr != nil {
			skipped++
			s.logger.Debug(ctx, "skipping invalid row",
				logger.Int("line", lineNum),
				logger.Err(convErr),
			)
			continue
		}
		results = append(results, result)
	}

	if skipped > 0 {
		s.logger.Warn(ctx, "skipped invalid dataset rows",
			logger.String("path", s.path),
			logger.Int("skipped", skipped),
			logger.Int("loaded", len(results)),
		)
	}
	return results, nil
}
