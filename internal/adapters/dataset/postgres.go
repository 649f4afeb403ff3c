package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/pkg/logger"
)

const resultsQuery = `SELECT venue, gender, finish_seconds FROM race_results`

// Querier is the subset of pgxpool.Pool the source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads results from a race_results table.
type PostgresSource struct {
	pool   Querier
	logger logger.Logger
}

// NewPostgresSource builds a Source reading from the given pool.
func NewPostgresSource(pool Querier) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		logger: logger.Get().Named("dataset-postgres"),
	}
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context) ([]model.Result, error) {
	rows, err := s.pool.Query(ctx, resultsQuery)
	if err != nil {
		return nil, fmt.Errorf("query race_results: %w", err)
	}
	defer rows.Close()

	var results []model.Result
	skipped := 0
	for rows.Next() {
		var (
			venue   string
			gender  string
			seconds float64
		)
		if scanErr := rows.Scan(&venue, &gender, &seconds); scanErr != nil {
			return nil, fmt.Errorf("scan race_results row: %w", scanErr)
		}

		result, convErr := rawRecord{Venue: venue, Gender: gender, FinishSeconds: seconds}.toResult()
		if convErr != nil {
			skipped++
			s.logger.Debug(ctx, "skipping invalid row", logger.Err(convErr))
			continue
		}
		results = append(results, result)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate race_results rows: %w", rowsErr)
	}

	if skipped > 0 {
		s.logger.Warn(ctx, "skipped invalid dataset rows",
			logger.Int("skipped", skipped),
			logger.Int("loaded", len(results)),
		)
	}
	return results, nil
}
