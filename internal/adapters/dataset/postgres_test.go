package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/pkg/logger"
)

// fakeRows implements pgx.Rows over fixed (venue, gender, seconds) rows.
type fakeRows struct {
	rows    [][3]any
	index   int
	rowsErr error
	scanErr error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.rowsErr }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { return r.index < len(r.rows) }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.rows[r.index]
	r.index++

	*(dest[0].(*string)) = row[0].(string)
	*(dest[1].(*string)) = row[1].(string)
	*(dest[2].(*float64)) = row[2].(float64)
	return nil
}

type fakeQuerier struct {
	rows     pgx.Rows
	queryErr error
	lastSQL  string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	return q.rows, nil
}

func TestPostgresSourceLoad(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	querier := &fakeQuerier{rows: &fakeRows{rows: [][3]any{
		{"Maastricht", "M", 4800.0},
		{"London", "female", 4900.5},
		{"Berlin", "X", 4500.0}, // bad gender, skipped
		{"", "M", 4500.0},       // blank venue, skipped
		{"Rotterdam", "M", 0.0}, // non-positive time, skipped
	}}}

	results, err := NewPostgresSource(querier).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, resultsQuery, querier.lastSQL)
	require.Len(t, results, 2)

	require.Equal(t, "Maastricht", results[0].Venue)
	require.Equal(t, model.GenderMen, results[0].Gender)
	require.InDelta(t, 4800.0, results[0].FinishSeconds, 1e-9)
	require.NotEmpty(t, results[0].ID)

	require.Equal(t, model.GenderWomen, results[1].Gender)
}

func TestPostgresSourceQueryError(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	querier := &fakeQuerier{queryErr: errors.New("connection refused")}

	_, err := NewPostgresSource(querier).Load(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "query race_results")
}

func TestPostgresSourceScanError(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	querier := &fakeQuerier{rows: &fakeRows{
		rows:    [][3]any{{"Maastricht", "M", 4800.0}},
		scanErr: errors.New("type mismatch"),
	}}

	_, err := NewPostgresSource(querier).Load(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "scan race_results")
}

func TestPostgresSourceRowsError(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	querier := &fakeQuerier{rows: &fakeRows{
		rows:    [][3]any{{"Maastricht", "M", 4800.0}},
		rowsErr: errors.New("broken stream"),
	}}

	_, err := NewPostgresSource(querier).Load(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "iterate race_results")
}
