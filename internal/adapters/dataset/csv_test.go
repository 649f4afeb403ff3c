package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okian/coursecorrect/internal/domain/model"
	"github.com/okian/coursecorrect/pkg/logger"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCSVSourceLoad(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	path := writeCSV(t, `record_id,venue,gender,finish_seconds
rec-1,Maastricht,M,4800
rec-2,London,W,4900.5
rec-3,Berlin,men,4500
`)

	results, err := NewCSVSource(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, "rec-1", results[0].ID)
	require.Equal(t, "Maastricht", results[0].Venue)
	require.Equal(t, model.GenderMen, results[0].Gender)
	require.InDelta(t, 4800.0, results[0].FinishSeconds, 1e-9)

	require.Equal(t, model.GenderWomen, results[1].Gender)
	require.InDelta(t, 4900.5, results[1].FinishSeconds, 1e-9)

	require.Equal(t, model.GenderMen, results[2].Gender)
}

func TestCSVSourceLoadFinishTime(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	path := writeCSV(t, `venue,gender,finish_time
Maastricht,M,1:20:00
London,W,45:30
`)

	results, err := NewCSVSource(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.InDelta(t, 4800.0, results[0].FinishSeconds, 1e-9)
	require.InDelta(t, 2730.0, results[1].FinishSeconds, 1e-9)

	// Missing record IDs are generated.
	require.NotEmpty(t, results[0].ID)
	require.Len(t, results[0].ID, 36)
}

func TestCSVSourceSecondsWinOverTime(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	path := writeCSV(t, `venue,gender,finish_time,finish_seconds
Maastricht,M,1:00:00,4800
`)

	results, err := NewCSVSource(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.InDelta(t, 4800.0, results[0].FinishSeconds, 1e-9)
}

func TestCSVSourceToleratesExtraColumns(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	// Source exports carry listing columns the engine does not use.
	path := writeCSV(t, `place,name,nationality,venue,age_group,GENDER,Finish_Seconds
1,A. Runner,NED,Maastricht,M35,M,4800
2,B. Runner,GBR,London,W30,W,4900
`)

	results, err := NewCSVSource(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "Maastricht", results[0].Venue)
	require.Equal(t, model.GenderWomen, results[1].Gender)
}

func TestCSVSourceSkipsInvalidRows(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	path := writeCSV(t, `venue,gender,finish_seconds,finish_time
Maastricht,M,4800,
,M,4500,
London,X,4900,
Berlin,W,not-a-number,
Rotterdam,M,,bad-time
Hamburg,W,,-1:00
Valencia,W,5100,
`)

	results, err := NewCSVSource(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "Maastricht", results[0].Venue)
	require.Equal(t, "Valencia", results[1].Venue)
}

func TestCSVSourceHeaderErrors(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing venue column",
			content: "gender,finish_seconds\nM,4800\n",
		},
		{
			name:    "missing gender column",
			content: "venue,finish_seconds\nMaastricht,4800\n",
		},
		{
			name:    "missing finish columns",
			content: "venue,gender\nMaastricht,M\n",
		},
		{
			name:    "header only",
			content: "venue,gender,finish_seconds\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.content)
			_, err := NewCSVSource(path).Load(ctx)
			require.Error(t, err)
		})
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	require.NoError(t, logger.Init())
	ctx := context.Background()

	_, err := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv")).Load(ctx)
	require.Error(t, err)
}
