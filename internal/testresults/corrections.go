package testresults

import (
	"context"
	"fmt"
	"log"
	"time"
)

// waitForIngestDrain polls the stats endpoint until the ingest queue is
// empty, so a forced recomputation sees every submitted record. Bounded
// by DrainTimeout; a slow drain fails the run rather than hanging it.
func waitForIngestDrain(ctx context.Context, config *Config) error {
	log.Printf("⏳ Waiting for the ingest queue to drain...")

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/api/stats"
	deadline := time.Now().Add(DrainTimeout)

	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("ingest queue did not drain within %s", DrainTimeout)
		}

		length, stored, err := readQueueStats(ctx, client, url)
		if err != nil {
			return fmt.Errorf("failed to read service stats: %w", err)
		}
		if length == 0 {
			log.Printf("✅ Ingest queue drained (%d records stored)", stored)
			return nil
		}

		if config.Verbose {
			log.Printf("📊 Queue length: %d", length)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while draining: %w", ctx.Err())
		case <-time.After(DrainPollInterval):
		}
	}
}

// readQueueStats fetches the queue length and stored-record count.
func readQueueStats(ctx context.Context, client *HTTPClient, url string) (length, stored int, err error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return 0, 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	// The stats payload mixes numbers, strings and booleans.
	var payload map[string]any
	if err := unmarshalJSON(body, &payload); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	queueLen, ok := payload["queueLength"].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("stats payload has no queue length")
	}
	recordsStored, _ := payload["recordsStored"].(float64)
	return int(queueLen), int(recordsStored), nil
}

// triggerRecompute forces a synchronous recomputation and returns the
// published run summary.
func triggerRecompute(ctx context.Context, config *Config) (*RecomputeResponse, error) {
	log.Printf("🔄 Forcing a recomputation run...")

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/api/recompute"

	resp, err := client.Post(ctx, url, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rec RecomputeResponse
	if err := unmarshalJSON(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Printf("✅ Recompute published run %s (baseline: %s, venues: %d, records: %d)",
		rec.RunID, rec.BaselineVenue, rec.VenueCount, rec.FilteredRecords)
	return &rec, nil
}

// fetchVenueRows retrieves the published venue correction listing.
func fetchVenueRows(ctx context.Context, config *Config) ([]VenueRow, error) {
	log.Printf("📋 Fetching the venue correction listing...")

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/api/venues"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rows []VenueRow
	if err := unmarshalJSON(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Printf("✅ Retrieved %d venue rows", len(rows))
	return rows, nil
}

// convertRequest mirrors the conversion endpoint's request schema.
type convertRequest struct {
	FinishTime string `json:"finish_time"`
	Gender     string `json:"gender"`
	FromVenue  string `json:"from_venue"`
	ToVenue    string `json:"to_venue"`
}

// convertTime asks the service to convert a finish time between venues.
func convertTime(ctx context.Context, client *HTTPClient, baseURL, gender, finishTime, from, to string) (*ConvertResponse, error) {
	resp, err := client.Post(ctx, baseURL+"/api/convert", convertRequest{
		FinishTime: finishTime,
		Gender:     gender,
		FromVenue:  from,
		ToVenue:    to,
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var conv ConvertResponse
	if err := unmarshalJSON(body, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &conv, nil
}

// formatSeconds renders whole seconds as a "H:MM:SS" finish time.
func formatSeconds(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}
