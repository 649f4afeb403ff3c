package testresults

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with a timeout and optional bearer token.
type HTTPClient struct {
	client *http.Client
	token  string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration, token string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		token: token,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body. The bearer token is
// attached when configured; the read endpoints ignore it.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON.
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct.
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitResults submits results concurrently using worker pools.
func submitResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	log.Printf("📤 Submitting %d results with %d workers...", len(results), config.Workers)

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/api/results"

	// Counters for statistics
	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	// Progress reporting
	var lastReport atomic.Int64
	lastReport.Store(time.Now().UnixNano())
	reportInterval := 1 * time.Second

	// Create worker pool
	resultChan := make(chan Result, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for result := range resultChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcome := submitSingleResult(ctx, client, url, result)

					// Update counters
					atomic.AddInt64(&submitted, 1)
					switch outcome {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					// Progress reporting
					now := time.Now()
					if last := lastReport.Load(); now.UnixNano()-last >= int64(reportInterval) &&
						lastReport.CompareAndSwap(last, now.UnixNano()) {
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
								total, len(results), succ, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(results), succ, dup, fail)
						}
					}
				}
			}
		}(i)
	}

	// Send results to workers
	go func() {
		defer close(resultChan)
		for _, result := range results {
			select {
			case <-ctx.Done():
				return
			case resultChan <- result:
			}
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	// Update stats
	stats.ResultsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ResultsSuccessful = int(atomic.LoadInt64(&successful))
	stats.ResultsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ResultsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Result submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, stats.ResultsSuccessful, stats.ResultsDuplicate, stats.ResultsFailed)

	return nil
}

// submitSingleResult submits a single result and returns the outcome.
func submitSingleResult(ctx context.Context, client *HTTPClient, url string, result Result) string {
	resp, err := client.Post(ctx, url, result)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	// Parse response based on status code
	switch resp.StatusCode {
	case StatusAccepted:
		// Accepted - new result
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "accepted" {
			return "success"
		}
		return "success" // Assume success for 202 even if parsing fails
	case StatusOK:
		// OK - duplicate result
		var ack AckResponse
		if err := unmarshalJSON(body, &ack); err == nil && ack.Status == "duplicate" {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		// Error
		return "failed"
	}
}

// replaySample resubmits a sample of already-accepted results and checks
// that every one of them is acknowledged as a duplicate rather than
// stored twice.
func replaySample(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	sample := len(results)
	if sample > ReplaySampleSize {
		sample = ReplaySampleSize
	}
	if sample == 0 {
		return fmt.Errorf("no results to replay")
	}

	log.Printf("🔁 Replaying %d results to confirm deduplication...", sample)

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/api/results"

	confirmed := 0
	for _, result := range results[:sample] {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during replay: %w", ctx.Err())
		default:
		}
		if outcome := submitSingleResult(ctx, client, url, result); outcome == "duplicate" {
			confirmed++
		} else if config.Verbose {
			log.Printf("⚠️  Replay of %s came back %s, expected duplicate", result.RecordID, outcome)
		}
	}

	stats.ReplaysSubmitted = sample
	stats.ReplaysConfirmed = confirmed

	if confirmed != sample {
		log.Printf("⚠️  Replay check: %d/%d acknowledged as duplicates", confirmed, sample)
		return fmt.Errorf("replay check failed: %d of %d resubmissions were not deduplicated", sample-confirmed, sample)
	}

	log.Printf("✅ Replay check passed: %d/%d acknowledged as duplicates", confirmed, sample)
	return nil
}
