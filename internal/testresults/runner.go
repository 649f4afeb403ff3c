package testresults

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/coursecorrect/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete correction engine test: generate a dataset
// with planted venue offsets, push it through the ingest pipeline, force
// a recomputation and verify everything the engine publishes.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting correction engine test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("results", config.NumResults),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate results with planted offsets
	results, truth, err := generateResults(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("result generation failed: %w", err)
	}

	// Step 3: Submit results concurrently
	if err := submitResults(ctx, config, results, stats); err != nil {
		return fmt.Errorf("result submission failed: %w", err)
	}

	// Step 4: Replay a sample to confirm deduplication
	if err := replaySample(ctx, config, results, stats); err != nil {
		return fmt.Errorf("deduplication check failed: %w", err)
	}

	// Step 5: Wait for the ingest queue to drain
	if err := waitForIngestDrain(ctx, config); err != nil {
		return fmt.Errorf("ingest drain failed: %w", err)
	}

	// Step 6: Force a recomputation
	rec, err := triggerRecompute(ctx, config)
	if err != nil {
		return fmt.Errorf("recompute failed: %w", err)
	}

	// Step 7: Fetch the published venue listing
	rows, err := fetchVenueRows(ctx, config)
	if err != nil {
		return fmt.Errorf("venue listing retrieval failed: %w", err)
	}
	displayCorrectionTable(rows)

	// Step 8: Verify the published corrections against the plan
	if err := verifyCorrections(ctx, config, truth, rec, rows, stats); err != nil {
		return fmt.Errorf("correction verification failed: %w", err)
	}

	// Step 9: Save generated results to file
	if err := saveResultsToFile(ctx, config, results); err != nil {
		logger.Get().Warn(ctx, "failed to save results to file", logger.Err(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout, config.Token)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Err(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveResultsToFile saves the generated results to a JSON file.
func saveResultsToFile(ctx context.Context, config *Config, results []Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_results_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write results to file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Err(err))
		}
	}()

	// Write JSON array
	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}

	for i, result := range results {
		jsonData, err := marshalJSON(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result %d: %w", i, err)
		}

		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write result %d: %w", i, err)
		}

		// Add comma except for last result
		if i < len(results)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}

	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, resultsPerSecond float64

	if stats.ResultsSubmitted > 0 {
		successRate = float64(stats.ResultsSuccessful) / float64(stats.ResultsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		resultsPerSecond = float64(stats.ResultsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("resultsGenerated", stats.ResultsGenerated),
		logger.Int("resultsSubmitted", stats.ResultsSubmitted),
		logger.Int("resultsSuccessful", stats.ResultsSuccessful),
		logger.Int("resultsDuplicate", stats.ResultsDuplicate),
		logger.Int("resultsFailed", stats.ResultsFailed),
		logger.Int("replaysConfirmed", stats.ReplaysConfirmed),
		logger.Int("checksRun", stats.ChecksRun),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("resultsPerSecond", resultsPerSecond))
}
