package testresults

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/coursecorrect/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the test results tool.
func ShowHelp() {
	os.Stdout.WriteString(`Correction Engine Test Tool
===========================

A concurrent tool for exercising the venue correction engine end to end.
It submits synthetic finish times with planted venue offsets, forces a
recomputation, and verifies that the published corrections recover the
planted offsets exactly.

Usage:
  go run cmd/test-results/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -results int
        Total number of results to generate and submit (default 10000)
  -token string
        Bearer token for the write endpoints (default none)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated results (default: generated_results_TIMESTAMP.json)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-results/main.go

  # Test with custom parameters
  go run cmd/test-results/main.go -results 50000 -workers 16 -url http://localhost:8080

  # Test against a service with ingest auth enabled
  go run cmd/test-results/main.go -token $INGEST_TOKEN

  # Test with custom log file
  go run cmd/test-results/main.go -results 50000 -log my_test.log

The verification checks expect a freshly started service with an empty
store; pre-existing records shift the medians and sample counts.
`)
}
