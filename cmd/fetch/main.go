// Command fetch scrapes public race-results listings into a dataset CSV
// and, optionally, straight into a running service's ingest endpoint.
//
// Usage:
//
//	go run ./cmd/fetch \
//	  -events events.yaml \
//	  -out results.csv \
//	  -post http://localhost:8080 -token $INGEST_TOKEN
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/coursecorrect/internal/acquire"
	"github.com/okian/coursecorrect/pkg/logger"
)

// Scrape defaults. One request per second with two events in flight is
// polite enough to never trip the listing site's throttling.
const (
	defaultBaseURL     = "https://results.hyrox.com/season-8/"
	defaultRate        = 1.0
	defaultBurst       = 1
	defaultConcurrency = 2
	defaultTimeout     = 30 * time.Second
)

func main() {
	var (
		baseURL     = flag.String("base-url", defaultBaseURL, "Base URL of the results listing site")
		eventsPath  = flag.String("events", "", "YAML event list to scrape (required)")
		aliasesPath = flag.String("aliases", "", "Venue alias override file (YAML)")
		outPath     = flag.String("out", "results.csv", "Output CSV path")
		postURL     = flag.String("post", "", "Base URL of a running service to submit records to")
		token       = flag.String("token", "", "Bearer token for authenticated ingest")
		topN        = flag.Int("top-n", 0, "Keep at most N records per event and gender (0 = no cap)")
		topFraction = flag.Float64("top-fraction", 0.8, "Keep the leading share of each field by rank (0 disables)")
		perPage     = flag.Int("per-page", 50, "Results requested per listing page")
		maxPages    = flag.Int("max-pages", 0, "Page cap per listing and gender (0 = scraper default)")
		reqRate     = flag.Float64("rate", defaultRate, "Sustained requests per second")
		concurrency = flag.Int("concurrency", defaultConcurrency, "Events scraped in parallel")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *eventsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := fetchConfig{
		baseURL:     *baseURL,
		eventsPath:  *eventsPath,
		aliasesPath: *aliasesPath,
		outPath:     *outPath,
		postURL:     *postURL,
		token:       *token,
		topN:        *topN,
		topFraction: *topFraction,
		perPage:     *perPage,
		maxPages:    *maxPages,
		rate:        *reqRate,
		concurrency: *concurrency,
		timeout:     *timeout,
	}
	if code := run(ctx, cfg); code != 0 {
		os.Exit(code)
	}
}

type fetchConfig struct {
	baseURL     string
	eventsPath  string
	aliasesPath string
	outPath     string
	postURL     string
	token       string
	topN        int
	topFraction float64
	perPage     int
	maxPages    int
	rate        float64
	concurrency int
	timeout     time.Duration
}

func run(ctx context.Context, cfg fetchConfig) int {
	log := logger.Named("fetch")

	events, err := acquire.LoadEvents(cfg.eventsPath)
	if err != nil {
		log.Error(ctx, "event list unusable", logger.Err(err))
		return 1
	}

	aliases := acquire.DefaultAliases()
	if cfg.aliasesPath != "" {
		aliases, err = acquire.LoadAliases(cfg.aliasesPath)
		if err != nil {
			log.Error(ctx, "alias table unusable", logger.Err(err))
			return 1
		}
	}

	fetcher := acquire.NewFetcher(cfg.baseURL,
		acquire.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
		acquire.WithRateLimit(cfg.rate, defaultBurst),
		acquire.WithAliases(aliases),
		acquire.WithPerPage(cfg.perPage),
		acquire.WithMaxPages(cfg.maxPages),
		acquire.WithTopFraction(cfg.topFraction),
		acquire.WithTopN(cfg.topN),
		acquire.WithConcurrency(cfg.concurrency),
		acquire.WithFetcherLogger(log),
	)

	log.Info(ctx, "scrape starting",
		logger.Int("events", len(events)),
		logger.String("baseURL", cfg.baseURL),
	)
	records, fetchErr := fetcher.FetchAll(ctx, events)
	if fetchErr != nil {
		log.Warn(ctx, "scrape incomplete", logger.Err(fetchErr))
	}
	if len(records) == 0 {
		log.Error(ctx, "nothing scraped")
		return 1
	}
	log.Info(ctx, "scrape finished", logger.Int("records", len(records)))

	if err := writeCSVFile(cfg.outPath, records); err != nil {
		log.Error(ctx, "csv export failed", logger.Err(err))
		return 1
	}
	log.Info(ctx, "dataset written",
		logger.String("path", cfg.outPath),
		logger.Int("records", len(records)),
	)

	if cfg.postURL != "" {
		poster := acquire.NewPoster(cfg.postURL,
			acquire.WithPosterHTTPClient(&http.Client{Timeout: cfg.timeout}),
			acquire.WithPosterToken(cfg.token),
			acquire.WithPosterWorkers(cfg.concurrency*2),
			acquire.WithPosterLogger(log),
		)
		report, err := poster.Post(ctx, records)
		if err != nil {
			log.Error(ctx, "submission aborted", logger.Err(err))
			return 1
		}
		if report.Failed > 0 {
			log.Warn(ctx, "some records were not accepted",
				logger.Int("failed", report.Failed))
			return 1
		}
	}

	if fetchErr != nil {
		return 1
	}
	return 0
}

// writeCSVFile writes records to path, creating or truncating it.
func writeCSVFile(path string, records []acquire.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := acquire.WriteCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
