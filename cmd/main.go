package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/coursecorrect/internal/adapters/dataset"
	"github.com/okian/coursecorrect/internal/adapters/http/api"
	"github.com/okian/coursecorrect/internal/adapters/http/site"
	"github.com/okian/coursecorrect/internal/adapters/http/swagger"
	mqkafka "github.com/okian/coursecorrect/internal/adapters/mq/kafka"
	service "github.com/okian/coursecorrect/internal/app"
	"github.com/okian/coursecorrect/internal/config"
	"github.com/okian/coursecorrect/pkg/logger"
	"github.com/okian/coursecorrect/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the system metrics updater below covers what the dashboard needs.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Logger isn't available yet, write straight to stderr.
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Err(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithEngineParams(service.EngineParams{
			LowerBound:             cfg.LowerBoundSeconds,
			UpperBound:             cfg.UpperBoundSeconds,
			TopFraction:            cfg.TopFraction,
			FullSampleThreshold:    cfg.FullSampleThreshold,
			LowConfidenceThreshold: cfg.LowConfidenceThreshold,
			BinWidth:               cfg.BinWidthSeconds,
		}),
		service.WithRecomputeInterval(time.Duration(cfg.RecomputeIntervalMS)*time.Millisecond),
		service.WithExportPath(cfg.CorrectionsExportPath),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Seed the store before serving traffic. A failed load is not fatal:
	// the service still ingests and recomputes from live submissions.
	if err := loadSeedDataset(ctx, cfg, svc); err != nil {
		log.Warn(ctx, "seed dataset load failed", logger.Err(err))
	}

	// Optional Kafka ingest alongside HTTP.
	if cfg.KafkaEnabled {
		reader := mqkafka.NewReader(cfg.Brokers(), cfg.KafkaGroupID, cfg.KafkaTopic)
		defer func() {
			_ = reader.Close()
		}()
		consumer := mqkafka.NewConsumer(reader, svc)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error(ctx, "kafka consumer stopped", logger.Err(err))
			}
		}()
		log.Info(ctx, "kafka consumer started",
			logger.String("topic", cfg.KafkaTopic),
			logger.String("groupID", cfg.KafkaGroupID),
		)
	}

	// Background metrics updaters.
	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// API docs under /swagger
	swagger.Register(ctx, mux)

	// Business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, api.AuthConfig{
		Secret: cfg.AuthSecret,
		Issuer: cfg.AuthIssuer,
	})
	apiServer.Register(ctx, mux)

	// Converter front-end owns the root subtree.
	site.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Err(err))
	}

	log.Info(ctx, "server stopped")
}

// loadSeedDataset bulk loads the configured dataset source, if any, and
// triggers the first recomputation.
func loadSeedDataset(ctx context.Context, cfg *config.Config, svc *service.Service) error {
	switch cfg.DatasetSource {
	case config.DatasetNone:
		return nil
	case config.DatasetCSV:
		return svc.LoadDataset(ctx, dataset.NewCSVSource(cfg.DatasetCSVPath))
	case config.DatasetPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		return svc.LoadDataset(ctx, dataset.NewPostgresSource(pool))
	default:
		return nil
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics publishes service counters as gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if stored, ok := stats["recordsStored"].(int); ok {
		metrics.UpdateRecordsStored(stored)
	}
	if venues, ok := stats["venuesTracked"].(int); ok {
		metrics.UpdateVenuesTracked(venues)
	}
	if filtered, ok := stats["recordsFiltered"].(int); ok {
		metrics.UpdateRecordsFiltered(filtered)
	}
	if age, ok := stats["snapshotAgeSeconds"].(float64); ok {
		metrics.UpdateSnapshotAge(age)
	}
}
