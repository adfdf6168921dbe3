package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/pitwall/internal/adapters/cache"
	"github.com/okian/pitwall/internal/adapters/http/api"
	"github.com/okian/pitwall/internal/adapters/http/swagger"
	"github.com/okian/pitwall/internal/adapters/source"
	"github.com/okian/pitwall/internal/adapters/source/ergast"
	"github.com/okian/pitwall/internal/adapters/source/f1pro"
	"github.com/okian/pitwall/internal/adapters/source/openf1"
	"github.com/okian/pitwall/internal/adapters/source/wikipedia"
	app "github.com/okian/pitwall/internal/app"
	"github.com/okian/pitwall/internal/config"
	"github.com/okian/pitwall/internal/facade"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second // season ranges walk many upstream pages
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var _ facade.Reconciler = (*app.Service)(nil)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := cache.New(
		cache.WithSweepInterval(cfg.SweepInterval()),
		cache.WithLogger(logger.Named("cache")),
	)
	if err != nil {
		loggerInstance.Error(ctx, "failed to create cache", logger.Error(err))
		return
	}
	defer store.Close()

	svc := newService(cfg, store)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, facade.New(svc, facade.WithMaxSeasonSpan(cfg.MaxSeasonSpan))),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService wires every upstream adapter into the reconciliation service.
func newService(cfg *config.Config, store *cache.MemoryStore) *app.Service {
	fetcher := func(name, accept string) *source.Fetcher {
		return source.NewFetcher(name,
			source.WithTimeout(cfg.HTTPTimeout()),
			source.WithUserAgent(cfg.UserAgent),
			source.WithAccept(accept),
		)
	}

	historical := ergast.New(
		ergast.WithBaseURL(cfg.HistoricalBaseURL),
		ergast.WithFetcher(fetcher("ergast", "application/json")),
	)
	live := openf1.New(
		openf1.WithBaseURL(cfg.LiveBaseURL),
		openf1.WithFetcher(fetcher("openf1", "application/json")),
	)
	schedule := wikipedia.NewScheduleScraper(
		wikipedia.WithBaseURL(cfg.WikipediaBaseURL),
		wikipedia.WithFetcher(fetcher("wikipedia-schedule", "text/html")),
	)
	sessions := wikipedia.NewSessionScraper(
		wikipedia.WithBaseURL(cfg.WikipediaBaseURL),
		wikipedia.WithFetcher(fetcher("wikipedia-sessions", "text/html")),
	)
	fanSite := f1pro.New(
		f1pro.WithURL(cfg.FanSiteURL),
		f1pro.WithFetcher(fetcher("f1pro", "text/html")),
	)

	return app.New(
		app.WithLogger(logger.Named("reconciler")),
		app.WithCache(store),
		app.WithHistorical(historical),
		app.WithLive(live),
		app.WithScheduleSources(schedule, fanSite),
		app.WithSessionSource(sessions),
		app.WithTTLs(cfg.ClosedSeasonTTL(), cfg.CurrentSeasonTTL(), cfg.DriversTTL()),
		app.WithLastClosedSeason(cfg.LastClosedSeason),
		app.WithScrapeSeasons(cfg.ScrapeSeasons...),
		app.WithBatchSize(cfg.BatchSize),
		app.WithBatchDelays(cfg.BatchDelay(), cfg.SeasonBatchDelay()),
	)
}

// newMux registers the docs and API routes.
func newMux(ctx context.Context, f *facade.Facade) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(f, f).Register(ctx, mux)
	return mux
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

// startServiceMetricsUpdater publishes cache stats on a timer so the
// gauges move even when nobody asks for them.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := svc.CacheStats()
			logger.Get().Debug(ctx, "cache stats",
				logger.Int("total", st.Total),
				logger.Int("active", st.Active),
				logger.Int("expired", st.Expired))
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
