package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"video-tagger/internal/catalog"
	"video-tagger/internal/filesystem"
	"video-tagger/internal/handlers"
	"video-tagger/internal/library"
	"video-tagger/internal/logging"
	"video-tagger/internal/memory"
	"video-tagger/internal/metrics"
	"video-tagger/internal/middleware"
	"video-tagger/internal/startup"

	"github.com/gorilla/mux"
)

const collectInterval = time.Minute

func main() {
	startTime := time.Now()
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	if err := setupLogging(config); err != nil {
		startup.LogFatal("Logging setup error: %v", err)
	}

	ctx := context.Background()

	store, err := startup.OpenStore(ctx, config)
	if err != nil {
		startup.LogFatal("Failed to initialize store: %v", err)
	}

	retry := config.RetryConfig()
	fs := filesystem.NewOS(retry)

	if config.MetricsEnabled {
		filesystem.SetObserver(metrics.NewFilesystemObserver())
		metrics.InitializeMetrics(volumeNames(config), startup.Version, startup.Commit)
	}

	lib := library.New(store, fs, library.Options{Workers: config.AggregateWorkers})
	if stats, err := lib.Stats().GetStats(ctx); err == nil {
		startup.LogCatalogStats(stats.TotalVideos, stats.TotalTags)
	} else {
		logging.Warn("Failed to read catalog stats: %v", err)
	}

	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(lib.Stats(), config.DatabasePath, collectInterval)
		collector.Start()
	}

	h := handlers.New(lib, retry.VolumeResolver)
	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(
		middleware.Compression(middleware.DefaultCompressionConfig())(router),
	)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	go handleShutdown(srv, collector, store, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupLogging(config *startup.Config) error {
	if config.LogLevel != "" {
		logging.SetLevel(logging.ParseLevel(config.LogLevel))
	}
	return logging.Setup(logging.Options{
		File:       config.LogFile,
		MaxSizeMB:  config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
	})
}

func volumeNames(config *startup.Config) []string {
	volumes := config.VolumeMap()
	names := make([]string, 0, len(volumes))
	for name := range volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()
	if config.MetricsEnabled {
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}
	h.RegisterRoutes(r, config.MetricsEnabled)
	return r
}

func handleShutdown(srv *http.Server, collector *metrics.Collector, store catalog.Store, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	startup.LogShutdownStep("Closing store")
	if err := store.Close(); err != nil {
		logging.Warn("Store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Store closed")
	}

	startup.LogShutdownComplete()
}
