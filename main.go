package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"video-renditions/internal/handlers"
	"video-renditions/internal/logging"
	"video-renditions/internal/metrics"
	"video-renditions/internal/middleware"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/progress"
	"video-renditions/internal/renditions"
	"video-renditions/internal/startup"
	"video-renditions/internal/workers"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	if err := startup.LoadEnvFiles(); err != nil {
		startup.LogFatal("Environment error: %v", err)
	}

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	var presets *pipeline.Presets
	if config.PipelinesFile != "" {
		presets, err = pipeline.LoadPresets(config.PipelinesFile)
		if err != nil {
			startup.LogFatal("Failed to load pipeline presets: %v", err)
		}
		names := make([]string, 0)
		for _, spec := range presets.All() {
			names = append(names, spec.Name)
		}
		startup.LogPresetsLoaded(config.PipelinesFile, names)
	}

	startup.LogTranscoderInit(config, workers.Resolve(config.Workers))
	reporter := progress.NewLogReporter(logging.NewSink("progress"))
	service, err := renditions.FromConfig(context.Background(), config, reporter)
	if err != nil {
		startup.LogFatal("Failed to start rendition service: %v", err)
	}

	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
		collector = metrics.NewCollector(service.Manager(), 15*time.Second)
		collector.Start()
	}

	h := handlers.New(service, presets, service.Manager())
	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggingConfig.SkipPaths = append(loggingConfig.SkipPaths, publicPrefix(config.PublicPath))
	handler := middleware.RequestID(middleware.Logger(loggingConfig)(router))

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Transcode requests stay open until every rendition settles.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, h, service, collector)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// publicPrefix is the URL prefix renditions are served under, with a
// trailing slash.
func publicPrefix(publicPath string) string {
	return "/" + strings.Trim(publicPath, "/") + "/"
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	if config.MetricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	// Without its own handler a subrouter reports method mismatches as 404.
	api.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)
	api.HandleFunc("/transcode", h.Transcode).Methods("POST")
	api.HandleFunc("/pipelines", h.ListPipelines).Methods("GET")
	api.HandleFunc("/pipelines/{name}", h.GetPipeline).Methods("GET")
	api.HandleFunc("/version", h.GetVersion).Methods("GET")

	prefix := publicPrefix(config.PublicPath)
	r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(filepath.Clean(config.OutputDir))))).Methods("GET", "HEAD")

	return r
}

func handleShutdown(srv *http.Server, h *handlers.Handlers, service *renditions.Service, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	h.SetShuttingDown()

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

	startup.LogShutdownStep("Stopping rendition service")
	service.Close()
	startup.LogShutdownStepComplete("Rendition service stopped")

	startup.LogShutdownComplete()
}
