package startup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"video-renditions/internal/logging"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	OutputDir       string
	PublicPath      string
	Port            string
	MetricsEnabled  bool
	LogHealthChecks bool

	// Workers is the configured pool size; 0 means one per CPU.
	Workers      int
	FFmpegPath   string
	FFprobePath  string
	WorkerBinary string
	DebugFFmpeg  bool

	// Optional features, empty when disabled
	ProbeDBPath   string
	PipelinesFile string
}

// LoadEnvFiles loads .env style files into the environment. Variables
// already set are not overridden and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			logging.Debug("  No env file at %s", p)
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
		logging.Debug("  Loaded env file %s", p)
	}
	return nil
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg := ReadConfig()

	logging.Info("  OUTPUT_DIR:          %s", cfg.OutputDir)
	logging.Info("  PUBLIC_PATH:         %s", cfg.PublicPath)
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  TRANSCODE_WORKERS:   %d", cfg.Workers)
	logging.Info("  FFMPEG_PATH:         %s", cfg.FFmpegPath)
	logging.Info("  FFPROBE_PATH:        %s", cfg.FFprobePath)
	logging.Info("  WORKER_BINARY:       %s", displayOptional(cfg.WorkerBinary, "(in-process)"))
	logging.Info("  PROBE_DB_PATH:       %s", displayOptional(cfg.ProbeDBPath, "(disabled)"))
	logging.Info("  PIPELINES_FILE:      %s", displayOptional(cfg.PipelinesFile, "(none)"))
	logging.Info("  DEBUG_FFMPEG:        %v", cfg.DebugFFmpeg)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	cfg.OutputDir = outputDir
	logging.Info("  Output directory (absolute): %s", outputDir)

	if err := ensureDirectory(outputDir, "output"); err != nil {
		return nil, fmt.Errorf("output directory error: %w", err)
	}
	logging.Debug("  Testing output directory write access...")
	if err := testWriteAccess(outputDir); err != nil {
		return nil, fmt.Errorf("output directory is not writable: %w", err)
	}
	logging.Info("  [OK] Output directory is writable")

	if cfg.ProbeDBPath != "" {
		dbPath, err := filepath.Abs(cfg.ProbeDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve probe database path: %w", err)
		}
		cfg.ProbeDBPath = dbPath
		if err := ensureDirectory(filepath.Dir(dbPath), "database"); err != nil {
			logging.Warn("  Probe database directory issue: %v", err)
			logging.Warn("  Probe results will not persist")
			cfg.ProbeDBPath = ""
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Probe store:  %s", enabledString(cfg.ProbeDBPath != ""))
	logging.Info("    Presets:      %s", enabledString(cfg.PipelinesFile != ""))
	logging.Info("    Isolation:    %s", enabledString(cfg.WorkerBinary != ""))
	logging.Info("    Metrics:      %s", enabledString(cfg.MetricsEnabled))

	return cfg, nil
}

// ReadConfig reads configuration from the environment without touching
// the filesystem.
func ReadConfig() *Config {
	return &Config{
		OutputDir:       getEnv("OUTPUT_DIR", "./public/static"),
		PublicPath:      getEnv("PUBLIC_PATH", "/static"),
		Port:            getEnv("PORT", "8080"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),
		Workers:         getEnvInt("TRANSCODE_WORKERS", 0),
		FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:     getEnv("FFPROBE_PATH", "ffprobe"),
		WorkerBinary:    getEnv("WORKER_BINARY", ""),
		DebugFFmpeg:     getEnvBool("DEBUG_FFMPEG", false),
		ProbeDBPath:     getEnv("PROBE_DB_PATH", ""),
		PipelinesFile:   getEnv("PIPELINES_FILE", ""),
	}
}

func displayOptional(value, empty string) string {
	if value == "" {
		return empty
	}
	return value
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs probe store initialization
func LogDatabaseInit(duration time.Duration, cached int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PROBE STORE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Probe store opened in %v (%d cached probes)", duration, cached)
}

// LogTranscoderInit logs transcoder setup and checks the external binaries
func LogTranscoderInit(cfg *Config, workers int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("TRANSCODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Worker pool size: %d", workers)

	for _, bin := range []string{cfg.FFmpegPath, cfg.FFprobePath} {
		if err := checkBinary(bin); err != nil {
			logging.Warn("  %s check failed: %v", bin, err)
			logging.Warn("  Renditions may fail to build")
		} else {
			logging.Info("  [OK] %s is available", bin)
		}
	}

	if cfg.WorkerBinary != "" {
		if _, err := exec.LookPath(cfg.WorkerBinary); err != nil {
			logging.Warn("  Worker binary %s not found: %v", cfg.WorkerBinary, err)
		} else {
			logging.Info("  [OK] Transcodes run in isolated %s processes", cfg.WorkerBinary)
		}
	}
}

// LogPresetsLoaded logs the pipeline presets available to requests
func LogPresetsLoaded(path string, names []string) {
	logging.Info("  [OK] Loaded %d pipeline presets from %s", len(names), path)
	if logging.IsDebugEnabled() {
		for _, n := range names {
			logging.Debug("    - %s", n)
		}
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Transcode:     http://0.0.0.0:%s/api/transcode", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
 __   ___    _            ___             _ _ _   _
 \ \ / (_)__| |___ ___   | _ \___ _ _  __| (_) |_(_)___ _ _  ___
  \ V /| / _' / -_) _ \  |   / -_) ' \/ _' | |  _| / _ \ ' \(_-<
   \_/ |_\__,_\___\___/  |_|_\___|_||_\__,_|_|\__|_\___/_||_/__/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkBinary(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	logging.Debug("  %s path: %s", name, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", name, err)
	}

	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		logging.Debug("  %s version: %s", name, strings.TrimSpace(line))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
