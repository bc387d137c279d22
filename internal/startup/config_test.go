package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{"unset uses default", "", 3},
		{"valid value", "8", 8},
		{"surrounding spaces", " 4 ", 4},
		{"zero", "0", 0},
		{"negative uses default", "-2", 3},
		{"garbage uses default", "many", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_VAR", tt.envValue)
			if got := getEnvInt("TEST_INT_VAR", 3); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d (env: %q)", got, tt.want, tt.envValue)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OUTPUT_DIR", "PUBLIC_PATH", "PORT", "METRICS_ENABLED", "LOG_HEALTH_CHECKS",
		"TRANSCODE_WORKERS", "FFMPEG_PATH", "FFPROBE_PATH", "WORKER_BINARY",
		"DEBUG_FFMPEG", "PROBE_DB_PATH", "PIPELINES_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := ReadConfig()
	if cfg.OutputDir != "./public/static" {
		t.Errorf("OutputDir = %q, want ./public/static", cfg.OutputDir)
	}
	if cfg.PublicPath != "/static" {
		t.Errorf("PublicPath = %q, want /static", cfg.PublicPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled should default to true")
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("binaries = %q/%q, want ffmpeg/ffprobe", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.WorkerBinary != "" || cfg.ProbeDBPath != "" || cfg.PipelinesFile != "" {
		t.Errorf("optional features should be disabled by default: %+v", cfg)
	}
	if cfg.DebugFFmpeg {
		t.Error("DebugFFmpeg should default to false")
	}
}

func TestReadConfigFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PUBLIC_PATH", "/media/out")
	t.Setenv("TRANSCODE_WORKERS", "3")
	t.Setenv("WORKER_BINARY", "transcode-worker")
	t.Setenv("DEBUG_FFMPEG", "true")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := ReadConfig()
	if cfg.PublicPath != "/media/out" {
		t.Errorf("PublicPath = %q", cfg.PublicPath)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.WorkerBinary != "transcode-worker" {
		t.Errorf("WorkerBinary = %q", cfg.WorkerBinary)
	}
	if !cfg.DebugFFmpeg {
		t.Error("DebugFFmpeg should be true")
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should be false")
	}
}

func TestLoadConfigCreatesOutputDir(t *testing.T) {
	clearConfigEnv(t)
	dir := filepath.Join(t.TempDir(), "public", "static")
	dbPath := filepath.Join(t.TempDir(), "db", "probes.db")
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("PROBE_DB_PATH", dbPath)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputDir != dir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}
	if cfg.ProbeDBPath != dbPath {
		t.Errorf("ProbeDBPath = %q, want %q", cfg.ProbeDBPath, dbPath)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestLoadConfigRejectsFileAsOutputDir(t *testing.T) {
	clearConfigEnv(t)
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTPUT_DIR", file)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() should fail when OUTPUT_DIR is a file")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "RENDITION_TEST_FROM_FILE=loaded\nRENDITION_TEST_PRESET=from-file\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// Registered with t.Setenv so both are restored after the test.
	t.Setenv("RENDITION_TEST_FROM_FILE", "")
	os.Unsetenv("RENDITION_TEST_FROM_FILE")
	t.Setenv("RENDITION_TEST_PRESET", "from-env")

	if err := LoadEnvFiles(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles() error = %v", err)
	}
	if got := os.Getenv("RENDITION_TEST_FROM_FILE"); got != "loaded" {
		t.Errorf("RENDITION_TEST_FROM_FILE = %q, want loaded", got)
	}
	if got := os.Getenv("RENDITION_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing variable overridden: got %q", got)
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Fatalf("ensureDirectory() error = %v", err)
	}
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Errorf("ensureDirectory() on existing dir error = %v", err)
	}
	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Error("write test file should be removed")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/transcode", "api/transcode"},
		{"/api/pipelines/{name}", "api/pipelines"},
		{"/metrics", "metrics"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	r := mux.NewRouter()
	r.HandleFunc("/api/transcode", noop).Methods(http.MethodPost).Name("transcode")
	r.HandleFunc("/api/pipelines", noop).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/metrics", noop)

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4: %+v", len(routes), routes)
	}
	if routes[0].Method != http.MethodPost || routes[0].Name != "transcode" {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[3].Method != "*" || routes[3].Path != "/metrics" {
		t.Errorf("routes[3] = %+v, want wildcard /metrics", routes[3])
	}
}
