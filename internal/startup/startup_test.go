package startup

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{name: "Returns default when env var not set", key: "TEST_UNSET_VAR", defaultValue: "default", want: "default"},
		{name: "Returns env value when set", key: "TEST_SET_VAR", defaultValue: "default", envValue: "custom", want: "custom", setEnv: true},
		{name: "Empty env value falls back to default", key: "TEST_EMPTY_VAR", defaultValue: "default", envValue: "", want: "default", setEnv: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"", true, true},
		{"true", false, true},
		{"0", true, false},
		{"yes-please", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			if got := getEnvBool("TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	if got := getEnvInt("TEST_INT", 3); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
	t.Setenv("TEST_INT", "-1")
	if got := getEnvInt("TEST_INT", 3); got != 3 {
		t.Errorf("getEnvInt with negative = %d, want default 3", got)
	}
}

func TestResolveDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "AGGREGATE_WORKERS", "MEDIA_ROOTS", "PORT", "DATABASE_DIR", "FS_MAX_RETRIES", "METRICS_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := resolve(defaults())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("StoreBackend = %q, want sqlite", cfg.StoreBackend)
	}
	if cfg.Port != "8080" || !cfg.MetricsEnabled || cfg.AggregateWorkers != 0 || cfg.FSMaxRetries != 3 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.MediaRoots) != 0 {
		t.Errorf("MediaRoots = %v, want none", cfg.MediaRoots)
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	if _, err := resolve(defaults()); err == nil {
		t.Error("expected error for unknown backend")
	}

	t.Setenv("STORE_BACKEND", "bolt")
	t.Setenv("AGGREGATE_WORKERS", "-2")
	if _, err := resolve(defaults()); err == nil {
		t.Error("expected error for negative worker count")
	}
}

func TestConfigFileLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "videotagger.toml")
	content := `
store_backend = "bolt"
port = "9000"
metrics_enabled = false
media_roots = ["/srv/movies", "/mnt/shows"]
fs_max_retries = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	vals, err := readConfigFile(path, defaults())
	if err != nil {
		t.Fatalf("readConfigFile: %v", err)
	}

	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MEDIA_ROOTS", "")
	t.Setenv("METRICS_ENABLED", "")
	t.Setenv("FS_MAX_RETRIES", "")
	t.Setenv("PORT", "8181")

	cfg, err := resolve(vals)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.StoreBackend != BackendBolt {
		t.Errorf("StoreBackend = %q, want bolt from file", cfg.StoreBackend)
	}
	if cfg.Port != "8181" {
		t.Errorf("Port = %q, environment should win", cfg.Port)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled should be false from file")
	}
	if cfg.FSMaxRetries != 0 {
		t.Errorf("FSMaxRetries = %d, want 0 from file", cfg.FSMaxRetries)
	}
	if cfg.LogMaxBackups != 3 {
		t.Errorf("LogMaxBackups = %d, want default 3", cfg.LogMaxBackups)
	}
	if len(cfg.MediaRoots) != 2 {
		t.Errorf("MediaRoots = %v, want 2 entries", cfg.MediaRoots)
	}
}

func TestReadConfigFileErrors(t *testing.T) {
	if _, err := readConfigFile(filepath.Join(t.TempDir(), "missing.toml"), defaults()); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("port = = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readConfigFile(path, defaults()); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestDatabasePath(t *testing.T) {
	if got := databasePath("/data", BackendSQLite); got != filepath.Join("/data", "videotags.db") {
		t.Errorf("sqlite path = %s", got)
	}
	if got := databasePath("/data", BackendBolt); got != filepath.Join("/data", "videotags.bolt") {
		t.Errorf("bolt path = %s", got)
	}
}

func TestVolumeMap(t *testing.T) {
	cfg := &Config{MediaRoots: []string{"/srv/a/movies", "/mnt/b/movies", "/mnt/shows"}}
	volumes := cfg.VolumeMap()

	if len(volumes) != 3 {
		t.Fatalf("VolumeMap = %v, want 3 entries", volumes)
	}
	if volumes["movies"] != "/srv/a/movies" || volumes["movies-2"] != "/mnt/b/movies" {
		t.Errorf("colliding names not suffixed: %v", volumes)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/tags/top": "api/tags",
		"/api/files":    "api/files",
		"/health":       "health",
		"/":             "",
	}
	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/files", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("GET").Name("files")
	r.HandleFunc("/api/tags/file", func(_ http.ResponseWriter, _ *http.Request) {}).Methods("GET", "POST")

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3: %+v", len(routes), routes)
	}
	if routes[0].Name != "files" || routes[0].Method != "GET" {
		t.Errorf("unexpected first route: %+v", routes[0])
	}
}

func TestOpenStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store integration test in short mode")
	}

	for _, backend := range []string{BackendSQLite, BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &Config{StoreBackend: backend, DatabasePath: databasePath(dir, backend)}

			store, err := OpenStore(context.Background(), cfg)
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer store.Close()

			n, err := store.CountVideos(context.Background())
			if err != nil || n != 0 {
				t.Errorf("CountVideos = %d, %v", n, err)
			}
		})
	}

	if _, err := OpenStore(context.Background(), &Config{StoreBackend: "csv"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRetryConfig(t *testing.T) {
	cfg := &Config{FSMaxRetries: 5, MediaRoots: []string{"/srv/movies"}}
	rc := cfg.RetryConfig()
	if rc.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", rc.MaxRetries)
	}
	if got := rc.VolumeResolver.Resolve("/srv/movies/a.mp4"); got != "movies" {
		t.Errorf("Resolve = %q", got)
	}
}
