package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"video-tagger/internal/logging"
	"video-tagger/internal/workers"

	"github.com/gorilla/mux"
	"github.com/pelletier/go-toml/v2"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
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
	ConfigFile       string
	DatabaseDir      string
	StoreBackend     string
	Port             string
	MetricsEnabled   bool
	LogHealthChecks  bool
	AggregateWorkers int
	MediaRoots       []string
	LogLevel         string
	LogFile          string
	LogMaxSizeMB     int
	LogMaxBackups    int
	FSMaxRetries     int

	// Derived paths
	DatabasePath string
}

// fileValues is the optional TOML config file. Unset keys keep their defaults.
type fileValues struct {
	DatabaseDir      string   `toml:"database_dir"`
	StoreBackend     string   `toml:"store_backend"`
	Port             string   `toml:"port"`
	MetricsEnabled   *bool    `toml:"metrics_enabled"`
	LogHealthChecks  *bool    `toml:"log_health_checks"`
	AggregateWorkers string   `toml:"aggregate_workers"`
	MediaRoots       []string `toml:"media_roots"`
	LogLevel         string   `toml:"log_level"`
	LogFile          string   `toml:"log_file"`
	LogMaxSizeMB     int      `toml:"log_max_size_mb"`
	LogMaxBackups    int      `toml:"log_max_backups"`
	FSMaxRetries     *int     `toml:"fs_max_retries"`
}

// defaults mirror the documented environment defaults.
func defaults() fileValues {
	metrics, health, retries := true, true, 3
	return fileValues{
		DatabaseDir:      "./data",
		StoreBackend:     BackendSQLite,
		Port:             "8080",
		MetricsEnabled:   &metrics,
		LogHealthChecks:  &health,
		AggregateWorkers: "0",
		LogMaxSizeMB:     5,
		LogMaxBackups:    3,
		FSMaxRetries:     &retries,
	}
}

// readConfigFile layers the TOML file at path over base.
func readConfigFile(path string, base fileValues) (fileValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config file: %w", err)
	}
	vals := base
	if err := toml.Unmarshal(data, &vals); err != nil {
		return base, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return vals, nil
}

// LoadConfig loads and validates configuration. Environment variables win
// over the optional CONFIG_FILE, which wins over the defaults.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg, err := ResolveConfig()
	if err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		logging.Info("  CONFIG_FILE:         %s", cfg.ConfigFile)
	}
	logging.Info("  DATABASE_DIR:        %s", cfg.DatabaseDir)
	logging.Info("  STORE_BACKEND:       %s", cfg.StoreBackend)
	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  AGGREGATE_WORKERS:   %d", cfg.AggregateWorkers)
	logging.Info("  MEDIA_ROOTS:         %s", rootsString(cfg.MediaRoots))
	logging.Info("  FS_MAX_RETRIES:      %d", cfg.FSMaxRetries)
	logging.Info("  LOG_FILE:            %s", cfg.LogFile)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", cfg.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	cfg.DatabaseDir, err = filepath.Abs(cfg.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", cfg.DatabaseDir)
	cfg.DatabasePath = databasePath(cfg.DatabaseDir, cfg.StoreBackend)

	for _, root := range cfg.MediaRoots {
		if err := ensureDirectory(root, "media"); err != nil {
			logging.Warn("  Media root %s: %v", root, err)
		}
	}

	if err := ensureDirectory(cfg.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(cfg.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Store:       %s (%s)", strings.ToUpper(cfg.StoreBackend), cfg.DatabasePath)
	logging.Info("    Metrics:     %s", enabledString(cfg.MetricsEnabled))
	logging.Info("    Parallel aggregation: %s", enabledString(cfg.AggregateWorkers > 0))

	return cfg, nil
}

// ResolveConfig reads the config file and environment without logging or
// touching the filesystem beyond the config file. DatabasePath is derived from
// the unresolved DatabaseDir.
func ResolveConfig() (*Config, error) {
	vals := defaults()
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		var err error
		vals, err = readConfigFile(configFile, vals)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := resolve(vals)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFile = configFile
	cfg.DatabasePath = databasePath(cfg.DatabaseDir, cfg.StoreBackend)
	return cfg, nil
}

// resolve applies environment overrides to vals and validates the result.
func resolve(vals fileValues) (*Config, error) {
	backend := strings.ToLower(getEnv("STORE_BACKEND", vals.StoreBackend))
	if backend != BackendSQLite && backend != BackendBolt {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", backend, BackendSQLite, BackendBolt)
	}

	aggregateWorkers, err := workers.FromSetting(getEnv("AGGREGATE_WORKERS", vals.AggregateWorkers), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_WORKERS: %w", err)
	}

	roots := vals.MediaRoots
	if env := os.Getenv("MEDIA_ROOTS"); env != "" {
		roots = splitList(env)
	}
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve media root %q: %w", root, err)
		}
		roots[i] = abs
	}

	return &Config{
		DatabaseDir:      getEnv("DATABASE_DIR", vals.DatabaseDir),
		StoreBackend:     backend,
		Port:             getEnv("PORT", vals.Port),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", *vals.MetricsEnabled),
		LogHealthChecks:  getEnvBool("LOG_HEALTH_CHECKS", *vals.LogHealthChecks),
		AggregateWorkers: aggregateWorkers,
		MediaRoots:       roots,
		LogLevel:         getEnv("LOG_LEVEL", vals.LogLevel),
		LogFile:          getEnv("LOG_FILE", vals.LogFile),
		LogMaxSizeMB:     getEnvInt("LOG_MAX_SIZE_MB", vals.LogMaxSizeMB),
		LogMaxBackups:    getEnvInt("LOG_MAX_BACKUPS", vals.LogMaxBackups),
		FSMaxRetries:     getEnvInt("FS_MAX_RETRIES", *vals.FSMaxRetries),
	}, nil
}

func databasePath(dir, backend string) string {
	if backend == BackendBolt {
		return filepath.Join(dir, "videotags.bolt")
	}
	return filepath.Join(dir, "videotags.db")
}

// VolumeMap names each media root by its base name for metrics labels.
// Colliding base names get a numeric suffix.
func (c *Config) VolumeMap() map[string]string {
	volumes := make(map[string]string, len(c.MediaRoots))
	for _, root := range c.MediaRoots {
		name := filepath.Base(root)
		for i := 2; ; i++ {
			if _, taken := volumes[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s-%d", filepath.Base(root), i)
		}
		volumes[name] = root
	}
	return volumes
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func rootsString(roots []string) string {
	if len(roots) == 0 {
		return "(unrestricted)"
	}
	return strings.Join(roots, ", ")
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogStoreInit logs catalog store initialization
func LogStoreInit(backend string, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STORE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] %s store initialized in %v", backend, duration)
}

// LogCatalogStats logs the catalog size found at startup
func LogCatalogStats(videos, tags int) {
	logging.Info("  Catalog: %d tagged videos, %d distinct tags", videos, tags)
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

// LogHTTPRoutes logs all registered HTTP routes dynamically
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

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s/api", config.Port)
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

func printBanner() {
	banner := `
------------------------------------------------------------
 _   _ _     _              _____
| | | (_) __| | ___  ___   |_   _|_ _  __ _  __ _  ___ _ __
| | | | |/ _' |/ _ \/ _ \    | |/ _' |/ _' |/ _' |/ _ \ '__|
 \ V /| | (_| |  __/ (_) |   | | (_| | (_| | (_| |  __/ |
  \_/ |_|\__,_|\___|\___/    |_|\__,_|\__, |\__, |\___|_|
                                      |___/ |___/
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
		if name == "media" {
			return fmt.Errorf("directory does not exist")
		}
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
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
