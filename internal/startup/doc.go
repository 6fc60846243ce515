// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is loaded by [LoadConfig] from environment variables,
// optionally layered over a TOML file named by CONFIG_FILE. Environment
// values always win over the file.
//
//   - CONFIG_FILE: Optional TOML file (keys are the lower-case names below)
//   - DATABASE_DIR: Directory holding the catalog store (default: ./data)
//   - STORE_BACKEND: sqlite or bolt (default: sqlite)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_ENABLED: Expose /metrics (default: true)
//   - AGGREGATE_WORKERS: Parallel subtree aggregation, "auto" or a number (default: 0, sequential)
//   - MEDIA_ROOTS: Comma separated roots the HTTP API may browse (default: unrestricted)
//   - FS_MAX_RETRIES: Retries on stale NFS handles (default: 3)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FILE: Optional rotated log file
//   - LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS: Log rotation (default: 5, 3)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// The database directory is created if needed and must be writable. Media
// roots are checked but never created.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogStoreInit]: Store initialization timing
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
