// Package memory configures Go's soft memory limit for containerized runs.
//
// Call [ConfigureFromEnv] first thing in main:
//
//   - GOMEMLIMIT: Standard Go variable; when set it wins and is only reported.
//   - MEMORY_LIMIT: Container limit in bytes, typically from the Kubernetes
//     Downward API (resources.limits.memory).
//   - MEMORY_RATIO: Share of MEMORY_LIMIT for the Go heap, 0.0-1.0 (default 0.9).
package memory
