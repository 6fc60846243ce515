// Command video-tagger serves the video tag catalog over HTTP.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO
//  2. Configuration Loading: Reads CONFIG_FILE and environment variables and
//     validates the database directory
//  3. Logging Setup: Applies LOG_LEVEL and the optional rotated LOG_FILE
//  4. Store Initialization: Opens the SQLite (default) or bbolt catalog store
//  5. Component Initialization:
//     - Filesystem: OS-backed with stale NFS handle retries per media root
//     - Library: Catalog, tag index, tagging service and folder aggregation
//     - Metrics Collector: Refreshes catalog gauges every minute
//  6. HTTP Server Setup: Registers routes and middleware, starts the server
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM, drains requests and closes the store
//
// # HTTP API
//
//	GET    /api/files?path=&sort=&order=   Directory listing
//	GET    /api/tags/file?path=            Tags of a file
//	POST   /api/tags/file                  Tag a file {path, tags, tagList, mode}
//	DELETE /api/tags/file?path=            Remove all tags of a file
//	GET    /api/videos?tag=a&tag=b         Videos carrying every tag
//	GET    /api/tags/top?limit=            Most used tags
//	GET    /api/tags/suggest?q=&limit=     Tag suggestions
//	GET    /api/tag/{name}                 One tag and its count
//	POST   /api/maintenance/prune          Remove records of deleted files
//	GET    /health, /livez, /version, /metrics
//
// See package startup for the environment variables.
package main
