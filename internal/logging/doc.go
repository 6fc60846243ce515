// Package logging provides a simple leveled logging interface for the
// video tagger.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions (skipped directory entries, retries)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. Messages are written through zerolog to
// stderr and, when Setup is given a file name, to a size-rotated log file.
package logging
