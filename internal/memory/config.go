package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
)

// DefaultMemoryRatio is the share of the container limit given to the Go heap.
// The rest covers SQLite page cache, bbolt's mmap and goroutine stacks.
const DefaultMemoryRatio = 0.9

// Sources reported in ConfigResult.Source.
const (
	SourceGoMemLimit  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
	SourceNone        = "none"
)

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets the Go memory limit from MEMORY_LIMIT and MEMORY_RATIO
// unless GOMEMLIMIT is already set. Call it before significant allocations.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := ConfigResult{Source: SourceGoMemLimit}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return result
	}

	result, err := plan(os.Getenv("MEMORY_LIMIT"), os.Getenv("MEMORY_RATIO"))
	if err != nil {
		logging.Warn("%v", err)
	}
	if !result.Configured {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return result
	}

	debug.SetMemoryLimit(result.GoMemLimit)
	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		mediatypes.FormatSize(result.GoMemLimit),
		result.Ratio*100,
		mediatypes.FormatSize(result.ContainerLimit),
	)
	return result
}

// plan computes the heap limit from the raw environment values. A bad ratio
// falls back to DefaultMemoryRatio and is reported alongside the result.
func plan(limitStr, ratioStr string) (ConfigResult, error) {
	if limitStr == "" {
		return ConfigResult{Source: SourceNone}, nil
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 {
		return ConfigResult{Source: SourceNone}, fmt.Errorf("invalid MEMORY_LIMIT %q", limitStr)
	}

	var warn error
	ratio := DefaultMemoryRatio
	if ratioStr != "" {
		parsed, err := strconv.ParseFloat(ratioStr, 64)
		switch {
		case err != nil:
			warn = fmt.Errorf("invalid MEMORY_RATIO %q, using default %.2f", ratioStr, DefaultMemoryRatio)
		case parsed <= 0 || parsed > 1:
			warn = fmt.Errorf("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", ratioStr, DefaultMemoryRatio)
		default:
			ratio = parsed
		}
	}

	return ConfigResult{
		Configured:     true,
		Source:         SourceMemoryLimit,
		ContainerLimit: limit,
		GoMemLimit:     int64(float64(limit) * ratio),
		Ratio:          ratio,
	}, warn
}
