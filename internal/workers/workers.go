package workers

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Count returns a worker count for a task type, scaled from GOMAXPROCS so it
// respects container CPU limits.
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count. Use 0 for no limit.
func Count(multiplier float64, limit int) int {
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// FromSetting interprets a configured worker count. "" and "0" mean
// sequential (0), "auto" means ForIO(limit), and a positive integer is used
// as given, capped at limit.
func FromSetting(s string, limit int) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "0":
		return 0, nil
	case "auto":
		return ForIO(limit), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid worker count %q", s)
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n, nil
}
