package filesystem

import (
	"errors"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"video-tagger/internal/logging"
)

// VolumeResolver maps file paths to configured media roots for metric labeling
// and access checks. It uses longest-prefix matching on normalized paths.
type VolumeResolver struct {
	// mounts is sorted by path length descending for longest-prefix matching
	mounts []volumeMount
}

type volumeMount struct {
	path string // normalized path with trailing slash (e.g., "/media/")
	name string // volume label (e.g., "media")
}

// NewVolumeResolver creates a resolver from a map of volume name → path.
//
//	NewVolumeResolver(map[string]string{
//	    "movies": "/srv/movies",
//	    "phone":  "/srv/phone-backup",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, p := range volumes {
		norm := Normalize(p)
		if !strings.HasSuffix(norm, "/") {
			norm += "/"
		}
		mounts = append(mounts, volumeMount{path: norm, name: name})
	}

	sort.Slice(mounts, func(i, j int) bool {
		if len(mounts[i].path) == len(mounts[j].path) {
			return mounts[i].path < mounts[j].path
		}
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume name for a given path, or "unknown".
func (vr *VolumeResolver) Resolve(p string) string {
	if vr == nil {
		return "unknown"
	}

	norm := Normalize(p)
	for _, mount := range vr.mounts {
		if strings.HasPrefix(norm+"/", mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

// Contains reports whether p lies inside any configured volume. A resolver
// with no volumes contains every path.
func (vr *VolumeResolver) Contains(p string) bool {
	if vr == nil || len(vr.mounts) == 0 {
		return true
	}
	return vr.Resolve(p) != "unknown"
}

// Len returns the number of configured volumes.
func (vr *VolumeResolver) Len() int {
	if vr == nil {
		return 0
	}
	return len(vr.mounts)
}

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// VolumeResolver labels metrics; nil labels everything "unknown".
	VolumeResolver *VolumeResolver
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// withRetry runs fn, retrying only on ESTALE with capped exponential backoff.
func withRetry[T any](op, path string, config RetryConfig, fn func() (T, error)) (T, error) {
	start := time.Now()
	volume := config.VolumeResolver.Resolve(path)
	obs := observe()
	var lastErr error
	var zero T
	backoff := config.InitialBackoff

	finish := func(err error) {
		if obs != nil {
			obs.ObserveOperation(volume, op, time.Since(start).Seconds(), err)
		}
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				if obs != nil {
					obs.ObserveRetrySuccess(op, volume)
				}
			}
			finish(nil)
			return result, nil
		}

		lastErr = err

		if !isNFSStaleError(err) {
			finish(err)
			return zero, err
		}

		if obs != nil {
			obs.ObserveStaleError(op, volume)
		}

		if attempt < config.MaxRetries {
			if obs != nil {
				obs.ObserveRetryAttempt(op, volume)
			}
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	if obs != nil {
		obs.ObserveRetryFailure(op, volume)
	}
	finish(lastErr)
	return zero, lastErr
}

// IsNotExist reports whether err means the path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
