package metrics

import "runtime"

// InitializeMetrics pre-populates expected label combinations so that every
// metric is exported from the first Prometheus scrape.
func InitializeMetrics(volumes []string, version, commit string) {
	vols := append([]string{"unknown"}, volumes...)

	for _, vol := range vols {
		for _, op := range []string{"stat", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"append", "replace", "remove"} {
		for _, status := range []string{"success", "error"} {
			TagMutationsTotal.WithLabelValues(op, status)
		}
	}

	for _, kind := range []string{"increment", "decrement", "evict"} {
		TagIndexMutations.WithLabelValues(kind)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	AppInfo.WithLabelValues(version, commit, goVersion()).Set(1)
}

func goVersion() string {
	return runtime.Version()
}
