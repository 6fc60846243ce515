/*
Package workers sizes worker pools in containerized environments.

Go 1.19+ sets GOMAXPROCS from the container CPU limit, while runtime.NumCPU
still reports the host's CPUs. Counts here are derived from GOMAXPROCS:

	// Wrong: returns 64 on a 64-core node even with a 2 CPU limit
	workers := runtime.NumCPU()

	// Correct: returns 2
	workers := runtime.GOMAXPROCS(0)

Directory aggregation is I/O-bound, so the server sizes it with ForIO when
AGGREGATE_WORKERS=auto:

	n, err := workers.FromSetting(os.Getenv("AGGREGATE_WORKERS"), 32)

A setting of 0 (the default) keeps aggregation sequential.
*/
package workers
