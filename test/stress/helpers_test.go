package stress_test

import (
	"os"
	"testing"
)

// requireStressEnabled skips long-running stress tests unless explicitly
// enabled via environment variable.
//
// Set SEGSIEVE_STRESS=1 to run.
func requireStressEnabled(t *testing.T) {
	t.Helper()
	if os.Getenv("SEGSIEVE_STRESS") != "1" {
		t.Skip("Skipping long stress/perf test (set SEGSIEVE_STRESS=1 to run)")
	}
}
