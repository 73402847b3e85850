package types

import "testing"

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseInit, "Init"},
		{PhaseBootstrap, "Bootstrap"},
		{PhasePartitioned, "Partitioned"},
		{PhaseSieving, "Sieving"},
		{PhaseMerging, "Merging"},
		{PhaseDone, "Done"},
		{PhaseFailed, "Failed"},
		{Phase(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("Phase.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
