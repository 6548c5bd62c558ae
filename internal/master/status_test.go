package master

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"not_running to starting", StatusNotRunning, StatusStarting, true},
		{"starting to running", StatusStarting, StatusRunning, true},
		{"running to suspended", StatusRunning, StatusSuspended, true},
		{"running to completed", StatusRunning, StatusCompleted, true},
		{"suspended to not_running", StatusSuspended, StatusNotRunning, true},
		{"suspended_exporting to failed", StatusSuspendedExportingSnapshot, StatusFailed, true},
		{"not_running to running is illegal", StatusNotRunning, StatusRunning, false},
		{"completed is terminal", StatusCompleted, StatusNotRunning, false},
		{"failed is terminal", StatusFailed, StatusSuspended, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusNotRunning, StatusStarting, StatusRunning, StatusSuspended, StatusSuspendedExportingSnapshot} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
