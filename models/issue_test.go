package models

import "testing"

func TestIssueStatusHelpers(t *testing.T) {
	tests := []struct {
		status   IssueStatus
		terminal bool
		open     bool
	}{
		{StatusNew, false, true},
		{StatusInProgress, false, true},
		{StatusResolved, true, false},
		{StatusSpam, true, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
		if got := tt.status.IsOpen(); got != tt.open {
			t.Errorf("%s.IsOpen() = %v, want %v", tt.status, got, tt.open)
		}
	}
}
