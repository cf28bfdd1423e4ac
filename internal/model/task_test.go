package model

import "testing"

func TestStatusActive(t *testing.T) {
	tests := []struct {
		status Status
		active bool
	}{
		{StatusPending, false},
		{StatusInProgress, true},
		{StatusPaused, true},
		{StatusCompleted, false},
		{StatusFailed, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.status.Active(); got != tt.active {
			t.Errorf("%s.Active() = %v, want %v", tt.status, got, tt.active)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusPaused, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestTaskClone(t *testing.T) {
	task := &Task{
		ID:     "t1",
		URL:    "http://example.com/model.onnx",
		Status: StatusInProgress,
		Progress: Progress{
			Status:          StatusInProgress,
			TotalBytes:      100,
			DownloadedBytes: 50,
			Percentage:      50,
		},
	}

	clone := task.Clone()
	clone.Status = StatusCompleted
	clone.Progress.DownloadedBytes = 100

	if task.Status != StatusInProgress {
		t.Error("mutating the clone must not affect the original")
	}
	if task.Progress.DownloadedBytes != 50 {
		t.Error("mutating the clone's progress must not affect the original")
	}
}
