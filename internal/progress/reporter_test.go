package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a goroutine-safe bytes.Buffer for capturing reporter output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForOutput(t *testing.T, buf *syncBuffer, substr string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if out := buf.String(); strings.Contains(out, substr) {
			return out
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("output never contained %q, got:\n%s", substr, buf.String())
	return ""
}

func TestReporterStartStop(t *testing.T) {
	buf := &syncBuffer{}
	r := NewReporter(Options{
		TotalTasks:     3,
		Workers:        2,
		Output:         buf,
		UpdateInterval: time.Hour, // never tick; only start/final lines
	})

	r.Start()
	r.TaskStarted()
	r.AddBytes(2048)
	r.TaskCompleted()
	r.TaskStarted()
	r.TaskFailed()
	r.Stop()

	out := waitForOutput(t, buf, "1 completed | 1 failed")
	if !strings.Contains(out, "Downloading 3 files | 2 workers") {
		t.Errorf("missing start line in output:\n%s", out)
	}
	if !strings.Contains(out, "2.00 KB") {
		t.Errorf("missing transferred total in output:\n%s", out)
	}
}

func TestReporterStopIdempotent(t *testing.T) {
	buf := &syncBuffer{}
	r := NewReporter(Options{TotalTasks: 1, Output: buf, UpdateInterval: time.Hour})
	r.Start()
	r.Stop()
	r.Stop() // must not panic on double close
}

func TestReporterPeriodicUpdate(t *testing.T) {
	buf := &syncBuffer{}
	r := NewReporter(Options{
		TotalTasks:     1,
		TotalSize:      1024,
		Output:         buf,
		UpdateInterval: 10 * time.Millisecond,
	})

	r.Start()
	r.TaskStarted()
	r.AddBytes(512)

	out := waitForOutput(t, buf, "Progress: 50.0%")
	if !strings.Contains(out, "512 B / 1.00 KB") {
		t.Errorf("missing byte counts in output:\n%s", out)
	}
	r.Stop()
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.00 TB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{3725 * time.Second, "1h 2m 5s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
