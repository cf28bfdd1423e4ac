package model

import "time"

// UnknownSize is the sentinel for an unknown total byte count, used when the
// server does not advertise a Content-Length.
const UnknownSize int64 = -1

// Progress is a point-in-time snapshot of a task's transfer state.
type Progress struct {
	Status          Status  `json:"status"`
	TotalBytes      int64   `json:"total_bytes"` // UnknownSize until the server advertises a length
	DownloadedBytes int64   `json:"downloaded_bytes"`
	Percentage      float64 `json:"percentage"` // meaningful only when TotalBytes is known; clamped to [0,100]
	Speed           float64 `json:"speed"`      // bytes per second
	ETASeconds      float64 `json:"eta_seconds"`
}

// Task is one tracked download request with its own identity, status, and
// live progress.
type Task struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	DestPath    string    `json:"dest_path"`
	Status      Status    `json:"status"`
	Progress    Progress  `json:"progress"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Clone returns a copy safe to hand to callers.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// Options configures a single download call. The zero value means "use the
// manager defaults".
type Options struct {
	// Timeout bounds each transfer attempt. Zero means no per-attempt limit.
	Timeout time.Duration

	// Retries is the number of attempts beyond the first.
	Retries int

	// RetryDelay is the fixed delay between attempts.
	RetryDelay time.Duration

	// Resume keeps partial data across pause/cancel/failure and continues
	// from the last confirmed offset when the server honors range requests.
	Resume bool

	// Headers are added to every transfer request.
	Headers map[string]string

	// MaxConcurrent caps simultaneous transfers for the batch call this
	// options value is attached to.
	MaxConcurrent int

	// Checksum, when set, is the expected lowercase hex SHA-256 of the
	// completed file. A mismatch fails the task and removes the file.
	Checksum string

	// OnProgress, when set, receives throttled progress snapshots and one
	// final snapshot on terminal state.
	OnProgress func(Progress)
}

// Request is one entry of a batch download call.
type Request struct {
	URL      string   `yaml:"url"`
	DestPath string   `yaml:"dest"`
	Checksum string   `yaml:"checksum,omitempty"`
	Options  *Options `yaml:"-"`
}

// Result is the immutable outcome of a download. Exactly one of
// (Success with FilePath/Checksum) or (not Success with Error) holds.
type Result struct {
	TaskID   string        `json:"task_id"`
	Success  bool          `json:"success"`
	FilePath string        `json:"file_path,omitempty"`
	FileSize int64         `json:"file_size,omitempty"`
	Duration time.Duration `json:"duration"`
	Checksum string        `json:"checksum,omitempty"`
	Error    string        `json:"error,omitempty"`
}
