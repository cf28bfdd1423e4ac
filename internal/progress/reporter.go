package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalTasks is the number of downloads in the batch.
	TotalTasks int

	// TotalSize is the total size in bytes, or 0 when unknown.
	TotalSize int64

	// Workers is the concurrency ceiling (for display).
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable download progress. Counter updates are
// safe from multiple worker goroutines.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	bytes          atomic.Int64
	completedTasks atomic.Int32
	failedTasks    atomic.Int32
	inProgress     atomic.Int32
	startTime      time.Time
	lastUpdate     time.Time
	lastBytes      int64
	stopCh         chan struct{}
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.lastUpdate = r.startTime

	fmt.Fprintf(r.opts.Output, "[modelfetch] Downloading %d files | %d workers\n",
		r.opts.TotalTasks, r.opts.Workers)

	go r.updateLoop()
}

// Stop stops the reporter and prints the final status line.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// TaskStarted marks a download as in progress.
func (r *Reporter) TaskStarted() {
	r.inProgress.Add(1)
}

// TaskCompleted marks a download as finished successfully.
func (r *Reporter) TaskCompleted() {
	r.completedTasks.Add(1)
	r.inProgress.Add(-1)
}

// TaskFailed marks a download as failed.
func (r *Reporter) TaskFailed() {
	r.failedTasks.Add(1)
	r.inProgress.Add(-1)
}

// AddBytes records newly transferred bytes.
func (r *Reporter) AddBytes(n int64) {
	r.bytes.Add(n)
}

func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	transferred := r.bytes.Load()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(transferred-r.lastBytes) / elapsed

	r.lastUpdate = now
	r.lastBytes = transferred

	if r.opts.TotalSize > 0 {
		percent := float64(transferred) / float64(r.opts.TotalSize) * 100
		eta := "calculating..."
		if speed > 0 {
			remaining := float64(r.opts.TotalSize-transferred) / speed
			eta = FormatDuration(time.Duration(remaining * float64(time.Second)))
		}
		fmt.Fprintf(r.opts.Output, "\r[modelfetch] Progress: %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
			percent,
			FormatBytes(transferred),
			FormatBytes(r.opts.TotalSize),
			FormatBytes(int64(speed)),
			eta,
		)
	} else {
		fmt.Fprintf(r.opts.Output, "\r[modelfetch] Progress: %s | Speed: %s/s    ",
			FormatBytes(transferred),
			FormatBytes(int64(speed)),
		)
	}

	fmt.Fprintf(r.opts.Output, "\n[modelfetch] Tasks: %d completed | %d in-progress | %d failed    \033[A",
		r.completedTasks.Load(),
		r.inProgress.Load(),
		r.failedTasks.Load(),
	)
}

func (r *Reporter) printFinalStatus() {
	transferred := r.bytes.Load()
	duration := time.Since(r.startTime)
	avgSpeed := float64(transferred) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[modelfetch] Transferred %s in %s | Average speed: %s/s    \n",
		FormatBytes(transferred),
		FormatDuration(duration),
		FormatBytes(int64(avgSpeed)),
	)
	fmt.Fprintf(r.opts.Output, "[modelfetch] Tasks: %d completed | %d failed    \n",
		r.completedTasks.Load(),
		r.failedTasks.Load(),
	)
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(b int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)

	switch {
	case b >= tb:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(tb))
	case b >= gb:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatDuration formats a duration as a human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm %ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
