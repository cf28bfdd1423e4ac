package manager

import (
	"sync"

	"github.com/sdow11/live-ad-detection-sub003/internal/model"
)

// Stats is a snapshot of the manager's lifetime counters.
type Stats struct {
	TotalDownloads       int64   `json:"total_downloads"`
	SuccessfulDownloads  int64   `json:"successful_downloads"`
	FailedDownloads      int64   `json:"failed_downloads"`
	TotalBytesDownloaded int64   `json:"total_bytes_downloaded"`
	AverageSpeed         float64 `json:"average_speed"` // bytes/sec
}

// aggregator accumulates counters across terminal results. AverageSpeed is
// a running average of per-task fileSize/duration, not instantaneous speed.
type aggregator struct {
	mu         sync.Mutex
	stats      Stats
	speedSum   float64
	speedCount int64
}

func (a *aggregator) record(res *model.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalDownloads++
	if !res.Success {
		a.stats.FailedDownloads++
		return
	}

	a.stats.SuccessfulDownloads++
	a.stats.TotalBytesDownloaded += res.FileSize
	if secs := res.Duration.Seconds(); secs > 0 {
		a.speedSum += float64(res.FileSize) / secs
		a.speedCount++
		a.stats.AverageSpeed = a.speedSum / float64(a.speedCount)
	}
}

func (a *aggregator) snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
