package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sdow11/live-ad-detection-sub003/internal/fetch"
	"github.com/sdow11/live-ad-detection-sub003/internal/model"
)

// Partial data lives next to the destination until the transfer completes.
const partSuffix = ".part"

const pausedError = "download paused"

// ErrTaskNotFound is returned when a control operation names an unknown task.
var ErrTaskNotFound = errors.New("manager: task not found")

// Defaults configures manager-wide fallbacks for zero option fields.
type Defaults struct {
	// MaxConcurrent caps simultaneous transfers per batch call.
	// Default: 4
	MaxConcurrent int

	// Retries is the number of attempts beyond the first.
	Retries int

	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration

	// Timeout bounds each transfer attempt. Zero means unbounded.
	Timeout time.Duration

	// Resume keeps partial data and continues via range requests.
	Resume bool

	// ProgressInterval bounds how often per-task progress callbacks fire.
	// Zero uses the fetch package default.
	ProgressInterval time.Duration

	// HistoryLimit bounds how many terminal tasks the registry retains.
	// Default: 100
	HistoryLimit int
}

func (d Defaults) withFallbacks() Defaults {
	if d.MaxConcurrent <= 0 {
		d.MaxConcurrent = 4
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 100
	}
	return d
}

// entry pairs a task with its control state. The task pointer is only
// mutated while holding the manager mutex.
type entry struct {
	task *model.Task
	opts model.Options

	cancel        context.CancelFunc // cancels the current run, nil when idle
	runStart      time.Time
	runStartBytes int64
}

// Manager tracks every download task and exposes the call contract used by
// the HTTP layer and the CLI. Safe for concurrent use.
type Manager struct {
	defaults Defaults
	fetcher  *fetch.Fetcher

	// sleep is the retry delay primitive, injected in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	tasks map[string]*entry
	order []string
	stats aggregator
}

// New creates a manager with the given defaults.
func New(defaults Defaults) *Manager {
	return &Manager{
		defaults: defaults.withFallbacks(),
		fetcher:  fetch.New(fetch.Options{}),
		tasks:    make(map[string]*entry),
	}
}

// effective resolves per-call options against the manager defaults. A nil
// opts means "all defaults"; a non-nil opts is authoritative for Retries and
// Resume so callers can express zero retries explicitly.
func (m *Manager) effective(opts *model.Options) model.Options {
	if opts == nil {
		return model.Options{
			Timeout:    m.defaults.Timeout,
			Retries:    m.defaults.Retries,
			RetryDelay: m.defaults.RetryDelay,
			Resume:     m.defaults.Resume,
		}
	}
	eff := *opts
	if eff.Timeout == 0 {
		eff.Timeout = m.defaults.Timeout
	}
	return eff
}

// Download fetches url to destPath and blocks until the task reaches a
// terminal state or is paused. Transfer failures are reported inside the
// Result; the error return is reserved for invalid arguments.
func (m *Manager) Download(ctx context.Context, url, destPath string, opts *model.Options) (*model.Result, error) {
	if url == "" {
		return nil, errors.New("manager: url is required")
	}
	if destPath == "" {
		return nil, errors.New("manager: destination path is required")
	}

	e := m.register(url, destPath, m.effective(opts))
	return m.run(ctx, e), nil
}

// DownloadBatch runs every request through a bounded worker pool. Results
// align positionally with reqs regardless of completion order, and one
// request's failure never cancels its siblings.
func (m *Manager) DownloadBatch(ctx context.Context, reqs []model.Request) []*model.Result {
	results := make([]*model.Result, len(reqs))

	limit := m.defaults.MaxConcurrent
	for _, r := range reqs {
		if r.Options != nil && r.Options.MaxConcurrent > 0 {
			limit = r.Options.MaxConcurrent
			break
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i := range reqs {
		i, req := i, reqs[i]
		g.Go(func() error {
			opts := req.Options
			if req.Checksum != "" {
				merged := model.Options{}
				if opts != nil {
					merged = *opts
				}
				merged.Checksum = req.Checksum
				opts = &merged
			}

			res, err := m.Download(ctx, req.URL, req.DestPath, opts)
			if err != nil {
				res = &model.Result{Success: false, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}

	g.Wait()
	return results
}

// Pause aborts the in-flight attempt of an InProgress task. Returns false
// for unknown tasks and tasks in any other state.
func (m *Manager) Pause(id string) bool {
	m.mu.Lock()
	e, ok := m.tasks[id]
	if !ok || e.task.Status != model.StatusInProgress {
		m.mu.Unlock()
		return false
	}
	m.setStatusLocked(e, model.StatusPaused)
	cancel := e.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// Resume restarts a Paused task and blocks until it reaches a terminal
// state or is paused again. Resuming a task in any other state is an
// explicit error, not a silent restart.
func (m *Manager) Resume(ctx context.Context, id string) (*model.Result, error) {
	m.mu.Lock()
	e, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if e.task.Status != model.StatusPaused {
		status := e.task.Status
		m.mu.Unlock()
		return nil, fmt.Errorf("manager: cannot resume task in status %s", status)
	}

	if !e.opts.Resume {
		// Restarting from zero: documented behavior when resume support is
		// off or the server ignores range requests.
		os.Remove(e.task.DestPath + partSuffix)
		e.task.Progress.DownloadedBytes = 0
		e.task.Progress.Percentage = 0
		e.task.Progress.Speed = 0
	}
	m.mu.Unlock()

	return m.run(ctx, e), nil
}

// Cancel aborts an InProgress or Paused task. No further retry attempts
// occur. Returns false for unknown tasks and tasks in any other state.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	e, ok := m.tasks[id]
	if !ok || !e.task.Status.Active() {
		m.mu.Unlock()
		return false
	}

	wasPaused := e.task.Status == model.StatusPaused
	m.setStatusLocked(e, model.StatusCancelled)
	cancel := e.cancel
	m.mu.Unlock()

	if wasPaused {
		// No goroutine owns a paused task, so finalize here.
		m.finalizeCancelled(e)
	} else if cancel != nil {
		cancel()
	}
	return true
}

// Progress returns a snapshot of the task's progress, or nil if unknown.
func (m *Manager) Progress(id string) *model.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.tasks[id]
	if !ok {
		return nil
	}
	p := e.task.Progress
	return &p
}

// Get returns a copy of the task, or nil if unknown.
func (m *Manager) Get(id string) *model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.tasks[id]; ok {
		return e.task.Clone()
	}
	return nil
}

// ActiveTasks returns copies of all non-terminal tasks in submission order.
func (m *Manager) ActiveTasks() []*model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Task
	for _, id := range m.order {
		if e := m.tasks[id]; e != nil && !e.task.Status.Terminal() {
			out = append(out, e.task.Clone())
		}
	}
	return out
}

// Tasks returns copies of every retained task in submission order,
// including recently completed ones up to the history limit.
func (m *Manager) Tasks() []*model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Task, 0, len(m.order))
	for _, id := range m.order {
		if e := m.tasks[id]; e != nil {
			out = append(out, e.task.Clone())
		}
	}
	return out
}

// Verify recomputes the SHA-256 of the file at path and compares it to
// expectedHex. A mismatch is a normal false result; a missing file is an
// error.
func (m *Manager) Verify(path, expectedHex string) (bool, error) {
	return fetch.VerifyFile(path, expectedHex)
}

// Stats returns a snapshot of the lifetime counters. Cleanup never resets
// them.
func (m *Manager) Stats() Stats {
	return m.stats.snapshot()
}

// Cleanup evicts terminal tasks whose completion is older than olderThan,
// or every terminal task when olderThan is zero or negative.
func (m *Manager) Cleanup(olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	for _, id := range m.order {
		e := m.tasks[id]
		if e == nil {
			continue
		}
		if e.task.Status.Terminal() && (olderThan <= 0 || e.task.CompletedAt.Before(cutoff)) {
			delete(m.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

// register creates a Pending task and stores it in the registry.
func (m *Manager) register(url, destPath string, opts model.Options) *entry {
	task := &model.Task{
		ID:       uuid.NewString(),
		URL:      url,
		DestPath: destPath,
		Status:   model.StatusPending,
		Progress: model.Progress{
			Status:     model.StatusPending,
			TotalBytes: model.UnknownSize,
		},
	}
	e := &entry{task: task, opts: opts}

	m.mu.Lock()
	m.tasks[task.ID] = e
	m.order = append(m.order, task.ID)
	m.trimHistoryLocked()
	m.mu.Unlock()

	return e
}

// trimHistoryLocked evicts the oldest terminal tasks beyond the history
// limit. Active tasks are never evicted.
func (m *Manager) trimHistoryLocked() {
	terminal := 0
	for _, id := range m.order {
		if e := m.tasks[id]; e != nil && e.task.Status.Terminal() {
			terminal++
		}
	}
	if terminal <= m.defaults.HistoryLimit {
		return
	}

	kept := m.order[:0]
	for _, id := range m.order {
		e := m.tasks[id]
		if e == nil {
			continue
		}
		if terminal > m.defaults.HistoryLimit && e.task.Status.Terminal() {
			delete(m.tasks, id)
			terminal--
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
}

// run drives one task through the retry policy until success, exhaustion,
// pause, or cancellation.
func (m *Manager) run(ctx context.Context, e *entry) *model.Result {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	m.setStatusLocked(e, model.StatusInProgress)
	if e.task.StartedAt.IsZero() {
		e.task.StartedAt = time.Now()
	}
	e.cancel = cancel
	e.runStart = time.Now()
	e.runStartBytes = e.task.Progress.DownloadedBytes
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		e.cancel = nil
		m.mu.Unlock()
	}()

	partPath := e.task.DestPath + partSuffix

	policy := fetch.RetryPolicy{
		Retries: e.opts.Retries,
		Delay:   e.opts.RetryDelay,
		Sleep:   m.sleep,
	}

	var out *fetch.Outcome
	err := policy.Do(runCtx, func(attemptCtx context.Context) error {
		if e.opts.Timeout > 0 {
			var cancelAttempt context.CancelFunc
			attemptCtx, cancelAttempt = context.WithTimeout(attemptCtx, e.opts.Timeout)
			defer cancelAttempt()
		}

		var resumeFrom int64
		if e.opts.Resume {
			if fi, statErr := os.Stat(partPath); statErr == nil {
				resumeFrom = fi.Size()
			}
		} else {
			// No resume support: a retry must not append to a torn write.
			os.Remove(partPath)
		}

		o, ferr := m.fetcher.Fetch(attemptCtx, e.task.URL, partPath, fetch.Request{
			Headers:          e.opts.Headers,
			ResumeFrom:       resumeFrom,
			ProgressInterval: m.defaults.ProgressInterval,
			OnProgress: func(downloaded, total int64) {
				m.updateProgress(e, downloaded, total)
			},
		})
		if ferr != nil {
			return ferr
		}
		out = o
		return nil
	})

	if err != nil {
		return m.finishFailure(e, partPath, err)
	}
	return m.finishSuccess(e, partPath, out)
}

// updateProgress folds a transfer callback into the task snapshot and fans
// it out to the caller's callback. DownloadedBytes never decreases while
// the task is in progress.
func (m *Manager) updateProgress(e *entry, downloaded, total int64) {
	m.mu.Lock()
	p := &e.task.Progress
	if downloaded > p.DownloadedBytes {
		p.DownloadedBytes = downloaded
	}
	p.TotalBytes = total

	if total > 0 {
		pct := float64(p.DownloadedBytes) / float64(total) * 100
		if pct > 100 {
			pct = 100
		}
		p.Percentage = pct
	} else {
		p.Percentage = 0
	}

	elapsed := time.Since(e.runStart).Seconds()
	if elapsed > 0 {
		p.Speed = float64(p.DownloadedBytes-e.runStartBytes) / elapsed
	}
	if total > 0 && p.Speed > 0 {
		p.ETASeconds = float64(total-p.DownloadedBytes) / p.Speed
	}

	snapshot := *p
	m.mu.Unlock()

	if e.opts.OnProgress != nil {
		e.opts.OnProgress(snapshot)
	}
}

// finishSuccess moves the partial file into place, runs the automatic
// checksum verification when an expected digest was supplied, and records
// the terminal outcome.
func (m *Manager) finishSuccess(e *entry, partPath string, out *fetch.Outcome) *model.Result {
	m.mu.Lock()
	if e.task.Status == model.StatusCancelled {
		m.mu.Unlock()
		return m.finalizeCancelled(e)
	}
	m.mu.Unlock()

	if err := os.Rename(partPath, e.task.DestPath); err != nil {
		return m.finishFailure(e, partPath, &fetch.WriteError{Path: e.task.DestPath, Err: err})
	}

	if want := strings.ToLower(e.opts.Checksum); want != "" && want != out.SHA256 {
		os.Remove(e.task.DestPath)
		err := fmt.Errorf("%w: expected %s, got %s", fetch.ErrChecksumMismatch, want, out.SHA256)
		return m.finishFailure(e, partPath, err)
	}

	m.mu.Lock()
	m.setStatusLocked(e, model.StatusCompleted)
	e.task.CompletedAt = time.Now()
	p := &e.task.Progress
	p.DownloadedBytes = out.Bytes
	p.TotalBytes = out.Bytes
	p.Percentage = 100
	p.ETASeconds = 0
	duration := e.task.CompletedAt.Sub(e.task.StartedAt)
	snapshot := *p
	m.mu.Unlock()

	res := &model.Result{
		TaskID:   e.task.ID,
		Success:  true,
		FilePath: e.task.DestPath,
		FileSize: out.Bytes,
		Duration: duration,
		Checksum: out.SHA256,
	}
	m.stats.record(res)

	if e.opts.OnProgress != nil {
		e.opts.OnProgress(snapshot)
	}
	return res
}

// finishFailure resolves a failed run into Paused, Cancelled, or Failed.
// Paused tasks stay resumable and do not touch the statistics.
func (m *Manager) finishFailure(e *entry, partPath string, cause error) *model.Result {
	m.mu.Lock()
	status := e.task.Status
	m.mu.Unlock()

	switch status {
	case model.StatusCancelled:
		return m.finalizeCancelled(e)

	case model.StatusPaused:
		if !e.opts.Resume {
			os.Remove(partPath)
		}
		return &model.Result{
			TaskID:  e.task.ID,
			Success: false,
			Error:   pausedError,
		}
	}

	if !e.opts.Resume {
		os.Remove(partPath)
	}

	m.mu.Lock()
	m.setStatusLocked(e, model.StatusFailed)
	e.task.CompletedAt = time.Now()
	e.task.Error = cause.Error()
	duration := e.task.CompletedAt.Sub(e.task.StartedAt)
	snapshot := e.task.Progress
	m.mu.Unlock()

	res := &model.Result{
		TaskID:   e.task.ID,
		Success:  false,
		Duration: duration,
		Error:    cause.Error(),
	}
	m.stats.record(res)

	if e.opts.OnProgress != nil {
		e.opts.OnProgress(snapshot)
	}
	return res
}

// finalizeCancelled cleans up partial data and records the terminal
// outcome of a cancelled task. Partial bytes are preserved only when the
// task's options enable resume. Cancelling a paused task and the runner
// observing the cancellation can both land here; only the first records
// the outcome.
func (m *Manager) finalizeCancelled(e *entry) *model.Result {
	if !e.opts.Resume {
		os.Remove(e.task.DestPath + partSuffix)
	}

	m.mu.Lock()
	first := e.task.CompletedAt.IsZero()
	if first {
		e.task.CompletedAt = time.Now()
		e.task.Error = "cancelled"
	}
	duration := e.task.CompletedAt.Sub(e.task.StartedAt)
	snapshot := e.task.Progress
	m.mu.Unlock()

	res := &model.Result{
		TaskID:   e.task.ID,
		Success:  false,
		Duration: duration,
		Error:    "cancelled",
	}
	if first {
		m.stats.record(res)
		if e.opts.OnProgress != nil {
			e.opts.OnProgress(snapshot)
		}
	}
	return res
}

// setStatusLocked keeps the task status and its progress snapshot in sync.
func (m *Manager) setStatusLocked(e *entry, s model.Status) {
	e.task.Status = s
	e.task.Progress.Status = s
}
