package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sdow11/live-ad-detection-sub003/internal/model"
)

const defaultProgressInterval = 200 * time.Millisecond

// Options configures the fetcher's HTTP transport.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 16
	MaxIdleConnsPerHost int
}

// Fetcher performs streamed downloads. A single Fetcher is safe for
// concurrent use by multiple tasks.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher. Per-attempt timeouts are driven by the caller's
// context rather than a client-wide deadline.
func New(opts Options) *Fetcher {
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = 16
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true, // raw bytes, lengths must match Content-Length
	}

	return &Fetcher{
		client: &http.Client{Transport: transport},
	}
}

// Request configures a single transfer attempt.
type Request struct {
	// Headers are added to the HTTP request.
	Headers map[string]string

	// ResumeFrom is the number of bytes already present in the partial
	// file. When positive, a Range request continues from that offset and
	// the rolling digest is primed from the existing bytes.
	ResumeFrom int64

	// ProgressInterval bounds how often OnProgress fires.
	// Default: 200ms
	ProgressInterval time.Duration

	// OnProgress receives running absolute counters. total is
	// model.UnknownSize when the server does not advertise a length.
	OnProgress func(downloaded, total int64)
}

// Outcome describes a completed transfer attempt.
type Outcome struct {
	Bytes   int64  // bytes now present, including any resumed prefix
	Total   int64  // advertised total, or model.UnknownSize
	SHA256  string // lowercase hex digest of the full file content
	Resumed bool   // whether the server honored the range request
}

// Fetch streams rawURL into partPath, creating parent directories as needed.
// The digest is accumulated while writing so no second read pass is needed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, partPath string, req Request) (*Outcome, error) {
	if err := os.MkdirAll(filepath.Dir(partPath), 0o755); err != nil {
		return nil, &WriteError{Path: partPath, Err: err}
	}

	digest := sha256.New()
	resumeFrom := req.ResumeFrom
	if resumeFrom > 0 {
		n, err := primeDigest(digest, partPath, resumeFrom)
		if err != nil {
			return nil, err
		}
		resumeFrom = n
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if resumeFrom > 0 {
		httpReq.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeFrom))
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resumed := false
	switch {
	case resumeFrom > 0 && resp.StatusCode == http.StatusPartialContent:
		resumed = true
	case resumeFrom > 0 && resp.StatusCode == http.StatusOK:
		// Server ignored the range request; restart from zero.
		resumeFrom = 0
		digest = sha256.New()
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	default:
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	total := model.UnknownSize
	if resp.ContentLength >= 0 {
		total = resumeFrom + resp.ContentLength
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resumed {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(partPath, flags, 0o644)
	if err != nil {
		return nil, &WriteError{Path: partPath, Err: err}
	}
	defer file.Close()

	written, err := copyBody(resp.Body, file, digest, resumeFrom, total, req)
	if err != nil {
		return nil, err
	}

	if err := file.Sync(); err != nil {
		return nil, &WriteError{Path: partPath, Err: err}
	}
	if err := file.Close(); err != nil {
		return nil, &WriteError{Path: partPath, Err: err}
	}

	out := &Outcome{
		Bytes:   resumeFrom + written,
		Total:   total,
		SHA256:  hex.EncodeToString(digest.Sum(nil)),
		Resumed: resumed,
	}
	if req.OnProgress != nil {
		req.OnProgress(out.Bytes, out.Total)
	}
	return out, nil
}

// copyBody streams the response body to the file while updating the digest
// and firing the progress callback at a bounded rate.
func copyBody(body io.Reader, file *os.File, digest hash.Hash, offset, total int64, req Request) (int64, error) {
	interval := req.ProgressInterval
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	buf := make([]byte, 32*1024)
	var written int64
	lastReport := time.Now()

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				return written, &WriteError{Path: file.Name(), Err: writeErr}
			}
			digest.Write(buf[:n])
			written += int64(n)

			if req.OnProgress != nil && time.Since(lastReport) >= interval {
				lastReport = time.Now()
				req.OnProgress(offset+written, total)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}
}

// primeDigest replays up to limit bytes of the existing partial file through
// the digest. Returns the number of bytes actually replayed, which becomes
// the resume offset.
func primeDigest(digest hash.Hash, partPath string, limit int64) (int64, error) {
	file, err := os.Open(partPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open partial file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(digest, io.LimitReader(file, limit))
	if err != nil {
		return 0, fmt.Errorf("read partial file: %w", err)
	}
	return n, nil
}
