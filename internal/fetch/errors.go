package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Common errors.
var (
	ErrFileNotFound     = errors.New("fetch: file does not exist")
	ErrChecksumMismatch = errors.New("fetch: checksum mismatch")
)

// StatusError is returned for non-2xx HTTP responses. 5xx and 429 responses
// are retryable; other 4xx responses are terminal.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Retryable reports whether another attempt could plausibly succeed.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == 429
}

// WriteError is returned when the destination file cannot be written.
// Filesystem failures are terminal: retrying will not free disk space or
// grant permissions.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Retryable classifies a transfer failure. Network-level failures and
// timeouts are retryable; HTTP status errors follow StatusError.Retryable;
// filesystem and cancellation errors are terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}

	var we *WriteError
	if errors.As(err, &we) {
		return false
	}

	// DNS failures, connection resets and refusals surface as url.Error or
	// net.Error from the transport.
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}

	return false
}
