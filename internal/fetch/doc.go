// Package fetch performs single streamed HTTP transfers to local files.
//
// This package handles:
//   - Connection pooling tuned for large artifact downloads
//   - Streaming writes with a rolling SHA-256 digest
//   - Range requests to resume interrupted transfers
//   - Throttled progress callbacks
//   - Retry with a fixed inter-attempt delay
//   - Classifying failures as retryable vs terminal
//
// # Usage
//
//	f := fetch.New(Options{})
//	out, err := f.Fetch(ctx, url, partPath, fetch.Request{
//	    OnProgress: func(downloaded, total int64) { ... },
//	})
//	// out.Bytes, out.SHA256
//
// Retry wrapping lives in RetryPolicy so the caller decides attempt counts
// and delays per task.
package fetch
