// Package manager orchestrates model artifact downloads.
//
// A Manager owns the task registry (an id-keyed map guarded by one mutex),
// admits batch requests through a bounded worker pool, wraps each transfer
// in the retry policy, and accumulates lifetime statistics.
//
// # Usage
//
//	m := manager.New(manager.Defaults{MaxConcurrent: 4, Retries: 3})
//	res, err := m.Download(ctx, url, "/models/detector.onnx", nil)
//	// res.Success, res.Checksum
//
// Ordinary transfer failures are data inside Result; errors are returned
// only for caller bugs such as an empty URL.
//
// # Pause and resume
//
// Pause aborts the in-flight attempt and keeps the task resumable; the
// blocked Download call returns a non-success Result whose Error notes the
// pause. Resume continues from the last confirmed byte offset when the
// task's options enable resume and the server honors range requests;
// otherwise it restarts the transfer from zero.
package manager
