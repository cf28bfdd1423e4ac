// Package progress provides console progress reporting for downloads.
//
// This package outputs human-readable progress information, including
// completion percentage, transfer speed, and ETA across the tasks of a
// batch.
//
// # Usage
//
//	reporter := progress.NewReporter(Options{
//	    TotalTasks: len(reqs),
//	    TotalSize:  totalBytes,
//	    Output:     os.Stderr,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as transfers advance
//	reporter.AddBytes(delta)
//	reporter.TaskCompleted()
//
// # Output Format
//
//	[modelfetch] Downloading 3 files | 4 workers
//	[modelfetch] Progress: 45.2% | 1.13 GB / 2.50 GB | Speed: 48.1 MB/s | ETA: 29s
//	[modelfetch] Tasks: 1 completed | 2 in-progress | 0 failed
package progress
