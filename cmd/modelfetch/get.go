package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdow11/live-ad-detection-sub003/internal/manager"
	"github.com/sdow11/live-ad-detection-sub003/internal/model"
	"github.com/sdow11/live-ad-detection-sub003/internal/progress"
	"github.com/sdow11/live-ad-detection-sub003/internal/store"
)

var getChecksum string

var getCmd = &cobra.Command{
	Use:     "get URL DEST",
	Short:   "Download a single model file",
	Example: "  modelfetch get -r 3 --resume https://models.example.com/detector.onnx /models/detector.onnx",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		m := manager.New(managerDefaults(cfg))

		opts := &model.Options{
			Timeout:    cfg.Transfer.Timeout,
			Retries:    cfg.Retry.Retries,
			RetryDelay: cfg.Retry.Delay,
			Resume:     cfg.Transfer.Resume,
			Checksum:   getChecksum,
		}

		var reporter *progress.Reporter
		if cfg.Progress {
			reporter = progress.NewReporter(progress.Options{
				TotalTasks: 1,
				Workers:    1,
				Output:     os.Stderr,
			})
			reporter.Start()
			reporter.TaskStarted()
			defer reporter.Stop()

			var last int64
			opts.OnProgress = func(p model.Progress) {
				reporter.AddBytes(p.DownloadedBytes - last)
				last = p.DownloadedBytes
			}
		}

		res, err := m.Download(cmd.Context(), args[0], args[1], opts)
		if err != nil {
			return err
		}
		if !res.Success {
			if reporter != nil {
				reporter.TaskFailed()
			}
			return fmt.Errorf("download failed: %s", res.Error)
		}
		if reporter != nil {
			reporter.TaskCompleted()
		}

		fmt.Fprintf(os.Stderr, "[modelfetch] Downloaded %s (%s, sha256=%s)\n",
			res.FilePath, progress.FormatBytes(res.FileSize), res.Checksum)

		if cfg.Mirror != "" {
			if err := mirrorFile(cmd, cfg.Mirror, res); err != nil {
				return err
			}
		}
		return nil
	},
}

// mirrorFile uploads a completed download to the configured mirror bucket.
func mirrorFile(cmd *cobra.Command, bucketURL string, res *model.Result) error {
	st, err := store.Open(cmd.Context(), bucketURL)
	if err != nil {
		return err
	}
	defer st.Close()

	key := filepath.Base(res.FilePath)
	if err := st.Mirror(cmd.Context(), res.FilePath, key, res.Checksum); err != nil {
		return fmt.Errorf("mirror %s: %w", key, err)
	}
	fmt.Fprintf(os.Stderr, "[modelfetch] Mirrored %s to %s\n", key, bucketURL)
	return nil
}

func init() {
	getCmd.Flags().StringVar(&getChecksum, "checksum", "", "expected SHA-256 (hex); mismatch fails the download")
}
