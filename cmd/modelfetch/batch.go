package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sdow11/live-ad-detection-sub003/internal/config"
	"github.com/sdow11/live-ad-detection-sub003/internal/manager"
	"github.com/sdow11/live-ad-detection-sub003/internal/model"
	"github.com/sdow11/live-ad-detection-sub003/internal/progress"
)

// manifest is the YAML batch description:
//
//	downloads:
//	  - url: https://models.example.com/detector.onnx
//	    dest: /models/detector.onnx
//	    checksum: 9f86d08...
type manifest struct {
	Downloads []model.Request `yaml:"downloads"`
}

var batchCmd = &cobra.Command{
	Use:     "batch MANIFEST",
	Short:   "Download every entry of a YAML manifest",
	Example: "  modelfetch batch -c 4 models.yaml",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		var mf manifest
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return fmt.Errorf("parse manifest: %w", err)
		}
		if len(mf.Downloads) == 0 {
			return fmt.Errorf("manifest %s contains no downloads", args[0])
		}

		m := manager.New(managerDefaults(cfg))

		var reporter *progress.Reporter
		if cfg.Progress {
			reporter = progress.NewReporter(progress.Options{
				TotalTasks: len(mf.Downloads),
				Workers:    cfg.MaxConcurrent,
				Output:     os.Stderr,
			})
			reporter.Start()
			defer reporter.Stop()
		}

		reqs := make([]model.Request, len(mf.Downloads))
		for i, d := range mf.Downloads {
			reqs[i] = d
			reqs[i].Options = batchOptions(cfg, reporter)
		}

		results := m.DownloadBatch(cmd.Context(), reqs)

		failed := 0
		for i, res := range results {
			if res.Success {
				fmt.Fprintf(os.Stderr, "[modelfetch] ok   %s (%s)\n",
					res.FilePath, progress.FormatBytes(res.FileSize))
				if cfg.Mirror != "" {
					if err := mirrorFile(cmd, cfg.Mirror, res); err != nil {
						fmt.Fprintf(os.Stderr, "[modelfetch] mirror failed: %v\n", err)
						failed++
					}
				}
				continue
			}
			failed++
			fmt.Fprintf(os.Stderr, "[modelfetch] FAIL %s: %s\n", reqs[i].URL, res.Error)
		}

		stats := m.Stats()
		fmt.Fprintf(os.Stderr, "[modelfetch] %d/%d succeeded | %s transferred | avg %s/s\n",
			stats.SuccessfulDownloads,
			stats.TotalDownloads,
			progress.FormatBytes(stats.TotalBytesDownloaded),
			progress.FormatBytes(int64(stats.AverageSpeed)),
		)

		if failed > 0 {
			return fmt.Errorf("%d of %d downloads failed", failed, len(results))
		}
		return nil
	},
}

// batchOptions builds per-request options carrying the shared config and,
// when enabled, a per-task progress hook feeding the reporter.
func batchOptions(cfg config.Config, reporter *progress.Reporter) *model.Options {
	opts := &model.Options{
		Timeout:       cfg.Transfer.Timeout,
		Retries:       cfg.Retry.Retries,
		RetryDelay:    cfg.Retry.Delay,
		Resume:        cfg.Transfer.Resume,
		MaxConcurrent: cfg.MaxConcurrent,
	}
	if reporter == nil {
		return opts
	}

	reporter.TaskStarted()
	var last int64
	done := false
	opts.OnProgress = func(p model.Progress) {
		reporter.AddBytes(p.DownloadedBytes - last)
		last = p.DownloadedBytes
		if p.Status.Terminal() && !done {
			done = true
			if p.Status == model.StatusCompleted {
				reporter.TaskCompleted()
			} else {
				reporter.TaskFailed()
			}
		}
	}
	return opts
}
