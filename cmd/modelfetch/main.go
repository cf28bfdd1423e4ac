// Command modelfetch downloads model artifacts over HTTP with bounded
// concurrency, retries, checksum verification, and an optional object
// storage mirror.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	// Register the bucket drivers usable as mirror targets.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/sdow11/live-ad-detection-sub003/internal/config"
	"github.com/sdow11/live-ad-detection-sub003/internal/manager"
)

var (
	cfgFile  string
	flagOpts config.Config
)

var rootCmd = &cobra.Command{
	Use:          "modelfetch",
	Short:        "Download model artifacts with bounded concurrency, retries, and integrity checks.",
	SilenceUsage: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[modelfetch] Received interrupt, shutting down...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: defaults, then the YAML
// file, then environment variables, then explicit flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	if cfgFile != "" {
		fileCfg, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	cfg = cfg.Merge(flagOpts)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to YAML config file")
	pf.IntVarP(&flagOpts.MaxConcurrent, "max-concurrent", "c", 0, "max simultaneous transfers")
	pf.IntVarP(&flagOpts.Retry.Retries, "retries", "r", 0, "retry attempts beyond the first")
	pf.DurationVar(&flagOpts.Retry.Delay, "retry-delay", 0, "delay between attempts")
	pf.DurationVarP(&flagOpts.Transfer.Timeout, "timeout", "t", 0, "per-attempt timeout")
	pf.BoolVar(&flagOpts.Transfer.Resume, "resume", false, "keep partial data and resume via range requests")
	pf.BoolVar(&flagOpts.Progress, "progress", false, "show live progress")
	pf.StringVar(&flagOpts.Mirror, "mirror", "", "bucket URL to mirror completed files to (s3://, gs://, file://)")
}

func init() {
	rootCmd.AddCommand(getCmd, batchCmd, verifyCmd)
}

// managerDefaults converts the resolved config into manager defaults.
func managerDefaults(cfg config.Config) manager.Defaults {
	return manager.Defaults{
		MaxConcurrent: cfg.MaxConcurrent,
		Retries:       cfg.Retry.Retries,
		RetryDelay:    cfg.Retry.Delay,
		Timeout:       cfg.Transfer.Timeout,
		Resume:        cfg.Transfer.Resume,
	}
}
