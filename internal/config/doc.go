// Package config defines configuration for the modelfetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (MODELFETCH_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    MaxConcurrent int
//	    Progress      bool
//	    Mirror        string
//	    Retry         RetryConfig
//	    Transfer      TransferConfig
//	}
//
//	type RetryConfig struct {
//	    Retries int
//	    Delay   time.Duration
//	}
//
//	type TransferConfig struct {
//	    Timeout time.Duration
//	    Resume  bool
//	}
package config
