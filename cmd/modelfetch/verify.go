package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdow11/live-ad-detection-sub003/internal/fetch"
)

var verifyCmd = &cobra.Command{
	Use:     "verify FILE CHECKSUM",
	Short:   "Verify a file against an expected SHA-256",
	Example: "  modelfetch verify /models/detector.onnx 9f86d081884c7d65...",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := fetch.VerifyFile(args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("checksum mismatch for %s", args[0])
		}
		fmt.Fprintf(os.Stderr, "[modelfetch] OK %s\n", args[0])
		return nil
	},
}
