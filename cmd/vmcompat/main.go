// Package main is vmcompat, the operator CLI of the VME compatibility
// analyzer. It classifies inventory rows offline against the built-in (or a
// file) matrix and mints admin API tokens.
//
// Import Path: vme-analyzer.io/analyzer/cmd/vmcompat
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vmcompat: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
	seedFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "vmcompat",
		Short: "Classify VMware guest operating systems for HPE VME",
		Long: `vmcompat reads guest OS strings from VMware inventory exports and assigns
each VM an HPE VME compatibility tier.

Available subcommands:
  normalize - Show how raw OS strings are read
  classify  - Classify a JSON file of inventory rows
  matrix    - Print the compatibility matrix and guidance
  token     - Mint a bearer token for the admin API`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return logger.Init(opts.logLevel, "console")
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.seedFile, "seed-file", "", "matrix seed YAML (default: built-in seed)")

	root.AddCommand(
		newNormalizeCmd(),
		newClassifyCmd(opts),
		newMatrixCmd(opts),
		newTokenCmd(),
	)
	return root
}
