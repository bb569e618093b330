package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"vme-analyzer.io/analyzer/internal/normalizer"
)

func newNormalizeCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "normalize OS [OS...]",
		Short: "Show how raw OS strings are read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := normalizer.New(normalizer.WithThreshold(threshold))
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, raw := range args {
				if err := enc.Encode(n.Normalize(raw)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", normalizer.DefaultThreshold, "fuzzy match threshold in percent")
	return cmd
}
