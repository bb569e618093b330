package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vme-analyzer.io/analyzer/internal/app/modules"
	"vme-analyzer.io/analyzer/internal/config"
)

func newMatrixCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the compatibility matrix and guidance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := modules.LoadSeed(config.MatrixConfig{SeedFile: root.seedFile})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(seed); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"matrix":   seed.MatrixEntries(),
					"guidance": seed.GuidanceEntries(),
				})
			case "table":
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VENDOR\tFAMILY\tVERSIONS\tTIER")
				for _, e := range seed.MatrixEntries() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Vendor, e.Family, e.Versions, e.Tier)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown format %q (table, yaml, json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, yaml or json")
	return cmd
}
