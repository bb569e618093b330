package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vme-analyzer.io/analyzer/internal/app/modules"
	"vme-analyzer.io/analyzer/internal/classifier"
	"vme-analyzer.io/analyzer/internal/config"
	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/normalizer"
	"vme-analyzer.io/analyzer/internal/repository"
)

type classifyOutput struct {
	Results     []domain.ClassifiedVM `json:"results"`
	Summary     domain.Summary        `json:"summary"`
	SkippedRows int                   `json:"skipped_rows"`
}

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var (
		input       string
		threshold   float64
		summaryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a JSON file of inventory rows",
		Long: `Classify reads VM rows as a JSON array, or as an object with a "rows"
array, and prints the classified rows and the tier summary as JSON.
Use --input - to read from stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, skipped, err := readRows(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			if skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d rows without a VM name\n", skipped)
			}

			seed, err := modules.LoadSeed(config.MatrixConfig{SeedFile: root.seedFile})
			if err != nil {
				return err
			}
			engine := classifier.New(
				repository.NewSeededMemoryStore(seed),
				classifier.WithNormalizer(normalizer.New(normalizer.WithThreshold(threshold))),
			)

			results := engine.ClassifyAll(cmd.Context(), rows)
			out := classifyOutput{Results: results, Summary: domain.Summarize(results), SkippedRows: skipped}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if summaryOnly {
				return enc.Encode(out.Summary)
			}
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "rows file (JSON), or - for stdin")
	cmd.Flags().Float64Var(&threshold, "threshold", normalizer.DefaultThreshold, "fuzzy match threshold in percent")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print only the tier summary")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// readRows decodes rows from path, or from stdin when path is "-". Rows
// without a name are dropped and counted. Missing row indexes are set to
// the position in the file.
func readRows(stdin io.Reader, path string) ([]domain.VMInputRow, int, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read rows: %w", err)
	}

	var rows []domain.VMInputRow
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Rows []domain.VMInputRow `json:"rows"`
		}
		err = json.Unmarshal(trimmed, &wrapped)
		rows = wrapped.Rows
	} else {
		err = json.Unmarshal(trimmed, &rows)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("decode rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no rows in %s", path)
	}

	named := rows[:0]
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		if row.RowIndex == 0 {
			row.RowIndex = i
		}
		named = append(named, row)
	}
	return named, len(rows) - len(named), nil
}
