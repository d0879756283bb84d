package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelmerge/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var alternate bool
	var sourceDir string
	var outputDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full extract-normalize-merge-load pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, logger)
			summary, err := p.Run(cmd.Context(), pipeline.Options{
				Alternate: alternate,
				SourceDir: strings.TrimSpace(sourceDir),
				OutputDir: strings.TrimSpace(outputDir),
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummaryTable(summary))
			fmt.Fprintf(cmd.OutOrStdout(), "Merged artifact: %s\n", summary.MergedPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&alternate, "alternate", false, "Read from the configured alternate source directory")
	cmd.Flags().StringVar(&sourceDir, "source", "", "Override the source directory for this run")
	cmd.Flags().StringVar(&outputDir, "output", "", "Override the output directory for this run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	return cmd
}

func renderSummaryTable(summary *pipeline.Summary) string {
	rows := [][]string{
		{"Files read", strconv.Itoa(summary.FilesRead)},
		{"Files failed", strconv.Itoa(summary.FilesFailed)},
		{"Rows extracted", strconv.Itoa(summary.RowsExtracted)},
		{"Rows skipped", strconv.Itoa(summary.RowsSkipped)},
		{"Canonical records", strconv.Itoa(summary.CanonicalCount)},
		{"Merged records", strconv.Itoa(summary.MergedCount)},
		{"Providers", strings.Join(summary.Providers, ", ")},
		{"Largest group", strconv.Itoa(summary.LargestGroup)},
		{"Elapsed", summary.Elapsed},
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
