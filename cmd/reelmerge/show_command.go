package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelmerge/internal/load"
	"reelmerge/internal/merge"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var limit int
	var dir string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the newest merged dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(dir)
			if target == "" {
				target = cfg.Output.Dir
			}

			path, err := load.LatestMergedPath(target)
			if err != nil {
				return err
			}
			doc, err := load.ReadMerged(path)
			if err != nil {
				return err
			}

			total := len(doc.Records)
			if limit > 0 && total > limit {
				doc.Records = doc.Records[:limit]
			}

			if asJSON {
				return writeJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Merged dataset %s (generated %s, %d movies)\n", path, doc.GeneratedAt, total)
			fmt.Fprintln(out, renderMergedTable(doc.Records))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the merged document as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many movies (0 for all)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to search instead of the configured output directory")
	return cmd
}

func renderMergedTable(records []merge.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.MovieID,
			rec.MovieTitle,
			formatOptionalInt(rec.ReleaseYear),
			formatOptionalFloat(rec.Ratings.Critic.Score),
			formatOptionalFloat(rec.Ratings.Audience.Score),
			formatOptionalDollars(rec.Financials.DomesticBoxOfficeUSD),
			formatOptionalDollars(rec.Financials.WorldwideBoxOfficeUSD),
			strings.Join(rec.Providers, ", "),
		})
	}
	headers := []string{"ID", "Title", "Year", "Critic", "Audience", "Domestic", "Worldwide", "Providers"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatOptionalDollars(v *int64) string {
	if v == nil {
		return "-"
	}
	return "$" + strconv.FormatInt(*v, 10)
}
