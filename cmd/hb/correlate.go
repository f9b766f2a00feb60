package main

import (
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/record"
)

var (
	correlatePlatform string
	correlateTop      int
)

func init() {
	correlateCmd.Flags().StringVarP(&correlatePlatform, "platform", "p", "", "Only show the strongest features of this platform")
	correlateCmd.Flags().IntVarP(&correlateTop, "top", "n", 5, "Number of features with --platform (0 = all)")
	rootCmd.AddCommand(correlateCmd)
}

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate audio features with platform hits",
	Long: `Compute the Pearson correlation of every audio feature with every
platform's hit flag. Degenerate rows (a constant column) report 0.

Examples:
  hb correlate --human
  hb correlate --platform TikTok --top 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		platforms := record.Platforms
		if correlatePlatform != "" {
			p, ok := record.PlatformByName(correlatePlatform)
			if !ok {
				exitWithError(ExitError, "unknown platform %q", correlatePlatform)
			}
			platforms = []record.Platform{p}
		}

		cfg := mustLoadConfig()
		ds := mustLoadSongs(cfg)
		rows := aggregate.PlatformFeatureMatrix(ds.Records, platforms, record.AudioFeatures)
		if correlatePlatform != "" {
			rows = aggregate.Strongest(rows, correlatePlatform, correlateTop)
		}

		if !humanOutput {
			return outputJSON(rows)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		outputHumanTo(tw, "PLATFORM\tFEATURE\tCORRELATION\n")
		for _, r := range rows {
			note := ""
			if r.Degenerate {
				note = " (constant)"
			}
			outputHumanTo(tw, "%s\t%s\t%+.3f%s\n", r.Platform, r.Feature, r.Value, note)
		}
		return tw.Flush()
	},
}
