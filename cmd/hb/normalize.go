package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/record"
	"github.com/hitboard/hitboard/internal/store"
)

var normalizeOutput string

// NormalizeResponse is the response for the normalize command.
type NormalizeResponse struct {
	Dataset string   `json:"dataset"`
	Source  string   `json:"source"`
	Path    string   `json:"path"`
	Records int      `json:"records"`
	Fields  []string `json:"fields"`
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Output JSONL file (default: stdout)")
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <songs|happiness>",
	Short: "Write a dataset as normalized JSONL",
	Long: `Load a dataset from its configured candidates, normalize it, and write
one flat JSON object per record. Booleans are written with the truth token,
missing numbers are omitted, and songs carry their hit_count. The output can
be used as a dataset path in the config.

Examples:
  hb normalize songs -o songs.jsonl
  hb normalize happiness | head`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"songs", "happiness"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		ds := mustLoadDataset(cfg, args[0])
		truth := ds.Schema.TruthToken
		if truth == "" {
			truth = record.DefaultTruthToken
		}

		if normalizeOutput == "" {
			return store.EncodeRecords(os.Stdout, ds.Records, truth)
		}
		if err := store.WriteAllRecords(normalizeOutput, ds.Records, truth); err != nil {
			exitWithError(ExitError, "%v", err)
		}

		resp := NormalizeResponse{
			Dataset: ds.Schema.Name,
			Source:  ds.Path,
			Path:    normalizeOutput,
			Records: len(ds.Records),
			Fields:  store.Fields(ds.Records),
		}
		if humanOutput {
			outputHuman("Wrote %d %s records from %s to %s\n", resp.Records, resp.Dataset, resp.Source, resp.Path)
			outputHuman("Fields: %s\n", strings.Join(resp.Fields, ", "))
			return nil
		}
		return outputJSON(resp)
	},
}
