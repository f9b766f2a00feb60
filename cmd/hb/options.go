package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/config"
	"github.com/hitboard/hitboard/internal/record"
	"github.com/hitboard/hitboard/internal/store"
)

var optionsRebuild bool

// IndexSyncResult reports what happened to one dataset in the index.
type IndexSyncResult struct {
	Dataset string `json:"dataset"`
	Records int    `json:"records"`
	Action  string `json:"action"` // "rebuilt" or "skipped"
}

// OptionsResponse is the response for the options command.
type OptionsResponse struct {
	Index   string            `json:"index"`
	Synced  []IndexSyncResult `json:"synced"`
	Options store.Options     `json:"options"`
}

func init() {
	optionsCmd.Flags().BoolVar(&optionsRebuild, "rebuild", false, "Re-index even when the datasets are unchanged")
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the filter options (regions, countries, years, genres)",
	Long: `List the values offered by the chart filters.

The values come from a SQLite index of the datasets, rebuilt only when a
dataset file changes. The index lives under the user cache directory unless
'index' is set in the config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		resp, err := buildOptions(cfg, loadAll(cfg), optionsRebuild)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			for _, s := range resp.Synced {
				outputHuman("%s: %s (%d records)\n", s.Dataset, s.Action, s.Records)
			}
			outputHuman("%s", resp.Options)
			return nil
		}
		return outputJSON(resp)
	},
}

// buildOptions syncs every loaded dataset into the index and reads the
// option lists back.
func buildOptions(cfg *config.Config, d loadedData, rebuild bool) (*OptionsResponse, error) {
	path := cfg.IndexPath()
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating index dir: %w", err)
		}
	}
	ix, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	resp := &OptionsResponse{Index: path}
	var songs, happiness string
	for _, ds := range []*record.Dataset{d.songs, d.happiness} {
		if ds == nil {
			continue
		}
		res, err := syncDataset(ix, ds, rebuild)
		if err != nil {
			return nil, err
		}
		resp.Synced = append(resp.Synced, res)
		if ds == d.songs {
			songs = ds.Schema.Name
		} else {
			happiness = ds.Schema.Name
		}
	}

	if resp.Options, err = ix.Options(songs, happiness); err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}
	return resp, nil
}

func syncDataset(ix *store.Index, ds *record.Dataset, rebuild bool) (IndexSyncResult, error) {
	res := IndexSyncResult{Dataset: ds.Schema.Name, Records: len(ds.Records), Action: "skipped"}
	hash, err := store.ComputeHash(ds.Path)
	if err != nil {
		return res, fmt.Errorf("hashing %s: %w", ds.Path, err)
	}
	needs, err := ix.NeedsSync(ds.Schema.Name, hash)
	if err != nil {
		slog.Debug("reading stored hash", slog.String("error", err.Error()))
	}
	if !needs && !rebuild {
		return res, nil
	}
	if _, err := ix.Sync(ds.Schema.Name, hash, ds.Records); err != nil {
		return res, fmt.Errorf("indexing %s: %w", ds.Schema.Name, err)
	}
	res.Action = "rebuilt"
	return res, nil
}
