package main

import (
	"log/slog"

	"github.com/hitboard/hitboard/internal/config"
	"github.com/hitboard/hitboard/internal/record"
	"github.com/hitboard/hitboard/internal/scene"
)

// mustLoadSongs loads the song dataset, exits on error.
func mustLoadSongs(cfg *config.Config) *record.Dataset {
	ds, err := record.Load(cfg.SongPaths(), record.SongSchema())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return ds
}

// mustLoadHappiness loads the happiness dataset, exits on error.
func mustLoadHappiness(cfg *config.Config) *record.Dataset {
	ds, err := record.Load(cfg.HappinessPaths(), record.HappinessSchema())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return ds
}

// mustLoadDataset loads a dataset by schema name ("songs" or "happiness").
func mustLoadDataset(cfg *config.Config, name string) *record.Dataset {
	switch name {
	case "songs":
		return mustLoadSongs(cfg)
	case "happiness":
		return mustLoadHappiness(cfg)
	}
	exitWithError(ExitError, "unknown dataset %q (want songs or happiness)", name)
	return nil
}

// loadedData holds whichever datasets could be loaded.
type loadedData struct {
	songs     *record.Dataset
	happiness *record.Dataset
}

// loadAll loads both datasets, logging the ones that fail. It exits only
// when neither loads.
func loadAll(cfg *config.Config) loadedData {
	var d loadedData
	var err error
	if d.songs, err = record.Load(cfg.SongPaths(), record.SongSchema()); err != nil {
		slog.Warn("song charts disabled", slog.String("error", err.Error()))
	}
	if d.happiness, err = record.Load(cfg.HappinessPaths(), record.HappinessSchema()); err != nil {
		slog.Warn("happiness charts disabled", slog.String("error", err.Error()))
	}
	if d.songs == nil && d.happiness == nil {
		exitWithError(ExitDataError, "no dataset could be loaded")
	}
	return d
}

// charts builds every chart whose dataset loaded, in navigation order.
func (d loadedData) charts(cfg *config.Config) ([]scene.Chart, error) {
	var out []scene.Chart
	if d.songs != nil {
		flow, err := scene.NewFlow(d.songs.Records, cfg.Flow)
		if err != nil {
			return nil, err
		}
		out = append(out, flow)
	}
	if d.happiness != nil {
		out = append(out,
			scene.NewRadar(d.happiness.Records, cfg.Radar),
			scene.NewLeaderboard(d.happiness.Records, cfg.Leaderboard))
	}
	if d.songs != nil {
		out = append(out, scene.NewParallel(d.songs.Records, cfg.Parallel))
	}
	return out, nil
}
