// Package main provides the hb CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hb",
	Short: "Streaming hits and world happiness charts",
	Long: `hb renders four linked charts from two datasets:

  flow         platforms to genres, ribbons weighted by hit counts
  radar        happiness factor profiles by region or country
  leaderboard  yearly top countries by happiness score
  parallel     audio features of songs that are hits on many platforms

Charts are written as JSON scenes (default), SVG or HTML, and served
interactively with 'hb serve'. Settings come from hitboard.yml, the global
config and HITBOARD_* environment variables (a .env file is honored).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./hitboard.yml, then the global config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.Version = Version
}

// setup loads .env and installs the stderr logger.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}
