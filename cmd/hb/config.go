package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hitboard/hitboard/internal/config"
)

var (
	configInitGlobal bool
	configInitForce  bool
)

func init() {
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "Write the global config instead of ./hitboard.yml")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create configuration",
	Long: `Show or create configuration.

The config is read from --config, $HITBOARD_CONFIG, the nearest hitboard.yml
above the current directory, or the global config, in that order.
HITBOARD_DATA_DIR and HITBOARD_ADDR override the file.

Usage:
  hb config show          # Effective config as YAML (JSON without --human)
  hb config path          # Which file is used
  hb config init          # Write the defaults to ./hitboard.yml
  hb config init --global # Write the defaults to the global config`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		if !humanOutput {
			return outputJSON(cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		outputHuman("%s", data)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Resolve(configPath)
		_, err := os.Stat(path)
		exists := err == nil
		if humanOutput {
			if !exists {
				outputHuman("%s (missing, using defaults)\n", path)
			} else {
				outputHuman("%s\n", path)
			}
			return nil
		}
		return outputJSON(map[string]any{"path": path, "exists": exists})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.LocalConfigFile
		if configInitGlobal {
			path = config.GlobalConfigPath()
		}
		if path == "" {
			exitWithError(ExitConfigError, "cannot determine the global config location")
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			exitWithError(ExitConfigError, "checking %s: %v", path, err)
		}

		if err := config.Default().Save(path); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if humanOutput {
			outputHuman("Wrote %s\n", path)
			return nil
		}
		return outputJSON(StatusResponse{Status: "created", Path: path})
	},
}
