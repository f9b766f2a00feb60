package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME and the
	// user cache dir.
	GlobalConfigDir = "hitboard"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// IndexFile is the default option index file name.
	IndexFile = "index.db"
)

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/hitboard/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// IndexPath returns where the option index lives: the configured path, or
// hitboard/index.db under XDG_CACHE_HOME (~/.cache by default). It returns
// "" when no cache directory can be found, which selects an in-memory index.
func (c *Config) IndexPath() string {
	if c.Index != "" {
		return ExpandPath(c.Index)
	}
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, GlobalConfigDir, IndexFile)
}
