// Package config loads hitboard settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hitboard/hitboard/internal/scene"
)

const (
	// LocalConfigFile is looked up in the working directory and its parents.
	LocalConfigFile = "hitboard.yml"
	// DefaultAddr is the HTTP listen address of `hb serve`.
	DefaultAddr = "localhost:8080"
)

// Environment variables that override the file.
const (
	EnvConfig  = "HITBOARD_CONFIG"
	EnvDataDir = "HITBOARD_DATA_DIR"
	EnvAddr    = "HITBOARD_ADDR"
)

// Datasets lists candidate paths per dataset, tried in order.
type Datasets struct {
	Songs     []string `yaml:"songs"`
	Happiness []string `yaml:"happiness"`
}

// Server configures the HTTP adapter.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Config is the full hitboard configuration.
type Config struct {
	// DataDir anchors relative dataset paths. Empty means the working directory.
	DataDir string `yaml:"data_dir,omitempty"`
	// Index is the SQLite option index. Empty means the user cache dir.
	Index       string                   `yaml:"index,omitempty"`
	Datasets    Datasets                 `yaml:"datasets"`
	Flow        scene.FlowOptions        `yaml:"flow"`
	Radar       scene.RadarOptions       `yaml:"radar"`
	Leaderboard scene.LeaderboardOptions `yaml:"leaderboard"`
	Parallel    scene.ParallelOptions    `yaml:"parallel"`
	Server      Server                   `yaml:"server"`

	// Path is the file the config was read from, if any.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Datasets: Datasets{
			Songs: []string{
				"final_df_cleaned.csv",
				"data/final_df_cleaned.csv",
				"../final_df_cleaned.csv",
			},
			Happiness: []string{
				"complete_world_happiness.csv",
				"data/complete_world_happiness.csv",
				"../complete_world_happiness.csv",
			},
		},
		Flow:        scene.DefaultFlowOptions(),
		Radar:       scene.DefaultRadarOptions(),
		Leaderboard: scene.DefaultLeaderboardOptions(),
		Parallel:    scene.DefaultParallelOptions(),
		Server:      Server{Addr: DefaultAddr},
	}
}

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid config")

// FindConfig walks up from start looking for LocalConfigFile. It returns ""
// when there is none.
func FindConfig(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(abs, LocalConfigFile)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return ""
		}
		abs = parent
	}
}

// Resolve picks the config file: an explicit path, then $HITBOARD_CONFIG,
// then hitboard.yml above the working directory, then the global file.
func Resolve(explicit string) string {
	if explicit != "" {
		return ExpandPath(explicit)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return ExpandPath(env)
	}
	if wd, err := os.Getwd(); err == nil {
		if p := FindConfig(wd); p != "" {
			return p
		}
	}
	return GlobalConfigPath()
}

// Load reads the config at Resolve(explicit), applies environment
// overrides and validates it. A missing file yields the defaults, unless
// it was named explicitly.
func Load(explicit string) (*Config, error) {
	path := Resolve(explicit)
	cfg, err := LoadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit != "" {
			return nil, err
		}
		cfg = Default()
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads one YAML file over the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("reading config: %w", os.ErrNotExist)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Path = path
	if cfg.DataDir != "" {
		cfg.DataDir = ExpandPath(cfg.DataDir)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = ExpandPath(v)
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	var problems []string
	size := func(name string, w, h float64) {
		if w <= 0 || h <= 0 {
			problems = append(problems, fmt.Sprintf("%s: width and height must be positive", name))
		}
	}
	size("flow", c.Flow.Width, c.Flow.Height)
	size("radar", c.Radar.Width, c.Radar.Height)
	size("leaderboard", c.Leaderboard.Width, c.Leaderboard.Height)
	size("parallel", c.Parallel.Width, c.Parallel.Height)

	if _, err := scene.ResolvePlatforms(c.Flow.Platforms); err != nil {
		problems = append(problems, "flow: "+err.Error())
	}
	if c.Flow.LinkCap <= 0 || c.Flow.MaxThreshold <= 0 {
		problems = append(problems, "flow: link_cap and max_threshold must be positive")
	}
	if c.Leaderboard.TopN <= 0 {
		problems = append(problems, "leaderboard: top_n must be positive")
	}
	if c.Leaderboard.ScoreMax <= 0 {
		problems = append(problems, "leaderboard: score_max must be positive")
	}
	if c.Leaderboard.SpeedMS <= 0 {
		problems = append(problems, "leaderboard: speed_ms must be positive")
	}
	if c.Parallel.HitThreshold < 0 {
		problems = append(problems, "parallel: hit_threshold must not be negative")
	}
	if len(c.Datasets.Songs) == 0 && len(c.Datasets.Happiness) == 0 {
		problems = append(problems, "datasets: no paths configured")
	}
	if c.Server.Addr == "" {
		problems = append(problems, "server: addr is empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// SongPaths returns the song dataset candidates anchored at DataDir.
func (c *Config) SongPaths() []string { return c.anchor(c.Datasets.Songs) }

// HappinessPaths returns the happiness dataset candidates anchored at DataDir.
func (c *Config) HappinessPaths() []string { return c.anchor(c.Datasets.Happiness) }

func (c *Config) anchor(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		p = ExpandPath(p)
		if c.DataDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(c.DataDir, p)
		}
		out[i] = p
	}
	return out
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
