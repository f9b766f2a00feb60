package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/player"
	"github.com/hitboard/hitboard/internal/render"
	"github.com/hitboard/hitboard/internal/scene"
)

var (
	playFrames   int
	playLoop     bool
	playInterval time.Duration
	playSelected string
	playSVGDir   string
	playShow     int
)

func init() {
	playCmd.Flags().IntVar(&playFrames, "frames", 0, "Number of frames to play after the first (default: one pass over the years)")
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "Play until interrupted")
	playCmd.Flags().DurationVar(&playInterval, "interval", 0, "Time between frames (default: leaderboard.speed_ms)")
	playCmd.Flags().StringVar(&playSelected, "selected", "", "Pin and highlight one country")
	playCmd.Flags().StringVar(&playSVGDir, "svg-dir", "", "Also write every frame as <dir>/leaderboard-<year>.svg")
	playCmd.Flags().IntVar(&playShow, "show", 5, "Rows printed per frame with --human")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Animate the leaderboard year by year",
	Long: `Step through the leaderboard one year per interval, starting at the
first year and wrapping around. Each frame is printed as one JSON line (or a
short ranking with --human). Ctrl-C stops playback.

Examples:
  hb play --human --interval 500ms
  hb play --selected Finland --svg-dir frames/`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	ds := mustLoadHappiness(cfg)
	lb := scene.NewLeaderboard(ds.Records, cfg.Leaderboard)
	years := lb.Years()
	if len(years) == 0 {
		exitWithError(ExitEmptyResult, "%s", filter.Empty().Message)
	}

	interval := playInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Leaderboard.SpeedMS) * time.Millisecond
	}
	frames := playFrames
	switch {
	case playLoop:
		frames = 0
	case frames == 0:
		// The start frame is shown before playback.
		frames = len(years) - 1
	}
	if playSVGDir != "" {
		if err := os.MkdirAll(playSVGDir, 0755); err != nil {
			return fmt.Errorf("creating svg dir: %w", err)
		}
	}

	state := filter.Default()
	state.Selected = playSelected
	enc := json.NewEncoder(os.Stdout)
	show := func(_ context.Context, i int) error {
		sc, err := lb.Frame(state, i)
		if err != nil {
			return err
		}
		summary := sc.Data.(scene.LeaderboardSummary)
		if playSVGDir != "" {
			path := filepath.Join(playSVGDir, "leaderboard-"+summary.Year+".svg")
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating frame file: %w", err)
			}
			if err := render.SVG(f, sc); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		if humanOutput {
			printFrame(summary)
			return nil
		}
		return enc.Encode(summary)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := lb.StartIndex()
	if err := show(ctx, start); err != nil {
		return err
	}
	if frames == 0 && !playLoop {
		return nil
	}
	p := player.New(len(years), show,
		player.WithInterval(interval),
		player.WithStart(start),
		player.WithMaxFrames(frames))
	return p.Run(ctx)
}

func printFrame(s scene.LeaderboardSummary) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d/%d)\n", s.Year, s.YearIndex+1, s.Years)
	for i, r := range s.Rows {
		if i >= playShow && !r.Pinned {
			continue
		}
		mark := " "
		if r.Pinned {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s%3d. %-28s %5.2f  %s\n", mark, r.Rank, r.Country, r.Score, r.Region)
	}
	outputHuman("%s\n", b.String())
}
