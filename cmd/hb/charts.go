package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/render"
	"github.com/hitboard/hitboard/internal/scene"
	"github.com/hitboard/hitboard/internal/server"
)

// chartOutput holds the output flags shared by the chart commands.
type chartOutput struct {
	format outputFormat
	path   string
}

func addOutputFlags(cmd *cobra.Command, o *chartOutput) {
	o.format = formatJSON
	cmd.Flags().VarP(&o.format, "format", "f", "Output format: json, svg or html")
	cmd.Flags().StringVarP(&o.path, "output", "o", "", "Output file path (default: stdout)")
}

var (
	flowOut        chartOutput
	flowSource     string
	flowTarget     string
	flowMinWeight  int
	flowTopN       int
	radarOut       chartOutput
	radarLevel     string
	radarRegion    string
	radarCountry   string
	radarYear      string
	boardOut       chartOutput
	boardYear      string
	boardSelected  string
	boardFrame     int
	parallelOut    chartOutput
	parallelBrush  []string
	parallelOrder  []string
	parallelMoveTo int
	parallelMove   string
)

func init() {
	addOutputFlags(flowCmd, &flowOut)
	flowCmd.Flags().StringVar(&flowSource, "source", "", "Highlight one platform")
	flowCmd.Flags().StringVar(&flowTarget, "target", "", "Highlight one genre")
	flowCmd.Flags().IntVar(&flowMinWeight, "min-weight", 0, "Drop links below this hit count (0 = adaptive threshold)")
	flowCmd.Flags().IntVar(&flowTopN, "top-n", filter.DefaultTopN, "Number of genres to keep")

	addOutputFlags(radarCmd, &radarOut)
	radarCmd.Flags().StringVar(&radarLevel, "level", string(filter.ByRegion), "Grouping level: region or country")
	radarCmd.Flags().StringVar(&radarRegion, "region", filter.All, "Restrict to one region (region level)")
	radarCmd.Flags().StringVar(&radarCountry, "country", filter.All, "Restrict to one country (country level)")
	radarCmd.Flags().StringVar(&radarYear, "year", filter.All, "Restrict to one year")

	addOutputFlags(leaderboardCmd, &boardOut)
	leaderboardCmd.Flags().StringVar(&boardYear, "year", "", "Year to show (default: the first year)")
	leaderboardCmd.Flags().StringVar(&boardSelected, "selected", "", "Pin and highlight one country")
	leaderboardCmd.Flags().IntVar(&boardFrame, "frame", -1, "Show frame i of the year sequence instead of --year")

	addOutputFlags(parallelCmd, &parallelOut)
	parallelCmd.Flags().StringArrayVar(&parallelBrush, "brush", nil, "Brush feature:lo:hi in normalized units (repeatable)")
	parallelCmd.Flags().StringSliceVar(&parallelOrder, "order", nil, "Axis order, e.g. energy,valence")
	parallelCmd.Flags().StringVar(&parallelMove, "move", "", "Move this axis to --to")
	parallelCmd.Flags().IntVar(&parallelMoveTo, "to", 0, "Target position for --move")

	rootCmd.AddCommand(flowCmd, radarCmd, leaderboardCmd, parallelCmd)
}

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Platform to genre flow chart",
	Long: `Render the platform to genre flow chart.

Examples:
  hb flow --format svg -o flow.svg
  hb flow --source Spotify --top-n 10
  hb flow --target Pop --format html -o pop.html`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		ds := mustLoadSongs(cfg)
		chart, err := scene.NewFlow(ds.Records, cfg.Flow)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		s := filter.Default()
		s.Source, s.Target, s.MinWeight, s.TopN = flowSource, flowTarget, flowMinWeight, flowTopN
		return renderChart(chart, s, flowOut)
	},
}

var radarCmd = &cobra.Command{
	Use:   "radar",
	Short: "Happiness factor radar chart",
	Long: `Render the happiness factor radar chart.

Examples:
  hb radar --format svg -o regions.svg
  hb radar --region "Western Europe" --year 2019
  hb radar --level country --country Denmark --year 2019

--region applies at the region level and --country at the country level.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := filter.ParseLevel(radarLevel)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		cfg := mustLoadConfig()
		ds := mustLoadHappiness(cfg)
		s := filter.Default()
		s.Level, s.Region, s.Country, s.Year = level, radarRegion, radarCountry, radarYear
		return renderChart(scene.NewRadar(ds.Records, cfg.Radar), s, radarOut)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Yearly happiness leaderboard",
	Long: `Render one year of the happiness leaderboard.

Examples:
  hb leaderboard --year 2019 --format svg -o 2019.svg
  hb leaderboard --selected Finland --frame 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		ds := mustLoadHappiness(cfg)
		lb := scene.NewLeaderboard(ds.Records, cfg.Leaderboard)
		s := filter.Default()
		s.Selected = boardSelected
		if boardYear != "" {
			s.Year = boardYear
		}
		if boardFrame < 0 {
			return renderChart(lb, s, boardOut)
		}
		sc, err := lb.Frame(s, boardFrame)
		if errors.Is(err, filter.ErrEmptyResult) {
			w, h := lb.Size()
			sc, err = scene.Empty(lb.Name(), w, h, s, err), nil
		}
		if err != nil {
			return err
		}
		return writeScene(sc, boardOut)
	},
}

var parallelCmd = &cobra.Command{
	Use:   "parallel",
	Short: "Parallel coordinates of hit song audio features",
	Long: `Render the parallel coordinates chart of songs that are hits on many
platforms. Brushes select a normalized range on one axis; songs inside every
brush are highlighted.

Examples:
  hb parallel --format svg -o features.svg
  hb parallel --brush energy:0.6:1 --brush valence:0:0.4
  hb parallel --move tempo --to 0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := filter.Default()
		for _, raw := range parallelBrush {
			b, err := server.ParseBrush(raw)
			if err != nil {
				exitWithError(ExitError, "%v", err)
			}
			s.Brushes = append(s.Brushes, b)
		}
		s.Order = parallelOrder

		cfg := mustLoadConfig()
		ds := mustLoadSongs(cfg)
		chart := scene.NewParallel(ds.Records, cfg.Parallel)
		if parallelMove != "" {
			order, err := chart.Order(s)
			if err != nil {
				exitWithError(ExitError, "%v", err)
			}
			s.Order = scene.MoveAxis(order, parallelMove, parallelMoveTo)
		}
		return renderChart(chart, s, parallelOut)
	},
}

// renderChart recomputes c and writes the scene.
func renderChart(c scene.Chart, s filter.State, out chartOutput) error {
	sc, err := scene.Render(c, s)
	if errors.Is(err, scene.ErrUnknownFeature) {
		exitWithError(ExitError, "%v", err)
	}
	if err != nil {
		return err
	}
	return writeScene(sc, out)
}

// writeScene writes sc in the requested format. A message scene exits with
// ExitEmptyResult after it is written.
func writeScene(sc *scene.Scene, out chartOutput) error {
	var text string
	switch out.format {
	case formatSVG:
		svg, err := render.SVGString(sc)
		if err != nil {
			return err
		}
		text = svg
	case formatHTML:
		page, err := render.GenerateHTML(sc, render.HTMLOptions{})
		if err != nil {
			return fmt.Errorf("generating HTML: %w", err)
		}
		text = page
	default:
		data, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding scene: %w", err)
		}
		text = string(data) + "\n"
	}

	if err := writeOutput(out.path, text); err != nil {
		return err
	}
	if sc.Message != "" {
		fmt.Fprintf(os.Stderr, "%s\n", sc.Message)
		os.Exit(ExitEmptyResult)
	}
	return nil
}
