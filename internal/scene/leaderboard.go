package scene

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/highlight"
	"github.com/hitboard/hitboard/internal/layout"
	"github.com/hitboard/hitboard/internal/record"
)

// LeaderboardOptions sizes and paces the leaderboard.
type LeaderboardOptions struct {
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
	Margin    Margin  `json:"margin" yaml:"margin"`
	TopN      int     `json:"top_n" yaml:"top_n"`
	ScoreMax  float64 `json:"score_max" yaml:"score_max"`
	SpeedMS   int     `json:"speed_ms" yaml:"speed_ms"`
	StartYear string  `json:"start_year" yaml:"start_year"`
}

// DefaultLeaderboardOptions returns the stock leaderboard settings.
func DefaultLeaderboardOptions() LeaderboardOptions {
	return LeaderboardOptions{
		Width:     1000,
		Height:    700,
		Margin:    Margin{Top: 40, Right: 170, Bottom: 30, Left: 80},
		TopN:      20,
		ScoreMax:  8,
		SpeedMS:   1000,
		StartYear: "2015",
	}
}

// Row is one leaderboard bar.
type Row struct {
	Country string  `json:"country"`
	Region  string  `json:"region"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
	Pinned  bool    `json:"pinned,omitempty"`
}

// LeaderboardSummary is the data behind a leaderboard frame.
type LeaderboardSummary struct {
	Year      string `json:"year"`
	YearIndex int    `json:"year_index"`
	Years     int    `json:"years"`
	Rows      []Row  `json:"rows"`
}

// Leaderboard ranks countries by happiness score, one frame per year.
type Leaderboard struct {
	opts   LeaderboardOptions
	years  []string
	byYear map[string][]aggregate.Ranked
	l      *slog.Logger
}

// NewLeaderboard ranks every year once. Records without a score are left out.
func NewLeaderboard(records []record.Record, opts LeaderboardOptions) *Leaderboard {
	lb := &Leaderboard{
		opts:   opts,
		byYear: make(map[string][]aggregate.Ranked),
		l:      slog.Default().With(slog.String("module", "scene.leaderboard")),
	}
	scored := make([]record.Record, 0, len(records))
	for _, r := range records {
		if !r.Missing(record.FieldHappiness) {
			scored = append(scored, r)
		}
	}
	years, groups := aggregate.GroupBy(scored, record.FieldYear)
	sort.Strings(years)
	lb.years = years
	for _, y := range years {
		lb.byYear[y] = aggregate.Rank(groups[y], record.FieldCountry, record.FieldRegion, record.FieldHappiness)
	}
	return lb
}

// Name implements Chart.
func (lb *Leaderboard) Name() string { return "leaderboard" }

// Size implements Chart.
func (lb *Leaderboard) Size() (float64, float64) { return lb.opts.Width, lb.opts.Height }

// Years returns the frame years in ascending order.
func (lb *Leaderboard) Years() []string { return append([]string(nil), lb.years...) }

// StartIndex is the frame playback starts from: the configured start year
// if present, else the first year.
func (lb *Leaderboard) StartIndex() int {
	for i, y := range lb.years {
		if y == lb.opts.StartYear {
			return i
		}
	}
	return 0
}

// Rows returns the bars of one year. A selected country is pinned first
// with its true rank, followed by the best TopN-1 others.
func (lb *Leaderboard) Rows(year, selected string) []Row {
	ranked := lb.byYear[year]
	topN := lb.opts.TopN
	if topN <= 0 {
		topN = 20
	}

	var rows []Row
	pinned := -1
	if selected != "" {
		for i, r := range ranked {
			if r.Name == selected {
				pinned = i
				break
			}
		}
		if pinned < 0 {
			lb.l.Warn("selected country not ranked in year", slog.String("country", selected), slog.String("year", year))
		}
	}
	if pinned >= 0 {
		r := ranked[pinned]
		rows = append(rows, Row{Country: r.Name, Region: r.Group, Score: r.Score, Rank: r.Rank, Pinned: true})
	}
	for i, r := range ranked {
		if len(rows) >= topN {
			break
		}
		if i == pinned {
			continue
		}
		rows = append(rows, Row{Country: r.Name, Region: r.Group, Score: r.Score, Rank: r.Rank})
	}
	return rows
}

// Recompute draws the frame for s.Year, or the start year when s.Year is
// unset or "All".
func (lb *Leaderboard) Recompute(s filter.State) (*Scene, error) {
	idx := lb.StartIndex()
	if s.Year != "" && s.Year != filter.All {
		idx = -1
		for i, y := range lb.years {
			if y == s.Year {
				idx = i
			}
		}
		if idx < 0 {
			return nil, &filter.EmptyResultError{Message: fmt.Sprintf(
				"No data available for the year %s. Please select a different year.", s.Year)}
		}
	}
	return lb.Frame(s, idx)
}

// Frame draws the leaderboard for year index i (wrapped into range).
func (lb *Leaderboard) Frame(s filter.State, i int) (*Scene, error) {
	n := len(lb.years)
	if n == 0 {
		return nil, filter.Empty()
	}
	i = ((i % n) + n) % n
	year := lb.years[i]
	rows := lb.Rows(year, s.Selected)
	// A selection absent from this year dims nothing.
	active := ""
	if len(rows) > 0 && rows[0].Pinned {
		active = rows[0].Country
	}

	o := lb.opts
	w := o.Width - o.Margin.Left - o.Margin.Right
	h := o.Height - o.Margin.Top - o.Margin.Bottom
	x := layout.Linear(0, o.ScoreMax, w)
	band := layout.Band(len(rows), h, 0.2)

	s.Year = year
	sc := &Scene{
		Chart:  lb.Name(),
		Title:  fmt.Sprintf("Top %d Countries by Happiness Score", o.TopN),
		Width:  o.Width,
		Height: o.Height,
		Margin: o.Margin,
		State:  s,
	}
	sc.Add(Shape{
		Kind: KindText, Class: "chart-title", X: w / 2, Y: -15, Text: sc.Title,
		Anchor: "middle", FontSize: 16, Bold: true, Opacity: 1,
	}, Shape{
		Kind: KindText, Class: "year", X: w - 10, Y: h - 20, Text: year,
		Anchor: "end", FontSize: 48, Fill: "#dddddd", Opacity: 1,
	})

	for _, t := range layout.Ticks(0, o.ScoreMax, 5) {
		tx := x(t)
		sc.Add(Shape{
			Kind: KindLine, Class: "tick", X: tx, Y: h, X2: tx, Y2: h + 6,
			Stroke: "#333333", StrokeWidth: 1, Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "tick-label", X: tx, Y: h + 18, Text: fmt.Sprintf("%.1f", t),
			Anchor: "middle", FontSize: 10, Opacity: 1,
		})
	}

	for k, r := range rows {
		y := band.At(k)
		cy := band.Center(k)
		bw := x(math.Min(math.Max(r.Score, 0), o.ScoreMax))
		color := RegionColor(r.Region)
		selected := active != "" && r.Country == active
		if active != "" && !selected {
			color = Darker(color, 1)
		}
		opacity := highlight.Row(r.Country, active)

		sc.Add(Shape{
			Kind: KindRect, Class: "bar", ID: r.Country,
			X: 0, Y: y, W: bw, H: band.Bandwidth,
			Fill: color, Opacity: opacity, Highlighted: opacity == highlight.RowOn,
			Tooltip: map[string]any{
				"country": r.Country, "region": r.Region, "score": r.Score, "rank": r.Rank, "year": year,
			},
		}, Shape{
			Kind: KindText, Class: "country-label", X: -10, Y: cy, Text: r.Country,
			Anchor: "end", Baseline: "middle", FontSize: 12, Fill: "#333333", Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "rank-label", X: -o.Margin.Left + 25, Y: cy, Text: fmt.Sprintf("#%d", r.Rank),
			Anchor: "end", Baseline: "middle", FontSize: 10, Fill: "#666666", Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "score-label", X: bw + 3, Y: cy, Text: fmt.Sprintf("%.1f", r.Score),
			Anchor: "start", Baseline: "middle", FontSize: 11, Fill: "#333333", Opacity: 1,
		})
		if bw > 40 && (selected || bw > 80) {
			sc.Add(Shape{
				Kind: KindText, Class: "bar-label", X: math.Min(bw-5, w-40), Y: cy, Text: r.Country,
				Anchor: "end", Baseline: "middle", FontSize: 12, Fill: "#ffffff", Opacity: 1,
			})
		}
	}

	sc.Data = LeaderboardSummary{Year: year, YearIndex: i, Years: n, Rows: rows}
	return sc, nil
}
