package scene

import (
	"fmt"
	"log/slog"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/highlight"
	"github.com/hitboard/hitboard/internal/layout"
	"github.com/hitboard/hitboard/internal/record"
)

// FlowOptions sizes the platform/genre flow chart.
type FlowOptions struct {
	Width        float64  `json:"width" yaml:"width"`
	Height       float64  `json:"height" yaml:"height"`
	Margin       Margin   `json:"margin" yaml:"margin"`
	Platforms    []string `json:"platforms,omitempty" yaml:"platforms,omitempty"` // empty means all
	LinkCap      int      `json:"link_cap" yaml:"link_cap"`
	MaxThreshold int      `json:"max_threshold" yaml:"max_threshold"`
	BarWidth     float64  `json:"bar_width" yaml:"bar_width"`
	LabelSpacing float64  `json:"label_spacing" yaml:"label_spacing"`
}

// DefaultFlowOptions returns the stock flow chart geometry.
func DefaultFlowOptions() FlowOptions {
	return FlowOptions{
		Width:        1600,
		Height:       1000,
		Margin:       Margin{Top: 60, Right: 400, Bottom: 50, Left: 120},
		LinkCap:      aggregate.DefaultLinkCap,
		MaxThreshold: aggregate.DefaultMaxThreshold,
		BarWidth:     40,
		LabelSpacing: 20,
	}
}

// ResolvePlatforms maps platform names to platforms. No names means all.
func ResolvePlatforms(names []string) ([]record.Platform, error) {
	if len(names) == 0 {
		return record.Platforms, nil
	}
	out := make([]record.Platform, 0, len(names))
	for _, n := range names {
		p, ok := record.PlatformByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown platform %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}

// FlowSummary is the data behind a flow scene.
type FlowSummary struct {
	Threshold int                     `json:"threshold"`
	Graph     aggregate.Graph         `json:"graph"`
	Reach     map[string]int          `json:"reach"`
	Tiers     map[string]string       `json:"tiers,omitempty"`
	Ribbons   []layout.Ribbon         `json:"ribbons"`
	Labels    []layout.Label          `json:"labels"`
	Boxes     map[string][]layout.Box `json:"boxes"`
}

// Flow is the platform to genre flow chart.
type Flow struct {
	opts      FlowOptions
	table     *aggregate.Table
	graph     aggregate.Graph
	threshold int
	l         *slog.Logger
}

// NewFlow counts platform hits per genre once and caches the graph.
func NewFlow(records []record.Record, opts FlowOptions) (*Flow, error) {
	platforms, err := ResolvePlatforms(opts.Platforms)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.Name
	}

	f := &Flow{opts: opts, l: slog.Default().With(slog.String("module", "scene.flow"))}
	f.table = aggregate.CountPairs(records,
		aggregate.HitPlatforms(platforms),
		aggregate.Field(record.FieldGenre, "Unknown"),
		names)
	f.graph, f.threshold = f.table.Graph(opts.LinkCap, opts.MaxThreshold)
	f.l.Info("aggregated flow",
		slog.Int("records", len(records)),
		slog.Int("cells", len(f.table.Cells())),
		slog.Int("links", len(f.graph.Links)),
		slog.Int("threshold", f.threshold))
	return f, nil
}

// Name implements Chart.
func (f *Flow) Name() string { return "flow" }

// Size implements Chart.
func (f *Flow) Size() (float64, float64) { return f.opts.Width, f.opts.Height }

// Graph returns the cached, unfiltered graph.
func (f *Flow) Graph() aggregate.Graph { return f.graph }

// Table returns the cached pair counts.
func (f *Flow) Table() *aggregate.Table { return f.table }

// Threshold returns the automatic link threshold.
func (f *Flow) Threshold() int { return f.threshold }

// Recompute filters the cached graph and lays it out.
func (f *Flow) Recompute(s filter.State) (*Scene, error) {
	if s.Source != "" {
		if _, ok := f.graph.Entity(s.Source); !ok {
			return nil, &filter.EmptyResultError{Message: fmt.Sprintf("No platform named %s.", s.Source)}
		}
	}
	g := filter.Apply(f.graph, s)
	if len(g.Targets) == 0 {
		return nil, &filter.EmptyResultError{Message: "No genres match the current filter criteria"}
	}

	o := f.opts
	w := o.Width - o.Margin.Left - o.Margin.Right
	h := o.Height - o.Margin.Top - o.Margin.Bottom
	gapX := w / 2

	genres, extent := layout.GenreAxis(g.Targets, f.table.GrandTotal(), layout.Axis{Length: h, Offset: 20, MinSize: 10})
	platforms := layout.Align(extent, g.Sources, layout.Axis{Length: h, MinSize: 15, Gap: 2})
	ribbons := layout.Ribbons(platforms, genres, g.Links)

	maxTotal := 0
	for _, e := range g.Sources {
		if e.Total > maxTotal {
			maxTotal = e.Total
		}
	}
	widths := make(map[string]float64, len(platforms))
	for _, b := range platforms {
		widths[b.Name] = layout.BarWidth(int(b.Total), maxTotal, o.BarWidth)
	}

	sel := highlight.FromState(s)
	sc := &Scene{
		Chart:  f.Name(),
		Title:  "Platform Hit Songs by Genre",
		Width:  o.Width,
		Height: o.Height,
		Margin: o.Margin,
		State:  s,
	}

	for _, r := range ribbons {
		on := highlight.Match(aggregate.Link{Source: r.Source, Target: r.Target, Weight: r.Weight}, sel)
		c := r.Path(0, widths[r.Source], gapX)
		color := PlatformColor(r.Source)
		stroke := 0.1
		if on {
			stroke = 1
		}
		sc.Add(Shape{
			Kind: KindPath, Class: "ribbon", ID: r.Source + "/" + r.Target,
			D: c.PathData, Fill: color, Stroke: Darker(color, 0.2), StrokeWidth: stroke,
			Opacity: highlight.Ribbon(on), Highlighted: on,
			Tooltip: map[string]any{"platform": r.Source, "genre": r.Target, "hits": r.Weight},
		})
	}

	for _, b := range platforms {
		on := highlight.Entity(b.Name, s.Source)
		color := PlatformColor(b.Name)
		sc.Add(Shape{
			Kind: KindRect, Class: "platform", ID: b.Name,
			X: 0, Y: b.Start, W: widths[b.Name], H: b.Size(),
			Fill: color, Opacity: highlight.EntityOpacity(on), Highlighted: on,
			Tooltip: map[string]any{"platform": b.Name, "hits": int(b.Total)},
		}, Shape{
			Kind: KindText, Class: "platform-label",
			X: -10, Y: b.Center(), Text: b.Name, Anchor: "end", Baseline: "middle",
			Fill: Darker(color, 0.5), Opacity: highlight.EntityOpacity(on), Highlighted: on,
		})
	}

	summary := FlowSummary{
		Threshold: f.threshold,
		Graph:     g,
		Reach:     make(map[string]int, len(genres)),
		Tiers:     make(map[string]string),
		Ribbons:   ribbons,
		Boxes:     map[string][]layout.Box{"platforms": platforms, "genres": genres},
	}

	anchors := make([]layout.Anchor, len(genres))
	for i, b := range genres {
		on := highlight.Entity(b.Name, s.Target)
		reach := f.table.Reach(b.Name)
		tier := aggregate.ReachTier(reach)
		summary.Reach[b.Name] = reach
		if tier != aggregate.TierNone {
			summary.Tiers[b.Name] = string(tier)
		}
		stroke, strokeWidth := "#666666", 0.5
		if reach >= 5 {
			stroke, strokeWidth = tier.Color(), 1.5
		}
		sc.Add(Shape{
			Kind: KindRect, Class: "genre genre-" + aggregate.ReachBand(reach), ID: b.Name,
			X: gapX, Y: b.Start, W: o.BarWidth, H: b.Size(),
			Fill: "#aaaaaa", Stroke: stroke, StrokeWidth: strokeWidth,
			Opacity: highlight.EntityOpacity(on), Highlighted: on,
			Tooltip: map[string]any{"genre": b.Name, "hits": int(b.Total), "platforms": reach},
		})
		anchors[i] = layout.Anchor{Name: b.Name, Y: b.Center()}
	}

	labels := layout.StaggerLabels(anchors, layout.LabelOptions{MinSpacing: o.LabelSpacing, Edge: gapX + o.BarWidth})
	summary.Labels = labels
	for _, lb := range labels {
		on := highlight.Entity(lb.Name, s.Target)
		if c := lb.Connector; c != nil {
			sc.Add(Shape{
				Kind: KindLine, Class: "connector",
				X: c.X1, Y: c.Y1, X2: c.X2, Y2: c.Y2,
				Stroke: "#555555", StrokeWidth: 1.2, Dash: "3,2", Opacity: 0.8,
			})
		}
		sc.Add(Shape{
			Kind: KindText, Class: "genre-label",
			X: lb.X, Y: lb.Y, Text: lb.Name, Baseline: "middle", Anchor: "start",
			Fill: "#333333", Opacity: highlight.EntityOpacity(on), Highlighted: on,
		})
		if tier := aggregate.ReachTier(summary.Reach[lb.Name]); tier != aggregate.TierNone {
			sc.Add(Shape{
				Kind: KindText, Class: "genre-stars",
				X: lb.X + textWidth(lb.Name, 12) + 4, Y: lb.Y, Text: tier.Stars(),
				Baseline: "middle", Anchor: "start", FontSize: 10, Fill: tier.Color(), Opacity: 1,
			})
		}
	}

	f.legend(sc, w)
	if !s.HasSelection() {
		sc.Add(Shape{
			Kind: KindText, Class: "note",
			X: w / 2, Y: h - 20, Anchor: "middle", FontSize: 14, Fill: "#666666", Opacity: 1,
			Text: fmt.Sprintf("Showing top %d genres by hit count. Use filters to see specific genres or platforms.", len(g.Targets)),
		})
	}

	sc.Data = summary
	return sc, nil
}

func (f *Flow) legend(sc *Scene, w float64) {
	x := w - 150
	sc.Add(Shape{
		Kind: KindText, Class: "legend-title",
		X: x, Y: 10, Text: "Cross-Platform Success", FontSize: 12, Bold: true, Anchor: "start", Opacity: 1,
	})
	items := []struct {
		tier aggregate.Tier
		text string
	}{
		{aggregate.TierGold, "7-9 platforms"},
		{aggregate.TierSilver, "5-6 platforms"},
		{aggregate.TierBronze, "3-4 platforms"},
	}
	for i, it := range items {
		y := 10 + 20 + float64(i)*20
		sc.Add(Shape{
			Kind: KindText, Class: "legend-symbol",
			X: x, Y: y, Text: it.tier.Stars(), FontSize: 10, Fill: it.tier.Color(), Anchor: "start", Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "legend-text",
			X: x + 40, Y: y, Text: it.text, FontSize: 10, Anchor: "start", Opacity: 1,
		})
	}
}

// textWidth estimates rendered text width for a sans-serif font.
func textWidth(s string, size float64) float64 {
	return float64(len([]rune(s))) * size * 0.6
}
