package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/layout"
	"github.com/hitboard/hitboard/internal/record"
)

// RadarOptions sizes the radar chart.
type RadarOptions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Margin float64 `json:"margin" yaml:"margin"`
}

// DefaultRadarOptions returns the stock radar geometry.
func DefaultRadarOptions() RadarOptions {
	return RadarOptions{Width: 480, Height: 460, Margin: 80}
}

// RadarSummary is the data behind a radar scene.
type RadarSummary struct {
	Series  string               `json:"series"`
	Records int                  `json:"records"`
	Profile aggregate.Profile    `json:"profile"`
	Layout  layout.RadarGeometry `json:"layout"`
}

// Radar correlates happiness factors with the happiness score.
type Radar struct {
	opts    RadarOptions
	records []record.Record
	factors []record.Factor
	l       *slog.Logger
}

// NewRadar builds the radar chart over the happiness records.
func NewRadar(records []record.Record, opts RadarOptions) *Radar {
	return &Radar{
		opts:    opts,
		records: records,
		factors: record.HappinessFactors,
		l:       slog.Default().With(slog.String("module", "scene.radar")),
	}
}

// Name implements Chart.
func (r *Radar) Name() string { return "radar" }

// Size implements Chart.
func (r *Radar) Size() (float64, float64) { return r.opts.Width, r.opts.Height }

// Profile filters the records and returns the factor profile without
// laying it out.
func (r *Radar) Profile(s filter.State) (aggregate.Profile, int, error) {
	filtered, err := filter.Records(r.records, s)
	if err != nil {
		return aggregate.Profile{}, 0, err
	}
	metrics := make([]string, len(r.factors))
	for i, f := range r.factors {
		metrics[i] = f.Field
	}
	p, err := aggregate.BuildProfile(filtered, r.records, record.FieldHappiness, metrics)
	if errors.Is(err, aggregate.ErrNoRecords) {
		return aggregate.Profile{}, 0, filter.Empty()
	}
	return p, len(filtered), err
}

// Recompute filters, correlates and lays out the radar.
func (r *Radar) Recompute(s filter.State) (*Scene, error) {
	p, n, err := r.Profile(s)
	if err != nil {
		return nil, err
	}
	for _, v := range p.Values {
		if v.Degenerate {
			r.l.Debug("degenerate correlation", slog.String("metric", v.Metric))
		}
	}

	series := seriesName(s)
	if p.Mode == aggregate.ModeSinglePoint {
		filtered, _ := filter.Records(r.records, s)
		series = filtered[0].Label(record.FieldCountry)
	}

	o := r.opts
	labels := make([]string, len(r.factors))
	values := make([]float64, len(r.factors))
	for i, f := range r.factors {
		labels[i] = f.Label
		values[i] = p.Value(f.Field)
	}
	geo := layout.Radar(labels, values, layout.RadarRadius(o.Width, o.Height, o.Margin))

	sc := &Scene{
		Chart:  r.Name(),
		Title:  "Happiness Factors: " + series,
		Width:  o.Width,
		Height: o.Height,
		Origin: XY{X: o.Width / 2, Y: o.Height / 2},
		State:  s,
	}

	for _, ring := range geo.Rings {
		sc.Add(Shape{
			Kind: KindCircle, Class: "ring", R: ring.Radius,
			Stroke: "#e2e2e2", StrokeWidth: 1, Fill: "none", Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "ring-label", X: 5, Y: -ring.Radius,
			Text: fmt.Sprintf("%.1f", ring.Value), FontSize: 10, Fill: "#888888", Opacity: 1,
		})
	}
	for _, ax := range geo.Axes {
		sc.Add(Shape{
			Kind: KindLine, Class: "axis", X2: ax.End.X, Y2: ax.End.Y,
			Stroke: "#e2e2e2", StrokeWidth: 1, Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "axis-label", X: ax.Label.X, Y: ax.Label.Y,
			Text: strings.ReplaceAll(ax.Name, "\n", " "), Anchor: ax.Anchor, Baseline: ax.Baseline,
			FontSize: 12, Fill: "#333333", Opacity: 1,
		})
	}

	points := make([]XY, len(geo.Polygon))
	tooltip := make(map[string]any, len(p.Values))
	for i, pt := range geo.Polygon {
		points[i] = XY{X: pt.X, Y: pt.Y}
	}
	for _, v := range p.Values {
		tooltip[v.Metric] = v.Value
	}
	color := Tableau10[0]
	sc.Add(Shape{
		Kind: KindPolygon, Class: "radar-shape", ID: series, Points: points,
		Fill: color, Stroke: color, StrokeWidth: 1.5, Opacity: 0.6, Highlighted: true,
		Tooltip: tooltip,
	})
	for _, pt := range points {
		sc.Add(Shape{Kind: KindCircle, Class: "radar-point", X: pt.X, Y: pt.Y, R: 3, Fill: color, Opacity: 1})
	}

	sc.Data = RadarSummary{Series: series, Records: n, Profile: p, Layout: geo}
	return sc, nil
}

func seriesName(s filter.State) string {
	if s.Level == filter.ByCountry {
		if s.Country != "" && s.Country != filter.All {
			return s.Country
		}
		return "All Countries"
	}
	if s.Region != "" && s.Region != filter.All {
		return s.Region
	}
	return "All Regions"
}
