package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/highlight"
	"github.com/hitboard/hitboard/internal/layout"
	"github.com/hitboard/hitboard/internal/record"
)

// ErrUnknownFeature is returned when the axis order or a brush names a
// feature the chart does not plot.
var ErrUnknownFeature = errors.New("unknown feature")

// ParallelOptions sizes the parallel coordinates chart.
type ParallelOptions struct {
	Width        float64  `json:"width" yaml:"width"`
	Height       float64  `json:"height" yaml:"height"`
	Margin       Margin   `json:"margin" yaml:"margin"`
	Features     []string `json:"features,omitempty" yaml:"features,omitempty"` // empty means record.AudioFeatures
	HitThreshold int      `json:"hit_threshold" yaml:"hit_threshold"`
}

// DefaultParallelOptions returns the stock parallel chart settings.
func DefaultParallelOptions() ParallelOptions {
	return ParallelOptions{
		Width:        960,
		Height:       500,
		Margin:       Margin{Top: 30, Right: 100, Bottom: 30, Left: 50},
		HitThreshold: 5,
	}
}

// ParallelSummary is the data behind a parallel scene.
type ParallelSummary struct {
	Order   []string                    `json:"order"`
	Ranges  map[string]aggregate.Bounds `json:"ranges"`
	Songs   int                         `json:"songs"`
	Brushed int                         `json:"brushed"`
}

// Parallel plots the normalized audio features of hit songs.
type Parallel struct {
	opts     ParallelOptions
	features []string
	songs    []record.Record
	bounds   map[string]aggregate.Bounds
	// values[i] holds the unit-normalized features of songs[i].
	values []map[string]float64
	l      *slog.Logger
}

// NewParallel keeps the songs on at least HitThreshold platforms and
// normalizes each feature to [0, 1] over that subset.
func NewParallel(records []record.Record, opts ParallelOptions) *Parallel {
	p := &Parallel{
		opts:     opts,
		features: opts.Features,
		l:        slog.Default().With(slog.String("module", "scene.parallel")),
	}
	if len(p.features) == 0 {
		p.features = record.AudioFeatures
	}
	for _, r := range records {
		if r.HitCount >= opts.HitThreshold && r.HitCount > 0 {
			p.songs = append(p.songs, r)
		}
	}
	p.bounds = aggregate.MetricBounds(p.songs, p.features)
	p.values = make([]map[string]float64, len(p.songs))
	for i, r := range p.songs {
		v := make(map[string]float64, len(p.features))
		for _, f := range p.features {
			v[f] = p.bounds[f].Unit(r.Value(f))
		}
		p.values[i] = v
	}
	p.l.Info("normalized hit songs", slog.Int("records", len(records)), slog.Int("hits", len(p.songs)))
	return p
}

// Name implements Chart.
func (p *Parallel) Name() string { return "parallel" }

// Size implements Chart.
func (p *Parallel) Size() (float64, float64) { return p.opts.Width, p.opts.Height }

// Features returns the plotted features in default axis order.
func (p *Parallel) Features() []string { return append([]string(nil), p.features...) }

// Order resolves the axis order of s. An empty order is the default one;
// a partial order lists its features first and the rest after.
func (p *Parallel) Order(s filter.State) ([]string, error) {
	known := make(map[string]bool, len(p.features))
	for _, f := range p.features {
		known[f] = true
	}
	for _, b := range s.Brushes {
		if !known[b.Feature] {
			return nil, fmt.Errorf("brush on %q: %w", b.Feature, ErrUnknownFeature)
		}
	}
	seen := make(map[string]bool, len(p.features))
	out := make([]string, 0, len(p.features))
	for _, f := range s.Order {
		if !known[f] {
			return nil, fmt.Errorf("axis %q: %w", f, ErrUnknownFeature)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range p.features {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

// MoveAxis returns order with feature moved to position to.
func MoveAxis(order []string, feature string, to int) []string {
	out := make([]string, 0, len(order))
	for _, f := range order {
		if f != feature {
			out = append(out, f)
		}
	}
	if len(out) == len(order) {
		return append([]string(nil), order...)
	}
	to = max(0, min(to, len(out)))
	out = append(out, "")
	copy(out[to+1:], out[to:])
	out[to] = feature
	return out
}

// Recompute lays out one polyline per hit song across the ordered axes.
func (p *Parallel) Recompute(s filter.State) (*Scene, error) {
	if len(p.songs) == 0 {
		return nil, &filter.EmptyResultError{Message: fmt.Sprintf(
			"No songs are hits on at least %d platforms.", p.opts.HitThreshold)}
	}
	order, err := p.Order(s)
	if err != nil {
		return nil, err
	}

	o := p.opts
	w := o.Width - o.Margin.Left - o.Margin.Right
	h := o.Height - o.Margin.Top - o.Margin.Bottom
	xs := layout.Points(len(order), w)
	y := func(v float64) float64 { return (1 - v) * h }

	s.Order = order
	sc := &Scene{
		Chart:  p.Name(),
		Title:  "Audio Features of Hit Songs",
		Width:  o.Width,
		Height: o.Height,
		Margin: o.Margin,
		State:  s,
	}

	brushed := highlight.Brushed(p.values, s.Brushes)
	nBrushed := 0
	for i, r := range p.songs {
		points := make([]XY, len(order))
		for k, f := range order {
			points[k] = XY{X: xs[k], Y: y(p.values[i][f])}
		}
		opacity := 0.4
		if len(s.Brushes) > 0 {
			opacity = highlight.Line(brushed[i])
		}
		if brushed[i] {
			nBrushed++
		}
		sc.Add(Shape{
			Kind: KindPolyline, Class: "line", ID: r.Label(record.FieldTrack), Points: points,
			Fill: "none", Stroke: PopularityColor(r.Value(record.FieldPopularity)), StrokeWidth: 1.5,
			Opacity: opacity, Highlighted: brushed[i],
			Tooltip: map[string]any{
				"track": r.Label(record.FieldTrack), "artists": r.Label(record.FieldArtists),
				"popularity": finiteOrNil(r.Value(record.FieldPopularity)), "hits": r.HitCount,
			},
		})
	}

	for k, f := range order {
		x := xs[k]
		b := p.bounds[f]
		sc.Add(Shape{
			Kind: KindLine, Class: "axis", ID: f, X: x, Y: 0, X2: x, Y2: h,
			Stroke: "#000000", StrokeWidth: 1, Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "axis-label", X: x, Y: -9, Text: f,
			Anchor: "middle", FontSize: 10, Fill: "#000000", Opacity: 1,
		})
		for _, t := range layout.Ticks(b.Min, b.Max, 5) {
			ty := y(b.Unit(t))
			sc.Add(Shape{
				Kind: KindText, Class: "tick-label", X: x - 4, Y: ty, Text: fmt.Sprintf("%.3g", t),
				Anchor: "end", Baseline: "middle", FontSize: 8, Fill: "#555555", Opacity: 1,
			})
		}
	}

	for _, br := range s.Brushes {
		k := indexOf(order, br.Feature)
		lo, hi := br.Lo, br.Hi
		if lo > hi {
			lo, hi = hi, lo
		}
		sc.Add(Shape{
			Kind: KindRect, Class: "brush", ID: br.Feature,
			X: xs[k] - 8, Y: y(hi), W: 16, H: (hi - lo) * h,
			Fill: "#777777", Stroke: "#ffffff", Opacity: 0.3,
		})
	}

	p.legend(sc, w)
	sc.Data = ParallelSummary{Order: order, Ranges: p.bounds, Songs: len(p.songs), Brushed: nBrushed}
	return sc, nil
}

func (p *Parallel) legend(sc *Scene, w float64) {
	x := w + 20
	sc.Add(Shape{
		Kind: KindText, Class: "legend-title", X: x, Y: 0, Text: "Popularity",
		FontSize: 10, Bold: true, Anchor: "start", Opacity: 1,
	})
	for i, v := range []float64{100, 75, 50, 25, 0} {
		y := 10 + float64(i)*20
		sc.Add(Shape{
			Kind: KindRect, Class: "legend-swatch", X: x, Y: y, W: 15, H: 20,
			Fill: PopularityColor(v), Opacity: 1,
		}, Shape{
			Kind: KindText, Class: "legend-text", X: x + 20, Y: y + 10, Text: fmt.Sprintf("%.0f", v),
			Baseline: "middle", FontSize: 9, Anchor: "start", Opacity: 1,
		})
	}
}

// finiteOrNil keeps tooltips JSON-encodable.
func finiteOrNil(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
