package aggregate

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/hitboard/hitboard/internal/record"
)

// ErrNoRecords is returned when a statistic is requested over zero records.
var ErrNoRecords = errors.New("no records")

// Correlation is the Pearson coefficient of one metric against a target.
type Correlation struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	// Degenerate is set when a variance term was zero and Value was forced to 0.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Pearson computes the correlation coefficient of xs and ys.
//
// Pairs with NaN or ±Inf on either side are skipped. If either sum of squares
// is exactly zero, or fewer than two pairs remain, the result is 0 and the
// degenerate flag is set. This zero-variance policy is kept for output
// compatibility with the published charts; it has no statistical basis.
// A result that still cannot be represented is reported the same way.
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}

	px := make([]float64, 0, n)
	py := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) < 2 {
		return 0, true
	}

	dx, sx := deviations(px)
	dy, sy := deviations(py)
	if sx == 0 || sy == 0 {
		return 0, true
	}
	// Deviations are scaled by their largest magnitude so the sums below
	// cannot overflow; r is scale invariant.
	var num, ssx, ssy float64
	for i := range dx {
		x, y := dx[i]/sx, dy[i]/sy
		num += x * y
		ssx += x * x
		ssy += y * y
	}
	if ssx == 0 || ssy == 0 {
		return 0, true
	}

	r := num / (math.Sqrt(ssx) * math.Sqrt(ssy))
	if !isFinite(r) {
		return 0, true
	}
	// Rounding can push |r| a hair past 1.
	return math.Max(-1, math.Min(1, r)), false
}

// deviations returns xs minus its mean and the largest absolute deviation.
// The scale is NaN when the mean overflowed.
func deviations(xs []float64) ([]float64, float64) {
	m := stats.Mean(xs)
	out := make([]float64, len(xs))
	var scale float64
	for i, x := range xs {
		out[i] = x - m
		scale = math.Max(scale, math.Abs(out[i]))
	}
	if !isFinite(m) {
		scale = math.NaN()
	}
	return out, scale
}

// Correlate computes the correlation of each metric against target over
// records, in metric order.
func Correlate(records []record.Record, target string, metrics []string) []Correlation {
	ys := record.Column(records, target)
	out := make([]Correlation, 0, len(metrics))
	for _, m := range metrics {
		r, degenerate := Pearson(record.Column(records, m), ys)
		out = append(out, Correlation{Metric: m, Value: r, Degenerate: degenerate})
	}
	return out
}

// Bounds is the observed range of one metric.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MetricBounds returns the min and max of each metric, ignoring NaN.
// A metric with no values gets NaN bounds.
func MetricBounds(records []record.Record, metrics []string) map[string]Bounds {
	out := make(map[string]Bounds, len(metrics))
	for _, m := range metrics {
		vals := finite(record.Column(records, m))
		if len(vals) == 0 {
			out[m] = Bounds{Min: math.NaN(), Max: math.NaN()}
			continue
		}
		lo, hi := stats.Bounds(vals)
		out[m] = Bounds{Min: lo, Max: hi}
	}
	return out
}

// MarshalJSON writes unknown bounds as null.
func (b Bounds) MarshalJSON() ([]byte, error) {
	if math.IsNaN(b.Min) || math.IsNaN(b.Max) {
		return []byte(`{"min":null,"max":null}`), nil
	}
	return json.Marshal(struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}{b.Min, b.Max})
}

// Symmetric maps v into [-1, 1] using b. A flat or unknown range maps to 0.
func (b Bounds) Symmetric(v float64) float64 {
	if !b.usable(v) {
		return 0
	}
	s := (v-b.Min)/(b.Max-b.Min)*2 - 1
	if !isFinite(s) {
		return 0
	}
	return s
}

// Unit maps v into [0, 1] using b. A flat or unknown range maps to 0.
func (b Bounds) Unit(v float64) float64 {
	if !b.usable(v) {
		return 0
	}
	u := (v - b.Min) / (b.Max - b.Min)
	if !isFinite(u) {
		return 0
	}
	return u
}

func (b Bounds) usable(v float64) bool {
	return isFinite(v) && isFinite(b.Max-b.Min) && b.Max != b.Min
}

// ProfileMode tells how Profile values were obtained.
type ProfileMode string

// Profile modes.
const (
	ModeCorrelation ProfileMode = "correlation"
	ModeSinglePoint ProfileMode = "single_point"
)

// Profile is one value in [-1, 1] per metric.
type Profile struct {
	Mode   ProfileMode   `json:"mode"`
	Values []Correlation `json:"values"`
}

// Value returns the profile value for metric (0 if absent).
func (p Profile) Value(metric string) float64 {
	for _, v := range p.Values {
		if v.Metric == metric {
			return v.Value
		}
	}
	return 0
}

// BuildProfile summarizes the filtered records against target.
//
// With several records it returns correlations. With exactly one record it
// skips correlation and instead returns that record's metric values scaled
// into [-1, 1] using the bounds of all (the unfiltered record set).
func BuildProfile(filtered, all []record.Record, target string, metrics []string) (Profile, error) {
	switch len(filtered) {
	case 0:
		return Profile{}, ErrNoRecords
	case 1:
		bounds := MetricBounds(all, metrics)
		only := filtered[0]
		values := make([]Correlation, 0, len(metrics))
		for _, m := range metrics {
			values = append(values, Correlation{Metric: m, Value: bounds[m].Symmetric(only.Value(m))})
		}
		return Profile{Mode: ModeSinglePoint, Values: values}, nil
	default:
		return Profile{Mode: ModeCorrelation, Values: Correlate(filtered, target, metrics)}, nil
	}
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if isFinite(x) {
			out = append(out, x)
		}
	}
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
