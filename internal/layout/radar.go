package layout

import (
	"math"

	"github.com/aclements/go-moremath/scale"
)

// RadarRings are the grid circle values of the radar chart.
var RadarRings = []float64{-1, -0.5, 0, 0.5, 1}

// Radar label and axis extents, in value units.
const (
	RadarLabelValue = 1.5
	RadarAxisValue  = 1.1
)

// Point is a position relative to the chart center.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RadarAxis is one spoke of the radar chart.
type RadarAxis struct {
	Name     string  `json:"name"`
	Angle    float64 `json:"angle"`
	End      Point   `json:"end"`
	Label    Point   `json:"label"`
	Anchor   string  `json:"anchor"`   // start, middle or end
	Baseline string  `json:"baseline"` // baseline, middle or hanging
}

// RadarRing is one grid circle.
type RadarRing struct {
	Value  float64 `json:"value"`
	Radius float64 `json:"radius"`
}

// RadarGeometry is the full radar layout centered on (0, 0).
type RadarGeometry struct {
	Radius  float64     `json:"radius"`
	Axes    []RadarAxis `json:"axes"`
	Rings   []RadarRing `json:"rings"`
	Polygon []Point     `json:"polygon"`
}

// RadarRadius is the largest radius that fits width x height with margin on
// every side.
func RadarRadius(width, height, margin float64) float64 {
	return math.Min(width-2*margin, height-2*margin) / 2
}

// Radar lays out n axes evenly around the circle, the first pointing up, and
// places values (in [-1, 1]) on them. Value -1 sits at the center.
func Radar(axes []string, values []float64, radius float64) RadarGeometry {
	r := radial{s: scale.Linear{Min: -1, Max: 1}, radius: radius}
	g := RadarGeometry{Radius: radius}
	for _, v := range RadarRings {
		g.Rings = append(g.Rings, RadarRing{Value: v, Radius: r.at(v)})
	}

	n := len(axes)
	for i, name := range axes {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		cos, sin := math.Cos(angle), math.Sin(angle)
		ax := RadarAxis{
			Name:  name,
			Angle: angle,
			End:   polar(r.at(RadarAxisValue), cos, sin),
			Label: polar(r.at(RadarLabelValue), cos, sin),
		}
		switch {
		case math.Abs(cos) < 0.3:
			ax.Anchor = "middle"
		case cos > 0:
			ax.Anchor = "start"
		default:
			ax.Anchor = "end"
		}
		switch {
		case math.Abs(sin) < 0.3:
			ax.Baseline = "middle"
		case sin < 0:
			ax.Baseline = "baseline"
		default:
			ax.Baseline = "hanging"
		}
		g.Axes = append(g.Axes, ax)

		v := 0.0
		if i < len(values) && !math.IsNaN(values[i]) {
			v = values[i]
		}
		g.Polygon = append(g.Polygon, polar(r.at(v), cos, sin))
	}
	return g
}

type radial struct {
	s      scale.Linear
	radius float64
}

// at maps a value to a distance from the center. Values past 1 extend
// linearly beyond radius.
func (r radial) at(v float64) float64 {
	return r.s.Map(v) * r.radius
}

func polar(d, cos, sin float64) Point {
	return Point{X: d * cos, Y: d * sin}
}
