// Package scene runs the chart pipeline: it turns the loaded records and a
// filter state into an ordered list of positioned, styled shapes.
//
// Every chart caches its aggregates when it is built and exposes a pure
// Recompute (or Frame) that depends only on the cached data and the state
// passed in.
package scene

import (
	"errors"
	"log/slog"

	"github.com/hitboard/hitboard/internal/filter"
)

// Kind is the type of a shape.
type Kind string

// Shape kinds.
const (
	KindRect     Kind = "rect"
	KindPath     Kind = "path"
	KindLine     Kind = "line"
	KindCircle   Kind = "circle"
	KindPolyline Kind = "polyline"
	KindPolygon  Kind = "polygon"
	KindText     Kind = "text"
)

// XY is a point in scene coordinates.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one drawable primitive. Only the fields relevant to Kind are set.
type Shape struct {
	Kind  Kind   `json:"kind"`
	ID    string `json:"id,omitempty"`
	Class string `json:"class,omitempty"`

	X  float64 `json:"x,omitempty"`
	Y  float64 `json:"y,omitempty"`
	W  float64 `json:"w,omitempty"`
	H  float64 `json:"h,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`
	R  float64 `json:"r,omitempty"`

	D      string `json:"d,omitempty"`
	Points []XY   `json:"points,omitempty"`

	Text     string  `json:"text,omitempty"`
	Anchor   string  `json:"anchor,omitempty"`
	Baseline string  `json:"baseline,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Bold     bool    `json:"bold,omitempty"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Dash        string  `json:"dash,omitempty"`
	Opacity     float64 `json:"opacity"`

	Highlighted bool `json:"highlighted"`
	// Tooltip holds the fields an adapter may show on hover.
	Tooltip map[string]any `json:"tooltip,omitempty"`
}

// Margin is the space around the plot area.
type Margin struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Scene is the output of one recompute. Shapes are in draw order and their
// coordinates are relative to the plot origin (Margin.Left, Margin.Top),
// except for radar scenes, which are centered on Origin.
type Scene struct {
	Chart   string       `json:"chart"`
	Title   string       `json:"title,omitempty"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Margin  Margin       `json:"margin"`
	Origin  XY           `json:"origin"`
	State   filter.State `json:"state"`
	Shapes  []Shape      `json:"shapes"`
	Message string       `json:"message,omitempty"`
	// Data is the chart-specific summary behind the shapes.
	Data any `json:"data,omitempty"`
}

// Add appends shapes.
func (s *Scene) Add(shapes ...Shape) { s.Shapes = append(s.Shapes, shapes...) }

// Count returns how many shapes of kind k have the given class ("" = any).
func (s *Scene) Count(k Kind, class string) int {
	n := 0
	for _, sh := range s.Shapes {
		if sh.Kind == k && (class == "" || sh.Class == class) {
			n++
		}
	}
	return n
}

// Empty builds the "no data" scene shown for an empty result.
func Empty(chart string, width, height float64, state filter.State, err error) *Scene {
	msg := filter.Empty().Message
	var empty *filter.EmptyResultError
	if errors.As(err, &empty) {
		msg = empty.Message
	}
	s := &Scene{Chart: chart, Width: width, Height: height, State: state, Message: msg}
	s.Add(Shape{
		Kind: KindText, Class: "message",
		X: width / 2, Y: 100,
		Text: msg, Anchor: "middle", FontSize: 18, Fill: "#333333", Opacity: 1,
	})
	return s
}

// Chart is implemented by every chart pipeline.
type Chart interface {
	Name() string
	Size() (width, height float64)
	Recompute(filter.State) (*Scene, error)
}

// Render runs a recompute and turns an empty result into a message scene.
// Any other error is returned as is.
func Render(c Chart, state filter.State) (*Scene, error) {
	sc, err := c.Recompute(state)
	if errors.Is(err, filter.ErrEmptyResult) {
		slog.Default().Debug("empty result",
			slog.String("module", "scene"),
			slog.String("chart", c.Name()),
			slog.String("reason", err.Error()))
		w, h := c.Size()
		return Empty(c.Name(), w, h, state, err), nil
	}
	return sc, err
}
