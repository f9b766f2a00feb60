package layout

import (
	"math"
	"sort"
)

// Segment is a straight connector line.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Anchor is where a label would sit if nothing collided with it.
type Anchor struct {
	Name string
	Y    float64
	// Height is the measured text height; LabelOptions.MinHeight is the floor.
	Height float64
}

// Label is a placed label.
type Label struct {
	Name      string   `json:"name"`
	AnchorY   float64  `json:"anchor_y"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Level     int      `json:"level"`
	NeedsLine bool     `json:"needs_line"`
	Connector *Segment `json:"connector,omitempty"`

	height float64
}

// LabelOptions tunes StaggerLabels.
type LabelOptions struct {
	MinSpacing float64 // default 22
	MaxLevel   int     // levels wrap modulo MaxLevel; default 5
	Nudge      float64 // vertical shift per level; default 3
	XOffset    float64 // horizontal shift per level; default 25
	MinHeight  float64 // default 18
	Edge       float64 // x of the bar edge the labels hang off
}

func (o LabelOptions) withDefaults() LabelOptions {
	if o.MinSpacing <= 0 {
		o.MinSpacing = 22
	}
	if o.MaxLevel <= 0 {
		o.MaxLevel = 5
	}
	if o.Nudge == 0 {
		o.Nudge = 3
	}
	if o.XOffset == 0 {
		o.XOffset = 25
	}
	if o.MinHeight <= 0 {
		o.MinHeight = 18
	}
	return o
}

// StaggerLabels places labels so neighbors do not collide.
//
// It is a greedy two-pass heuristic and not globally optimal. Pass one walks
// labels top to bottom; any later label on the same level closer than
// MinSpacing moves to the next level (wrapping at MaxLevel) and is nudged
// down by Nudge per level. Pass two walks each level top to bottom and
// pushes a label down until it clears its predecessor by MinSpacing.
// Labels come back sorted by anchor position.
func StaggerLabels(anchors []Anchor, opts LabelOptions) []Label {
	o := opts.withDefaults()

	labels := make([]Label, len(anchors))
	for i, a := range anchors {
		labels[i] = Label{Name: a.Name, AnchorY: a.Y, Y: a.Y, height: math.Max(a.Height, o.MinHeight)}
	}
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].AnchorY < labels[j].AnchorY })

	for i := range labels {
		if labels[i].NeedsLine {
			continue
		}
		for j := i + 1; j < len(labels); j++ {
			if labels[j].Level != labels[i].Level {
				continue
			}
			if math.Abs(labels[i].Y-labels[j].Y) < o.MinSpacing {
				labels[j].Level = (labels[j].Level + 1) % o.MaxLevel
				labels[j].NeedsLine = true
				labels[j].Y = labels[j].AnchorY + float64(labels[j].Level)*o.Nudge
			}
		}
	}

	levels := make(map[int][]int)
	var order []int
	for i, l := range labels {
		if _, ok := levels[l.Level]; !ok {
			order = append(order, l.Level)
		}
		levels[l.Level] = append(levels[l.Level], i)
	}
	for _, lv := range order {
		// Indices are already in anchor order.
		prevY, prevHeight := math.Inf(-1), 0.0
		for _, i := range levels[lv] {
			minY := prevY + prevHeight/2 + o.MinSpacing
			if labels[i].Y < minY {
				labels[i].Y = minY
			}
			prevY, prevHeight = labels[i].Y, labels[i].height
		}
	}

	for i := range labels {
		l := &labels[i]
		shift := float64(l.Level) * o.XOffset
		l.X = o.Edge + 10 + shift
		l.Connector = &Segment{X1: o.Edge, Y1: l.AnchorY, X2: o.Edge + 5 + shift, Y2: l.Y}
	}
	return labels
}
