// Package layout computes screen-space geometry for chart primitives: stacked
// spans on an axis, ribbons between two axes, staggered labels, radial and
// band coordinates.
package layout

import (
	"math"

	"github.com/hitboard/hitboard/internal/aggregate"
)

// Box is the extent assigned to one entity on an axis.
type Box struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Total float64 `json:"total"`
}

// Size returns End - Start.
func (b Box) Size() float64 { return b.End - b.Start }

// Center returns the midpoint of the box.
func (b Box) Center() float64 { return b.Start + b.Size()/2 }

// Axis describes where boxes are stacked.
type Axis struct {
	Length  float64 // the last End never exceeds Length
	Offset  float64 // Start of the first box
	MinSize float64
	Gap     float64
}

// Stack assigns each entity a contiguous span proportional to its total,
// with a floor of MinSize and Gap between consecutive spans. If the spans
// do not fit in [Offset, Length] every size and gap is scaled down.
func Stack(entities []aggregate.Entity, a Axis) []Box {
	n := len(entities)
	if n == 0 {
		return nil
	}
	grand := 0
	for _, e := range entities {
		grand += e.Total
	}
	usable := math.Max(a.Length-a.Offset-a.Gap*float64(n-1), 0)

	sizes := make([]float64, n)
	for i, e := range entities {
		share := 0.0
		if grand > 0 {
			share = float64(e.Total) / float64(grand) * usable
		}
		sizes[i] = math.Max(share, a.MinSize)
	}
	boxes, _ := place(entities, sizes, a.Gap, a.Offset, a.Length)
	return boxes
}

// GenreAxis lays out the target axis of the flow chart. The sizing height is
// 85% of a.Length. Each box gets 80% of its share of that height with a
// floor of 10; the gap between boxes is a fifth of the average free space,
// at least 8. Shares are taken of grand, which may exceed the sum of the
// shown entities; grand <= 0 means that sum.
//
// The returned extent is the stacking position after the last box, trailing
// gap included, which is what the platform axis is scaled to.
func GenreAxis(entities []aggregate.Entity, grand int, a Axis) ([]Box, float64) {
	n := len(entities)
	if n == 0 {
		return nil, 0
	}
	if grand <= 0 {
		for _, e := range entities {
			grand += e.Total
		}
	}
	height := a.Length * 0.85
	floor := a.MinSize
	if floor <= 0 {
		floor = 10
	}
	available := height - float64(n)*floor
	gap := math.Max(8, available/float64(n)*0.2)

	sizes := make([]float64, n)
	for i, e := range entities {
		share := 0.0
		if grand > 0 {
			share = float64(e.Total) / float64(grand) * height * 0.8
		}
		sizes[i] = math.Max(share, floor)
	}
	return place(entities, sizes, gap, a.Offset, a.Length)
}

// Align lays out entities so that their stacked extent matches extent,
// which is normally the genre axis extent. Totals are scaled by
// extent/sum; a floor of a.MinSize and a.Gap apply.
func Align(extent float64, entities []aggregate.Entity, a Axis) []Box {
	if len(entities) == 0 {
		return nil
	}
	sum := 0
	for _, e := range entities {
		sum += e.Total
	}
	if sum == 0 {
		sum = 1
	}
	k := extent / float64(sum)
	sizes := make([]float64, len(entities))
	for i, e := range entities {
		sizes[i] = math.Max(float64(e.Total)*k, a.MinSize)
	}
	boxes, _ := place(entities, sizes, a.Gap, a.Offset, a.Length)
	return boxes
}

// End returns the end of the last box, or 0.
func End(boxes []Box) float64 {
	if len(boxes) == 0 {
		return 0
	}
	return boxes[len(boxes)-1].End
}

// place stacks sizes from offset and returns the boxes and the position after
// the trailing gap. When length > 0 and the stack overruns it, sizes and gaps
// shrink by the same factor, and no position exceeds length.
func place(entities []aggregate.Entity, sizes []float64, gap, offset, length float64) ([]Box, float64) {
	need := gap * float64(len(sizes)-1)
	for _, s := range sizes {
		need += s
	}
	k := 1.0
	if room := length - offset; length > 0 && need > room {
		k = math.Max(room, 0) / need
	}

	boxes := make([]Box, len(entities))
	pos := offset
	for i, e := range entities {
		start, end := pos, pos+sizes[i]*k
		if length > 0 {
			start, end = math.Min(start, length), math.Min(end, length)
		}
		boxes[i] = Box{Name: e.Name, Start: start, End: end, Total: float64(e.Total)}
		pos = end + gap*k
	}
	if length > 0 {
		pos = math.Min(pos, length)
	}
	return boxes, pos
}

// BarWidth scales a bar's thickness by total/max with a floor of 30% of
// base.
func BarWidth(total, max int, base float64) float64 {
	if max <= 0 {
		return base * 0.3
	}
	return math.Max(base*float64(total)/float64(max), base*0.3)
}
