package layout

import (
	"fmt"
	"sort"

	"github.com/hitboard/hitboard/internal/aggregate"
)

// Span is a [Y0, Y1] sub-extent inside a box.
type Span struct {
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// Ribbon is a link laid out between a source box and a target box.
type Ribbon struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
	From   Span   `json:"from"`
	To     Span   `json:"to"`
}

// Ribbons lays out links between two axes.
//
// On each source box the outgoing sub-spans are ordered by weight
// descending; on each target box the incoming sub-spans are ordered by the
// source total descending. Each sub-span is weight/total of its box and
// starts where the previous one ended. Links with an end that has no box
// are skipped. Ribbons come back grouped by target in target box order.
func Ribbons(sources, targets []Box, links []aggregate.Link) []Ribbon {
	srcBox := make(map[string]Box, len(sources))
	for _, b := range sources {
		srcBox[b.Name] = b
	}
	dstBox := make(map[string]Box, len(targets))
	for _, b := range targets {
		dstBox[b.Name] = b
	}

	bySource := make(map[string][]aggregate.Link)
	for _, l := range links {
		if _, ok := srcBox[l.Source]; !ok {
			continue
		}
		if _, ok := dstBox[l.Target]; !ok {
			continue
		}
		bySource[l.Source] = append(bySource[l.Source], l)
	}

	from := make(map[[2]string]Span)
	byTarget := make(map[string][]aggregate.Link)
	for _, b := range sources {
		out := bySource[b.Name]
		sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
		y := b.Start
		for _, l := range out {
			h := fraction(l.Weight, b.Total) * b.Size()
			from[[2]string{l.Source, l.Target}] = Span{Y0: y, Y1: y + h}
			y += h
			byTarget[l.Target] = append(byTarget[l.Target], l)
		}
	}

	var ribbons []Ribbon
	for _, b := range targets {
		in := byTarget[b.Name]
		sort.SliceStable(in, func(i, j int) bool {
			return srcBox[in[i].Source].Total > srcBox[in[j].Source].Total
		})
		y := b.Start
		for _, l := range in {
			h := fraction(l.Weight, b.Total) * b.Size()
			ribbons = append(ribbons, Ribbon{
				Source: l.Source,
				Target: l.Target,
				Weight: l.Weight,
				From:   from[[2]string{l.Source, l.Target}],
				To:     Span{Y0: y, Y1: y + h},
			})
			y += h
		}
	}
	return ribbons
}

func fraction(w int, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(w) / total
}

// Curve is the closed shape of a ribbon: two cubic Bezier edges joined by
// vertical segments at each end.
type Curve struct {
	X0, X1   float64 // left and right ends
	C0, C1   float64 // control point x positions
	Top      [2]float64
	Bottom   [2]float64
	PathData string
}

// Path returns the ribbon shape from the right edge of the source bar at
// sourceX+sourceWidth to the target bar at targetX. Control points sit 20%
// of the gap between the bars in from each end.
func (r Ribbon) Path(sourceX, sourceWidth, targetX float64) Curve {
	x0 := sourceX + sourceWidth
	dx := targetX - x0
	c0 := x0 + dx*0.2
	c1 := targetX - dx*0.2
	d := fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s L %s %s C %s %s, %s %s, %s %s Z",
		num(x0), num(r.From.Y0),
		num(c0), num(r.From.Y0), num(c1), num(r.To.Y0), num(targetX), num(r.To.Y0),
		num(targetX), num(r.To.Y1),
		num(c1), num(r.To.Y1), num(c0), num(r.From.Y1), num(x0), num(r.From.Y1))
	return Curve{
		X0: x0, X1: targetX, C0: c0, C1: c1,
		Top:      [2]float64{r.From.Y0, r.To.Y0},
		Bottom:   [2]float64{r.From.Y1, r.To.Y1},
		PathData: d,
	}
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
