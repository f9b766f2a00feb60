package layout

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/hitboard/hitboard/internal/aggregate"
)

func entities(totals ...int) []aggregate.Entity {
	out := make([]aggregate.Entity, len(totals))
	for i, t := range totals {
		out[i] = aggregate.Entity{Name: string(rune('a' + i)), Total: t, Rank: i + 1}
	}
	return out
}

func checkSpans(t *testing.T, boxes []Box, length float64) {
	t.Helper()
	for i, b := range boxes {
		if b.End < b.Start {
			t.Errorf("box %d inverted: %+v", i, b)
		}
		if i > 0 && b.Start < boxes[i-1].End {
			t.Errorf("box %d overlaps previous: %+v after %+v", i, b, boxes[i-1])
		}
	}
	if end := End(boxes); end > length+1e-9 {
		t.Errorf("last end %v exceeds length %v", end, length)
	}
}

func TestStack_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 300; iter++ {
		n := rng.Intn(40)
		totals := make([]int, n)
		for i := range totals {
			totals[i] = rng.Intn(50)
		}
		a := Axis{
			Length:  float64(50 + rng.Intn(500)),
			Offset:  float64(rng.Intn(20)),
			MinSize: float64(rng.Intn(20)),
			Gap:     float64(rng.Intn(6)),
		}
		checkSpans(t, Stack(entities(totals...), a), a.Length)
		boxes, extent := GenreAxis(entities(totals...), 0, a)
		checkSpans(t, boxes, a.Length)
		if extent < End(boxes) || extent > a.Length+1e-9 {
			t.Errorf("extent %v outside [%v, %v]", extent, End(boxes), a.Length)
		}
		checkSpans(t, Align(a.Length, entities(totals...), a), a.Length)
	}
}

func TestStack_Proportional(t *testing.T) {
	boxes := Stack(entities(3, 1), Axis{Length: 104, Gap: 4})
	if boxes[0].Size() != 75 || boxes[1].Size() != 25 {
		t.Errorf("sizes = %v, %v; want 75, 25", boxes[0].Size(), boxes[1].Size())
	}
	if boxes[1].Start != 79 {
		t.Errorf("second start = %v, want 79", boxes[1].Start)
	}
}

func TestStack_MinSizeFloor(t *testing.T) {
	// The floor pushes the stack past the axis, so everything shrinks a little.
	boxes := Stack(entities(1000, 1), Axis{Length: 1000, MinSize: 15})
	if got := boxes[1].Size(); got < 14 || got > 15 {
		t.Errorf("small box size = %v, want the floor of 15 scaled to fit", got)
	}
	if got := End(boxes); math.Abs(got-1000) > 1e-9 {
		t.Errorf("end = %v, want 1000", got)
	}
}

func TestGenreAxis_Original(t *testing.T) {
	// Two genres sharing 100 hits on a 1000-unit axis.
	boxes, _ := GenreAxis(entities(60, 40), 100, Axis{Length: 1000, Offset: 20})
	height := 1000 * 0.85
	gap := math.Max(8, (height-20)/2*0.2)
	if got, want := boxes[0].Size(), 0.6*height*0.8; math.Abs(got-want) > 1e-9 {
		t.Errorf("first size = %v, want %v", got, want)
	}
	if got, want := boxes[1].Start, 20+boxes[0].Size()+gap; math.Abs(got-want) > 1e-9 {
		t.Errorf("second start = %v, want %v", got, want)
	}
}

func TestGenreAxis_ExtentIncludesTrailingGap(t *testing.T) {
	tests := []struct {
		name   string
		totals []int
		length float64
	}{
		{"one genre", []int{10}, 1000},
		{"two genres", []int{60, 40}, 1000},
		{"many genres", []int{5, 4, 3, 2, 1}, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Axis{Length: tt.length, Offset: 20, MinSize: 10}
			boxes, extent := GenreAxis(entities(tt.totals...), 0, a)
			n := float64(len(tt.totals))
			gap := math.Max(8, (tt.length*0.85-n*10)/n*0.2)
			if want := End(boxes) + gap; math.Abs(extent-want) > 1e-9 {
				t.Errorf("extent = %v, want last end %v plus gap %v", extent, End(boxes), gap)
			}
		})
	}

	if boxes, extent := GenreAxis(nil, 0, Axis{Length: 100}); boxes != nil || extent != 0 {
		t.Errorf("empty axis = %v, %v", boxes, extent)
	}
}

func TestAlign_MatchesExtent(t *testing.T) {
	boxes := Align(300, entities(100, 50, 150), Axis{Length: 1000, Gap: 0})
	if got := End(boxes); math.Abs(got-300) > 1e-9 {
		t.Errorf("aligned end = %v, want 300", got)
	}
}

func TestRibbons_Contiguous(t *testing.T) {
	sources := []Box{
		{Name: "A", Start: 0, End: 30, Total: 3},
		{Name: "B", Start: 32, End: 42, Total: 1},
	}
	targets := []Box{
		{Name: "G", Start: 0, End: 40, Total: 4},
	}
	links := []aggregate.Link{
		{Source: "B", Target: "G", Weight: 1},
		{Source: "A", Target: "G", Weight: 3},
		{Source: "A", Target: "missing", Weight: 9},
	}
	got := Ribbons(sources, targets, links)
	if len(got) != 2 {
		t.Fatalf("ribbons = %d, want 2", len(got))
	}
	// A has the larger total, so it enters G first.
	if got[0].Source != "A" || got[1].Source != "B" {
		t.Fatalf("order = %s, %s", got[0].Source, got[1].Source)
	}
	if got[0].To != (Span{0, 30}) || got[1].To != (Span{30, 40}) {
		t.Errorf("target spans = %+v, %+v", got[0].To, got[1].To)
	}
	if got[0].From != (Span{0, 30}) || got[1].From != (Span{32, 42}) {
		t.Errorf("source spans = %+v, %+v", got[0].From, got[1].From)
	}
}

func TestRibbon_Path(t *testing.T) {
	r := Ribbon{From: Span{0, 10}, To: Span{20, 30}}
	c := r.Path(0, 40, 500)
	if c.C0 != 132 || c.C1 != 408 {
		t.Errorf("controls = %v, %v; want 132, 408", c.C0, c.C1)
	}
	if !strings.HasPrefix(c.PathData, "M 40.00 0.00 C 132.00 0.00, 408.00 20.00, 500.00 20.00 L 500.00 30.00") {
		t.Errorf("path = %q", c.PathData)
	}
	if !strings.HasSuffix(c.PathData, "Z") {
		t.Errorf("path not closed: %q", c.PathData)
	}
}

func TestBarWidth(t *testing.T) {
	if got := BarWidth(50, 100, 40); got != 20 {
		t.Errorf("BarWidth(50, 100) = %v, want 20", got)
	}
	if got := BarWidth(1, 100, 40); got != 12 {
		t.Errorf("BarWidth(1, 100) = %v, want floor 12", got)
	}
}

func TestStaggerLabels_IdenticalPositions(t *testing.T) {
	labels := StaggerLabels([]Anchor{{Name: "Pop", Y: 100}, {Name: "Rock", Y: 100}}, LabelOptions{MinSpacing: 20, Edge: 540})
	if labels[0].Level != 0 || labels[0].NeedsLine {
		t.Errorf("first label = %+v, want level 0", labels[0])
	}
	if labels[1].Level != 1 || !labels[1].NeedsLine {
		t.Errorf("second label = %+v, want level 1", labels[1])
	}
	if labels[1].Y != 103 {
		t.Errorf("second y = %v, want 103", labels[1].Y)
	}
	if labels[1].X != 540+10+25 {
		t.Errorf("second x = %v, want 575", labels[1].X)
	}
	if c := labels[1].Connector; c == nil || c.X1 != 540 || c.Y1 != 100 || c.X2 != 570 || c.Y2 != 103 {
		t.Errorf("connector = %+v", labels[1].Connector)
	}
}

func TestStaggerLabels_SpacingWithinLevel(t *testing.T) {
	anchors := []Anchor{{Name: "a", Y: 0}, {Name: "b", Y: 5}, {Name: "c", Y: 10}}
	labels := StaggerLabels(anchors, LabelOptions{MinSpacing: 20})
	byLevel := map[int][]Label{}
	for _, l := range labels {
		byLevel[l.Level] = append(byLevel[l.Level], l)
	}
	for lv, group := range byLevel {
		for i := 1; i < len(group); i++ {
			if gap := group[i].Y - group[i-1].Y; gap < 20 {
				t.Errorf("level %d: labels %s and %s only %v apart", lv, group[i-1].Name, group[i].Name, gap)
			}
		}
	}
}

func TestRadar(t *testing.T) {
	g := Radar([]string{"a", "b", "c", "d"}, []float64{1, -1, 0, math.NaN()}, 150)
	if len(g.Rings) != 5 || g.Rings[0].Radius != 0 || g.Rings[4].Radius != 150 {
		t.Errorf("rings = %+v", g.Rings)
	}
	top := g.Axes[0]
	if top.Anchor != "middle" || top.Baseline != "baseline" {
		t.Errorf("top axis anchor = %s/%s", top.Anchor, top.Baseline)
	}
	if math.Abs(g.Polygon[0].X) > 1e-9 || math.Abs(g.Polygon[0].Y+150) > 1e-9 {
		t.Errorf("value 1 on the top axis = %+v, want (0, -150)", g.Polygon[0])
	}
	if g.Polygon[1] != (Point{}) {
		t.Errorf("value -1 = %+v, want center", g.Polygon[1])
	}
	if right := g.Axes[1]; right.Anchor != "start" || right.Baseline != "middle" {
		t.Errorf("right axis anchor = %s/%s", right.Anchor, right.Baseline)
	}
	if d := math.Hypot(g.Polygon[3].X, g.Polygon[3].Y); math.Abs(d-75) > 1e-9 {
		t.Errorf("missing value drawn at %v, want 75 (value 0)", d)
	}
	if got := RadarRadius(480, 460, 80); got != 150 {
		t.Errorf("RadarRadius = %v, want 150", got)
	}
}

func TestBand(t *testing.T) {
	b := Band(4, 100, 0.2)
	step := 100 / 4.2
	if math.Abs(b.Step-step) > 1e-9 {
		t.Errorf("step = %v, want %v", b.Step, step)
	}
	if math.Abs(b.Bandwidth-step*0.8) > 1e-9 {
		t.Errorf("bandwidth = %v", b.Bandwidth)
	}
	if end := b.At(3) + b.Bandwidth + step*0.2; math.Abs(end-100) > 1e-9 {
		t.Errorf("outer padding not symmetric: end = %v", end)
	}
}

func TestPoints(t *testing.T) {
	got := Points(3, 100)
	want := []float64{25, 50, 75}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Points()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTicks(t *testing.T) {
	ticks := Ticks(0, 8, 5)
	if len(ticks) == 0 || len(ticks) > 5 {
		t.Fatalf("ticks = %v", ticks)
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] <= ticks[i-1] {
			t.Errorf("ticks not increasing: %v", ticks)
		}
	}
}
