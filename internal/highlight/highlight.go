// Package highlight decides which primitives are emphasized for the current
// selection.
package highlight

import (
	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
)

// Opacities used by every chart.
const (
	RibbonOn    = 0.7
	RibbonOff   = 0.15
	RibbonHover = 0.9
	EntityOn    = 1.0
	EntityOff   = 0.3
	RowOn       = 1.0
	RowOff      = 0.5
	LineOn      = 0.7
	LineOff     = 0.1
)

// Selection is the current single selection: nothing, one category on
// either axis, or a source/target pair.
type Selection struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// FromState extracts the selection from a filter state.
func FromState(s filter.State) Selection {
	return Selection{Source: s.Source, Target: s.Target}
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.Source == "" && s.Target == "" }

// Match reports whether l is highlighted under sel. With no selection every
// link matches; with a pair both ends must match; with a single category
// the link must touch it on that axis.
func Match(l aggregate.Link, sel Selection) bool {
	switch {
	case sel.Empty():
		return true
	case sel.Source != "" && sel.Target != "":
		return l.Source == sel.Source && l.Target == sel.Target
	case sel.Source != "":
		return l.Source == sel.Source
	default:
		return l.Target == sel.Target
	}
}

// Links evaluates Match for every link.
func Links(links []aggregate.Link, sel Selection) []bool {
	out := make([]bool, len(links))
	for i, l := range links {
		out[i] = Match(l, sel)
	}
	return out
}

// Entity reports whether a named entity is emphasized: it is the selection,
// or nothing on its axis is selected.
func Entity(name string, selected string) bool {
	return selected == "" || selected == name
}

// Ribbon returns the ribbon opacity for a highlight flag.
func Ribbon(on bool) float64 {
	if on {
		return RibbonOn
	}
	return RibbonOff
}

// EntityOpacity returns the bar/label opacity for a highlight flag.
func EntityOpacity(on bool) float64 {
	if on {
		return EntityOn
	}
	return EntityOff
}

// Row returns the leaderboard bar opacity. With no selection every row is
// fully opaque.
func Row(name, selected string) float64 {
	if Entity(name, selected) {
		return RowOn
	}
	return RowOff
}

// Brushed reports, per line, whether it lies inside every brush. values[i]
// maps a feature to the line's normalized value. With no brushes every line
// is emphasized.
func Brushed(values []map[string]float64, brushes []filter.Brush) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = true
		for _, b := range brushes {
			x, ok := v[b.Feature]
			if !ok || !b.Contains(x) {
				out[i] = false
				break
			}
		}
	}
	return out
}

// Line returns the polyline opacity for a brush flag.
func Line(on bool) float64 {
	if on {
		return LineOn
	}
	return LineOff
}
