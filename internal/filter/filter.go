// Package filter holds the user's current selections and applies them to
// aggregated graphs and raw record sets.
package filter

import (
	"errors"
	"fmt"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/record"
)

// DefaultTopN is the number of targets shown when nothing is selected.
const DefaultTopN = 15

// All is the option value meaning "no restriction".
const All = "All"

// Level is the grouping level of the radar chart.
type Level string

// Levels.
const (
	ByRegion  Level = "region"
	ByCountry Level = "country"
)

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case ByRegion, ByCountry:
		return Level(s), nil
	case "":
		return ByRegion, nil
	}
	return "", fmt.Errorf("unknown level %q (want region or country)", s)
}

// Brush restricts one parallel-coordinates feature to [Lo, Hi] in
// normalized units.
type Brush struct {
	Feature string  `json:"feature"`
	Lo      float64 `json:"lo"`
	Hi      float64 `json:"hi"`
}

// Contains reports whether v lies inside the brush.
func (b Brush) Contains(v float64) bool {
	lo, hi := b.Lo, b.Hi
	if lo > hi {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// State is the full set of user selections. It is passed by value to every
// recompute; nothing reads it implicitly.
type State struct {
	// Flow chart.
	Source    string `json:"source,omitempty"`
	Target    string `json:"target,omitempty"`
	MinWeight int    `json:"min_weight,omitempty"`
	TopN      int    `json:"top_n"`

	// Radar chart.
	Level   Level  `json:"level"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Year    string `json:"year,omitempty"`

	// Leaderboard.
	Selected string `json:"selected,omitempty"`

	// Parallel coordinates.
	Brushes []Brush  `json:"brushes,omitempty"`
	Order   []string `json:"order,omitempty"`
}

// Default returns the initial state: everything at "all", nothing selected.
func Default() State {
	return State{TopN: DefaultTopN, Level: ByRegion, Year: All}
}

// Reset returns the default state. The receiver is not modified.
func (s State) Reset() State { return Default() }

// HasSelection reports whether a flow category is selected.
func (s State) HasSelection() bool { return s.Source != "" || s.Target != "" }

func (s State) topN() int {
	if s.TopN <= 0 {
		return DefaultTopN
	}
	return s.TopN
}

// ErrEmptyResult is the sentinel behind every EmptyResultError.
var ErrEmptyResult = errors.New("empty result")

// EmptyResultError reports a filter combination that matched nothing. It is
// recoverable by changing filters.
type EmptyResultError struct {
	Message string
}

func (e *EmptyResultError) Error() string { return e.Message }

func (e *EmptyResultError) Unwrap() error { return ErrEmptyResult }

// Empty builds an EmptyResultError with the generic message.
func Empty() *EmptyResultError {
	return &EmptyResultError{Message: "No data available for the selected filters. Please try different filter options."}
}

// Apply filters a graph. It never mutates g, does not recompute totals, and
// applying it twice with the same state gives the same graph.
func Apply(g aggregate.Graph, s State) aggregate.Graph {
	var links []aggregate.Link
	for _, l := range g.Links {
		if s.Source != "" && l.Source != s.Source {
			continue
		}
		if s.Target != "" && l.Target != s.Target {
			continue
		}
		if l.Weight <= 0 || l.Weight < s.MinWeight {
			continue
		}
		links = append(links, l)
	}

	var targets []aggregate.Entity
	switch {
	case s.Source != "":
		touching := make(map[string]bool)
		for _, l := range links {
			touching[l.Target] = true
		}
		for _, e := range g.Targets {
			if touching[e.Name] {
				targets = append(targets, e)
			}
		}
	case s.Target != "":
		for _, e := range g.Targets {
			if e.Total > 0 {
				targets = append(targets, e)
			}
		}
	default:
		// g.Targets is already ranked by total with stable ties.
		for _, e := range g.Targets {
			if len(targets) == s.topN() {
				break
			}
			if e.Total > 0 {
				targets = append(targets, e)
			}
		}
	}

	sources := append([]aggregate.Entity(nil), g.Sources...)
	src := make(map[string]bool, len(sources))
	for _, e := range sources {
		src[e.Name] = true
	}
	dst := make(map[string]bool, len(targets))
	for _, e := range targets {
		dst[e.Name] = true
	}
	var kept []aggregate.Link
	for _, l := range links {
		if src[l.Source] && dst[l.Target] {
			kept = append(kept, l)
		}
	}

	return aggregate.Graph{Sources: sources, Targets: targets, Links: kept}
}

// Records applies the radar chart's year and region/country filters.
func Records(records []record.Record, s State) ([]record.Record, error) {
	out := records
	yearSet := s.Year != "" && s.Year != All
	if yearSet {
		out = where(out, record.FieldYear, s.Year)
		if len(out) == 0 {
			return nil, &EmptyResultError{Message: fmt.Sprintf(
				"No data available for the year %s. Please select a different year.", s.Year)}
		}
	}

	switch s.Level {
	case ByCountry:
		if s.Country != "" && s.Country != All {
			out = where(out, record.FieldCountry, s.Country)
			if len(out) == 0 {
				if yearSet {
					return nil, &EmptyResultError{Message: fmt.Sprintf(
						"No data available for %s in %s. Try selecting 'All' for year or choose a different country.", s.Country, s.Year)}
				}
				return nil, &EmptyResultError{Message: fmt.Sprintf(
					"No data available for %s. Please select a different country.", s.Country)}
			}
		}
	default:
		if s.Region != "" && s.Region != All {
			out = where(out, record.FieldRegion, s.Region)
		}
	}

	if len(out) == 0 {
		return nil, Empty()
	}
	return out, nil
}

func where(records []record.Record, field, value string) []record.Record {
	var out []record.Record
	for _, r := range records {
		if r.Label(field) == value {
			out = append(out, r)
		}
	}
	return out
}
