package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitboard/hitboard/internal/filter"
)

// ErrBadQuery marks a request whose selection parameters do not parse.
var ErrBadQuery = errors.New("bad query")

// StateFromQuery builds a filter state from URL query parameters:
//
//	source, target, min_weight, top_n      flow chart
//	level, region, country, year           radar chart (year also picks the leaderboard frame)
//	selected                               leaderboard
//	order=a,b,c  brush=feature:lo:hi       parallel chart (brush may repeat)
func StateFromQuery(q url.Values) (filter.State, error) {
	s := filter.Default()
	s.Source = q.Get("source")
	s.Target = q.Get("target")
	s.Region = q.Get("region")
	s.Country = q.Get("country")
	s.Selected = q.Get("selected")
	if y := q.Get("year"); y != "" {
		s.Year = y
	}

	var err error
	if s.MinWeight, err = intParam(q, "min_weight", 0); err != nil {
		return s, err
	}
	if s.TopN, err = intParam(q, "top_n", filter.DefaultTopN); err != nil {
		return s, err
	}
	if s.Level, err = filter.ParseLevel(q.Get("level")); err != nil {
		return s, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	if o := q.Get("order"); o != "" {
		s.Order = strings.Split(o, ",")
	}
	for _, raw := range q["brush"] {
		b, err := ParseBrush(raw)
		if err != nil {
			return s, err
		}
		s.Brushes = append(s.Brushes, b)
	}
	return s, nil
}

// ParseBrush parses "feature:lo:hi" with lo and hi in normalized units.
func ParseBrush(raw string) (filter.Brush, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] == "" {
		return filter.Brush{}, fmt.Errorf("%w: brush %q (want feature:lo:hi)", ErrBadQuery, raw)
	}
	lo, err1 := strconv.ParseFloat(parts[1], 64)
	hi, err2 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil {
		return filter.Brush{}, fmt.Errorf("%w: brush %q bounds must be numbers", ErrBadQuery, raw)
	}
	return filter.Brush{Feature: parts[0], Lo: lo, Hi: hi}, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadQuery, name)
	}
	return n, nil
}
