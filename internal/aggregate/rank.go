package aggregate

import (
	"math"
	"sort"

	"github.com/hitboard/hitboard/internal/record"
)

// Ranked is a record with its 1-based rank by score.
type Ranked struct {
	Name   string        `json:"name"`
	Group  string        `json:"group,omitempty"`
	Score  float64       `json:"score"`
	Rank   int           `json:"rank"`
	Record record.Record `json:"-"`
}

// Rank orders records by score descending. Equal scores keep input order;
// missing scores sort last.
func Rank(records []record.Record, nameField, groupField, scoreField string) []Ranked {
	out := make([]Ranked, len(records))
	for i, r := range records {
		out[i] = Ranked{
			Name:   r.Label(nameField),
			Group:  r.Label(groupField),
			Score:  r.Value(scoreField),
			Record: r,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score, out[j].Score
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// GroupBy splits records by a categorical field. Keys come back in
// first-seen order.
func GroupBy(records []record.Record, field string) ([]string, map[string][]record.Record) {
	groups := make(map[string][]record.Record)
	var keys []string
	for _, r := range records {
		k := r.Label(field)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	return keys, groups
}
