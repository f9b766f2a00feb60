// Package aggregate groups normalized records into pair counts, totals,
// ranked entities and correlation statistics.
package aggregate

import (
	"sort"

	"github.com/hitboard/hitboard/internal/record"
)

// Selector returns the categories a record belongs to on one axis.
// A record may belong to several categories (multi-label) or to none.
type Selector func(record.Record) []string

// HitPlatforms selects every platform whose hit flag is set on the record.
func HitPlatforms(platforms []record.Platform) Selector {
	return func(r record.Record) []string {
		var out []string
		for _, p := range platforms {
			if r.Flag(p.Column) {
				out = append(out, p.Name)
			}
		}
		return out
	}
}

// Field selects the value of a categorical field, or fallback when empty.
func Field(key, fallback string) Selector {
	return func(r record.Record) []string {
		v := r.Label(key)
		if v == "" {
			v = fallback
		}
		if v == "" {
			return nil
		}
		return []string{v}
	}
}

// Cell is the count for one (A, B) category pair.
type Cell struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Count int    `json:"count"`
}

// Entity is one categorical value with its total and rank.
type Entity struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Rank  int    `json:"rank"` // 1-based, by total descending
}

type pairKey struct{ a, b string }

// Table holds pair counts between two category axes.
type Table struct {
	counts map[pairKey]int
	order  []pairKey

	namesA, namesB []string
	totalA, totalB map[string]int
	seenA, seenB   map[string]bool
	records        int
}

// NewTable creates an empty table. seedA and seedB declare categories that
// exist even if no record references them; they come first in entity order.
func NewTable(seedA, seedB []string) *Table {
	t := &Table{
		counts: make(map[pairKey]int),
		totalA: make(map[string]int),
		totalB: make(map[string]int),
		seenA:  make(map[string]bool),
		seenB:  make(map[string]bool),
	}
	for _, a := range seedA {
		t.registerA(a)
	}
	for _, b := range seedB {
		t.registerB(b)
	}
	return t
}

// CountPairs builds a table from records: every record increments the
// counter of every (a, b) pair it satisfies.
func CountPairs(records []record.Record, a, b Selector, seedA []string) *Table {
	t := NewTable(seedA, nil)
	for _, r := range records {
		t.Add(a(r), b(r))
	}
	return t
}

// Add records one observation that belongs to all of as and all of bs.
func (t *Table) Add(as, bs []string) {
	t.records++
	for _, a := range as {
		t.registerA(a)
	}
	for _, b := range bs {
		t.registerB(b)
	}
	for _, a := range as {
		for _, b := range bs {
			k := pairKey{a, b}
			if _, ok := t.counts[k]; !ok {
				t.order = append(t.order, k)
			}
			t.counts[k]++
			t.totalA[a]++
			t.totalB[b]++
		}
	}
}

func (t *Table) registerA(a string) {
	if !t.seenA[a] {
		t.seenA[a] = true
		t.namesA = append(t.namesA, a)
	}
}

func (t *Table) registerB(b string) {
	if !t.seenB[b] {
		t.seenB[b] = true
		t.namesB = append(t.namesB, b)
	}
}

// Count returns the count for one pair (0 if never seen).
func (t *Table) Count(a, b string) int {
	return t.counts[pairKey{a, b}]
}

// Cells returns all non-empty cells in first-seen order.
func (t *Table) Cells() []Cell {
	cells := make([]Cell, 0, len(t.order))
	for _, k := range t.order {
		cells = append(cells, Cell{A: k.a, B: k.b, Count: t.counts[k]})
	}
	return cells
}

// TotalA is the sum of all cells whose A category is a.
func (t *Table) TotalA(a string) int { return t.totalA[a] }

// TotalB is the sum of all cells whose B category is b.
func (t *Table) TotalB(b string) int { return t.totalB[b] }

// GrandTotal is the sum of all cells.
func (t *Table) GrandTotal() int {
	sum := 0
	for _, c := range t.counts {
		sum += c
	}
	return sum
}

// Records is the number of observations added to the table.
func (t *Table) Records() int { return t.records }

// NamesA returns the A categories in first-seen order.
func (t *Table) NamesA() []string { return append([]string(nil), t.namesA...) }

// NamesB returns the B categories in first-seen order.
func (t *Table) NamesB() []string { return append([]string(nil), t.namesB...) }

// EntitiesA returns the A categories ranked by total.
func (t *Table) EntitiesA() []Entity { return rankEntities(t.namesA, t.totalA) }

// EntitiesB returns the B categories ranked by total.
func (t *Table) EntitiesB() []Entity { return rankEntities(t.namesB, t.totalB) }

// Reach returns how many distinct A categories share at least one count with b.
func (t *Table) Reach(b string) int {
	n := 0
	for _, a := range t.namesA {
		if t.counts[pairKey{a, b}] > 0 {
			n++
		}
	}
	return n
}

// rankEntities sorts names by total descending; ties keep first-seen order.
func rankEntities(names []string, totals map[string]int) []Entity {
	out := make([]Entity, len(names))
	for i, n := range names {
		out[i] = Entity{Name: n, Total: totals[n]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Tier classifies a genre by how many platforms it reaches.
type Tier string

// Reach tiers.
const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
	TierNone   Tier = ""
)

// ReachTier returns the medal tier for a reach count.
func ReachTier(reach int) Tier {
	switch {
	case reach >= 7:
		return TierGold
	case reach >= 5:
		return TierSilver
	case reach >= 3:
		return TierBronze
	default:
		return TierNone
	}
}

// Stars is the star badge shown next to a tiered label.
func (t Tier) Stars() string {
	switch t {
	case TierGold:
		return "★★★"
	case TierSilver:
		return "★★"
	case TierBronze:
		return "★"
	}
	return ""
}

// Color is the badge color of the tier.
func (t Tier) Color() string {
	switch t {
	case TierGold:
		return "#ffd700"
	case TierSilver:
		return "#c0c0c0"
	case TierBronze:
		return "#b87333"
	}
	return "#999999"
}

// ReachBand returns the coarse spread label used for styling genre bars.
func ReachBand(reach int) string {
	switch {
	case reach >= 6:
		return "high"
	case reach >= 4:
		return "medium"
	default:
		return "low"
	}
}
