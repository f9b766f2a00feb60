// Package record defines typed dataset rows and the normalizer that builds them.
package record

import (
	"encoding/json"
	"math"
)

// Row is one raw input row: column name to raw string value.
type Row map[string]string

// Record is one normalized dataset row.
//
// Records are built by Normalize and never mutated afterwards; all
// accessors are read-only.
type Record struct {
	Text map[string]string  `json:"text,omitempty"`
	Num  map[string]float64 `json:"num,omitempty"`
	Bool map[string]bool    `json:"bool,omitempty"`

	// Derived fields
	HitCount int  `json:"hit_count"`
	IsHit    bool `json:"is_hit"`
}

// Value returns the numeric field, or NaN when it is missing or unparseable.
func (r Record) Value(field string) float64 {
	v, ok := r.Num[field]
	if !ok {
		return math.NaN()
	}
	return v
}

// Flag returns the boolean field. Missing fields are false.
func (r Record) Flag(field string) bool {
	return r.Bool[field]
}

// Label returns the categorical field, or "" if absent.
func (r Record) Label(field string) string {
	return r.Text[field]
}

// Missing reports whether the numeric field is absent or NaN.
func (r Record) Missing(field string) bool {
	return math.IsNaN(r.Value(field))
}

// Column extracts a numeric column, preserving NaN for missing values.
func Column(records []Record, field string) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Value(field)
	}
	return out
}

// Distinct returns the distinct non-empty values of a categorical field in
// first-seen order.
func Distinct(records []Record, field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		v := r.Label(field)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// MarshalJSON drops missing numeric values; JSON has no NaN.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	out := plain(r)
	if len(r.Num) > 0 {
		out.Num = make(map[string]float64, len(r.Num))
		for k, v := range r.Num {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out.Num[k] = v
		}
	}
	return json.Marshal(out)
}
