package aggregate

import (
	"math"
	"sort"

	"github.com/hitboard/hitboard/internal/record"
)

// FeatureCorrelation is the correlation of one feature with one platform's
// hit flag.
type FeatureCorrelation struct {
	Platform   string  `json:"platform"`
	Feature    string  `json:"feature"`
	Value      float64 `json:"correlation"`
	Degenerate bool    `json:"degenerate,omitempty"`
}

// PlatformFeatureMatrix correlates every feature with every platform hit
// flag, treating the flag as 0/1. Rows come platform-major in input order.
func PlatformFeatureMatrix(records []record.Record, platforms []record.Platform, features []string) []FeatureCorrelation {
	columns := make(map[string][]float64, len(features))
	for _, f := range features {
		columns[f] = record.Column(records, f)
	}

	out := make([]FeatureCorrelation, 0, len(platforms)*len(features))
	for _, p := range platforms {
		hits := make([]float64, len(records))
		for i, r := range records {
			if r.Flag(p.Column) {
				hits[i] = 1
			}
		}
		for _, f := range features {
			v, degenerate := Pearson(columns[f], hits)
			out = append(out, FeatureCorrelation{Platform: p.Name, Feature: f, Value: v, Degenerate: degenerate})
		}
	}
	return out
}

// Strongest returns up to n rows for platform ordered by |correlation|
// descending.
func Strongest(rows []FeatureCorrelation, platform string, n int) []FeatureCorrelation {
	var sel []FeatureCorrelation
	for _, r := range rows {
		if r.Platform == platform {
			sel = append(sel, r)
		}
	}
	sort.SliceStable(sel, func(i, j int) bool {
		return math.Abs(sel[i].Value) > math.Abs(sel[j].Value)
	})
	if n > 0 && len(sel) > n {
		sel = sel[:n]
	}
	return sel
}
