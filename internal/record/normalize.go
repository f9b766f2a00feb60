package record

import (
	"math"
	"strconv"
	"strings"
)

// Normalize converts raw rows into typed records.
//
// The output always has the same length as the input. Numeric values that do
// not parse become NaN so that aggregates can skip them; they are never
// defaulted to zero.
func Normalize(rows []Row, s Schema) []Record {
	truth := s.TruthToken
	if truth == "" {
		truth = DefaultTruthToken
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(row, s, truth))
	}
	return out
}

func normalizeRow(row Row, s Schema, truth string) Record {
	rec := Record{
		Text: make(map[string]string, len(s.Text)),
		Num:  make(map[string]float64, len(s.Numeric)),
		Bool: make(map[string]bool, len(s.Boolean)),
	}

	for _, f := range s.Text {
		rec.Text[f] = strings.TrimSpace(row[f])
	}
	for _, f := range s.Numeric {
		rec.Num[f] = parseNumber(row[f])
	}
	for _, f := range s.Boolean {
		rec.Bool[f] = row[f] == truth
	}

	for _, f := range s.HitFields {
		if rec.Bool[f] {
			rec.HitCount++
		}
	}
	if len(s.HitFields) > 0 {
		rec.IsHit = rec.HitCount >= s.HitThreshold
	}

	return rec
}

// parseNumber parses a numeric cell, returning NaN for empty, invalid or
// infinite input. ParseFloat accepts "Inf" and "Infinity" spellings.
func parseNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
