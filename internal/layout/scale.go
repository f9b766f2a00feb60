package layout

import (
	"math"

	"github.com/aclements/go-moremath/scale"
)

// BandScale positions n equal bands along [0, Length].
type BandScale struct {
	Step      float64
	Bandwidth float64
	Start     float64
}

// Band builds a band scale with equal inner and outer padding (a fraction
// of the step) and the bands centered in the range.
func Band(n int, length, padding float64) BandScale {
	if padding < 0 {
		padding = 0
	}
	if padding > 1 {
		padding = 1
	}
	step := length / math.Max(1, float64(n)-padding+2*padding)
	start := (length - step*(float64(n)-padding)) * 0.5
	return BandScale{Step: step, Bandwidth: step * (1 - padding), Start: start}
}

// At returns the start of band i.
func (b BandScale) At(i int) float64 { return b.Start + b.Step*float64(i) }

// Center returns the middle of band i.
func (b BandScale) Center(i int) float64 { return b.At(i) + b.Bandwidth/2 }

// Points is a point scale with padding 1: with step = length/(n+1), point i
// sits at step*(i+1).
func Points(n int, length float64) []float64 {
	if n == 0 {
		return nil
	}
	step := length / float64(n+1)
	out := make([]float64, n)
	for i := range out {
		out[i] = step * float64(i+1)
	}
	return out
}

// Linear maps [min, max] onto [0, length]. A flat domain maps to 0.
func Linear(min, max, length float64) func(float64) float64 {
	if max == min {
		return func(float64) float64 { return 0 }
	}
	s := scale.Linear{Min: min, Max: max}
	return func(v float64) float64 { return s.Map(v) * length }
}

// Ticks returns at most n nicely rounded tick values covering [min, max].
func Ticks(min, max float64, n int) []float64 {
	if math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min || n <= 0 {
		return []float64{min}
	}
	s := scale.Linear{Min: min, Max: max}
	major, _ := s.Ticks(scale.TickOptions{Max: n})
	return major
}
