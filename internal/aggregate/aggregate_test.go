package aggregate

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/hitboard/hitboard/internal/record"
)

var testPlatforms = []record.Platform{
	{Name: "A", Column: "A_Hit"},
	{Name: "B", Column: "B_Hit"},
}

func song(genre string, hits ...string) record.Record {
	r := record.Record{
		Text: map[string]string{record.FieldGenre: genre},
		Bool: map[string]bool{},
		Num:  map[string]float64{},
	}
	for _, h := range hits {
		r.Bool[h] = true
	}
	return r
}

func TestCountPairs_Scenario(t *testing.T) {
	records := []record.Record{
		song("G", "A_Hit", "B_Hit"),
		song("G", "A_Hit"),
		song("G"),
	}
	table := CountPairs(records, HitPlatforms(testPlatforms), Field(record.FieldGenre, "Unknown"), nil)

	if got := table.Count("A", "G"); got != 2 {
		t.Errorf("Count(A, G) = %d, want 2", got)
	}
	if got := table.Count("B", "G"); got != 1 {
		t.Errorf("Count(B, G) = %d, want 1", got)
	}

	g, threshold := table.Graph(DefaultLinkCap, DefaultMaxThreshold)
	if threshold != 1 {
		t.Errorf("threshold = %d, want 1", threshold)
	}
	want := []Link{{"A", "G", 2}, {"B", "G", 1}}
	if !reflect.DeepEqual(g.Links, want) {
		t.Errorf("links = %v, want %v", g.Links, want)
	}
	if table.Records() != 3 {
		t.Errorf("Records() = %d, want 3", table.Records())
	}
}

func TestTable_TotalsMatchCells(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	genres := []string{"Pop", "Rock", "Jazz", "Funk"}
	var records []record.Record
	for i := 0; i < 200; i++ {
		var hits []string
		for _, p := range record.Platforms {
			if rng.Intn(3) == 0 {
				hits = append(hits, p.Column)
			}
		}
		records = append(records, song(genres[rng.Intn(len(genres))], hits...))
	}
	table := CountPairs(records, HitPlatforms(record.Platforms), Field(record.FieldGenre, "Unknown"), nil)

	sumA := map[string]int{}
	sumB := map[string]int{}
	for _, c := range table.Cells() {
		sumA[c.A] += c.Count
		sumB[c.B] += c.Count
	}
	for _, e := range table.EntitiesA() {
		if e.Total != sumA[e.Name] {
			t.Errorf("total of %s = %d, cells sum to %d", e.Name, e.Total, sumA[e.Name])
		}
	}
	for _, e := range table.EntitiesB() {
		if e.Total != sumB[e.Name] {
			t.Errorf("total of %s = %d, cells sum to %d", e.Name, e.Total, sumB[e.Name])
		}
	}
}

func TestEntities_StableTies(t *testing.T) {
	table := NewTable([]string{"X", "Y", "Z"}, nil)
	table.Add([]string{"Z"}, []string{"g"})
	table.Add([]string{"Y"}, []string{"g"})

	var names []string
	for _, e := range table.EntitiesA() {
		names = append(names, e.Name)
	}
	want := []string{"Y", "Z", "X"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
	if e := table.EntitiesA()[2]; e.Total != 0 || e.Rank != 3 {
		t.Errorf("seeded entity = %+v, want zero total at rank 3", e)
	}
}

func TestSelectThreshold(t *testing.T) {
	cells := func(counts ...int) []Cell {
		var out []Cell
		for _, c := range counts {
			out = append(out, Cell{A: "a", B: "b", Count: c})
		}
		return out
	}

	tests := []struct {
		name  string
		cells []Cell
		limit int
		want  int
	}{
		{"fits at 1", cells(1, 2, 3), 5, 1},
		{"needs 4", cells(1, 2, 3, 3, 4), 2, 4},
		{"never fits", cells(9, 9, 9), 1, 1},
		{"empty", nil, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectThreshold(tt.cells, tt.limit, DefaultMaxThreshold); got != tt.want {
				t.Errorf("SelectThreshold() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildLinks_DropsDanglingAndZero(t *testing.T) {
	cells := []Cell{
		{A: "A", B: "G", Count: 3},
		{A: "A", B: "H", Count: 0},
		{A: "C", B: "G", Count: 5},
	}
	sources := []Entity{{Name: "A"}}
	targets := []Entity{{Name: "G"}, {Name: "H"}}
	got := BuildLinks(cells, 1, sources, targets)
	want := []Link{{"A", "G", 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildLinks() = %v, want %v", got, want)
	}
}

func TestPearson(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name       string
		xs, ys     []float64
		want       float64
		degenerate bool
	}{
		{"perfect", []float64{1, 2, 3}, []float64{2, 4, 6}, 1, false},
		{"inverse", []float64{1, 2, 3}, []float64{3, 2, 1}, -1, false},
		{"zero variance", []float64{4, 4, 4}, []float64{1, 2, 3}, 0, true},
		{"nan skipped", []float64{1, nan, 2, 3}, []float64{1, 100, 2, 3}, 1, false},
		{"single pair", []float64{1}, []float64{1}, 0, true},
		{"inf skipped", []float64{math.Inf(1), 1, 2, 3}, []float64{1, 1, 2, 3}, 1, false},
		{"negative inf skipped", []float64{1, 2, 3, 4}, []float64{3, 2, 1, math.Inf(-1)}, -1, false},
		{"only inf", []float64{math.Inf(1), math.Inf(-1)}, []float64{1, 2}, 0, true},
		{"huge magnitudes", []float64{1e200, 2e200, 3e200}, []float64{1, 2, 3}, 1, false},
		{"huge both sides", []float64{1e200, 2e200, 3e200}, []float64{-3e200, -2e200, -1e200}, 1, false},
		{"huge inverse", []float64{-1e300, 0, 1e300}, []float64{1e300, 0, -1e300}, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degenerate := Pearson(tt.xs, tt.ys)
			if math.Abs(got-tt.want) > 1e-9 || degenerate != tt.degenerate {
				t.Errorf("Pearson() = (%v, %v), want (%v, %v)", got, degenerate, tt.want, tt.degenerate)
			}
		})
	}
}

func TestPearson_NeverNaN(t *testing.T) {
	specials := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e200, -1e200, math.MaxFloat64, -math.MaxFloat64}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		n := rng.Intn(6)
		xs := make([]float64, n)
		ys := make([]float64, n)
		for j := range xs {
			xs[j] = float64(rng.Intn(3))
			ys[j] = rng.NormFloat64()
			if rng.Intn(4) == 0 {
				ys[j] = specials[rng.Intn(len(specials))]
			}
			if rng.Intn(6) == 0 {
				xs[j] = specials[rng.Intn(len(specials))]
			}
		}
		r, degenerate := Pearson(xs, ys)
		if math.IsNaN(r) || math.IsInf(r, 0) || r < -1 || r > 1 {
			t.Fatalf("Pearson(%v, %v) = %v", xs, ys, r)
		}
		if degenerate && r != 0 {
			t.Fatalf("Pearson(%v, %v) = %v, degenerate results must be 0", xs, ys, r)
		}
	}
}

func TestBounds_NonFinite(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name      string
		b         Bounds
		v         float64
		unit, sym float64
	}{
		{"mid", Bounds{0, 10}, 5, 0.5, 0},
		{"max", Bounds{0, 10}, 10, 1, 1},
		{"nan value", Bounds{0, 10}, math.NaN(), 0, 0},
		{"inf value", Bounds{0, 10}, inf, 0, 0},
		{"negative inf value", Bounds{0, 10}, -inf, 0, 0},
		{"inf bound", Bounds{0, inf}, 5, 0, 0},
		{"flat", Bounds{3, 3}, 3, 0, 0},
		{"overflowing range", Bounds{-math.MaxFloat64, math.MaxFloat64}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.Unit(tt.v); math.Abs(got-tt.unit) > 1e-9 {
				t.Errorf("Unit(%v) = %v, want %v", tt.v, got, tt.unit)
			}
			if got := tt.b.Symmetric(tt.v); math.Abs(got-tt.sym) > 1e-9 {
				t.Errorf("Symmetric(%v) = %v, want %v", tt.v, got, tt.sym)
			}
		})
	}
}

func country(name string, score float64, factors ...float64) record.Record {
	r := record.Record{
		Text: map[string]string{record.FieldCountry: name},
		Num:  map[string]float64{record.FieldHappiness: score},
	}
	for i, f := range factors {
		r.Num[record.HappinessFactors[i].Field] = f
	}
	return r
}

func TestBuildProfile_SinglePointAtMax(t *testing.T) {
	all := []record.Record{
		country("A", 5, 0.5, 1),
		country("B", 7, 1.5, 1),
		country("C", 6, 1.0, 1),
	}
	metrics := record.FactorFields()[:2]
	p, err := BuildProfile(all[1:2], all, record.FieldHappiness, metrics)
	if err != nil {
		t.Fatalf("BuildProfile() error = %v", err)
	}
	if p.Mode != ModeSinglePoint {
		t.Fatalf("mode = %s, want %s", p.Mode, ModeSinglePoint)
	}
	if got := p.Value(metrics[0]); got != 1.0 {
		t.Errorf("max value normalized to %v, want 1.0", got)
	}
	if got := p.Value(metrics[1]); got != 0 {
		t.Errorf("flat metric normalized to %v, want 0", got)
	}
}

func TestBuildProfile_Modes(t *testing.T) {
	all := []record.Record{
		country("A", 5, 0.5),
		country("B", 7, 1.5),
		country("C", 6, 1.0),
	}
	metrics := record.FactorFields()[:1]

	if _, err := BuildProfile(nil, all, record.FieldHappiness, metrics); !errors.Is(err, ErrNoRecords) {
		t.Errorf("empty error = %v, want ErrNoRecords", err)
	}
	p, err := BuildProfile(all, all, record.FieldHappiness, metrics)
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeCorrelation || math.Abs(p.Value(metrics[0])-1) > 1e-9 {
		t.Errorf("profile = %+v, want correlation 1", p)
	}
}

func TestRank_NaNLast(t *testing.T) {
	records := []record.Record{
		country("A", math.NaN()),
		country("B", 6),
		country("C", 7),
		country("D", 6),
	}
	ranked := Rank(records, record.FieldCountry, record.FieldRegion, record.FieldHappiness)
	var names []string
	for _, r := range ranked {
		names = append(names, r.Name)
	}
	want := []string{"C", "B", "D", "A"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
	if ranked[0].Rank != 1 || ranked[3].Rank != 4 {
		t.Errorf("ranks = %d..%d, want 1..4", ranked[0].Rank, ranked[3].Rank)
	}
}

func TestStrongest(t *testing.T) {
	rows := []FeatureCorrelation{
		{Platform: "A", Feature: "f1", Value: 0.1},
		{Platform: "A", Feature: "f2", Value: -0.8},
		{Platform: "B", Feature: "f1", Value: 0.9},
		{Platform: "A", Feature: "f3", Value: 0.5},
	}
	got := Strongest(rows, "A", 2)
	if len(got) != 2 || got[0].Feature != "f2" || got[1].Feature != "f3" {
		t.Errorf("Strongest() = %+v", got)
	}
}

func TestReachTier(t *testing.T) {
	tests := []struct {
		reach int
		tier  Tier
		band  string
	}{
		{9, TierGold, "high"},
		{6, TierSilver, "high"},
		{5, TierSilver, "medium"},
		{4, TierBronze, "medium"},
		{2, TierNone, "low"},
		{1, TierNone, "low"},
	}
	for _, tt := range tests {
		if got := ReachTier(tt.reach); got != tt.tier {
			t.Errorf("ReachTier(%d) = %q, want %q", tt.reach, got, tt.tier)
		}
		if tt.tier == TierGold && tt.tier.Stars() != "★★★" {
			t.Errorf("gold stars = %q", tt.tier.Stars())
		}
		if got := ReachBand(tt.reach); got != tt.band {
			t.Errorf("ReachBand(%d) = %q, want %q", tt.reach, got, tt.band)
		}
	}
}
